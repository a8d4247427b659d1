package notesdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.sqlite")
	s, err := Initialize(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitialize(t *testing.T) {
	t.Run("creates the database file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.sqlite")
		s, err := Initialize(path)
		require.NoError(t, err)
		defer s.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
		assert.Equal(t, path, s.Path())
	})

	t.Run("is idempotent and keeps existing rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.sqlite")
		s, err := Initialize(path)
		require.NoError(t, err)
		created, err := s.Create("survives restarts")
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = Initialize(path)
		require.NoError(t, err)
		defer s.Close()

		all, err := s.ListAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, created.ID, all[0].ID)
		assert.Equal(t, "survives restarts", all[0].Content)
	})

	t.Run("in-memory database", func(t *testing.T) {
		s, err := Initialize(":memory:")
		require.NoError(t, err)
		defer s.Close()

		_, err = s.Create("ephemeral")
		require.NoError(t, err)
		all, err := s.ListAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("missing parent directory is a storage error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "does", "not", "exist", "notes.sqlite")
		_, err := Initialize(path)
		require.Error(t, err)
		assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)

		var storageErr *StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "open", storageErr.Op)
		assert.Equal(t, path, storageErr.Path)
	})
}

func TestCreate(t *testing.T) {
	s := openTestStore(t)

	var lastID int64
	for _, content := range []string{"first", "second", "third"} {
		note, err := s.Create(content)
		require.NoError(t, err)
		assert.Equal(t, content, note.Content)
		assert.Greater(t, note.ID, lastID)
		assert.True(t, note.CreatedAt.Equal(note.UpdatedAt), "created_at %v != updated_at %v", note.CreatedAt, note.UpdatedAt)
		lastID = note.ID
	}

	all, err := s.ListAll()
	require.NoError(t, err)
	matches := 0
	for _, n := range all {
		if n.Content == "second" {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestCreateUsesClock(t *testing.T) {
	clock := newClock()
	s := openTestStore(t, WithClock(clock.Now))

	note, err := s.Create("stamped")
	require.NoError(t, err)
	assert.True(t, clock.t.Equal(note.CreatedAt), "expected %v, got %v", clock.t, note.CreatedAt)
	assert.Equal(t, time.UTC, note.CreatedAt.Location())
}

func TestListAll(t *testing.T) {
	t.Run("empty store returns empty slice", func(t *testing.T) {
		s := openTestStore(t)
		all, err := s.ListAll()
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("newest first", func(t *testing.T) {
		clock := newClock()
		s := openTestStore(t, WithClock(clock.Now))

		var ids []int64
		for _, content := range []string{"a", "b", "c", "d"} {
			note, err := s.Create(content)
			require.NoError(t, err)
			ids = append(ids, note.ID)
			clock.Advance(time.Second)
		}

		all, err := s.ListAll()
		require.NoError(t, err)
		require.Len(t, all, 4)
		for i, note := range all {
			assert.Equal(t, ids[len(ids)-1-i], note.ID)
		}
	})

	t.Run("stopped clock still orders by insertion", func(t *testing.T) {
		clock := newClock()
		s := openTestStore(t, WithClock(clock.Now))

		first, err := s.Create("first")
		require.NoError(t, err)
		second, err := s.Create("second")
		require.NoError(t, err)
		assert.True(t, second.CreatedAt.After(first.CreatedAt))

		all, err := s.ListAll()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID)
		assert.Equal(t, first.ID, all[1].ID)
	})

	t.Run("reads rows stamped by the column defaults", func(t *testing.T) {
		s := openTestStore(t)
		_, err := s.db.Exec("INSERT INTO notes (content) VALUES (?)", "defaulted")
		require.NoError(t, err)
		_, err = s.db.Exec("INSERT INTO notes (content, created_at, updated_at) VALUES (?, ?, ?)",
			"old format", "2019-07-01 12:30:00", "2019-07-01 12:30:00")
		require.NoError(t, err)

		all, err := s.ListAll()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "defaulted", all[0].Content)
		assert.False(t, all[0].CreatedAt.IsZero())
		assert.Equal(t, "old format", all[1].Content)
		assert.True(t, time.Date(2019, 7, 1, 12, 30, 0, 0, time.UTC).Equal(all[1].CreatedAt))
	})
}

func TestGet(t *testing.T) {
	s := openTestStore(t)

	missing, err := s.Get(42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := s.Create("lookup")
	require.NoError(t, err)
	found, err := s.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, *created, *found)
}

func TestUpdate(t *testing.T) {
	clock := newClock()
	s := openTestStore(t, WithClock(clock.Now))

	target, err := s.Create("original")
	require.NoError(t, err)
	other, err := s.Create("bystander")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, s.Update(target.ID, "rewritten"))

	updated, err := s.Get(target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, updated.ID)
	assert.Equal(t, "rewritten", updated.Content)
	assert.True(t, updated.CreatedAt.Equal(target.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(target.UpdatedAt))

	untouched, err := s.Get(other.ID)
	require.NoError(t, err)
	assert.Equal(t, *other, *untouched)
}

func TestUpdateWithStoppedClock(t *testing.T) {
	clock := newClock()
	s := openTestStore(t, WithClock(clock.Now))

	note, err := s.Create("frozen")
	require.NoError(t, err)
	require.NoError(t, s.Update(note.ID, "still frozen"))

	updated, err := s.Get(note.ID)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(note.UpdatedAt))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestMissingIDIsNoop(t *testing.T) {
	s := openTestStore(t)

	note, err := s.Create("keep me")
	require.NoError(t, err)

	assert.NoError(t, s.Update(note.ID+100, "ghost"))
	assert.NoError(t, s.Delete(note.ID+100))

	all, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *note, *all[0])
}

func TestStrictMode(t *testing.T) {
	s := openTestStore(t, WithStrict(true))

	err := s.Update(7, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsStorageError(err))

	err = s.Delete(7)
	assert.ErrorIs(t, err, ErrNotFound)

	note, err := s.Create("real")
	require.NoError(t, err)
	assert.NoError(t, s.Update(note.ID, "still real"))
	assert.NoError(t, s.Delete(note.ID))
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Create("first")
	require.NoError(t, err)
	second, err := s.Create("second")
	require.NoError(t, err)

	require.NoError(t, s.Delete(second.ID))

	all, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)

	third, err := s.Create("third")
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID, "deleted id must not be reused")
}

func TestClosedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.sqlite")
	s, err := Initialize(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Create("too late")
	assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)

	_, err = s.ListAll()
	assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)

	_, err = s.Get(1)
	assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)

	err = s.Update(1, "too late")
	assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)

	err = s.Delete(1)
	assert.True(t, IsStorageError(err), "expected StorageError, got %v", err)
}

func TestClockSteppedBackAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.sqlite")
	clock := newClock()

	s, err := Initialize(path, WithClock(clock.Now))
	require.NoError(t, err)
	first, err := s.Create("before restart")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	clock.Advance(-time.Minute)
	s, err = Initialize(path, WithClock(clock.Now))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Update(first.ID, "after restart"))
	updated, err := s.Get(first.ID)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt),
		"updated_at %v must follow created_at %v", updated.UpdatedAt, updated.CreatedAt)

	second, err := s.Create("created after restart")
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.After(updated.UpdatedAt))

	all, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestLatestStamp(t *testing.T) {
	s := openTestStore(t)

	latest, err := latestStamp(s.db)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	_, err = s.db.Exec("INSERT INTO notes (content, created_at, updated_at) VALUES (?, ?, ?)",
		"legacy", "2019-07-01 12:30:00", "2021-02-03 04:05:06.700000000")
	require.NoError(t, err)

	latest, err = latestStamp(s.db)
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 2, 3, 4, 5, 6, 700000000, time.UTC).Equal(latest), "got %v", latest)
}

func TestScenario(t *testing.T) {
	clock := newClock()
	s := openTestStore(t, WithClock(clock.Now))
	start := clock.t

	created, err := s.Create("buy milk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	all, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "buy milk", all[0].Content)
	assert.True(t, start.Equal(all[0].CreatedAt))
	assert.True(t, start.Equal(all[0].UpdatedAt))

	clock.Advance(5 * time.Second)
	require.NoError(t, s.Update(1, "buy oat milk"))

	all, err = s.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, "buy oat milk", all[0].Content)
	assert.True(t, start.Equal(all[0].CreatedAt))
	assert.True(t, clock.t.Equal(all[0].UpdatedAt))

	require.NoError(t, s.Delete(1))

	all, err = s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.UTC)
	for _, v := range []any{
		"2024-01-02 03:04:05.600000000",
		"2024-01-02 03:04:05.6",
		"2024-01-02T03:04:05.600",
		[]byte("2024-01-02 03:04:05.600000000"),
		want,
	} {
		got, err := parseTime(v)
		require.NoError(t, err, "%v", v)
		assert.True(t, want.Equal(got), "%v parsed as %v", v, got)
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
	_, err = parseTime(nil)
	assert.Error(t, err)
}

func TestFormatTimeIsFixedWidth(t *testing.T) {
	a := formatTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	b := formatTime(time.Date(2024, 1, 2, 3, 4, 5, 1, time.UTC))
	assert.Equal(t, len(a), len(b))
	assert.Less(t, a, b)
	assert.Equal(t, "2024-01-02 03:04:05.000000000", a)
}
