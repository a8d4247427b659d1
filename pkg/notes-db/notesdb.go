package notesdb

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrshanahan/notes/pkg/notes"
)

var (
	//go:embed files/create_notes_tables.sql
	CREATE_NOTES_TABLES_SQL string
)

const (
	// Fixed width so that lexical order of the stored text is chronological order.
	TIMESTAMP_FORMAT = "2006-01-02 15:04:05.000000000"

	selectNoteColumns = "SELECT id, content, created_at, updated_at FROM notes"
)

// Store owns the single connection to the notes database file. It is meant to be
// opened once at startup and closed on shutdown; it is not safe for concurrent use
// by more than one goroutine.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	clock  func() time.Time
	strict bool
	last   time.Time
}

// Initialize opens (creating if absent) the database at path and makes sure the
// notes table exists. Calling it again on an existing file keeps its rows.
func Initialize(path string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storageError("open", path, err)
	}
	// One owner, one connection. This also keeps ":memory:" databases from
	// splitting across pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageError("open", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, storageError("initialize", path, err)
	}

	_, err = tx.Exec(CREATE_NOTES_TABLES_SQL)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, storageError("initialize", path, err)
	}

	err = tx.Commit()
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, storageError("initialize", path, err)
	}

	last, err := latestStamp(db)
	if err != nil {
		db.Close()
		return nil, storageError("initialize", path, err)
	}

	o.logger.Debug("notes database initialized", "path", path, "latest", last)

	return &Store{
		db:     db,
		path:   path,
		logger: o.logger,
		clock:  o.clock,
		strict: o.strict,
		last:   last,
	}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storageError("close", s.path, err)
	}
	return nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Create(content string) (*notes.Note, error) {
	stmt, err := s.db.Prepare("INSERT INTO notes (content, created_at, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		return nil, storageError("create", s.path, err)
	}
	defer stmt.Close()

	now := formatTime(s.now())
	result, err := stmt.Exec(content, now, now)
	if err != nil {
		return nil, storageError("create", s.path, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("create", s.path, err)
	}
	s.logger.Debug("created note", "id", id)

	note, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, storageError("create", s.path, fmt.Errorf("note %d missing after insert", id))
	}
	return note, nil
}

// ListAll returns every note, newest first. Notes created at the same instant come
// back in reverse insertion order.
func (s *Store) ListAll() ([]*notes.Note, error) {
	stmt, err := s.db.Prepare(selectNoteColumns + " ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, storageError("list", s.path, err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, storageError("list", s.path, err)
	}
	defer rows.Close()

	result := []*notes.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storageError("list", s.path, err)
		}
		result = append(result, note)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError("list", s.path, err)
	}

	return result, nil
}

// Get returns nil, nil when no note has the given id.
func (s *Store) Get(id int64) (*notes.Note, error) {
	stmt, err := s.db.Prepare(selectNoteColumns + " WHERE id = ?")
	if err != nil {
		return nil, storageError("get", s.path, err)
	}
	defer stmt.Close()

	note, err := scanNote(stmt.QueryRow(id))
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, storageError("get", s.path, err)
	}

	return note, nil
}

// Update overwrites the content of a note and bumps its updated_at. A missing id is
// not an error unless the store was opened with WithStrict(true).
func (s *Store) Update(id int64, content string) error {
	stmt, err := s.db.Prepare("UPDATE notes SET content = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return storageError("update", s.path, err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(content, formatTime(s.now()), id)
	if err != nil {
		return storageError("update", s.path, err)
	}
	return s.checkAffected("update", id, result)
}

// Delete removes a note for good. Same missing-id rules as Update.
func (s *Store) Delete(id int64) error {
	stmt, err := s.db.Prepare("DELETE FROM notes WHERE id = ?")
	if err != nil {
		return storageError("delete", s.path, err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return storageError("delete", s.path, err)
	}
	return s.checkAffected("delete", id, result)
}

// Private

func (s *Store) checkAffected(op string, id int64, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storageError(op, s.path, err)
	}
	if n == 0 {
		s.logger.Debug("no note matched", "op", op, "id", id, "strict", s.strict)
		if s.strict {
			return fmt.Errorf("%s note %d: %w", op, id, ErrNotFound)
		}
		return nil
	}
	s.logger.Debug("note changed", "op", op, "id", id)
	return nil
}

// now never returns the same instant twice and never goes backwards, so that
// updated_at is always strictly after the value it replaces.
func (s *Store) now() time.Time {
	t := s.clock().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

// latestStamp is the newest created_at or updated_at already on disk, so a clock
// that stepped back between runs cannot stamp a row before its existing times.
func latestStamp(db *sql.DB) (time.Time, error) {
	var maxCreated, maxUpdated any
	err := db.QueryRow("SELECT MAX(created_at), MAX(updated_at) FROM notes").Scan(&maxCreated, &maxUpdated)
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	for _, v := range []any{maxCreated, maxUpdated} {
		if v == nil {
			continue
		}
		t, err := parseTime(v)
		if err != nil {
			return time.Time{}, err
		}
		if t.After(latest) {
			latest = t
		}
	}
	return latest, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*notes.Note, error) {
	note := &notes.Note{}
	var createdAt, updatedAt any
	err := row.Scan(&note.ID, &note.Content, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	note.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	note.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TIMESTAMP_FORMAT)
}

// The driver hands TIMESTAMP columns back as time.Time when it recognizes the text,
// and as the raw text otherwise.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case nil:
		return time.Time{}, errors.New("timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

func parseTimeString(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
}
