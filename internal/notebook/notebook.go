// Package notebook is the presentation model for the notes front end. It validates
// user input, forwards mutations to the note store and hands a fresh snapshot of all
// notes to the view after every change. The store knows nothing about the view.
package notebook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mrshanahan/notes/internal/utils"
	"github.com/mrshanahan/notes/pkg/notes"
)

const TimestampLayout = "2006-01-02 15:04"

var ErrEmptyNote = errors.New("note is empty")

// Store is the subset of the note store the notebook needs.
type Store interface {
	Create(content string) (*notes.Note, error)
	ListAll() ([]*notes.Note, error)
	Get(id int64) (*notes.Note, error)
	Update(id int64, content string) error
	Delete(id int64) error
}

type Notebook struct {
	store     Store
	onRefresh func([]*notes.Note)

	// Location is the zone timestamps are shown in.
	Location *time.Location
}

// New wires a store to a view. onRefresh receives the full list after every
// successful mutation and on each explicit Refresh; it may be nil.
func New(store Store, onRefresh func([]*notes.Note)) *Notebook {
	return &Notebook{
		store:     store,
		onRefresh: onRefresh,
		Location:  time.Local,
	}
}

func (nb *Notebook) Refresh() error {
	all, err := nb.store.ListAll()
	if err != nil {
		return err
	}
	if nb.onRefresh != nil {
		nb.onRefresh(all)
	}
	return nil
}

// Add stores text as a new note after trimming surrounding whitespace. Blank text is
// rejected with ErrEmptyNote and never reaches the store.
func (nb *Notebook) Add(text string) (*notes.Note, error) {
	if utils.IsBlank(text) {
		return nil, ErrEmptyNote
	}
	text = strings.TrimSpace(text)

	note, err := nb.store.Create(text)
	if err != nil {
		return nil, err
	}
	slog.Debug("added note", "id", note.ID)
	return note, nb.Refresh()
}

// Edit replaces the content of a note as given, without trimming or validation.
func (nb *Notebook) Edit(id int64, text string) error {
	if err := nb.store.Update(id, text); err != nil {
		return err
	}
	slog.Debug("edited note", "id", id)
	return nb.Refresh()
}

func (nb *Notebook) Remove(id int64) error {
	if err := nb.store.Delete(id); err != nil {
		return err
	}
	slog.Debug("removed note", "id", id)
	return nb.Refresh()
}

// Current returns the content an editor should start from.
func (nb *Notebook) Current(id int64) (string, error) {
	note, err := nb.store.Get(id)
	if err != nil {
		return "", err
	}
	if note == nil {
		return "", fmt.Errorf("no note with id: %d", id)
	}
	return note.Content, nil
}

func (nb *Notebook) FormatTimestamp(t time.Time) string {
	loc := nb.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// Render writes one block per note: the id and content, then the creation time on
// its own indented line. Continuation lines of multi-line notes are indented too.
func (nb *Notebook) Render(w io.Writer, list []*notes.Note) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "(no notes)")
		return err
	}
	for _, n := range list {
		prefix := fmt.Sprintf("[%d] ", n.ID)
		indent := strings.Repeat(" ", len(prefix))
		lines := strings.Split(n.Content, "\n")
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, lines[0]); err != nil {
			return err
		}
		for _, line := range lines[1:] {
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, nb.FormatTimestamp(n.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}
