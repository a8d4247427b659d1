package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrshanahan/notes/internal/notebook"
	"github.com/mrshanahan/notes/internal/utils"
	"github.com/mrshanahan/notes/pkg/notes"
	notesdb "github.com/mrshanahan/notes/pkg/notes-db"
)

const shellHelp = `Commands:
  list                 show all notes, newest first
  add <text>           save a new note
  edit <id> [text]     replace a note; without text, shows it and reads the new text
  delete <id>          delete a note
  show <id>            print one note in full
  help                 this message
  quit                 leave
`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that redraws the list after every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := newShell(a.store, cmd.InOrStdin(), cmd.OutOrStdout())
			return sh.run()
		},
	}
}

// Longest line the shell accepts, so pasted notes are not cut off at the scanner's
// 64 KiB default.
const maxShellLine = 16 * 1024 * 1024

type shell struct {
	nb      *notebook.Notebook
	in      *bufio.Scanner
	out     io.Writer
	drawErr error
}

func newShell(store notebook.Store, in io.Reader, out io.Writer) *shell {
	sh := &shell{
		in:  bufio.NewScanner(in),
		out: out,
	}
	sh.in.Buffer(make([]byte, 0, 64*1024), maxShellLine)
	sh.nb = notebook.New(store, sh.draw)
	return sh
}

func (sh *shell) draw(list []*notes.Note) {
	fmt.Fprintln(sh.out, "--- notes ---")
	sh.drawErr = sh.nb.Render(sh.out, list)
}

func (sh *shell) run() error {
	fmt.Fprint(sh.out, shellHelp)
	if err := sh.nb.Refresh(); err != nil {
		return err
	}

	for {
		fmt.Fprint(sh.out, "> ")
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return sh.in.Err()
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if utils.Any([]string{"quit", "exit", "q"}, func(x string) bool { return x == verb }) {
			return nil
		}

		err := sh.dispatch(verb, rest)
		if err == nil {
			err = sh.drawErr
			sh.drawErr = nil
		}
		if err != nil {
			// Storage failures end the session; anything else is the user's to fix.
			if notesdb.IsStorageError(err) {
				return err
			}
			fmt.Fprintf(sh.out, "error: %s\n", err)
		}
	}
}

func (sh *shell) dispatch(verb string, rest string) error {
	switch verb {
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
		return nil
	case "list", "ls":
		return sh.nb.Refresh()
	case "add":
		_, err := sh.nb.Add(rest)
		if errors.Is(err, notebook.ErrEmptyNote) {
			return errors.New("nothing to save")
		}
		return err
	case "edit":
		idStr, text, hasText := strings.Cut(rest, " ")
		text = strings.TrimLeft(text, " \t")
		id, err := parseID(idStr)
		if err != nil {
			return err
		}
		if !hasText {
			current, err := sh.nb.Current(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(sh.out, "editing [%d]:\n%s\nnew text> ", id, current)
			if !sh.in.Scan() {
				if err := sh.in.Err(); err != nil {
					return err
				}
				return errors.New("edit cancelled")
			}
			text = sh.in.Text()
		}
		return sh.nb.Edit(id, text)
	case "delete", "rm":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return sh.nb.Remove(id)
	case "show":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		current, err := sh.nb.Current(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, current)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", verb)
	}
}
