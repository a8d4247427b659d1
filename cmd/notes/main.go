package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mrshanahan/notes/internal/notebook"
	"github.com/mrshanahan/notes/internal/utils"
	notesdb "github.com/mrshanahan/notes/pkg/notes-db"
)

func main() {
	exitCode := Run()
	os.Exit(exitCode)
}

func Run() int {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if utils.Any(args, func(x string) bool { return x == "-?" }) {
		args = []string{"--help"}
	}

	a := newApp(out, errOut)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if closeErr := a.close(); closeErr != nil {
		slog.Error("failed to close notes database", "err", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	if err != nil {
		reportError(errOut, err)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error) {
	switch {
	case errors.Is(err, notebook.ErrEmptyNote):
		fmt.Fprintln(w, "Error: note is empty; nothing saved")
	case notesdb.IsStorageError(err):
		slog.Error("notes storage failure", "err", err)
		fmt.Fprintf(w, "Error: %s\n", err)
	default:
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}
