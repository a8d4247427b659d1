package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrshanahan/notes/internal/notebook"
)

func newImportCmd(a *app) *cobra.Command {
	var fromExport bool
	cmd := &cobra.Command{
		Use:   "import <file...>",
		Short: "Create notes from files",
		Long: `Create one note per file from its contents. With --export, read files written
by "notes export" instead and recreate every note they contain, oldest first. Imported
notes get new ids and timestamps.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb := a.notebook()
			imported := 0
			for _, path := range args {
				var n int
				var err error
				if fromExport {
					n, err = importExport(a, path)
				} else {
					n, err = importFile(nb, path)
				}
				if err != nil {
					return err
				}
				imported += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes\n", imported)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromExport, "export", false, "Files are notes exports (YAML, or JSON by .json extension)")
	return cmd
}

func importFile(nb *notebook.Notebook, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}
	note, err := nb.Add(string(content))
	if err != nil && errors.Is(err, notebook.ErrEmptyNote) {
		slog.Warn("skipping empty file", "path", path)
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	slog.Info("imported note", "path", path, "id", note.ID)
	return 1, nil
}

func importExport(a *app, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	doc, err := readExport(f, format)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	// Recreate oldest first so the new notes list in the same order.
	sort.SliceStable(doc.Notes, func(i, j int) bool {
		if doc.Notes[i].CreatedAt.Equal(doc.Notes[j].CreatedAt) {
			return doc.Notes[i].ID < doc.Notes[j].ID
		}
		return doc.Notes[i].CreatedAt.Before(doc.Notes[j].CreatedAt)
	})
	for _, n := range doc.Notes {
		created, err := a.store.Create(n.Content)
		if err != nil {
			return 0, err
		}
		slog.Debug("restored note", "path", path, "oldID", n.ID, "id", created.ID)
	}
	return len(doc.Notes), nil
}
