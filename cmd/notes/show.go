package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			note, err := a.store.Get(id)
			if err != nil {
				return err
			}
			if note == nil {
				return fmt.Errorf("no note with id: %d", id)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(note)
			}
			nb := a.notebook()
			fmt.Fprintln(out, note.Content)
			fmt.Fprintf(out, "created: %s, updated: %s\n",
				nb.FormatTimestamp(note.CreatedAt),
				nb.FormatTimestamp(note.UpdatedAt))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
