package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <id> [text...]",
		Short: "Replace the content of a note",
		Long: `Replace the content of a note with the remaining arguments, a file given with
--file, or stdin when the text is "-". The content is stored as given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 && file == "" {
				return errors.New("new content required")
			}
			text, err := readContent(cmd, args[1:], file)
			if err != nil {
				return err
			}
			if err := a.notebook().Edit(id, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read new content from a file")
	return cmd
}
