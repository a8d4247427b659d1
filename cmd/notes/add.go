package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Create a note",
		Long: `Create a note from the arguments, from a file with --file, or from stdin
when the only argument is "-". Surrounding whitespace is trimmed and blank notes are
rejected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(cmd, args, file)
			if err != nil {
				return err
			}
			note, err := a.notebook().Add(text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note %d\n", note.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read note content from a file")
	return cmd
}

func readContent(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("cannot combine --file with note text")
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("error reading %s: %w", file, err)
		}
		return string(content), nil
	}
	if len(args) == 1 && args[0] == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(content), nil
	}
	return strings.Join(args, " "), nil
}
