package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrshanahan/notes/pkg/notes"
)

type exportDocument struct {
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Notes      []*notes.Note `json:"notes" yaml:"notes"`
}

func newExportCmd(a *app) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every note to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported export format: %q (want yaml or json)", format)
			}

			all, err := a.store.ListAll()
			if err != nil {
				return err
			}
			doc := &exportDocument{ExportedAt: time.Now().UTC(), Notes: all}

			if outPath == "" {
				return writeExport(cmd.OutOrStdout(), format, doc)
			}
			if err := writeExportFile(outPath, format, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", len(all), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Export format: yaml or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

// writeExportFile reports a failed close too, since that is where a short write to
// disk shows up.
func writeExportFile(path string, format string, doc *exportDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file: %w", err)
	}
	if err := writeExport(f, format, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing export file %s: %w", path, err)
	}
	return nil
}

func writeExport(w io.Writer, format string, doc *exportDocument) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("error JSON-encoding notes: %w", err)
		}
		return nil
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("error YAML-encoding notes: %w", err)
	}
	return encoder.Close()
}

func readExport(r io.Reader, format string) (*exportDocument, error) {
	doc := &exportDocument{}
	if format == "json" {
		if err := json.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("error JSON-decoding export: %w", err)
		}
		return doc, nil
	}
	if err := yaml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("error YAML-decoding export: %w", err)
	}
	return doc, nil
}
