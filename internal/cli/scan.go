package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// Output formats for commands that print data.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatText  = "txt"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	af := &analysisFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List the packages imported under dir without downloading",
		Long: `Scan dir for Python imports and print the resulting requirement set.

Formats:
  table  package, import names and importing files (default)
  json   full report including excluded names
  yaml   same as json
  txt    one package per line, as written to the manifest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, args, af)
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			opts.Logger = loggerFromContext(cmd.Context())

			a, err := pipeline.NewRunner(nil, nil, c.Logger).Analyze(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), a.Report(), format)
		},
	}

	addAnalysisFlags(cmd.Flags(), af)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml, txt")
	return cmd
}

func writeReport(w io.Writer, r *pipeline.Report, format string) error {
	switch format {
	case formatTable:
		if len(r.Requirements) == 0 {
			fmt.Fprintln(w, "No dependencies found.")
			return nil
		}
		fmt.Fprintln(w, requirementsTable(r))
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		for _, req := range r.Requirements {
			fmt.Fprintln(w, req.Package)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q: want table, json, yaml or txt", format)
	}
}

func requirementsTable(r *pipeline.Report) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Package", "Imported as", "Files"})
	for _, req := range r.Requirements {
		tbl.AppendRow(table.Row{req.Package, strings.Join(req.Imports, ", "), strings.Join(sourceFiles(req), ", ")})
	}
	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d packages", len(r.Requirements)),
		fmt.Sprintf("%d excluded", len(r.Excluded)),
		fmt.Sprintf("%d files", r.Files),
	})
	return tbl.Render()
}
