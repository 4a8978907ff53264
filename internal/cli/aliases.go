package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// aliasesCommand creates the aliases command.
func (c *CLI) aliasesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Show the import name to package name table",
		Long: `Show the alias table used to map import names to package names, such as
cv2 -> opencv-python. Entries from aliases.file (or --aliases-file) are
merged over the built-in table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil, nil)
			if err != nil {
				return err
			}
			tbl, err := pipeline.LoadAliases(pipeline.AliasOptions{Enabled: true, File: cfg.Aliases.File})
			if err != nil {
				return err
			}
			if !cfg.Aliases.Enabled {
				printWarning("aliases are disabled by configuration")
			}
			return writeAliases(cmd.OutOrStdout(), tbl.Entries(), format)
		},
	}
	cmd.Flags().String("aliases-file", "", "TOML file with extra [aliases] entries")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml")
	return cmd
}

func writeAliases(w io.Writer, entries []aliases.Entry, format string) error {
	switch format {
	case formatTable:
		fmt.Fprintln(w, aliasTable(entries))
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d aliases", len(entries))))
		return nil
	case formatJSON:
		if entries == nil {
			entries = []aliases.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q: want table, json or yaml", format)
	}
}

func aliasTable(entries []aliases.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Import, e.Package}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Import", "Package").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
