package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/importgraph"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	af := &analysisFlags{}
	var (
		output       string
		svg          bool
		showExcluded bool
	)

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Draw which files import which packages",
		Long: `Build the import graph of dir (source file -> package) and print it as
Graphviz DOT, or render it to SVG with --svg.`,
		Example: `  pybundle graph | dot -Tpng -o imports.png
  pybundle graph ./src --svg -o imports.svg --show-excluded`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, args, af)
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			opts.Logger = loggerFromContext(ctx)

			a, err := pipeline.NewRunner(nil, nil, c.Logger).Analyze(ctx, opts)
			if err != nil {
				return err
			}
			g := importgraph.Build(a.Scan, a.Resolved, importgraph.Options{ShowExcluded: showExcluded})
			data := []byte(importgraph.ToDOT(g))
			if svg {
				if data, err = importgraph.RenderSVG(ctx, string(data)); err != nil {
					return err
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Graph with %d packages", g.Packages())
				printFile(output)
			}
			return nil
		},
	}

	addAnalysisFlags(cmd.Flags(), af)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&showExcluded, "show-excluded", false, "include standard library and local modules")
	return cmd
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "write %s", path)
	}
	return nil
}
