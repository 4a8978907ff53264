package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/internal/config"
	"github.com/matzehuels/pybundle/internal/server"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	af := &analysisFlags{}
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API over HTTP",
		Long: `Start an HTTP server that analyzes directories on request. The API never
downloads or writes bundles.

  GET  /healthz
  GET  /api/v1/aliases
  POST /api/v1/scan      {"root": "path/to/sources"}
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil, af)
			if err != nil {
				return err
			}
			var metrics *server.Metrics
			if !noMetrics {
				metrics = server.NewMetrics()
				metrics.Install()
			}
			srv := server.New(pipeline.NewRunner(nil, nil, c.Logger), cfg.PipelineOptions(), c.Logger, metrics)
			return srv.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
		},
	}

	addAnalysisFlags(cmd.Flags(), af)
	cmd.Flags().String("addr", config.DefaultServeAddr, "listen address")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics")
	return cmd
}
