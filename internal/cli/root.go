package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Running it without a subcommand builds a bundle, like "pybundle bundle".
func (c *CLI) RootCommand() *cobra.Command {
	bf := &bundleFlags{}
	root := &cobra.Command{
		Use:   appName + " [dir]",
		Short: "pybundle packages the imports of a Python tree for offline install",
		Long: `pybundle scans a directory of Python sources for import statements, maps
the imported modules to installable package names and downloads them into a
folder together with a requirements manifest and install scripts, so the
packages can be installed on a machine without network access.`,
		Version:       buildinfo.Current(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundle(cmd, args, bf)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default .pybundle.toml in . or $HOME)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	addBundleFlags(root.Flags(), bf)

	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.aliasesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ExitCode maps an error returned by the root command to a process exit
// status: 0 on success, 130 after an interrupt, 2 for INVALID_* errors and
// 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	case errors.GetCode(err).Invalid():
		return 2
	default:
		return 1
	}
}
