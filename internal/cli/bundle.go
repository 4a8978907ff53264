package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

type bundleFlags struct {
	analysisFlags
	interactive bool
	pause       bool
}

func addBundleFlags(fs *pflag.FlagSet, f *bundleFlags) {
	addAnalysisFlags(fs, &f.analysisFlags)
	fs.StringP("dest", "d", bundle.DefaultDest, "destination directory for the bundle")
	fs.String("installer", bundle.DefaultInstaller, "pip-compatible installer command line")
	fs.String("manifest", bundle.DefaultManifest, "manifest file name")
	fs.Bool("no-report", false, "do not write the bundle report")
	fs.Bool("version-suffix", false, "append the pybundle version to generated file names")
	fs.Bool("strict", false, "fail when any download fails")
	fs.Bool("verify", false, "check every package on the package index before downloading")
	fs.String("index-url", "", "package index JSON API used by --verify")
	fs.String("cache", "", "index cache backend: file, redis, mongo or none")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "choose the packages to download")
	fs.BoolVar(&f.pause, "pause", false, "wait for Enter before exiting")
}

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	f := &bundleFlags{}
	cmd := &cobra.Command{
		Use:   "bundle [dir]",
		Short: "Download the packages imported under dir into an offline bundle",
		Long: `Scan dir (default: current directory) for Python imports, drop standard
library and local modules, map import names to package names and download
each package with the installer. The destination receives the archives, a
requirements manifest, setup.bat and setup.sh.`,
		Example: `  pybundle bundle
  pybundle bundle ./src -d vendor --verify
  pybundle bundle --installer "python3 -m pip" --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundle(cmd, args, f)
		},
	}
	addBundleFlags(cmd.Flags(), f)
	return cmd
}

func (c *CLI) runBundle(cmd *cobra.Command, args []string, f *bundleFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	err := func() error {
		cfg, err := c.loadConfig(cmd, args, &f.analysisFlags)
		if err != nil {
			return err
		}
		runner, cleanup, err := c.newRunner(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		opts := cfg.PipelineOptions()
		opts.Logger = logger
		if f.interactive {
			opts.Select = selectRequirements
		}

		spinner := newSpinnerWithContext(ctx, "Downloading")
		opts.Bundle.Progress = spinner.Progress

		timer := startStage(logger)
		res, err := runner.Execute(ctx, opts)
		spinner.Stop()
		if res != nil {
			printBundleResult(res)
			if b := res.Bundle; b != nil {
				timer.done("Bundle finished", "packages", len(b.Packages), "dest", b.Dir)
			}
		}
		return err
	}()

	if f.pause {
		waitForEnter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return err
}

func printBundleResult(res *pipeline.Result) {
	for _, u := range res.Unknown {
		printWarning("%s is not on the package index (%s)", u.Name, u.Reason)
	}
	if res.Set().Empty() {
		printInfo("No dependencies found.")
		return
	}
	b := res.Bundle
	if b == nil {
		printInfo("Nothing to bundle")
		return
	}

	for _, r := range b.Failed() {
		printWarning("%s: %s", r.Package, errors.UserMessage(r.Err))
	}
	ok := len(b.Packages) - len(b.Failed())
	if b.Complete() {
		printSuccess("Bundled %d packages", ok)
	} else {
		printWarning("Bundled %d of %d packages", ok, len(b.Packages))
	}
	printStats(
		fmt.Sprintf("%d archives", b.Archives),
		humanize.Bytes(uint64(b.Size)),
		shortID(b.ID),
	)
	printFile(b.Manifest)
	printFile(b.WindowsScript)
	printFile(b.UnixScript)
	if b.Report != "" {
		printFile(b.Report)
	}
	printNewline()
	printNextStep("Install offline", installHint(b))
}

// installHint is the command that installs b on the current platform.
func installHint(b *bundle.Bundle) string {
	if runtime.GOOS == "windows" {
		return filepath.Base(b.WindowsScript) + " in " + b.Dir
	}
	return "sh " + b.UnixScript
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return "run " + id[:i]
	}
	return "run " + id
}

// waitForEnter blocks until a line (or EOF) is read from in.
func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, StyleDim.Render("Press Enter to exit..."))
	_, _ = bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
}
