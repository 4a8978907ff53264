// Package pipeline runs the scan → filter → resolve → bundle flow shared by
// the CLI and the HTTP API.
//
// # Stages
//
//  1. Scan: walk the root and collect import identifiers ([scan])
//  2. Filter: build the standard-library and private-name filter ([stdlib])
//  3. Resolve: apply exclusions and aliases into a requirement set ([resolve])
//  4. Verify (optional): drop names the package index does not know
//  5. Select (optional): let a caller narrow the set, e.g. interactively
//  6. Bundle: download and write the offline bundle ([bundle])
//
// An empty requirement set after any stage ends the run successfully with
// nothing written.
//
// # Usage
//
//	runner := pipeline.NewRunner(installer, verifier, logger)
//	res, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	if res.Empty() {
//	    fmt.Println("no third-party imports")
//	}
//
// [Runner.Analyze] runs only the first three stages and never writes.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/integrations/pypi"
	"github.com/matzehuels/pybundle/pkg/resolve"
	"github.com/matzehuels/pybundle/pkg/scan"
	"github.com/matzehuels/pybundle/pkg/stdlib"
)

// DefaultRoot is scanned when Options.Root is empty.
const DefaultRoot = "."

// Filter labels reported in exclusions.
const (
	LabelStdlib  = "stdlib"
	LabelManual  = "manual"
	LabelBuiltin = "builtin"
	LabelExtra   = "configured"
)

// StdlibOptions selects the sources of standard-library names.
type StdlibOptions struct {
	// QueryEnvironment asks Python for its module list. Falls back to the
	// embedded list (with a warning) when the interpreter cannot run.
	QueryEnvironment bool

	// ManualList adds the embedded list. It applies alongside the
	// environment query, covering modules a newer interpreter has removed.
	ManualList bool

	// BuiltinUtils excludes the fixed set of utility modules (os, sys, re,
	// subprocess, pkgutil) regardless of the other sources.
	BuiltinUtils bool

	// Extra names are always excluded.
	Extra []string

	// Python interpreter used by the environment query (default "python3").
	Python string
}

// AliasOptions configures import-to-package substitution.
type AliasOptions struct {
	Enabled bool
	File    string // optional TOML overlay merged over the defaults
}

// Options configures a pipeline run.
type Options struct {
	Root      string
	Scan      scan.Options
	Stdlib    StdlibOptions
	Aliases   AliasOptions
	SkipLocal bool // exclude modules defined inside the scanned tree

	Verify bool           // look up each requirement on the package index
	Bundle bundle.Options // destination and file names
	Strict bool           // fail with DOWNLOAD_FAILED if any download failed

	// Select, when set, receives the (verified) set and returns the subset
	// to bundle. Returning an empty set ends the run without writing.
	Select func(ctx context.Context, set *resolve.RequirementSet) (*resolve.RequirementSet, error)

	Logger *log.Logger
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Root: DefaultRoot,
		Stdlib: StdlibOptions{
			QueryEnvironment: true,
			ManualList:       true,
			BuiltinUtils:     true,
			Python:           stdlib.DefaultPython,
		},
		Aliases:   AliasOptions{Enabled: true},
		SkipLocal: true,
		Bundle: bundle.Options{
			Dest:      bundle.DefaultDest,
			Manifest:  bundle.DefaultManifest,
			Installer: bundle.DefaultInstaller,
		},
	}
}

// Validate checks options that can be rejected before touching the disk.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if err := o.Bundle.WithDefaults().Validate(); err != nil {
		return err
	}
	for _, name := range o.Stdlib.Extra {
		if name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "stdlib.extra: empty module name")
		}
	}
	return nil
}

// Verifier checks requirement names against a package index.
// [pypi.Client] implements it.
type Verifier interface {
	Verify(ctx context.Context, pkgs []string) (*pypi.Verification, error)
}

// Analysis is the outcome of the read-only stages.
type Analysis struct {
	Scan     *scan.Result
	Resolved *resolve.Result
	Aliases  aliases.Table
	Filters  []string // active filter labels
}

// Set returns the resolved requirement set.
func (a *Analysis) Set() *resolve.RequirementSet { return a.Resolved.Set }

// Stats records stage timings.
type Stats struct {
	ScanTime    time.Duration
	ResolveTime time.Duration
	VerifyTime  time.Duration
	BundleTime  time.Duration
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	*Analysis
	Unknown  []resolve.Exclusion // requirements dropped by verification
	Selected *resolve.RequirementSet
	Bundle   *bundle.Bundle // nil when nothing was bundled
	Stats    Stats
}

// Empty reports whether the run ended without a bundle.
func (r *Result) Empty() bool { return r.Bundle == nil }
