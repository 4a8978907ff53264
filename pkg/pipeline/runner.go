package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/observability"
	"github.com/matzehuels/pybundle/pkg/resolve"
	"github.com/matzehuels/pybundle/pkg/scan"
	"github.com/matzehuels/pybundle/pkg/stdlib"
)

// ReasonUnknown marks requirements the package index does not have.
const ReasonUnknown = "unknown"

// Runner executes the pipeline. It holds no per-run state; one Runner may
// serve many runs. Interpreter module lists are cached per interpreter for
// the lifetime of the Runner.
type Runner struct {
	Downloader bundle.Downloader
	Verifier   Verifier // may be nil when verification is never requested
	Logger     *log.Logger

	// Discover loads the interpreter's module list. Defaults to
	// [stdlib.Discover].
	Discover func(ctx context.Context, python string) (stdlib.Set, error)

	mu         sync.Mutex
	discovered map[string]discovery
}

type discovery struct {
	set stdlib.Set
	err error
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(dl bundle.Downloader, v Verifier, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Downloader: dl,
		Verifier:   v,
		Logger:     logger,
		Discover:   stdlib.Discover,
	}
}

// Analyze runs scan, filter and resolve. Nothing is written.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	a, _, err := r.analyze(ctx, opts)
	return a, err
}

// Execute runs the complete pipeline. An empty requirement set ends the run
// with a nil error and no files written.
//
// With opts.Strict, download failures produce a DOWNLOAD_FAILED error after
// the bundle is complete; the Result is returned alongside it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	a, stats, err := r.analyze(ctx, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Analysis: a, Selected: a.Set(), Stats: stats}
	if res.Selected.Empty() {
		logger.Info("no third-party imports found", "files", len(a.Scan.Files))
		return res, nil
	}

	if opts.Verify {
		if err := r.verify(ctx, res, logger); err != nil {
			return nil, err
		}
		if res.Selected.Empty() {
			logger.Info("no requirement is known to the package index")
			return res, nil
		}
	}

	if opts.Select != nil {
		sel, err := opts.Select(ctx, res.Selected)
		if err != nil {
			return nil, err
		}
		if sel == nil || sel.Empty() {
			logger.Info("nothing selected")
			res.Selected = &resolve.RequirementSet{}
			return res, nil
		}
		res.Selected = sel
	}

	b, err := r.bundle(ctx, opts, res, logger)
	if err != nil {
		return nil, err
	}
	res.Bundle = b

	if failed := b.Failed(); opts.Strict && len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = f.Package
		}
		return res, errors.New(errors.ErrCodeDownloadFailed,
			"%d of %d downloads failed: %v", len(failed), len(b.Packages), names)
	}
	return res, nil
}

func (r *Runner) analyze(ctx context.Context, opts Options) (*Analysis, Stats, error) {
	var stats Stats
	logger := r.logger(opts)
	hooks := observability.Pipeline()

	hooks.OnStageStart(ctx, observability.StageScan)
	start := time.Now()
	scanOpts := opts.Scan
	dest := opts.Bundle.WithDefaults().Dest
	scanOpts.ExcludePaths = append(append([]string(nil), scanOpts.ExcludePaths...), dest)
	sr, err := scan.New(scanOpts).Scan(ctx, opts.Root)
	stats.ScanTime = time.Since(start)
	if sr != nil {
		hooks.OnScanComplete(ctx, len(sr.Files), len(sr.Imports), stats.ScanTime, err)
	} else {
		hooks.OnScanComplete(ctx, 0, 0, stats.ScanTime, err)
	}
	if err != nil {
		return nil, stats, err
	}
	logger.Info("scanned sources",
		"root", opts.Root,
		"files", len(sr.Files),
		"imports", len(sr.Imports),
		"duration", stats.ScanTime.Round(time.Millisecond))

	hooks.OnStageStart(ctx, observability.StageResolve)
	start = time.Now()
	filter := r.BuildFilter(ctx, opts.Stdlib, logger)
	table, err := LoadAliases(opts.Aliases)
	if err != nil {
		return nil, stats, err
	}
	ropts := resolve.Options{Aliases: table, Filter: filter}
	if opts.SkipLocal {
		ropts.LocalModules = sr.LocalModules
	}
	resolved := resolve.New(ropts).Resolve(sr.Imports)
	stats.ResolveTime = time.Since(start)
	hooks.OnResolveComplete(ctx, resolved.Set.Len(), len(resolved.Excluded), stats.ResolveTime)

	logger.Info("resolved requirements",
		"packages", resolved.Set.Len(),
		"excluded", len(resolved.Excluded))
	for _, ex := range resolved.Excluded {
		logger.Debug("excluded", "name", ex.Name, "reason", ex.Reason)
	}

	return &Analysis{
		Scan:     sr,
		Resolved: resolved,
		Aliases:  table,
		Filters:  filter.Labels(),
	}, stats, nil
}

// BuildFilter assembles the exclusion filter from opts. Environment query
// failures are logged and replaced by the embedded list.
func (r *Runner) BuildFilter(ctx context.Context, opts StdlibOptions, logger *log.Logger) *stdlib.Filter {
	if logger == nil {
		logger = r.Logger
	}
	f := stdlib.NewFilter()

	if opts.QueryEnvironment {
		set, err := r.discover(ctx, opts.Python)
		if err != nil {
			logger.Warn("using embedded standard library list", "err", errors.UserMessage(err))
		} else {
			logger.Debug("queried standard library", "python", opts.Python, "modules", set.Len())
		}
		f.With(LabelStdlib, set)
	}
	if opts.ManualList {
		f.With(LabelManual, stdlib.Embedded())
	}

	if opts.BuiltinUtils {
		f.With(LabelBuiltin, stdlib.BuiltinUtils())
	}
	if len(opts.Extra) > 0 {
		f.With(LabelExtra, stdlib.NewSet(opts.Extra...))
	}
	return f
}

// discover runs Discover once per interpreter. Failures are cached too; a
// cancelled query is not.
func (r *Runner) discover(ctx context.Context, python string) (stdlib.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.discovered[python]; ok {
		return d.set, d.err
	}
	fn := r.Discover
	if fn == nil {
		fn = stdlib.Discover
	}
	set, err := fn(ctx, python)
	if ctx.Err() != nil {
		return set, err
	}
	if r.discovered == nil {
		r.discovered = make(map[string]discovery)
	}
	r.discovered[python] = discovery{set: set, err: err}
	return set, err
}

// LoadAliases returns the effective alias table: the defaults merged with
// the overlay file, or an empty table when aliasing is disabled.
func LoadAliases(opts AliasOptions) (aliases.Table, error) {
	if !opts.Enabled {
		return aliases.Table{}, nil
	}
	table := aliases.Default()
	if opts.File == "" {
		return table, nil
	}
	overlay, err := aliases.Load(opts.File)
	if err != nil {
		return aliases.Table{}, err
	}
	return table.Merge(overlay), nil
}

func (r *Runner) verify(ctx context.Context, res *Result, logger *log.Logger) error {
	if r.Verifier == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "verification requested but no index client configured")
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageVerify)

	start := time.Now()
	pkgs := res.Selected.Sorted()
	v, err := r.Verifier.Verify(ctx, pkgs)
	res.Stats.VerifyTime = time.Since(start)
	if err != nil {
		hooks.OnVerifyComplete(ctx, 0, 0, res.Stats.VerifyTime, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "verify requirements")
	}
	hooks.OnVerifyComplete(ctx, len(v.Known), len(v.Unknown), res.Stats.VerifyTime, nil)

	keep := make([]string, 0, len(pkgs))
	unknown := make(map[string]bool, len(v.Unknown))
	for _, name := range v.Unknown {
		unknown[name] = true
	}
	for _, pkg := range pkgs {
		if unknown[pkg] {
			res.Unknown = append(res.Unknown, resolve.Exclusion{Name: pkg, Reason: ReasonUnknown})
			req, _ := res.Selected.Get(pkg)
			logger.Warn("not on package index", "package", pkg, "imported_as", req.Imports)
			continue
		}
		keep = append(keep, pkg)
	}
	res.Selected = res.Selected.Retain(keep)
	logger.Info("verified requirements", "known", len(v.Known), "unknown", len(v.Unknown))
	return nil
}

func (r *Runner) bundle(ctx context.Context, opts Options, res *Result, logger *log.Logger) (*bundle.Bundle, error) {
	if r.Downloader == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no downloader configured")
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageBundle)

	bopts := opts.Bundle
	bopts.Logger = logger
	w, err := bundle.NewWriter(timedDownloader{r.Downloader}, bopts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	b, err := w.Write(ctx, res.Selected)
	res.Stats.BundleTime = time.Since(start)
	if err != nil {
		hooks.OnBundleComplete(ctx, res.Selected.Len(), 0, res.Stats.BundleTime, err)
		return nil, err
	}
	hooks.OnBundleComplete(ctx, len(b.Packages), len(b.Failed()), res.Stats.BundleTime, nil)

	dir, _ := filepath.Abs(b.Dir)
	logger.Info("wrote bundle",
		"dir", dir,
		"packages", len(b.Packages),
		"failed", len(b.Failed()),
		"duration", res.Stats.BundleTime.Round(time.Millisecond))
	return b, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// timedDownloader reports each download to the pipeline hooks.
type timedDownloader struct {
	bundle.Downloader
}

func (d timedDownloader) Download(ctx context.Context, dest, pkg string) error {
	start := time.Now()
	err := d.Downloader.Download(ctx, dest, pkg)
	observability.Pipeline().OnDownload(ctx, pkg, time.Since(start), err)
	return err
}
