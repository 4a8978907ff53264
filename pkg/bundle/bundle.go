package bundle

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/resolve"
)

// Default artifact names.
const (
	DefaultDest          = "dependencies"
	DefaultManifest      = "requirements.txt"
	DefaultWindowsScript = "setup.bat"
	DefaultUnixScript    = "setup.sh"
	DefaultReport        = "bundle.json"
)

// Options configures a Writer.
type Options struct {
	Dest          string // destination directory (default "dependencies")
	Manifest      string // manifest file name (default "requirements.txt")
	WindowsScript string // batch script name (default "setup.bat")
	UnixScript    string // shell script name (default "setup.sh")
	Report        string // report file name (default "bundle.json")
	NoReport      bool   // skip writing the report

	// Installer is the command line written into the install scripts
	// (default "pip"). It should match the Downloader's installer.
	Installer string

	// VersionSuffix, when set, is inserted before the extension of every
	// generated file name: requirements-1.2.0.txt, setup-1.2.0.sh.
	VersionSuffix string

	// Progress is called before each download.
	Progress func(index, total int, pkg string)

	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by
// defaults and the version suffix applied to file names.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Dest == "" {
		opts.Dest = DefaultDest
	}
	if opts.Manifest == "" {
		opts.Manifest = DefaultManifest
	}
	if opts.WindowsScript == "" {
		opts.WindowsScript = DefaultWindowsScript
	}
	if opts.UnixScript == "" {
		opts.UnixScript = DefaultUnixScript
	}
	if opts.Report == "" {
		opts.Report = DefaultReport
	}
	if opts.Installer == "" {
		opts.Installer = DefaultInstaller
	}
	if opts.VersionSuffix != "" {
		opts.Manifest = suffixed(opts.Manifest, opts.VersionSuffix)
		opts.WindowsScript = suffixed(opts.WindowsScript, opts.VersionSuffix)
		opts.UnixScript = suffixed(opts.UnixScript, opts.VersionSuffix)
		opts.Report = suffixed(opts.Report, opts.VersionSuffix)
	}
	if opts.Progress == nil {
		opts.Progress = func(int, int, string) {}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Validate checks that every generated file name is a plain basename.
func (o Options) Validate() error {
	for _, name := range []string{o.Manifest, o.WindowsScript, o.UnixScript, o.Report} {
		if err := errors.ValidateFilename(name); err != nil {
			return err
		}
	}
	return nil
}

// suffixed inserts "-suffix" before the extension of name.
func suffixed(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + suffix + ext
}

// Result is the outcome of downloading one package.
type Result struct {
	Package  string
	Err      error
	Duration time.Duration
}

// OK reports whether the download succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Bundle describes a written bundle.
type Bundle struct {
	ID            string
	Dir           string
	Manifest      string // path of the manifest
	WindowsScript string // path of the batch script
	UnixScript    string // path of the shell script
	Report        string // path of the report, empty if disabled
	Packages      []string
	Results       []Result
	Archives      int   // files in Dir other than the generated ones
	Size          int64 // total bytes of those files
	CreatedAt     time.Time
}

// Failed returns the results of packages that could not be downloaded.
func (b *Bundle) Failed() []Result {
	var failed []Result
	for _, r := range b.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Complete reports whether every package was downloaded.
func (b *Bundle) Complete() bool { return len(b.Failed()) == 0 }

// Writer downloads packages and writes the bundle artifacts.
type Writer struct {
	dl   Downloader
	opts Options
}

// NewWriter creates a Writer. Options are defaulted and validated.
func NewWriter(dl Downloader, opts Options) (*Writer, error) {
	if dl == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bundle writer needs a downloader")
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Writer{dl: dl, opts: opts}, nil
}

// Write creates the destination, downloads every package, and writes the
// manifest, both install scripts, and the report. Download failures are
// recorded in the returned Bundle; filesystem failures abort with an error.
// An empty set is rejected: callers short-circuit before writing anything.
func (w *Writer) Write(ctx context.Context, set *resolve.RequirementSet) (*Bundle, error) {
	if set == nil || set.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no requirements to bundle")
	}

	dir := w.opts.Dest
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileWrite, err, "create %s", dir)
	}

	b := &Bundle{
		ID:            uuid.NewString(),
		Dir:           dir,
		Manifest:      filepath.Join(dir, w.opts.Manifest),
		WindowsScript: filepath.Join(dir, w.opts.WindowsScript),
		UnixScript:    filepath.Join(dir, w.opts.UnixScript),
		Packages:      set.Sorted(),
		CreatedAt:     time.Now().UTC(),
	}

	if err := w.download(ctx, b); err != nil {
		return nil, err
	}
	if err := WriteManifest(b.Manifest, b.Packages); err != nil {
		return nil, err
	}
	if err := w.writeScripts(b); err != nil {
		return nil, err
	}
	if err := b.countArchives(w.generated()); err != nil {
		return nil, err
	}
	if !w.opts.NoReport {
		b.Report = filepath.Join(dir, w.opts.Report)
		if err := writeReport(b.Report, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (w *Writer) download(ctx context.Context, b *Bundle) error {
	logger := w.opts.Logger
	for i, pkg := range b.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.opts.Progress(i, len(b.Packages), pkg)

		start := time.Now()
		err := w.dl.Download(ctx, b.Dir, pkg)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res := Result{Package: pkg, Err: err, Duration: time.Since(start)}
		b.Results = append(b.Results, res)

		if err != nil {
			logger.Warn("download failed", "package", pkg, "err", errors.UserMessage(err))
		} else {
			logger.Debug("downloaded", "package", pkg, "duration", res.Duration.Round(time.Millisecond))
		}
	}
	return nil
}

func (w *Writer) writeScripts(b *Bundle) error {
	bat, err := WindowsScript(w.opts.Installer, w.opts.Manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.WindowsScript, []byte(bat), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "write %s", b.WindowsScript)
	}

	sh, err := UnixScript(w.opts.Installer, w.opts.Manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.UnixScript, []byte(sh), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "write %s", b.UnixScript)
	}
	// WriteFile keeps the mode of an existing file, and the umask applies
	// to new ones.
	if err := os.Chmod(b.UnixScript, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "chmod %s", b.UnixScript)
	}
	return nil
}

func (w *Writer) generated() map[string]bool {
	return map[string]bool{
		w.opts.Manifest:      true,
		w.opts.WindowsScript: true,
		w.opts.UnixScript:    true,
		w.opts.Report:        true,
	}
}

func (b *Bundle) countArchives(skip map[string]bool) error {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileRead, err, "list %s", b.Dir)
	}
	for _, e := range entries {
		if e.IsDir() || skip[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		b.Archives++
		b.Size += info.Size()
	}
	return nil
}

// WriteManifest writes one package name per line with a trailing newline.
func WriteManifest(path string, pkgs []string) error {
	content := strings.Join(pkgs, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "write %s", path)
	}
	return nil
}

// report is the on-disk form of a Bundle.
type report struct {
	ID        string          `json:"id"`
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Manifest  string          `json:"manifest"`
	Complete  bool            `json:"complete"`
	Archives  int             `json:"archives"`
	SizeBytes int64           `json:"size_bytes"`
	Packages  []reportPackage `json:"packages"`
}

type reportPackage struct {
	Name       string `json:"name"`
	Downloaded bool   `json:"downloaded"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func writeReport(path string, b *Bundle) error {
	r := report{
		ID:        b.ID,
		Version:   buildinfo.Current(),
		CreatedAt: b.CreatedAt,
		Manifest:  filepath.Base(b.Manifest),
		Complete:  b.Complete(),
		Archives:  b.Archives,
		SizeBytes: b.Size,
	}
	for _, res := range b.Results {
		p := reportPackage{Name: res.Package, Downloaded: res.OK(), DurationMS: res.Duration.Milliseconds()}
		if res.Err != nil {
			p.Error = errors.UserMessage(res.Err)
		}
		r.Packages = append(r.Packages, p)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWrite, err, "write %s", path)
	}
	return nil
}
