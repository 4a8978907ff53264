package bundle

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/matzehuels/pybundle/pkg/errors"
)

// DefaultInstaller is the installer command used when none is configured.
const DefaultInstaller = "pip"

// Downloader fetches a single package into a directory.
type Downloader interface {
	Download(ctx context.Context, dest, pkg string) error
}

// Installer runs a pip-compatible command line as a subprocess.
type Installer struct {
	command string
	argv    []string

	// Stdout and Stderr receive the installer's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// NewInstaller parses command with POSIX shell word rules, so
// "python3 -m pip" and "'/opt/my python/bin/pip'" both work.
func NewInstaller(command string) (*Installer, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultInstaller
	}
	argv, err := shell.Fields(command, func(string) string { return "" })
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse installer command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "installer command %q is empty", command)
	}
	return &Installer{command: command, argv: argv}, nil
}

// Command returns the installer command line as configured.
func (i *Installer) Command() string { return i.command }

// Args returns the argument vector used to download pkg into dest.
func (i *Installer) Args(dest, pkg string) []string {
	args := append([]string{}, i.argv[1:]...)
	return append(args, "download", "-d", dest, pkg)
}

// Download implements Downloader. A non-zero exit status is returned as an
// INSTALLER_FAILED error carrying the last line the installer wrote to
// stderr.
func (i *Installer) Download(ctx context.Context, dest, pkg string) error {
	if err := errors.ValidatePackageName(pkg); err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, i.argv[0], i.Args(dest, pkg)...)
	cmd.Stdout = orDiscard(i.Stdout)
	cmd.Stderr = io.MultiWriter(orDiscard(i.Stderr), &stderr)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if line := lastLine(stderr.String()); line != "" {
			return errors.Wrap(errors.ErrCodeInstallerFailed, err, "download %s: %s", pkg, line)
		}
		return errors.Wrap(errors.ErrCodeInstallerFailed, err, "download %s", pkg)
	}
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
