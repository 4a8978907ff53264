package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/resolve"
)

// fakeDownloader writes a placeholder archive per package and fails for the
// names in fail.
type fakeDownloader struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeDownloader) Download(ctx context.Context, dest, pkg string) error {
	f.calls = append(f.calls, pkg)
	if f.fail[pkg] {
		return errors.New(errors.ErrCodeInstallerFailed, "download %s: No matching distribution found", pkg)
	}
	return os.WriteFile(filepath.Join(dest, pkg+"-1.0-py3-none-any.whl"), []byte("archive"), 0o644)
}

func testOptions(dest string) Options {
	return Options{Dest: dest, Logger: log.New(io.Discard)}
}

func TestWrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dependencies")
	dl := &fakeDownloader{}
	w, err := NewWriter(dl, testOptions(dest))
	if err != nil {
		t.Fatal(err)
	}

	b, err := w.Write(context.Background(), resolve.NewSet("requests", "opencv-python"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if want := []string{"opencv-python", "requests"}; !slices.Equal(dl.calls, want) {
		t.Errorf("downloads = %v, want %v", dl.calls, want)
	}

	manifest, err := os.ReadFile(filepath.Join(dest, "requirements.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(manifest), "opencv-python\nrequests\n"; got != want {
		t.Errorf("manifest = %q, want %q", got, want)
	}

	if !b.Complete() {
		t.Errorf("bundle should be complete, failed: %v", b.Failed())
	}
	if b.Archives != 2 {
		t.Errorf("Archives = %d, want 2", b.Archives)
	}
	if b.Size != int64(2*len("archive")) {
		t.Errorf("Size = %d, want %d", b.Size, 2*len("archive"))
	}
	if b.ID == "" {
		t.Error("bundle ID should be set")
	}
}

func TestWrite_Scripts(t *testing.T) {
	dest := t.TempDir()
	w, err := NewWriter(&fakeDownloader{}, testOptions(dest))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(context.Background(), resolve.NewSet("requests")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	bat, err := os.ReadFile(filepath.Join(dest, "setup.bat"))
	if err != nil {
		t.Fatal(err)
	}
	wantBat := "@echo off\r\n" +
		"cd /d \"%~dp0\"\r\n" +
		"pip install --no-index --find-links=. -r requirements.txt\r\n" +
		"pause\r\n"
	if string(bat) != wantBat {
		t.Errorf("setup.bat = %q, want %q", bat, wantBat)
	}

	shPath := filepath.Join(dest, "setup.sh")
	sh, err := os.ReadFile(shPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(sh), "#!/bin/sh\n") {
		t.Errorf("setup.sh missing shebang: %q", sh)
	}
	install := strings.Index(string(sh), "pip install --no-index --find-links=. -r requirements.txt\n")
	pause := strings.Index(string(sh), "read -r _")
	if install < 0 || pause < install {
		t.Errorf("setup.sh should install then wait for Enter: %q", sh)
	}

	info, err := os.Stat(shPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("setup.sh mode = %v, want owner-executable", info.Mode().Perm())
	}
}

func TestWrite_PartialBundle(t *testing.T) {
	dest := t.TempDir()
	dl := &fakeDownloader{fail: map[string]bool{"no-such-pkg": true}}
	w, err := NewWriter(dl, testOptions(dest))
	if err != nil {
		t.Fatal(err)
	}

	b, err := w.Write(context.Background(), resolve.NewSet("numpy", "no-such-pkg", "requests"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// A failure does not stop later downloads.
	if len(dl.calls) != 3 {
		t.Errorf("downloads = %v, want all 3 attempted", dl.calls)
	}
	failed := b.Failed()
	if len(failed) != 1 || failed[0].Package != "no-such-pkg" {
		t.Errorf("Failed() = %v, want [no-such-pkg]", failed)
	}
	if b.Complete() {
		t.Error("Complete() = true, want false")
	}

	// The manifest still lists every resolved requirement.
	manifest, _ := os.ReadFile(b.Manifest)
	if got := strings.Count(string(manifest), "\n"); got != 3 {
		t.Errorf("manifest has %d lines, want 3", got)
	}

	data, err := os.ReadFile(b.Report)
	if err != nil {
		t.Fatal(err)
	}
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if r.Complete || r.ID != b.ID || len(r.Packages) != 3 {
		t.Errorf("report = %+v", r)
	}
	if r.Packages[0].Name != "no-such-pkg" || r.Packages[0].Downloaded || r.Packages[0].Error == "" {
		t.Errorf("report entry = %+v, want failed no-such-pkg with error", r.Packages[0])
	}
}

func TestWrite_EmptySet(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dependencies")
	w, err := NewWriter(&fakeDownloader{}, testOptions(dest))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write(context.Background(), resolve.NewSet()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Write(empty) error = %v, want INVALID_INPUT", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination must not be created for an empty set")
	}
}

func TestWrite_ExistingDestination(t *testing.T) {
	dest := t.TempDir()
	w, err := NewWriter(&fakeDownloader{}, testOptions(dest))
	if err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		if _, err := w.Write(context.Background(), resolve.NewSet("requests")); err != nil {
			t.Fatalf("Write #%d failed: %v", i+1, err)
		}
	}
}

func TestWrite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := NewWriter(&fakeDownloader{}, testOptions(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(ctx, resolve.NewSet("requests")); err != context.Canceled {
		t.Errorf("Write() error = %v, want context.Canceled", err)
	}
}

func TestWrite_VersionSuffixAndProgress(t *testing.T) {
	dest := t.TempDir()
	var progress []string
	opts := testOptions(dest)
	opts.VersionSuffix = "1.2.0"
	opts.Installer = "python3 -m pip"
	opts.NoReport = true
	opts.Progress = func(i, total int, pkg string) {
		progress = append(progress, fmt.Sprintf("%d/%d %s", i+1, total, pkg))
	}

	w, err := NewWriter(&fakeDownloader{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := w.Write(context.Background(), resolve.NewSet("b", "a"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	for _, name := range []string{"requirements-1.2.0.txt", "setup-1.2.0.bat", "setup-1.2.0.sh"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "bundle-1.2.0.json")); !os.IsNotExist(err) {
		t.Error("report should not be written with NoReport")
	}
	if b.Report != "" {
		t.Errorf("Report = %q, want empty", b.Report)
	}

	sh, _ := os.ReadFile(b.UnixScript)
	if !strings.Contains(string(sh), "python3 -m pip install --no-index --find-links=. -r requirements-1.2.0.txt\n") {
		t.Errorf("setup.sh does not reference the suffixed manifest: %q", sh)
	}
	if want := []string{"1/2 a", "2/2 b"}; !slices.Equal(progress, want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
}

func TestNewWriter_Validation(t *testing.T) {
	if _, err := NewWriter(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil downloader: error = %v, want INVALID_INPUT", err)
	}
	if _, err := NewWriter(&fakeDownloader{}, Options{Manifest: "../requirements.txt"}); !errors.Is(err, errors.ErrCodeInvalidFilename) {
		t.Errorf("path manifest: error = %v, want INVALID_FILENAME", err)
	}
}

func TestSuffixed(t *testing.T) {
	tests := []struct{ name, suffix, want string }{
		{"requirements.txt", "v2", "requirements-v2.txt"},
		{"setup.sh", "1.0", "setup-1.0.sh"},
		{"Makefile", "x", "Makefile-x"},
	}
	for _, tt := range tests {
		if got := suffixed(tt.name, tt.suffix); got != tt.want {
			t.Errorf("suffixed(%q, %q) = %q, want %q", tt.name, tt.suffix, got, tt.want)
		}
	}
}
