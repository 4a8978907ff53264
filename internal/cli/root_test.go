package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matzehuels/pybundle/internal/config"
	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// execute runs the root command with a private config file holding cfg.
func execute(t *testing.T, cfg string, stdin string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pybundle.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", path}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// sourceTree writes a small project: two third-party imports, one aliased
// import, a stdlib import and an import of a sibling module.
func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app.py":        "import requests\nimport numpy as np\nfrom os import path\nimport helpers\n",
		"pkg/vision.py": "import cv2\nimport numpy\n",
		"helpers.py":    "import sys\n",
	}
	for name, src := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func requireTool(t *testing.T, name string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("installer stand-ins need a POSIX system")
	}
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"bundle", "scan", "aliases", "graph", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s not registered", name)
		}
	}
	for _, flag := range []string{"dest", "verify", "strict", "interactive", "pause", "no-aliases"} {
		if root.Flags().Lookup(flag) == nil {
			t.Errorf("root is missing bundle flag --%s", flag)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config")
	}
}

func TestBoundFlags(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	bundle, _, _ := root.Find([]string{"bundle"})

	bound := boundFlags(bundle.Flags())
	for key, flag := range map[string]string{
		"dest":              "dest",
		"verify.enabled":    "verify",
		"bundle.strict":     "strict",
		"scan.exclude_dirs": "exclude-dir",
	} {
		if f, ok := bound[key]; !ok || f.Name != flag {
			t.Errorf("config key %s not bound to --%s", key, flag)
		}
	}
	if _, ok := bound["serve.addr"]; ok {
		t.Error("bundle has no --addr flag")
	}
}

func TestAnalysisFlagsApply(t *testing.T) {
	cfg := config.Default()
	f := &analysisFlags{noAliases: true, noQuery: true, includeLocal: true}
	f.apply(cfg)

	if cfg.Aliases.Enabled || cfg.Stdlib.QueryEnvironment || cfg.Scan.SkipLocal {
		t.Errorf("switches not applied: %+v", cfg)
	}

	var nilFlags *analysisFlags
	nilFlags.apply(cfg)
}

func TestScanCommandText(t *testing.T) {
	root := sourceTree(t)

	out, err := execute(t, "", "", "scan", root, "--no-query", "--format", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if out != "numpy\nopencv-python\nrequests\n" {
		t.Errorf("output = %q", out)
	}
}

func TestScanCommandJSON(t *testing.T) {
	root := sourceTree(t)

	out, err := execute(t, "", "", "scan", root, "--no-query", "-f", "json", "--include-local")
	if err != nil {
		t.Fatal(err)
	}
	var report pipeline.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	var pkgs []string
	for _, r := range report.Requirements {
		pkgs = append(pkgs, r.Package)
	}
	if got := strings.Join(pkgs, ","); got != "helpers,numpy,opencv-python,requests" {
		t.Errorf("requirements = %s", got)
	}
	if report.Files != 3 {
		t.Errorf("files = %d, want 3", report.Files)
	}
}

func TestScanCommandTableAndYAML(t *testing.T) {
	root := sourceTree(t)

	out, err := execute(t, "", "", "scan", root, "--no-query")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"package", "opencv-python", "cv2", "pkg/vision.py", "3 packages"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "", "scan", root, "--no-query", "-f", "yaml", "--no-aliases")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "package: cv2") {
		t.Errorf("yaml without aliases should keep cv2:\n%s", out)
	}
}

func TestScanCommandBadFormat(t *testing.T) {
	_, err := execute(t, "", "", "scan", t.TempDir(), "--no-query", "-f", "xml")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestScanCommandConfigFile(t *testing.T) {
	root := sourceTree(t)
	cfg := "[stdlib]\nquery_environment = false\nextra = [\"numpy\"]\n"

	out, err := execute(t, cfg, "", "scan", root, "-f", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if out != "opencv-python\nrequests\n" {
		t.Errorf("output = %q", out)
	}
}

func TestAliasesCommand(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "aliases.toml")
	if err := os.WriteFile(overlay, []byte("[aliases]\nacme = \"acme-sdk\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "", "aliases", "--aliases-file", overlay, "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []aliases.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	found := map[string]string{}
	for _, e := range entries {
		found[e.Import] = e.Package
	}
	if found["acme"] != "acme-sdk" || found["cv2"] != "opencv-python" {
		t.Errorf("entries missing overlay or defaults: %v", found)
	}

	out, err = execute(t, "", "", "aliases")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "opencv-python") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestGraphCommand(t *testing.T) {
	root := sourceTree(t)
	dest := filepath.Join(t.TempDir(), "imports.dot")

	if _, err := execute(t, "", "", "graph", root, "--no-query", "-o", dest); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, "digraph imports {") || !strings.Contains(dot, `"opencv-python"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
}

func TestBundleCommand(t *testing.T) {
	requireTool(t, "true")
	root := sourceTree(t)
	dest := filepath.Join(t.TempDir(), "bundle")

	if _, err := execute(t, "", "", "bundle", root, "--no-query", "--installer", "true", "-d", dest); err != nil {
		t.Fatal(err)
	}

	manifest, err := os.ReadFile(filepath.Join(dest, "requirements.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(manifest) != "numpy\nopencv-python\nrequests\n" {
		t.Errorf("manifest = %q", manifest)
	}
	info, err := os.Stat(filepath.Join(dest, "setup.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("setup.sh is not executable")
	}
	for _, name := range []string{"setup.bat", "bundle.json"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestBundleIsDefaultCommand(t *testing.T) {
	requireTool(t, "true")
	root := sourceTree(t)
	dest := filepath.Join(t.TempDir(), "bundle")

	if _, err := execute(t, "", "", root, "--no-query", "--installer", "true", "-d", dest, "--no-report"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dest, "requirements.txt")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(dest, "bundle.json")); !os.IsNotExist(err) {
		t.Error("--no-report still wrote bundle.json")
	}
}

func TestBundleStrict(t *testing.T) {
	requireTool(t, "false")
	root := sourceTree(t)
	dest := filepath.Join(t.TempDir(), "bundle")

	_, err := execute(t, "", "", "bundle", root, "--no-query", "--installer", "false", "-d", dest, "--strict")
	if !errors.Is(err, errors.ErrCodeDownloadFailed) {
		t.Fatalf("err = %v, want DOWNLOAD_FAILED", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "requirements.txt")); err != nil {
		t.Error("strict failure must still write the manifest")
	}

	if _, err := execute(t, "", "", "bundle", root, "--no-query", "--installer", "false", "-d", dest); err != nil {
		t.Errorf("without --strict failures are warnings, got %v", err)
	}
}

func TestBundleEmptyTree(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bundle")

	out, err := execute(t, "", "\n", "bundle", t.TempDir(), "--no-query", "-d", dest, "--pause")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("empty tree must not create the destination")
	}
	if !strings.Contains(out, "Press Enter") {
		t.Errorf("--pause did not prompt: %q", out)
	}
}

func TestBundleInvalidInstaller(t *testing.T) {
	_, err := execute(t, "", "", "bundle", t.TempDir(), "--installer", "pip 'unterminated")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("1b4e28ba-2fa1-11d2-883f-0016d3cca427"); got != "run 1b4e28ba" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("plain"); got != "run plain" {
		t.Errorf("shortID = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "", "", "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "pybundle") {
				t.Errorf("%s script does not mention the command", shell)
			}
		})
	}
	if _, err := execute(t, "", "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell accepted")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{context.Canceled, 130},
		{errors.New(errors.ErrCodeInvalidInput, "unknown format %q", "xml"), 2},
		{errors.New(errors.ErrCodeInvalidConfig, "bad installer"), 2},
		{errors.New(errors.ErrCodeDownloadFailed, "1 package failed"), 1},
		{io.ErrUnexpectedEOF, 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestVerboseFlag(t *testing.T) {
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"-v", "scan", "--format", "txt", sourceTree(t)})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}
