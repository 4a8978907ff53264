package bundle

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"

	"github.com/matzehuels/pybundle/pkg/errors"
)

var (
	plainWordRE = regexp.MustCompile(`^[A-Za-z0-9._+-]+$`)
	batchMetaRE = regexp.MustCompile(`[\s"&|<>^()%!,;=]`)
)

// OfflineInstallCommand returns the command that installs every package in
// manifest from the current directory only.
func OfflineInstallCommand(installer, manifest string) string {
	return fmt.Sprintf("%s install --no-index --find-links=. -r %s", installer, manifest)
}

// WindowsScript renders the batch installer. Lines end in CRLF. The
// installer is split with POSIX shell rules, as for [NewInstaller], and each
// word is re-quoted for cmd.exe.
func WindowsScript(installer, manifest string) (string, error) {
	argv, err := shell.Fields(installer, func(string) string { return "" })
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse installer command %q", installer)
	}
	if len(argv) == 0 {
		argv = []string{DefaultInstaller}
	}
	words := make([]string, len(argv))
	for i, w := range argv {
		words[i] = batchQuote(w)
	}
	lines := []string{
		"@echo off",
		`cd /d "%~dp0"`,
		OfflineInstallCommand(strings.Join(words, " "), batchQuote(manifest)),
		"pause",
	}
	return strings.Join(lines, "\r\n") + "\r\n", nil
}

// batchQuote double-quotes w when cmd.exe would split or interpret it.
// Percent signs and quotes are doubled.
func batchQuote(w string) string {
	if w != "" && !batchMetaRE.MatchString(w) {
		return w
	}
	w = strings.ReplaceAll(w, "%", "%%")
	w = strings.ReplaceAll(w, `"`, `""`)
	return `"` + w + `"`
}

// UnixScript renders the POSIX shell installer and checks that it parses.
func UnixScript(installer, manifest string) (string, error) {
	if !plainWordRE.MatchString(manifest) {
		quoted, err := syntax.Quote(manifest, syntax.LangPOSIX)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidScript, err, "quote manifest name %q", manifest)
		}
		manifest = quoted
	}
	script := strings.Join([]string{
		"#!/bin/sh",
		`cd "$(dirname "$0")" || exit 1`,
		OfflineInstallCommand(installer, manifest),
		"printf 'Press Enter to exit...'",
		"read -r _",
	}, "\n") + "\n"

	if err := ValidateShell(script); err != nil {
		return "", err
	}
	return script, nil
}

// ValidateShell parses script as POSIX shell.
func ValidateShell(script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(script), "setup.sh"); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScript, err, "generated shell script does not parse")
	}
	return nil
}
