package stdlib

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"mvdan.cc/sh/v3/shell"

	"github.com/matzehuels/pybundle/pkg/errors"
)

// DefaultPython is the interpreter queried when none is configured.
const DefaultPython = "python3"

const queryTimeout = 15 * time.Second

// queryScript prints every standard-library top-level module name the
// interpreter knows about. sys.stdlib_module_names exists from 3.10; older
// interpreters fall back to listing the stdlib directory.
const queryScript = `import sys, pkgutil, sysconfig
names = set(getattr(sys, "stdlib_module_names", ()))
names.update(sys.builtin_module_names)
if not hasattr(sys, "stdlib_module_names"):
    for path in {sysconfig.get_paths()["stdlib"], sysconfig.get_paths()["platstdlib"]}:
        names.update(m.name for m in pkgutil.iter_modules([path]))
print("\n".join(sorted(names)))
`

// Query runs python and returns the standard-library module names it
// reports. python is a command line split with shell word rules, so
// launchers such as "py -3" work.
func Query(ctx context.Context, python string) (Set, error) {
	if python == "" {
		python = DefaultPython
	}
	argv, err := shell.Fields(python, func(string) string { return "" })
	if err != nil || len(argv) == 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "interpreter %q", python)
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], "-c", queryScript)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, errors.Wrap(errors.ErrCodeInterpreterFailed, err, "query %s: %s", python, msg)
		}
		return nil, errors.Wrap(errors.ErrCodeInterpreterFailed, err, "query %s", python)
	}

	s := parseList(stdout.Bytes())
	if s.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInterpreterFailed, "query %s: no modules reported", python)
	}
	return s, nil
}

// Discover queries python and falls back to [Embedded] when the interpreter
// cannot be run. The returned error, if any, describes why the fallback was
// used; the provider is always usable.
func Discover(ctx context.Context, python string) (Set, error) {
	s, err := Query(ctx, python)
	if err != nil {
		return Embedded(), err
	}
	return s, nil
}
