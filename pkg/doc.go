// Package pkg provides the core libraries for pybundle offline dependency
// bundles.
//
// # Overview
//
// pybundle reads the import statements of a Python source tree, turns the
// imported module names into installable package names and downloads those
// packages next to a manifest and two install scripts. The resulting folder
// can be copied to a machine without network access and installed from
// there. The pkg directory is organized into three main areas:
//
//  1. Domain logic ([scan], [stdlib], [aliases], [resolve], [bundle])
//  2. Orchestration ([pipeline], [importgraph])
//  3. Infrastructure ([cache], [integrations], [httputil], [observability], [errors])
//
// # Architecture
//
// The data flow of a bundle run:
//
//	Source tree (*.py)
//	         ↓
//	    [scan] package (top-level import identifiers + provenance)
//	         ↓
//	    [stdlib] package (standard library, builtin and private names)
//	         ↓
//	    [resolve] package (alias substitution + de-duplication)
//	         ↓
//	    [bundle] package (download, manifest, setup.bat, setup.sh, report)
//
// # Quick Start
//
// Scan a tree and write a bundle:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pybundle/pkg/aliases"
//	    "github.com/matzehuels/pybundle/pkg/bundle"
//	    "github.com/matzehuels/pybundle/pkg/resolve"
//	    "github.com/matzehuels/pybundle/pkg/scan"
//	    "github.com/matzehuels/pybundle/pkg/stdlib"
//	)
//
//	// 1. Collect imports
//	sr, _ := scan.New(scan.Options{}).Scan(ctx, "./src")
//
//	// 2. Drop standard library names and map the rest to packages
//	filter := stdlib.NewFilter().With("stdlib", stdlib.Embedded())
//	rr := resolve.New(resolve.Options{Aliases: aliases.Default(), Filter: filter}).Resolve(sr.Imports)
//
//	// 3. Download and write the bundle
//	inst, _ := bundle.NewInstaller("pip")
//	w, _ := bundle.NewWriter(inst, bundle.Options{Dest: "dependencies"})
//	b, _ := w.Write(ctx, rr.Set)
//
// [pipeline] wraps these steps, adds verification against the package index
// and fires the [observability] hooks. The CLI, the HTTP API and tests all
// go through it.
//
// # Main Packages
//
// [scan] - Line-based import extraction. Only `import X` and
// `from X import` are recognized; the first identifier is kept.
//
// [stdlib] - Providers of names that must never be bundled: the running
// interpreter's module list, an embedded fallback list and a few builtin
// utilities.
//
// [aliases] - The immutable import name to package name table
// (cv2 → opencv-python) with TOML overlays.
//
// [resolve] - Filtering and alias substitution into a sorted requirement set.
//
// [bundle] - Installer subprocess, manifest, install scripts and report.
//
// [importgraph] - File to package import graph as DOT or SVG.
//
// ## Infrastructure
//
// [cache] - Response cache backends: file (CLI default), Redis, MongoDB and
// a null cache.
//
// [integrations] - Cached, retrying HTTP client; [integrations/pypi] checks
// requirement names against the PyPI JSON API.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/scan/...               # Specific package
//
// [scan]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/scan
// [stdlib]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/stdlib
// [aliases]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/aliases
// [resolve]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/resolve
// [bundle]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/bundle
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/pipeline
// [importgraph]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/importgraph
// [cache]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/integrations
// [integrations/pypi]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/integrations/pypi
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/errors
package pkg
