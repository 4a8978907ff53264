// Package scan extracts top-level import identifiers from Python source trees.
//
// Scanning is a single line-oriented pass. Each line is matched against two
// shapes:
//
//	import <identifier> ...
//	from <identifier> import ...
//
// Only the first identifier after the keyword is captured, so
// "import numpy as np" yields "numpy" and "import os, sys" yields "os".
// Dotted from-imports ("from os.path import join") and relative imports
// ("from . import x") do not match. Multi-line statements, imports built at
// run time, and conditional imports are not understood beyond the line they
// appear on.
//
// A file that is not valid UTF-8 aborts the scan with an
// INVALID_ENCODING error; there is no per-file recovery.
//
// Besides imports, a scan records which names refer to modules that live in
// the tree itself (file stems, package directories, and the project name from
// pyproject.toml) so callers can keep local imports out of a requirement set.
package scan
