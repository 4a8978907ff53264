package scan

import (
	"bytes"
	"context"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/pybundle/pkg/errors"
)

// DefaultExtension is the source file suffix scanned when none is configured.
const DefaultExtension = ".py"

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{
	".git", ".hg", ".svn", ".tox", ".venv", "venv", "env",
	"__pycache__", "node_modules", "site-packages",
}

var importRE = regexp.MustCompile(`^\s*import\s+([\p{L}\p{N}_]+)|^\s*from\s+([\p{L}\p{N}_]+)\s+import`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Import is one matched import line.
type Import struct {
	Name string `json:"name" yaml:"name"` // top-level identifier
	File string `json:"file" yaml:"file"` // path relative to the scan root
	Line int    `json:"line" yaml:"line"` // 1-based line number
}

// SourceFile is a file read during a scan. It is not retained after parsing.
type SourceFile struct {
	Path    string
	Content []byte
}

// Result holds everything found under a root.
type Result struct {
	Root         string   // root as given to Scan
	Files        []string // scanned files, relative to Root, in walk order
	Imports      []Import // every matched import line, in file order
	LocalModules []string // sorted names that resolve to modules inside the tree
}

// Identifiers returns the distinct imported identifiers in sorted order.
func (r *Result) Identifiers() []string {
	seen := make(map[string]struct{}, len(r.Imports))
	for _, imp := range r.Imports {
		seen[imp.Name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Options configures a Scanner.
type Options struct {
	Extension    string   // file suffix to scan (default ".py")
	ExcludeDirs  []string // directory base names to skip (default DefaultExcludeDirs)
	ExcludePaths []string // additional directories to skip, by path
}

// Scanner walks source trees. It holds no per-scan state and may be reused.
type Scanner struct {
	ext       string
	skipNames map[string]bool
	skipPaths map[string]bool
}

// New creates a Scanner from opts, applying defaults for zero values.
func New(opts Options) *Scanner {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	dirs := opts.ExcludeDirs
	if dirs == nil {
		dirs = DefaultExcludeDirs
	}
	s := &Scanner{
		ext:       ext,
		skipNames: make(map[string]bool, len(dirs)),
		skipPaths: make(map[string]bool, len(opts.ExcludePaths)),
	}
	for _, d := range dirs {
		s.skipNames[d] = true
	}
	for _, p := range opts.ExcludePaths {
		if abs, err := filepath.Abs(p); err == nil {
			s.skipPaths[abs] = true
		}
	}
	return s
}

// Extension returns the file suffix this scanner matches.
func (s *Scanner) Extension() string { return s.ext }

// Scan walks root and parses every matching file. The first unreadable or
// undecodable file stops the walk and its error is returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve root %s", root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "stat root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root %s is not a directory", root)
	}

	res := &Result{Root: root}
	local := make(map[string]struct{})

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrap(errors.ErrCodeFileRead, walkErr, "walk %s", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && (s.skipNames[d.Name()] || s.skipPaths[path]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), s.ext) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFileRead, err, "read %s", rel)
		}
		imports, err := ParseFile(SourceFile{Path: rel, Content: content})
		if err != nil {
			return err
		}

		res.Files = append(res.Files, rel)
		res.Imports = append(res.Imports, imports...)

		if name, ok := s.localModule(rel); ok {
			local[name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if name := ProjectName(absRoot); name != "" {
		local[name] = struct{}{}
	}
	res.LocalModules = slices.Sorted(maps.Keys(local))
	return res, nil
}

// localModule returns the importable top-level name a file defines: a module
// at the root, or a package whose __init__ sits one level down. A leading
// src/ directory is looked through. Deeper files only define submodules.
func (s *Scanner) localModule(rel string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 && parts[0] == "src" {
		parts = parts[1:]
	}
	switch len(parts) {
	case 1:
		stem := strings.TrimSuffix(parts[0], s.ext)
		return stem, stem != "__init__"
	case 2:
		return parts[0], parts[1] == "__init__"+s.ext
	}
	return "", false
}

// ParseFile extracts imports from f. Content must be valid UTF-8; a leading
// byte order mark is ignored. Lines may end in \n, \r\n or a bare \r.
func ParseFile(f SourceFile) ([]Import, error) {
	content := bytes.TrimPrefix(f.Content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "%s is not valid UTF-8", f.Path)
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))

	var imports []Import
	for i, line := range bytes.Split(content, []byte("\n")) {
		if name, ok := ParseLine(string(line)); ok {
			imports = append(imports, Import{Name: name, File: f.Path, Line: i + 1})
		}
	}
	return imports, nil
}

// ParseLine returns the top-level identifier imported by line, if the line
// has one of the two recognized import shapes.
func ParseLine(line string) (string, bool) {
	m := importRE.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], m[2] != ""
}
