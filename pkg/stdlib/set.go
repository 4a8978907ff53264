package stdlib

import (
	"bufio"
	"bytes"
	_ "embed"
	"maps"
	"slices"
	"strings"
)

// Provider reports whether a top-level module name is known to ship with the
// interpreter.
type Provider interface {
	Contains(name string) bool
}

// Set is a fixed collection of module names.
type Set map[string]struct{}

// NewSet creates a Set from names. Blank names are ignored.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains implements Provider.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s) }

// Names returns the names in sorted order.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

//go:embed stdlib.txt
var embeddedList []byte

var embedded = parseList(embeddedList)

// Embedded returns the built-in list of common standard-library modules.
func Embedded() Set {
	return maps.Clone(embedded)
}

// BuiltinUtils returns the helper modules every bundling script imports for
// itself. They stay excluded even when an interpreter query misses them.
func BuiltinUtils() Set {
	return NewSet("sys", "subprocess", "os", "re", "pkgutil")
}

// parseList reads one module name per line.
func parseList(data []byte) Set {
	s := make(Set)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			s[line] = struct{}{}
		}
	}
	return s
}
