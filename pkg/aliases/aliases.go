package aliases

import (
	"maps"
	"slices"
)

// Entry is a single alias substitution.
type Entry struct {
	Import  string `json:"import" yaml:"import"`
	Package string `json:"package" yaml:"package"`
}

// Table is an immutable mapping from import identifier to package name.
// The zero value is an empty table and is ready to use.
type Table struct {
	m map[string]string
}

// New creates a table from m. The map is copied; later changes to m do not
// affect the table.
func New(m map[string]string) Table {
	return Table{m: maps.Clone(m)}
}

// Lookup returns the package name mapped to name, if any.
func (t Table) Lookup(name string) (string, bool) {
	pkg, ok := t.m[name]
	return pkg, ok
}

// Resolve returns the mapped package name for name, or name unchanged when
// the table has no entry for it.
func (t Table) Resolve(name string) string {
	if pkg, ok := t.m[name]; ok {
		return pkg
	}
	return name
}

// Len returns the number of entries.
func (t Table) Len() int { return len(t.m) }

// Entries returns all substitutions sorted by import identifier.
func (t Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.m))
	for _, k := range slices.Sorted(maps.Keys(t.m)) {
		entries = append(entries, Entry{Import: k, Package: t.m[k]})
	}
	return entries
}

// Merge returns a new table holding the entries of t overridden by those of
// other.
func (t Table) Merge(other Table) Table {
	m := make(map[string]string, len(t.m)+len(other.m))
	maps.Copy(m, t.m)
	maps.Copy(m, other.m)
	return Table{m: m}
}
