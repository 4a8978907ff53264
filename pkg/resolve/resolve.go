// Package resolve turns scanned import identifiers into the set of package
// names that must be installed.
//
// Resolution is a filter-then-substitute pass: identifiers excluded by the
// standard-library [stdlib.Filter] are dropped (and recorded with the reason),
// survivors are looked up in the alias [aliases.Table], and the results are
// collected into a [RequirementSet]. Duplicates collapse; iteration order is
// always sorted.
package resolve

import (
	"maps"
	"slices"

	"github.com/matzehuels/pybundle/pkg/aliases"
	"github.com/matzehuels/pybundle/pkg/scan"
	"github.com/matzehuels/pybundle/pkg/stdlib"
)

// ReasonLocal is the exclusion reason for identifiers that name modules
// inside the scanned tree.
const ReasonLocal = "local"

// Requirement is one installable package and the imports that produced it.
type Requirement struct {
	Package string        `json:"package" yaml:"package"`
	Imports []string      `json:"imports" yaml:"imports"` // distinct identifiers, sorted
	Sources []scan.Import `json:"sources" yaml:"sources"` // every import line, in scan order
}

// Aliased reports whether the package name differs from every identifier
// that produced it.
func (r *Requirement) Aliased() bool {
	return !slices.Contains(r.Imports, r.Package)
}

// Exclusion records an identifier that was filtered out.
type Exclusion struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// RequirementSet is a set of package names, unique by value.
// The zero value is an empty set ready for use.
type RequirementSet struct {
	reqs map[string]*Requirement
}

// NewSet creates a set holding the given package names.
func NewSet(pkgs ...string) *RequirementSet {
	s := &RequirementSet{}
	for _, p := range pkgs {
		s.Add(p)
	}
	return s
}

// Add inserts pkg. Adding an existing package is a no-op.
func (s *RequirementSet) Add(pkg string) *Requirement {
	if s.reqs == nil {
		s.reqs = make(map[string]*Requirement)
	}
	r, ok := s.reqs[pkg]
	if !ok {
		r = &Requirement{Package: pkg}
		s.reqs[pkg] = r
	}
	return r
}

// Contains reports whether pkg is in the set.
func (s *RequirementSet) Contains(pkg string) bool {
	_, ok := s.reqs[pkg]
	return ok
}

// Remove deletes pkg from the set.
func (s *RequirementSet) Remove(pkg string) {
	delete(s.reqs, pkg)
}

// Len returns the number of packages.
func (s *RequirementSet) Len() int { return len(s.reqs) }

// Empty reports whether the set has no packages.
func (s *RequirementSet) Empty() bool { return len(s.reqs) == 0 }

// Sorted returns the package names in lexicographic order.
func (s *RequirementSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s.reqs))
}

// Requirements returns the requirements sorted by package name.
func (s *RequirementSet) Requirements() []*Requirement {
	out := make([]*Requirement, 0, len(s.reqs))
	for _, pkg := range s.Sorted() {
		out = append(out, s.reqs[pkg])
	}
	return out
}

// Get returns the requirement for pkg.
func (s *RequirementSet) Get(pkg string) (*Requirement, bool) {
	r, ok := s.reqs[pkg]
	return r, ok
}

// Retain returns a new set with only the packages in keep.
func (s *RequirementSet) Retain(keep []string) *RequirementSet {
	out := &RequirementSet{reqs: make(map[string]*Requirement, len(keep))}
	for _, pkg := range keep {
		if r, ok := s.reqs[pkg]; ok {
			out.reqs[pkg] = r
		}
	}
	return out
}

// Options configures a Resolver.
type Options struct {
	// Aliases substitutes import identifiers with package names. A zero
	// table disables substitution.
	Aliases aliases.Table

	// Filter drops standard-library and private identifiers. Nil applies
	// only the underscore rule.
	Filter *stdlib.Filter

	// LocalModules are names defined inside the scanned tree; they are
	// excluded with [ReasonLocal]. Nil disables the check.
	LocalModules []string
}

// Resolver maps identifiers to package names.
type Resolver struct {
	aliases aliases.Table
	filter  *stdlib.Filter
	local   stdlib.Set
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	f := opts.Filter
	if f == nil {
		f = stdlib.NewFilter()
	}
	return &Resolver{
		aliases: opts.Aliases,
		filter:  f,
		local:   stdlib.NewSet(opts.LocalModules...),
	}
}

// Result is the output of a resolution pass.
type Result struct {
	Set      *RequirementSet
	Excluded []Exclusion // distinct excluded identifiers, sorted by name
}

// Resolve filters and substitutes imports. Identifiers are compared and
// substituted by exact string; no case or punctuation normalization happens.
// Exclusion is decided on the raw identifier before substitution, so an
// excluded name never reaches the set through the alias table.
func (r *Resolver) Resolve(imports []scan.Import) *Result {
	set := &RequirementSet{}
	excluded := make(map[string]string)

	for _, imp := range imports {
		if reason, ok := r.exclude(imp.Name); ok {
			excluded[imp.Name] = reason
			continue
		}
		req := set.Add(r.aliases.Resolve(imp.Name))
		if !slices.Contains(req.Imports, imp.Name) {
			req.Imports = append(req.Imports, imp.Name)
			slices.Sort(req.Imports)
		}
		req.Sources = append(req.Sources, imp)
	}

	res := &Result{Set: set}
	for _, name := range slices.Sorted(maps.Keys(excluded)) {
		res.Excluded = append(res.Excluded, Exclusion{Name: name, Reason: excluded[name]})
	}
	return res
}

// ResolveNames is Resolve for bare identifiers without provenance.
func (r *Resolver) ResolveNames(names ...string) *RequirementSet {
	imports := make([]scan.Import, len(names))
	for i, n := range names {
		imports[i] = scan.Import{Name: n}
	}
	return r.Resolve(imports).Set
}

func (r *Resolver) exclude(name string) (string, bool) {
	if reason, ok := r.filter.Reason(name); ok {
		return reason, true
	}
	if r.local.Contains(name) {
		return ReasonLocal, true
	}
	return "", false
}
