package importgraph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/pybundle/pkg/resolve"
	"github.com/matzehuels/pybundle/pkg/scan"
)

// Kind distinguishes node roles.
type Kind int

const (
	KindFile Kind = iota
	KindPackage
	KindExcluded
)

// Node is a file, a requirement, or an excluded identifier.
type Node struct {
	ID     string
	Kind   Kind
	Reason string // exclusion reason, KindExcluded only
}

// Edge links a file to a package or excluded identifier. Via holds the
// import identifiers when they differ from the target (aliases).
type Edge struct {
	From string
	To   string
	Via  []string
}

// Graph is an import graph with deterministic node and edge order.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Options configures Build.
type Options struct {
	// ShowExcluded adds nodes for filtered identifiers.
	ShowExcluded bool
}

// Build creates the graph for a scan and its resolution.
func Build(sr *scan.Result, rr *resolve.Result, opts Options) *Graph {
	g := &Graph{}
	seen := make(map[string]bool)
	edges := make(map[[2]string]map[string]bool)

	link := func(file, target, ident string) {
		k := [2]string{file, target}
		if edges[k] == nil {
			edges[k] = make(map[string]bool)
		}
		if ident != target {
			edges[k][ident] = true
		}
	}

	for _, f := range sr.Files {
		g.Nodes = append(g.Nodes, Node{ID: f, Kind: KindFile})
		seen[f] = true
	}

	for _, req := range rr.Set.Requirements() {
		g.Nodes = append(g.Nodes, Node{ID: req.Package, Kind: KindPackage})
		seen[req.Package] = true
		for _, src := range req.Sources {
			link(src.File, req.Package, src.Name)
		}
	}

	if opts.ShowExcluded {
		reasons := make(map[string]string, len(rr.Excluded))
		for _, ex := range rr.Excluded {
			if seen[ex.Name] {
				continue
			}
			reasons[ex.Name] = ex.Reason
			g.Nodes = append(g.Nodes, Node{ID: ex.Name, Kind: KindExcluded, Reason: ex.Reason})
			seen[ex.Name] = true
		}
		for _, imp := range sr.Imports {
			if _, ok := reasons[imp.Name]; ok {
				link(imp.File, imp.Name, imp.Name)
			}
		}
	}

	for k, via := range edges {
		e := Edge{From: k[0], To: k[1]}
		for name := range via {
			e.Via = append(e.Via, name)
		}
		slices.Sort(e.Via)
		g.Edges = append(g.Edges, e)
	}
	slices.SortFunc(g.Edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return g
}

// Packages returns the number of package nodes.
func (g *Graph) Packages() int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == KindPackage {
			n++
		}
	}
	return n
}
