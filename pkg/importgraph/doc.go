// Package importgraph renders which source files pull in which packages.
//
// [Build] turns a scan and its resolution into a bipartite graph: one node
// per scanned file, one per requirement, and an edge for every file that
// imports the requirement. Excluded identifiers (standard library, private,
// local) can be included as dashed grey nodes.
//
// [ToDOT] emits Graphviz DOT; [RenderSVG] lays it out with the embedded
// Graphviz from github.com/goccy/go-graphviz, so no system install is
// needed.
package importgraph
