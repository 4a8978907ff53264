package pipeline

import "github.com/matzehuels/pybundle/pkg/resolve"

// Report is the serializable summary of an analysis, shared by the scan
// command's json/yaml output and the HTTP API.
type Report struct {
	Root         string                 `json:"root" yaml:"root"`
	Files        int                    `json:"files" yaml:"files"`
	Imports      int                    `json:"imports" yaml:"imports"`
	Filters      []string               `json:"filters" yaml:"filters"`
	Requirements []*resolve.Requirement `json:"requirements" yaml:"requirements"`
	Excluded     []resolve.Exclusion    `json:"excluded" yaml:"excluded"`
}

// Report summarizes a.
func (a *Analysis) Report() *Report {
	r := &Report{
		Root:         a.Scan.Root,
		Files:        len(a.Scan.Files),
		Imports:      len(a.Scan.Imports),
		Filters:      a.Filters,
		Requirements: a.Set().Requirements(),
		Excluded:     a.Resolved.Excluded,
	}
	if r.Filters == nil {
		r.Filters = []string{}
	}
	if r.Excluded == nil {
		r.Excluded = []resolve.Exclusion{}
	}
	return r
}
