package stdlib

import "strings"

// Reason labels used by [Filter.Reason] for the always-on rule.
const ReasonPrivate = "private"

type rule struct {
	label string
	p     Provider
}

// Filter excludes identifiers that are private (leading underscore) or known
// to any of its providers. Providers are consulted in the order they were
// added.
type Filter struct {
	rules []rule
}

// NewFilter creates a filter that only applies the underscore rule.
func NewFilter() *Filter {
	return &Filter{}
}

// With adds a provider under label and returns f. A nil provider is ignored.
func (f *Filter) With(label string, p Provider) *Filter {
	if p != nil {
		f.rules = append(f.rules, rule{label: label, p: p})
	}
	return f
}

// Excluded reports whether name must not appear in a requirement set.
func (f *Filter) Excluded(name string) bool {
	_, ok := f.Reason(name)
	return ok
}

// Reason returns the label of the first rule that excludes name.
func (f *Filter) Reason(name string) (string, bool) {
	if strings.HasPrefix(name, "_") {
		return ReasonPrivate, true
	}
	for _, r := range f.rules {
		if r.p.Contains(name) {
			return r.label, true
		}
	}
	return "", false
}

// Labels returns the labels of the configured providers.
func (f *Filter) Labels() []string {
	labels := make([]string, len(f.rules))
	for i, r := range f.rules {
		labels[i] = r.label
	}
	return labels
}
