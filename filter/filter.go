// Package filter implements PackageFilter: an ordered list of package-name
// prefixes used to reject uninteresting imports (standard library, etc.)
// before they reach the dependency graph.
package filter

import "strings"

// Filter holds an ordered sequence of prefix strings. A trailing "*" on a
// configured entry is stripped, but matching is always prefix-based either
// way — "com.foo" and "com.foo*" behave identically. This mirrors the
// original jdepend PackageFilter and is preserved deliberately (spec.md §9).
type Filter struct {
	prefixes []string
}

// New constructs a Filter containing the given package name prefixes.
// Entries ending in "*" have it stripped; empty entries are discarded.
func New(prefixes ...string) *Filter {
	f := &Filter{}
	f.AddAll(prefixes)
	return f
}

// AddAll adds each of packageNames via Add.
func (f *Filter) AddAll(packageNames []string) {
	for _, name := range packageNames {
		f.Add(name)
	}
}

// Add adds a single prefix, stripping a trailing "*" and discarding the
// entry if it is empty afterward.
func (f *Filter) Add(packageName string) {
	name := packageName
	if strings.HasSuffix(name, "*") {
		name = name[:len(name)-1]
	}
	if len(name) > 0 {
		f.prefixes = append(f.prefixes, name)
	}
}

// Prefixes returns the configured filter prefixes, in insertion order.
func (f *Filter) Prefixes() []string {
	out := make([]string, len(f.prefixes))
	copy(out, f.prefixes)
	return out
}

// Accept reports whether name passes the filter: true unless some
// configured prefix is a prefix of name.
func (f *Filter) Accept(name string) bool {
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}
