// Package constraint lets a caller declare an expected package-dependency
// graph and test whether an analyzed graph matches it exactly, per
// spec.md §4.G, grounded on
// original_source/src/jdepend/framework/DependencyConstraint.java.
package constraint

// expectedPackage is one node the caller has declared, with its own
// afferent/efferent sets built independently of any depgraph.Graph.
type expectedPackage struct {
	name      string
	efferents map[string]*expectedPackage
	afferents map[string]*expectedPackage
}

// Constraint holds a user-built expected package set and their declared
// dependency edges.
type Constraint struct {
	packages map[string]*expectedPackage
}

// New returns an empty Constraint.
func New() *Constraint {
	return &Constraint{packages: make(map[string]*expectedPackage)}
}

// AddPackage returns the expected package for name, creating it on first
// reference.
func (c *Constraint) AddPackage(name string) *ExpectedPackage {
	p, ok := c.packages[name]
	if !ok {
		p = &expectedPackage{
			name:      name,
			efferents: make(map[string]*expectedPackage),
			afferents: make(map[string]*expectedPackage),
		}
		c.packages[name] = p
	}
	return &ExpectedPackage{c: c, p: p}
}

// ExpectedPackage is a handle for declaring edges on one package added to
// a Constraint.
type ExpectedPackage struct {
	c *Constraint
	p *expectedPackage
}

// Name returns the package's name.
func (e *ExpectedPackage) Name() string { return e.p.name }

// DependsUpon declares that e depends upon other: e.efferents gains other
// and other.afferents gains e.
func (e *ExpectedPackage) DependsUpon(other *ExpectedPackage) {
	e.p.efferents[other.p.name] = other.p
	other.p.afferents[e.p.name] = e.p
}

// ActualPackage is the minimal view of an analyzed package Match needs:
// its name and the names of its afferent/efferent neighbors. depgraph.Package
// satisfies this directly.
type ActualPackage interface {
	Name() string
	AfferentNames() []string
	EfferentNames() []string
}

// Match reports whether actual matches this constraint exactly: same
// package count, and for every expected package an actual package of the
// same name exists whose afferent and efferent sets are equal to the
// expected one's, as multisets of names.
func (c *Constraint) Match(actual []ActualPackage) bool {
	if len(actual) != len(c.packages) {
		return false
	}

	byName := make(map[string]ActualPackage, len(actual))
	for _, a := range actual {
		byName[a.Name()] = a
	}

	for name, expected := range c.packages {
		a, ok := byName[name]
		if !ok {
			return false
		}
		if !sameNameSet(a.AfferentNames(), names(expected.afferents)) {
			return false
		}
		if !sameNameSet(a.EfferentNames(), names(expected.efferents)) {
			return false
		}
	}
	return true
}

func names(m map[string]*expectedPackage) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}

func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, n := range a {
		set[n] = true
	}
	for _, n := range b {
		if !set[n] {
			return false
		}
	}
	return true
}
