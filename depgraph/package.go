package depgraph

// Package represents a JavaPackage: a uniquely-named node in the dependency
// graph. Two Package values are equal iff their names are equal; identity
// is enforced entirely by Graph's name→Package map, never fabricated
// elsewhere.
type Package struct {
	name string

	classes    map[string]*Class
	afferents  map[string]*Package // packages that depend on this one
	efferents  map[string]*Package // packages this one depends on
	volatility int                 // 0 or 1; default 1

	containsCycle bool
}

// defaultPackageName is the sentinel for the unnamed package.
const defaultPackageName = "Default"

func newPackage(name string) *Package {
	if name == "" {
		name = defaultPackageName
	}
	return &Package{
		name:       name,
		classes:    make(map[string]*Class),
		afferents:  make(map[string]*Package),
		efferents:  make(map[string]*Package),
		volatility: 1,
	}
}

// Name returns the package's dotted name.
func (p *Package) Name() string { return p.name }

// Classes returns the classes declared in this package.
func (p *Package) Classes() []*Class {
	out := make([]*Class, 0, len(p.classes))
	for _, c := range p.classes {
		out = append(out, c)
	}
	return out
}

// Afferents returns the packages that depend on this one (Ca contributors).
func (p *Package) Afferents() []*Package {
	out := make([]*Package, 0, len(p.afferents))
	for _, q := range p.afferents {
		out = append(out, q)
	}
	return out
}

// Efferents returns the packages this one depends on (Ce contributors).
func (p *Package) Efferents() []*Package {
	out := make([]*Package, 0, len(p.efferents))
	for _, q := range p.efferents {
		out = append(out, q)
	}
	return out
}

// Volatility returns this package's volatility, 0 or 1 (default 1). A
// volatility of 0 removes the efferent term from this package's own
// instability, which is then 0.
func (p *Package) Volatility() int { return p.volatility }

// SetVolatility sets this package's volatility. Values other than 0 or 1
// are accepted as-is; MetricsEngine multiplies this package's Ce by the
// value when computing its instability.
func (p *Package) SetVolatility(v int) { p.volatility = v }

// ContainsCycle reports whether MetricsEngine found this package on a
// dependency cycle during the most recent analysis.
func (p *Package) ContainsCycle() bool { return p.containsCycle }

// SetContainsCycle is called by metrics.Engine after cycle detection.
func (p *Package) SetContainsCycle(v bool) { p.containsCycle = v }

// ConcreteClassCount returns |{c : !c.IsAbstract}|.
func (p *Package) ConcreteClassCount() int {
	n := 0
	for _, c := range p.classes {
		if !c.IsAbstract() {
			n++
		}
	}
	return n
}

// AbstractClassCount returns |{c : c.IsAbstract}|.
func (p *Package) AbstractClassCount() int {
	n := 0
	for _, c := range p.classes {
		if c.IsAbstract() {
			n++
		}
	}
	return n
}

// AfferentNames returns the names of packages that depend on this one.
func (p *Package) AfferentNames() []string {
	out := make([]string, 0, len(p.afferents))
	for name := range p.afferents {
		out = append(out, name)
	}
	return out
}

// EfferentNames returns the names of packages this one depends on.
func (p *Package) EfferentNames() []string {
	out := make([]string, 0, len(p.efferents))
	for name := range p.efferents {
		out = append(out, name)
	}
	return out
}

// HasAfferent reports whether q depends on p (q ∈ p.afferents).
func (p *Package) HasAfferent(q *Package) bool {
	_, ok := p.afferents[q.name]
	return ok
}

// HasEfferent reports whether p depends on q (q ∈ p.efferents).
func (p *Package) HasEfferent(q *Package) bool {
	_, ok := p.efferents[q.name]
	return ok
}
