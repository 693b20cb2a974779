package depgraph_test

import (
	"testing"

	"github.com/classdep/classdep/depgraph"
	"github.com/classdep/classdep/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addClass(t *testing.T, g *depgraph.Graph, name, pkg string, abstract bool, imports ...string) *depgraph.Class {
	t.Helper()
	c, err := g.AddClass(model.ParsedClass{
		Name:        name,
		PackageName: pkg,
		IsAbstract:  abstract,
		SourceFile:  name + ".java",
		Imports:     imports,
	})
	require.NoError(t, err)
	return c
}

func TestGetOrCreatePackageIsIdempotent(t *testing.T) {
	g := depgraph.New()
	a := g.GetOrCreatePackage("a")
	b := g.GetOrCreatePackage("a")
	assert.Same(t, a, b)
}

func TestEmptyPackageNameIsDefault(t *testing.T) {
	g := depgraph.New()
	p := g.GetOrCreatePackage("")
	assert.Equal(t, "Default", p.Name())
}

func TestTwoIsolatedPackagesNoEdges(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false)
	addClass(t, g, "b.Y", "b", false)

	a, _ := g.Package("a")
	b, _ := g.Package("b")
	assert.Empty(t, a.Afferents())
	assert.Empty(t, a.Efferents())
	assert.Empty(t, b.Afferents())
	assert.Empty(t, b.Efferents())
}

func TestLinearDependency(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false, "b")
	addClass(t, g, "b.Y", "b", false)

	a, _ := g.Package("a")
	b, _ := g.Package("b")
	assert.Len(t, a.Efferents(), 1)
	assert.Empty(t, a.Afferents())
	assert.Len(t, b.Afferents(), 1)
	assert.Empty(t, b.Efferents())
	assert.True(t, a.HasEfferent(b))
	assert.True(t, b.HasAfferent(a))
}

func TestEdgeSymmetryInvariant(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false, "b", "c")
	addClass(t, g, "b.Y", "b", false, "c")
	addClass(t, g, "c.Z", "c", false)

	for _, p := range g.Packages(depgraph.SortByName) {
		for _, q := range p.Efferents() {
			assert.True(t, q.HasAfferent(p), "%s -> %s missing reverse edge", p.Name(), q.Name())
		}
		for _, q := range p.Afferents() {
			assert.True(t, q.HasEfferent(p), "%s <- %s missing reverse edge", p.Name(), q.Name())
		}
	}
}

func TestNoSelfEdges(t *testing.T) {
	g := depgraph.New()
	// A class referencing its own package should never be recorded as an
	// import (Class.addImport guards this), so no self edge can appear.
	addClass(t, g, "a.X", "a", false, "a")

	a, _ := g.Package("a")
	assert.False(t, a.HasEfferent(a))
	assert.Empty(t, a.Efferents())
}

func TestClassPackageConsistency(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false)

	a, _ := g.Package("a")
	names := make([]string, 0)
	for _, c := range a.Classes() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "a.X")
}

func TestAbstractConcreteCounts(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "p.Iface", "p", true)
	addClass(t, g, "p.A", "p", false)
	addClass(t, g, "p.B", "p", false)
	addClass(t, g, "p.C", "p", false)

	p, _ := g.Package("p")
	assert.Equal(t, 1, p.AbstractClassCount())
	assert.Equal(t, 3, p.ConcreteClassCount())
}

func TestIdempotentReAdd(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false, "b")
	addClass(t, g, "a.X", "a", false, "b") // re-parse of the same class

	a, _ := g.Package("a")
	b, _ := g.Package("b")
	assert.Len(t, a.Efferents(), 1)
	assert.Len(t, b.Afferents(), 1)
	assert.Len(t, a.Classes(), 1)
}

func TestThreeNodeCycleDanglingDependentCoupling(t *testing.T) {
	// a -> b -> c -> a, plus external -> a
	g := depgraph.New()
	addClass(t, g, "a.X", "a", false, "b")
	addClass(t, g, "b.Y", "b", false, "c")
	addClass(t, g, "c.Z", "c", false, "a")
	addClass(t, g, "external.W", "external", false, "a")

	a, _ := g.Package("a")
	assert.Len(t, a.Afferents(), 2) // c and external
	assert.Len(t, a.Efferents(), 1) // b
}

func TestMergeComponentsDropsSelfEdges(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "com.acme.service.Foo", "com.acme.service", false, "com.acme.model")
	addClass(t, g, "com.acme.model.Bar", "com.acme.model", false, "com.acme.service")

	totalBefore := 0
	for _, p := range g.Packages(depgraph.SortByName) {
		totalBefore += len(p.Efferents())
	}

	g.MergeComponents([]string{"com.acme"})

	merged, ok := g.Package("com.acme")
	require.True(t, ok)
	assert.Empty(t, merged.Efferents(), "self-edge from merge must be dropped")
	assert.Len(t, merged.Classes(), 2)

	totalAfter := 0
	for _, p := range g.Packages(depgraph.SortByName) {
		totalAfter += len(p.Efferents())
	}
	assert.LessOrEqual(t, totalAfter, totalBefore, "component merge must never increase edge count")
}

func TestMergeComponentsRewritesClassPackageName(t *testing.T) {
	g := depgraph.New()
	addClass(t, g, "com.acme.service.Foo", "com.acme.service", false)
	g.MergeComponents([]string{"com.acme"})

	merged, ok := g.Package("com.acme")
	require.True(t, ok)
	require.Len(t, merged.Classes(), 1)
	assert.Equal(t, "com.acme", merged.Classes()[0].PackageName())
}

func TestPackagesSortedByName(t *testing.T) {
	g := depgraph.New()
	g.GetOrCreatePackage("b")
	g.GetOrCreatePackage("a")
	g.GetOrCreatePackage("c")

	names := make([]string, 0)
	for _, p := range g.Packages(depgraph.SortByName) {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
