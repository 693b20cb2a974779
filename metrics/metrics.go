// Package metrics computes per-package coupling/abstractness/instability
// figures and detects dependency cycles over a depgraph.Graph, grounded on
// the teacher's analyzer/coupling.go (CalculateCoupling,
// CalculateDependencyDepth's DFS-with-in-progress-stack shape) and
// spec.md §4.F's formulas.
package metrics

import (
	"sort"

	"github.com/classdep/classdep/depgraph"
)

// PackageMetrics holds the computed figures for one package.
type PackageMetrics struct {
	Package               *depgraph.Package
	AfferentCoupling      int
	EfferentCoupling      int
	Abstractness          float64
	Instability           float64
	DistanceFromMainSeq   float64
	ContainsCycle         bool
}

// Compute returns metrics for every package currently in g, ordered by
// package name. It also runs cycle detection and updates each
// depgraph.Package's ContainsCycle flag as a side effect, per spec.md
// §4.F: MetricsEngine both computes formulas and marks cycle membership.
func Compute(g *depgraph.Graph) []PackageMetrics {
	packages := g.Packages(depgraph.SortByName)
	detectCycles(packages)

	out := make([]PackageMetrics, 0, len(packages))
	for _, p := range packages {
		out = append(out, computeOne(p))
	}
	return out
}

func computeOne(p *depgraph.Package) PackageMetrics {
	ca := len(p.Afferents())
	ce := len(p.Efferents())

	var abstractness float64
	if total := len(p.Classes()); total > 0 {
		abstractness = float64(p.AbstractClassCount()) / float64(total)
	}

	v := float64(p.Volatility())
	var instability float64
	if denom := float64(ce)*v + float64(ca); denom > 0 {
		instability = (float64(ce) * v) / denom
	}

	distance := abstractness + instability - 1
	if distance < 0 {
		distance = -distance
	}

	return PackageMetrics{
		Package:             p,
		AfferentCoupling:    ca,
		EfferentCoupling:    ce,
		Abstractness:        abstractness,
		Instability:         instability,
		DistanceFromMainSeq: distance,
		ContainsCycle:       p.ContainsCycle(),
	}
}

// visitState tracks the iterative DFS's coloring for cycle detection:
// unvisited packages are absent from the map, packages currently on the
// stack are true, and packages fully processed are false.
type visitState struct {
	onStack map[string]bool
	done    map[string]bool
}

// detectCycles runs DFS from every package along efferent edges using an
// explicit stack (spec.md §4.F requires iterative DFS to tolerate deep
// graphs). On finding a back-edge to a package already on the stack, every
// package on the stack from that target onward is marked ContainsCycle.
func detectCycles(packages []*depgraph.Package) {
	state := &visitState{onStack: make(map[string]bool), done: make(map[string]bool)}
	for _, p := range packages {
		if state.done[p.Name()] {
			continue
		}
		dfsFrom(p, state)
	}
}

type frame struct {
	pkg      *depgraph.Package
	children []*depgraph.Package
	next     int
}

func dfsFrom(start *depgraph.Package, state *visitState) {
	var stack []*frame
	push := func(p *depgraph.Package) {
		state.onStack[p.Name()] = true
		stack = append(stack, &frame{pkg: p, children: sortedEfferents(p)})
	}

	push(start)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.children) {
			state.onStack[top.pkg.Name()] = false
			state.done[top.pkg.Name()] = true
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.children[top.next]
		top.next++

		if state.onStack[child.Name()] {
			markCycleFromTarget(stack, child.Name())
			continue
		}
		if state.done[child.Name()] {
			continue
		}
		push(child)
	}
}

// markCycleFromTarget marks ContainsCycle on every frame in stack from the
// back-edge's target package onward (the target itself is included, since
// it participates in the cycle it closes).
func markCycleFromTarget(stack []*frame, targetName string) {
	found := false
	for _, f := range stack {
		if f.pkg.Name() == targetName {
			found = true
		}
		if found {
			f.pkg.SetContainsCycle(true)
		}
	}
}

func sortedEfferents(p *depgraph.Package) []*depgraph.Package {
	out := append([]*depgraph.Package(nil), p.Efferents()...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// CollectAllCycles enumerates every simple cycle through p: a
// depth-first exploration along efferent edges that records the current
// path and, on encountering a back-edge to p, emits the path as one cycle.
// Branches are pruned upon reaching any other already-visited node on the
// current path. Results are sorted lexicographically by the dotted names
// joined along the path.
func CollectAllCycles(p *depgraph.Package) [][]*depgraph.Package {
	var cycles [][]*depgraph.Package
	visited := map[string]bool{p.Name(): true}
	path := []*depgraph.Package{p}

	var walk func(current *depgraph.Package)
	walk = func(current *depgraph.Package) {
		for _, next := range sortedEfferents(current) {
			if next.Name() == p.Name() {
				cycle := append([]*depgraph.Package(nil), path...)
				cycles = append(cycles, cycle)
				continue
			}
			if visited[next.Name()] {
				continue
			}
			visited[next.Name()] = true
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			visited[next.Name()] = false
		}
	}
	walk(p)

	sort.Slice(cycles, func(i, j int) bool {
		return pathKey(cycles[i]) < pathKey(cycles[j])
	})
	return cycles
}

func pathKey(path []*depgraph.Package) string {
	key := ""
	for _, p := range path {
		key += p.Name() + ">"
	}
	return key
}
