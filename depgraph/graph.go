// Package depgraph maintains the canonical set of JavaPackage and JavaClass
// entities for one analysis session, keyed by name, with mutually
// consistent afferent/efferent edges.
package depgraph

import (
	"sort"
	"strings"
	"sync"

	"github.com/classdep/classdep/internal/classerr"
	"github.com/classdep/classdep/model"
)

// Graph is the canonical name→Package and name→Class table for one
// analysis session. Edges accumulate monotonically; nothing is ever
// removed except by MergeComponents' one-shot rewrite.
//
// Graph is safe for concurrent use: spec.md §5 permits an implementer to
// parse classes in parallel as long as getOrCreate*/edge insertion are
// mutex-protected, so Graph carries that mutex itself rather than leaving
// it to callers.
type Graph struct {
	mu       sync.Mutex
	packages map[string]*Package
	classes  map[string]*Class
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		packages: make(map[string]*Package),
		classes:  make(map[string]*Class),
	}
}

// GetOrCreatePackage returns the canonical Package for name, creating it if
// this is the first reference. The empty string is normalized to the
// "Default" sentinel.
func (g *Graph) GetOrCreatePackage(name string) *Package {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getOrCreatePackageLocked(name)
}

func (g *Graph) getOrCreatePackageLocked(name string) *Package {
	if name == "" {
		name = defaultPackageName
	}
	if p, ok := g.packages[name]; ok {
		return p
	}
	p := newPackage(name)
	g.packages[name] = p
	return p
}

func (g *Graph) getOrCreateClassLocked(name string) *Class {
	if c, ok := g.classes[name]; ok {
		return c
	}
	c := newClass(name)
	g.classes[name] = c
	return c
}

// AddClass creates or updates the canonical Class for parsed.Name, wiring
// it into its home package and adding an afferent/efferent edge for every
// imported package. It is idempotent: re-adding the same ParsedClass
// produces no duplicate edges.
func (g *Graph) AddClass(parsed model.ParsedClass) (*Class, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	class := g.getOrCreateClassLocked(parsed.Name)
	class.packageName = parsed.PackageName
	class.isAbstract = parsed.IsAbstract
	class.sourceFile = parsed.SourceFile

	home := g.getOrCreatePackageLocked(parsed.PackageName)
	home.classes[class.name] = class

	for _, importName := range parsed.Imports {
		dep := g.getOrCreatePackageLocked(importName)
		if !class.addImport(dep) {
			continue
		}
		if err := g.addEdgeLocked(home, dep); err != nil {
			return nil, err
		}
	}

	return class, nil
}

// addEdgeLocked inserts home -> dep (home.efferents += dep, dep.afferents
// += home), preserving the bidirectional invariant. Self-edges are
// silently dropped rather than treated as an error: a class's own package
// is never added to its imports (Class.addImport guards that), so this
// path would only be reached by a caller bypassing AddClass.
func (g *Graph) addEdgeLocked(home, dep *Package) error {
	if home.name == dep.name {
		return nil
	}
	home.efferents[dep.name] = dep
	dep.afferents[home.name] = home

	if !home.HasEfferent(dep) || !dep.HasAfferent(home) {
		return classerr.NewInvariantViolation(
			"edge insertion left afferent/efferent sets inconsistent for " +
				home.name + " -> " + dep.name)
	}
	return nil
}

// SortKey selects the ordering Packages returns.
type SortKey int

const (
	// SortByName orders packages by name, ascending. This is the default.
	SortByName SortKey = iota
	// SortByAfferent orders packages by Ca, descending.
	SortByAfferent
	// SortByEfferent orders packages by Ce, descending.
	SortByEfferent
)

// Packages returns the current packages ordered per key. This generalizes
// jdepend's PackageComparator.byWhat() self-reference (spec.md §9) into a
// plain enum selector.
func (g *Graph) Packages(key SortKey) []*Package {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Package, 0, len(g.packages))
	for _, p := range g.packages {
		out = append(out, p)
	}

	switch key {
	case SortByAfferent:
		sort.Slice(out, func(i, j int) bool {
			if len(out[i].afferents) != len(out[j].afferents) {
				return len(out[i].afferents) > len(out[j].afferents)
			}
			return out[i].name < out[j].name
		})
	case SortByEfferent:
		sort.Slice(out, func(i, j int) bool {
			if len(out[i].efferents) != len(out[j].efferents) {
				return len(out[i].efferents) > len(out[j].efferents)
			}
			return out[i].name < out[j].name
		})
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	}

	return out
}

// Package looks up a package by name without creating it.
func (g *Graph) Package(name string) (*Package, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.packages[name]
	return p, ok
}

// MergeComponents collapses every package whose name starts with one of the
// given prefixes into a single synthetic package named for that prefix.
// Classes retain their identity; their PackageName is rewritten to the
// component name. Edges that would become self-edges under the rewrite are
// dropped. This is a one-shot rewrite that must run before metrics are
// computed.
func (g *Graph) MergeComponents(prefixes []string) {
	if len(prefixes) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	componentFor := func(pkgName string) (string, bool) {
		for _, prefix := range prefixes {
			if strings.HasPrefix(pkgName, prefix) {
				return prefix, true
			}
		}
		return "", false
	}

	rewritten := make(map[string]*Package, len(g.packages))
	for name, old := range g.packages {
		component, ok := componentFor(name)
		if !ok {
			rewritten[name] = old
			continue
		}
		synthetic, exists := rewritten[component]
		if !exists {
			synthetic = newPackage(component)
			rewritten[component] = synthetic
		}
		for className, class := range old.classes {
			class.packageName = component
			synthetic.classes[className] = class
		}
	}

	g.packages = rewritten

	// Rebuild every package's afferent/efferent sets from the rewritten
	// classes' imports, mapping each import through componentFor.
	for _, p := range g.packages {
		p.afferents = make(map[string]*Package)
		p.efferents = make(map[string]*Package)
	}
	for _, p := range g.packages {
		for _, class := range p.classes {
			for _, imported := range class.imports {
				targetName := imported.name
				if component, ok := componentFor(targetName); ok {
					targetName = component
				}
				if targetName == p.name {
					continue // would become a self-edge; dropped
				}
				target, ok := g.packages[targetName]
				if !ok {
					target = g.getOrCreatePackageLocked(targetName)
				}
				p.efferents[target.name] = target
				target.afferents[p.name] = p
			}
		}
	}
}
