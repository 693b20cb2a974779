// Package model holds the small data-transfer type passed from the
// classfile reader to the dependency graph, decoupling the two so neither
// package needs to import the other's internals.
package model

// ParsedClass is the fully decoded result of reading one class file: enough
// information for depgraph.Graph to create or update the canonical
// JavaClass/JavaPackage entities.
type ParsedClass struct {
	Name        string   // fully-qualified, dotted
	PackageName string   // "Default" if the class has no package
	IsAbstract  bool     // true for abstract classes and all interfaces
	SourceFile  string   // "Unknown" if no SourceFile attribute was present
	Imports     []string // package names referenced by this class, post-filter
}
