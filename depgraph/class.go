package depgraph

// Class represents a JavaClass or interface. Equality is by Name; a class's
// own package is never present in its ImportedPackages (a class does not
// depend on its own package).
type Class struct {
	name        string
	packageName string
	isAbstract  bool
	sourceFile  string

	imports map[string]*Package
}

func newClass(name string) *Class {
	return &Class{
		name:        name,
		packageName: defaultPackageName,
		sourceFile:  "Unknown",
		imports:     make(map[string]*Package),
	}
}

// Name returns the class's fully-qualified dotted name.
func (c *Class) Name() string { return c.name }

// PackageName returns the name of the package this class belongs to.
func (c *Class) PackageName() string { return c.packageName }

// IsAbstract reports whether the class is abstract or an interface.
func (c *Class) IsAbstract() bool { return c.isAbstract }

// SourceFile returns the SourceFile attribute value, or "Unknown".
func (c *Class) SourceFile() string { return c.sourceFile }

// ImportedPackages returns the packages this class references, excluding
// its own.
func (c *Class) ImportedPackages() []*Package {
	out := make([]*Package, 0, len(c.imports))
	for _, p := range c.imports {
		out = append(out, p)
	}
	return out
}

// addImport records pkg as imported by c, unless pkg is c's own package.
// Returns true if the import was newly recorded.
func (c *Class) addImport(pkg *Package) bool {
	if pkg.name == c.packageName {
		return false
	}
	if _, exists := c.imports[pkg.name]; exists {
		return false
	}
	c.imports[pkg.name] = pkg
	return true
}
