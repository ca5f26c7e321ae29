package defaults

import "sort"

// Catalog maps a simple name to every definition sharing it.
// Same-named definitions (e.g. methods on unrelated classes) all stay
// candidates for a call with that name.
type Catalog struct {
	byName map[string][]*Definition
	count  int
}

// NewCatalog builds a catalog from extracted facts. Private definitions are
// dropped unless includePrivate is set.
func NewCatalog(facts []*FileFacts, includePrivate bool) *Catalog {
	c := &Catalog{byName: make(map[string][]*Definition)}
	for _, f := range facts {
		for i := range f.Definitions {
			def := &f.Definitions[i]
			if !includePrivate && def.IsPrivate() {
				continue
			}
			c.byName[def.Name] = append(c.byName[def.Name], def)
			c.count++
		}
	}
	return c
}

// Lookup returns every definition named name.
func (c *Catalog) Lookup(name string) []*Definition {
	return c.byName[name]
}

// Len returns the number of cataloged definitions.
func (c *Catalog) Len() int {
	return c.count
}

// Names returns the cataloged names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
