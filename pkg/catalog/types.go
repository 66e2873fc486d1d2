// Package catalog derives candidate component names from component files.
package catalog

// ComponentCandidate is a component file and the name it is expected to be
// imported under.
type ComponentCandidate struct {
	File string `json:"file" yaml:"file"`
	Name string `json:"name" yaml:"name"`
}

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// ComponentsByName maps a stem to every candidate carrying it, in walk
	// order. Widget.tsx and Widget.test.tsx share one entry.
	ComponentsByName map[string][]*ComponentCandidate

	// ComponentByFile maps a relative path to its candidate.
	ComponentByFile map[string]*ComponentCandidate
}
