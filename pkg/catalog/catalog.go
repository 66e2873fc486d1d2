package catalog

import (
	"path"
	"strings"
)

// DefaultExtension identifies component files.
const DefaultExtension = ".tsx"

// Catalog is the ordered list of component candidates found in one scan.
type Catalog struct {
	Extension  string               `json:"extension"`
	Components []ComponentCandidate `json:"components"`
}

// Stem returns the part of a file name before its first '.'.
//
// Only the base name is considered, so "forms/Input.field.tsx" yields
// "Input". A name starting with '.' has an empty stem.
func Stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem, _, _ := strings.Cut(base, ".")
	return stem
}

// Build creates a catalog from discovered files, keeping every file that ends
// with ext. Order follows files; stems are neither deduplicated nor checked
// to be identifiers.
func Build(files []string, ext string) *Catalog {
	if ext == "" {
		ext = DefaultExtension
	}

	cat := &Catalog{
		Extension:  ext,
		Components: make([]ComponentCandidate, 0),
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ext) {
			continue
		}
		cat.Components = append(cat.Components, ComponentCandidate{
			File: f,
			Name: Stem(f),
		})
	}

	return cat
}

// Names returns the candidate names in catalog order, duplicates included.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Components))
	for i, comp := range c.Components {
		names[i] = comp.Name
	}
	return names
}

// BuildIndex creates lookup maps for fast access.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ComponentsByName: make(map[string][]*ComponentCandidate, len(c.Components)),
		ComponentByFile:  make(map[string]*ComponentCandidate, len(c.Components)),
	}

	for i := range c.Components {
		comp := &c.Components[i]
		idx.ComponentsByName[comp.Name] = append(idx.ComponentsByName[comp.Name], comp)
		idx.ComponentByFile[comp.File] = comp
	}

	return idx
}
