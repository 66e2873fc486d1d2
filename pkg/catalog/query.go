package catalog

import "strings"

// QueryService provides read-only query methods over a built catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService and indexes cat.
func NewQueryService(cat *Catalog) *QueryService {
	return &QueryService{Catalog: cat, Index: cat.BuildIndex()}
}

// ListComponents returns candidates whose name or file contains keyword,
// case-insensitively. Pass "" to list everything.
func (q *QueryService) ListComponents(keyword string) []ComponentCandidate {
	keyword = strings.ToLower(keyword)
	result := make([]ComponentCandidate, 0)

	for _, comp := range q.Catalog.Components {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(comp.Name), keyword) &&
			!strings.Contains(strings.ToLower(comp.File), keyword) {
			continue
		}
		result = append(result, comp)
	}

	return result
}

// GetComponent looks up all candidates with the given name.
// The bool indicates whether any was found.
func (q *QueryService) GetComponent(name string) ([]*ComponentCandidate, bool) {
	comps, ok := q.Index.ComponentsByName[name]
	return comps, ok
}

// Files returns the component files declaring name, in catalog order.
func (q *QueryService) Files(name string) []string {
	comps := q.Index.ComponentsByName[name]
	files := make([]string, 0, len(comps))
	for _, c := range comps {
		files = append(files, c.File)
	}
	return files
}
