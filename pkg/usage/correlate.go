package usage

import (
	"github.com/gnana997/importi/pkg/catalog"
	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/indexer"
)

// Result holds the unused names of one scan.
//
// Both lists follow declaration order and keep duplicates: a name declared
// in two files and imported nowhere appears twice.
type Result struct {
	UnusedExports    []string `json:"unused_intrafaces" yaml:"unused_intrafaces"`
	UnusedComponents []string `json:"unused_components" yaml:"unused_components"`
}

// Correlate finds the exports and components of index that no import
// specifier in the project uses.
//
// A declaration in a file never counts as a use, including inside the file
// that declares it; only import specifiers do.
func Correlate(index *indexer.ProjectIndex, mode MatchMode) (*Result, error) {
	match, err := MatcherFor(mode)
	if err != nil {
		return nil, err
	}

	surface := index.UsageSurface()
	components := &catalog.Catalog{Components: index.Components}

	return &Result{
		UnusedExports:    FindUnused(exportNames(index.ExportsInOrder()), surface, match),
		UnusedComponents: FindUnused(components.Names(), surface, match),
	}, nil
}

// FindUnused returns the names, in input order, that match no specifier in
// surface.
func FindUnused(names []string, surface []string, match Matcher) []string {
	unused := make([]string, 0)
	for _, name := range names {
		if !isUsed(name, surface, match) {
			unused = append(unused, name)
		}
	}
	return unused
}

func isUsed(name string, surface []string, match Matcher) bool {
	for _, spec := range surface {
		if match(spec, name) {
			return true
		}
	}
	return false
}

func exportNames(decls []extractor.ExportDeclaration) []string {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return names
}
