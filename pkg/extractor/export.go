package extractor

import "strings"

// ExtractExports returns the declarations introduced by any of markers, in
// line order.
//
// A line declares at most one name. Every marker token is removed from the
// line, the text from the first '{' on is discarded, and what remains
// (trimmed, cut at a type alias '=') is the name. Lines that leave an empty
// name, such as `export type { A } from './a'`, are skipped. Declarations
// spread over several lines are not recognised.
func ExtractExports(file, src string, markers []ExportMarker) []ExportDeclaration {
	var decls []ExportDeclaration

	for n, line := range splitLines(src) {
		kind, found := matchMarker(line, markers)
		if !found {
			continue
		}

		name := line
		for _, m := range markers {
			name = strings.ReplaceAll(name, m.Token, "")
		}
		name, _, _ = strings.Cut(name, "{")
		name, _, _ = strings.Cut(name, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		decls = append(decls, ExportDeclaration{
			File: file,
			Name: name,
			Kind: kind,
			Line: n + 1,
		})
	}

	return decls
}

// matchMarker returns the kind of the first marker contained in line.
func matchMarker(line string, markers []ExportMarker) (DeclarationKind, bool) {
	for _, m := range markers {
		if m.Token != "" && strings.Contains(line, m.Token) {
			return m.Kind, true
		}
	}
	return "", false
}
