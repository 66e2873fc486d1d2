// Import statement extraction.
package extractor

import "strings"

var (
	braceStripper = strings.NewReplacer("{", "", "}", "")

	// CRLF first so it becomes one break, not two.
	newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// ExtractImports returns the import specifiers of src in source order.
func ExtractImports(src string, mode ParseMode) []string {
	if mode == ParseModeStatement {
		return extractImportStatements(src)
	}
	return extractImportLines(src)
}

// extractImportLines is the line-oriented scan.
//
// All imports are assumed to precede the first value declaration, so the scan
// ends at the first line starting with "const". Only the first physical line
// of a multi-line import is seen.
func extractImportLines(src string) []string {
	var names []string

	for _, line := range splitLines(src) {
		if strings.HasPrefix(line, "const") {
			break
		}
		if !strings.HasPrefix(line, "import") {
			continue
		}

		cleaned := strings.ReplaceAll(line, "import ", "")
		cleaned = braceStripper.Replace(cleaned)
		if i := strings.Index(cleaned, "from"); i >= 0 {
			cleaned = cleaned[:i]
		}

		for _, piece := range strings.Split(cleaned, ",") {
			if name := strings.TrimSpace(piece); name != "" {
				names = append(names, name)
			}
		}
	}

	return names
}

// extractImportStatements tokenizes src and reads every top-level import
// statement to its terminator.
//
// Comments and string literals are skipped so "import" inside them is not a
// statement. Dynamic import(), import.meta and side-effect imports yield no
// specifiers. Regular expression literals are not recognised.
func extractImportStatements(src string) []string {
	var names []string
	src = newlineNormalizer.Replace(src)

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '/' && peek(src, i+1) == '/':
			i = skipLineComment(src, i)
		case c == '/' && peek(src, i+1) == '*':
			i = skipBlockComment(src, i)
		case isQuote(c):
			i = skipString(src, i)
		case isIdentStart(c):
			start := i
			i = scanIdent(src, i)
			if src[start:i] != "import" || (start > 0 && (isIdentChar(src[start-1]) || src[start-1] == '.')) {
				continue
			}
			clause, end, ok := readImportClause(src, i)
			if ok {
				names = append(names, splitSpecifiers(clause)...)
			}
			i = end
		default:
			i++
		}
	}

	return names
}

// readImportClause reads from just after the "import" keyword to the end of
// the statement and returns the clause between "import" and "from".
func readImportClause(src string, i int) (clause string, end int, ok bool) {
	j := skipSpaceAndComments(src, i)
	if j >= len(src) {
		return "", j, false
	}
	switch {
	case src[j] == '(' || src[j] == '.':
		return "", j, false
	case src[j] == ':':
		// object key, as in { import: 'x' }
		return "", j, false
	case isQuote(src[j]):
		return "", skipString(src, j), false
	}

	var b strings.Builder
	depth := 0

	for j < len(src) {
		c := src[j]
		switch {
		case c == '/' && peek(src, j+1) == '/':
			j = skipLineComment(src, j)
			b.WriteByte(' ')
		case c == '/' && peek(src, j+1) == '*':
			j = skipBlockComment(src, j)
			b.WriteByte(' ')
		case c == '{':
			depth++
			b.WriteByte(c)
			j++
		case c == '}':
			if depth > 0 {
				depth--
			}
			b.WriteByte(c)
			j++
		case depth == 0 && c == ';':
			return b.String(), j + 1, true
		case depth == 0 && c == '=':
			// import X = require('y')
			return b.String(), skipToStatementEnd(src, j), true
		case depth == 0 && isQuote(c):
			return b.String(), skipTerminator(src, skipString(src, j)), true
		case isIdentStart(c):
			k := scanIdent(src, j)
			word := src[j:k]
			if depth == 0 && word == "from" {
				m := skipSpaceAndComments(src, k)
				if m < len(src) && isQuote(src[m]) {
					m = skipString(src, m)
				}
				return b.String(), skipTerminator(src, m), true
			}
			b.WriteString(word)
			j = k
		default:
			b.WriteByte(c)
			j++
		}
	}

	return b.String(), j, true
}

// splitSpecifiers turns an import clause into specifiers the same shape the
// line scan produces: braces dropped, comma split, whitespace collapsed.
func splitSpecifiers(clause string) []string {
	var names []string
	for _, piece := range strings.Split(braceStripper.Replace(clause), ",") {
		if name := strings.Join(strings.Fields(piece), " "); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// --- lexical helpers ---

// splitLines breaks src at "\n", "\r\n" and lone "\r".
func splitLines(src string) []string {
	return strings.Split(newlineNormalizer.Replace(src), "\n")
}

func peek(src string, i int) byte {
	if i < len(src) {
		return src[i]
	}
	return 0
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func scanIdent(src string, i int) int {
	for i < len(src) && isIdentChar(src[i]) {
		i++
	}
	return i
}

func skipLineComment(src string, i int) int {
	if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(src)
}

func skipBlockComment(src string, i int) int {
	if j := strings.Index(src[i+2:], "*/"); j >= 0 {
		return i + 2 + j + 2
	}
	return len(src)
}

// skipString returns the index just past the string literal starting at i.
// Unterminated single/double quoted strings end at the line break.
func skipString(src string, i int) int {
	quote := src[i]
	j := i + 1
	for j < len(src) {
		switch c := src[j]; {
		case c == '\\':
			j += 2
			continue
		case c == quote:
			return j + 1
		case c == '\n' && quote != '`':
			return j
		}
		j++
	}
	return len(src)
}

func skipSpaceAndComments(src string, i int) int {
	for i < len(src) {
		switch c := src[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && peek(src, i+1) == '/':
			i = skipLineComment(src, i)
		case c == '/' && peek(src, i+1) == '*':
			i = skipBlockComment(src, i)
		default:
			return i
		}
	}
	return i
}

// skipTerminator consumes an optional ';' after horizontal whitespace.
func skipTerminator(src string, i int) int {
	j := i
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j < len(src) && src[j] == ';' {
		return j + 1
	}
	return i
}

// skipToStatementEnd moves past the next ';' or line break.
func skipToStatementEnd(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ';':
			return i + 1
		case '\n':
			return i + 1
		}
		i++
	}
	return i
}
