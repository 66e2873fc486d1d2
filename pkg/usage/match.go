// Package usage decides which declared names are never imported.
package usage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMatchMode is returned by ParseMatchMode for unsupported names.
var ErrUnknownMatchMode = errors.New("unknown match mode")

// MatchMode selects how a declared name is compared with import specifiers.
type MatchMode string

const (
	// MatchSubstring counts a name as used when it occurs anywhere inside a
	// specifier, so "User" is used by "UserProfile".
	MatchSubstring MatchMode = "substring"

	// MatchExact splits specifiers into identifiers and requires one of them
	// to equal the name.
	MatchExact MatchMode = "exact"

	// MatchWord requires an occurrence bounded by non-identifier characters.
	MatchWord MatchMode = "word"
)

// ParseMatchMode converts a config/flag value to a MatchMode.
// The empty string selects MatchSubstring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MatchSubstring, nil
	case MatchSubstring, MatchExact, MatchWord:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchMode, s)
	}
}

// Matcher reports whether name counts as used by specifier.
type Matcher func(specifier, name string) bool

// MatcherFor returns the Matcher implementing mode.
func MatcherFor(mode MatchMode) (Matcher, error) {
	switch mode {
	case MatchSubstring, "":
		return strings.Contains, nil
	case MatchExact:
		return matchExact, nil
	case MatchWord:
		return matchWord, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatchMode, mode)
	}
}

func matchExact(specifier, name string) bool {
	for _, ident := range Identifiers(specifier) {
		if ident == name {
			return true
		}
	}
	return false
}

func matchWord(specifier, name string) bool {
	if name == "" {
		return false
	}
	for from := 0; from <= len(specifier)-len(name); {
		i := strings.Index(specifier[from:], name)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(name)
		if (start == 0 || !isIdentByte(specifier[start-1])) &&
			(end == len(specifier) || !isIdentByte(specifier[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

// Identifiers splits a specifier into its identifier tokens, so
// "type  Foo" gives [type Foo] and "Foo as Bar" gives [Foo as Bar].
func Identifiers(specifier string) []string {
	return strings.FieldsFunc(specifier, func(r rune) bool {
		return !isIdentRune(r)
	})
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r >= 0x80
}
