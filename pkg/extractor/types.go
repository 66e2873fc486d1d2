// Package extractor pulls import specifiers and exported declarations out of
// TypeScript source text.
//
// Extraction is textual and works line by line (or statement by statement in
// ParseModeStatement). Nothing is compiled or resolved.
package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownParseMode is returned by ParseParseMode for unsupported names.
	ErrUnknownParseMode = errors.New("unknown parse mode")

	// ErrInvalidEncoding is returned for source files that are not UTF-8.
	ErrInvalidEncoding = errors.New("source is not valid UTF-8")
)

// ParseMode selects how import statements are recognised.
type ParseMode string

const (
	// ParseModeLine reads single physical lines that start with "import" and
	// stops at the first line that starts with "const".
	ParseModeLine ParseMode = "line"

	// ParseModeStatement tokenizes the whole file and reads each import
	// statement up to its terminator, so multi-line import lists work.
	ParseModeStatement ParseMode = "statement"
)

// ParseParseMode converts a config/flag value to a ParseMode.
// The empty string selects ParseModeLine.
func ParseParseMode(s string) (ParseMode, error) {
	switch m := ParseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ParseModeLine, nil
	case ParseModeLine, ParseModeStatement:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownParseMode, s)
	}
}

// DeclarationKind identifies which marker declared an export.
type DeclarationKind string

const (
	KindInterface DeclarationKind = "interface"
	KindTypeAlias DeclarationKind = "type"
)

// ExportMarker is a literal token that introduces an exported declaration.
type ExportMarker struct {
	Token string          `json:"token" yaml:"token"`
	Kind  DeclarationKind `json:"kind" yaml:"kind"`
}

// DefaultExportMarkers are the markers scanned for unless configured otherwise.
//
// "export intraface" is the project's own declaration keyword, kept apart
// from the standard "export interface".
func DefaultExportMarkers() []ExportMarker {
	return []ExportMarker{
		{Token: "export intraface", Kind: KindInterface},
		{Token: "export type", Kind: KindTypeAlias},
	}
}

// ImportRecord holds the specifiers imported by one file.
//
// Names keep source order and duplicates.
type ImportRecord struct {
	File  string   `json:"file" yaml:"file"`
	Names []string `json:"names" yaml:"names"`
}

// ExportDeclaration is one exported interface/type declaration.
type ExportDeclaration struct {
	File string          `json:"file" yaml:"file"`
	Name string          `json:"name" yaml:"name"`
	Kind DeclarationKind `json:"kind" yaml:"kind"`
	// Line is the 1-based line the marker was found on.
	Line int `json:"line" yaml:"line"`
}

// PerFileResult contains everything extracted from a single file.
type PerFileResult struct {
	FilePath string
	Imports  ImportRecord
	Exports  []ExportDeclaration
}
