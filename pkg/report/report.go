// Package report persists unused-symbol results.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/importi/pkg/usage"
)

// ErrUnknownFormat is returned for unsupported report formats.
var ErrUnknownFormat = errors.New("unknown report format")

// BaseName is the report file name without extension.
const BaseName = "unused_intrafaces"

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a config/flag value to a Format.
// The empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// Path returns where Write puts the report for projectDir.
func Path(projectDir string, format Format) string {
	return filepath.Join(projectDir, BaseName+format.Extension())
}

// Write encodes result and writes it to Path(projectDir, format),
// replacing any previous report. It returns the path written.
func Write(projectDir string, result *usage.Result, format Format) (string, error) {
	if format == "" {
		format = FormatText
	}

	var b strings.Builder
	if err := Encode(&b, result, format); err != nil {
		return "", err
	}

	path := Path(projectDir, format)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Encode writes result to w in the given format.
func Encode(w io.Writer, result *usage.Result, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(result))
		return err

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(normalize(result)); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(normalize(result)); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text renders the plain report: one name per line under each heading,
// with a blank line between the two sections.
func Text(result *usage.Result) string {
	var b strings.Builder

	b.WriteString("Unused intrafaces:\n")
	for _, name := range result.UnusedExports {
		b.WriteString(name)
		b.WriteString("\n")
	}

	b.WriteString("\nUnused components:\n")
	for _, name := range result.UnusedComponents {
		b.WriteString(name)
		b.WriteString("\n")
	}

	return b.String()
}

// normalize turns nil lists into empty ones so encoders print [] not null.
func normalize(result *usage.Result) *usage.Result {
	out := *result
	if out.UnusedExports == nil {
		out.UnusedExports = []string{}
	}
	if out.UnusedComponents == nil {
		out.UnusedComponents = []string{}
	}
	return &out
}
