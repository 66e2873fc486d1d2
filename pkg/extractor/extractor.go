package extractor

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Config controls what an Extractor reads from each file.
type Config struct {
	// ParseMode selects the import scan. Zero value means ParseModeLine.
	ParseMode ParseMode

	// ExportMarkers introduce exported declarations. Nil means
	// DefaultExportMarkers().
	ExportMarkers []ExportMarker

	// ExportExtensions are the file suffixes scanned for declarations.
	// Nil means []string{".ts"}.
	ExportExtensions []string
}

// DefaultConfig returns the extraction settings of a plain project scan.
func DefaultConfig() Config {
	return Config{
		ParseMode:        ParseModeLine,
		ExportMarkers:    DefaultExportMarkers(),
		ExportExtensions: []string{".ts"},
	}
}

// Fingerprint identifies the settings that affect extraction output.
// Results produced under different fingerprints must not be mixed.
func (c Config) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(c.ParseMode))
	for _, m := range c.ExportMarkers {
		b.WriteString("|")
		b.WriteString(m.Token)
		b.WriteString("=")
		b.WriteString(string(m.Kind))
	}
	b.WriteString("|")
	b.WriteString(strings.Join(c.ExportExtensions, ","))
	return b.String()
}

// Extractor runs import and export extraction over one file at a time.
//
// It holds no per-file state and is safe for concurrent use by the
// indexer's worker pool.
//
// Usage:
//
//	ext := NewExtractor(DefaultConfig(), logger)
//	result, err := ext.ExtractFile("models/user.ts", sourceCode)
//	if err != nil {
//	    return err
//	}
//	// Use result.Imports.Names, result.Exports
type Extractor struct {
	config Config
	logger *slog.Logger
}

// NewExtractor creates an extractor, filling unset config fields with defaults.
func NewExtractor(config Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ParseMode == "" {
		config.ParseMode = ParseModeLine
	}
	if config.ExportMarkers == nil {
		config.ExportMarkers = DefaultExportMarkers()
	}
	if config.ExportExtensions == nil {
		config.ExportExtensions = []string{".ts"}
	}

	return &Extractor{
		config: config,
		logger: logger,
	}
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// ExtractFile extracts the imports of filePath and, when filePath has one of
// the export extensions, its exported declarations.
//
// filePath is only used for labelling and the extension test; the content
// comes from sourceCode, which is not retained. Content that is not UTF-8
// fails with ErrInvalidEncoding.
func (e *Extractor) ExtractFile(filePath string, sourceCode []byte) (*PerFileResult, error) {
	if !utf8.Valid(sourceCode) {
		return nil, fmt.Errorf("%s: %w", filePath, ErrInvalidEncoding)
	}
	src := string(sourceCode)

	result := &PerFileResult{
		FilePath: filePath,
		Imports: ImportRecord{
			File:  filePath,
			Names: ExtractImports(src, e.config.ParseMode),
		},
	}

	if e.scansExports(filePath) {
		result.Exports = ExtractExports(filePath, src, e.config.ExportMarkers)
	}

	e.logger.Debug("extracted file",
		"file", filePath,
		"imports", len(result.Imports.Names),
		"exports", len(result.Exports))

	return result, nil
}

func (e *Extractor) scansExports(filePath string) bool {
	for _, ext := range e.config.ExportExtensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}
