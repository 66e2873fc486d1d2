// Package project runs the full unused-symbol pipeline over a project
// folder: discovery and extraction of <project>/src, correlation, and the
// report file. The CLI, watch mode and the MCP server all go through it.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/report"
	"github.com/gnana997/importi/pkg/usage"
)

// SourceDirName is the directory scanned inside a project folder.
const SourceDirName = "src"

// Options selects the scan behaviour. The zero value is the default
// configuration: line parse mode, substring matching, default markers.
type Options struct {
	ParseMode     extractor.ParseMode
	MatchMode     usage.MatchMode
	ExportMarkers []extractor.ExportMarker
	Exclude       []string
	Workers       int
}

// DefaultOptions returns the default scan options.
func DefaultOptions() Options {
	return Options{
		ParseMode:     extractor.ParseModeLine,
		MatchMode:     usage.MatchSubstring,
		ExportMarkers: extractor.DefaultExportMarkers(),
	}
}

// Scan is the outcome of one FindUnused call.
type Scan struct {
	Index  *indexer.ProjectIndex
	Result *usage.Result
	Stats  *indexer.ScanStats
}

// Service scans project folders. It is safe for concurrent use; the
// optional result cache is shared between scans.
type Service struct {
	cache  *indexer.ResultCache
	logger *slog.Logger
}

// NewService creates a service. cache may be nil, in which case every scan
// reads every file.
func NewService(cache *indexer.ResultCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cache, logger: logger}
}

// SourceDir returns the scanned directory of projectDir.
func SourceDir(projectDir string) string {
	return filepath.Join(projectDir, SourceDirName)
}

// Index scans <projectDir>/src and returns its index.
func (s *Service) Index(ctx context.Context, projectDir string, opts Options) (*indexer.ProjectIndex, *indexer.ScanStats, error) {
	opts, err := resolve(opts)
	if err != nil {
		return nil, nil, err
	}

	ext := extractor.NewExtractor(extractor.Config{
		ParseMode:     opts.ParseMode,
		ExportMarkers: opts.ExportMarkers,
	}, s.logger)

	builder := indexer.NewBuilder(ext, s.cache, s.logger)
	return builder.Build(ctx, SourceDir(projectDir), indexer.BuildOptions{
		Exclude: opts.Exclude,
		Workers: opts.Workers,
	}, nil)
}

// FindUnused scans projectDir and correlates its declarations against the
// import surface. No file is written.
func (s *Service) FindUnused(ctx context.Context, projectDir string, opts Options) (*Scan, error) {
	opts, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	index, stats, err := s.Index(ctx, projectDir, opts)
	if err != nil {
		return nil, err
	}

	result, err := usage.Correlate(index, opts.MatchMode)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Correlation complete",
		"unused_exports", len(result.UnusedExports),
		"unused_components", len(result.UnusedComponents))

	return &Scan{Index: index, Result: result, Stats: stats}, nil
}

// Run scans projectDir and writes the report into it. It returns the scan
// and the report path. On any error no report is written.
func (s *Service) Run(ctx context.Context, projectDir string, opts Options, format report.Format) (*Scan, string, error) {
	scan, err := s.FindUnused(ctx, projectDir, opts)
	if err != nil {
		return nil, "", err
	}

	path, err := report.Write(projectDir, scan.Result, format)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Report written", "path", path)
	return scan, path, nil
}

// Validate checks that projectDir is an existing directory.
func Validate(projectDir string) error {
	info, err := os.Stat(projectDir)
	if err != nil {
		return fmt.Errorf("invalid project folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid project folder: %s is not a directory", projectDir)
	}
	return nil
}

// resolve fills defaults and rejects unknown modes before anything is read.
func resolve(opts Options) (Options, error) {
	parseMode, err := extractor.ParseParseMode(string(opts.ParseMode))
	if err != nil {
		return opts, err
	}
	matchMode, err := usage.ParseMatchMode(string(opts.MatchMode))
	if err != nil {
		return opts, err
	}
	opts.ParseMode = parseMode
	opts.MatchMode = matchMode
	if len(opts.ExportMarkers) == 0 {
		opts.ExportMarkers = extractor.DefaultExportMarkers()
	}
	return opts, nil
}
