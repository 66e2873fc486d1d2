package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gnana997/importi/pkg/catalog"
	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/scanner"
	"github.com/gnana997/importi/pkg/util"
)

// Builder scans a source tree and builds its ProjectIndex.
//
// **Three-Phase Pipeline:**
//  1. File Discovery - Walk the tree for .ts/.tsx files
//  2. Parallel Processing - Extract imports/exports using the worker pool
//  3. Aggregation - One collector goroutine stores each result at its
//     discovery position; the index is assembled from that slice, so it
//     does not depend on which worker finished first
//
// **Usage:**
//
//	builder := NewBuilder(ext, nil, logger)
//	index, stats, err := builder.Build(ctx, "/path/to/project/src", DefaultBuildOptions(), nil)
type Builder struct {
	extractor *extractor.Extractor
	cache     *ResultCache
	logger    *slog.Logger
}

// NewBuilder creates a new builder. cache may be nil.
func NewBuilder(ext *extractor.Extractor, cache *ResultCache, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		extractor: ext,
		cache:     cache,
		logger:    logger,
	}
}

// Build scans rootDir and returns its index.
//
// Any discovery or read error aborts the build; when several files fail,
// the error of the earliest file in discovery order is returned.
// Cancelling ctx aborts the build with ctx's error.
func (b *Builder) Build(
	ctx context.Context,
	rootDir string,
	options BuildOptions,
	progressCallback ProgressCallback,
) (*ProjectIndex, *ScanStats, error) {
	startTime := time.Now()
	stats := &ScanStats{StartTime: startTime}

	if options.ComponentExtension == "" {
		options.ComponentExtension = catalog.DefaultExtension
	}

	b.logger.Info("Starting project scan", "root", rootDir)

	// Phase 1: Discover files
	discoveryStart := time.Now()
	files, err := scanner.DiscoverFiles(rootDir, scanner.Options{
		Extensions: scanner.DefaultOptions().Extensions,
		Exclude:    options.Exclude,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	b.logger.Debug("File discovery complete",
		"files_found", len(files),
		"duration_ms", stats.DiscoveryTimeMs)

	// Phase 2: Extract
	indexingStart := time.Now()
	results := make([]*extractor.PerFileResult, len(files))
	if len(files) > 0 {
		if err := b.processFilesParallel(ctx, rootDir, files, options.Workers, results, stats, progressCallback); err != nil {
			return nil, nil, err
		}
	}
	stats.IndexingTimeMs = time.Since(indexingStart).Milliseconds()

	// Phase 3: Aggregate in discovery order
	index := &ProjectIndex{
		Root:       rootDir,
		Files:      files,
		Imports:    make(map[string]extractor.ImportRecord, len(files)),
		Exports:    make(map[string][]extractor.ExportDeclaration),
		Components: catalog.Build(files, options.ComponentExtension).Components,
	}
	if index.Files == nil {
		index.Files = make([]string, 0)
	}

	for i, file := range files {
		r := results[i]
		index.Imports[file] = r.Imports
		if len(r.Exports) > 0 {
			index.Exports[file] = r.Exports
		}
		stats.ImportsExtracted += len(r.Imports.Names)
		stats.ExportsExtracted += len(r.Exports)
	}
	stats.ComponentsFound = len(index.Components)

	stats.EndTime = time.Now()
	stats.TotalTimeMs = time.Since(startTime).Milliseconds()
	if secs := time.Since(indexingStart).Seconds(); stats.FilesIndexed > 0 && secs > 0 {
		stats.FilesPerSecond = float64(stats.FilesIndexed) / secs
	}

	b.logger.Info("Project scan complete",
		"files_indexed", stats.FilesIndexed,
		"cache_hits", stats.CacheHits,
		"imports", stats.ImportsExtracted,
		"exports", stats.ExportsExtracted,
		"components", stats.ComponentsFound,
		"duration_ms", stats.TotalTimeMs)

	return index, stats, nil
}

// processFilesParallel extracts every file on a worker pool and stores each
// result at its discovery index.
func (b *Builder) processFilesParallel(
	ctx context.Context,
	rootDir string,
	files []string,
	workers int,
	results []*extractor.PerFileResult,
	stats *ScanStats,
	progressCallback ProgressCallback,
) error {
	totalFiles := len(files)

	numWorkers := util.GetOptimalPoolSizeWithOverride(workers)
	if numWorkers > totalFiles {
		numWorkers = totalFiles
	}
	stats.WorkerCount = numWorkers

	// The mappings only live for this scan; extracted strings are copies.
	cacheConfig := util.UnboundedFileCacheConfig()
	cacheConfig.Logger = b.logger
	fileCache := util.NewFileCache(cacheConfig)
	defer func() {
		if err := fileCache.Close(); err != nil {
			b.logger.Warn("Failed to release file cache", "error", err)
		}
	}()

	pool := NewWorkerPool(ctx, numWorkers, b.extractor, fileCache, b.cache, b.logger)
	pool.Start()
	defer pool.Stop()

	fileErrs := make([]error, totalFiles)

	// Result collector goroutine. It is the only writer of results,
	// fileErrs and stats while the pool runs.
	// **CRITICAL:** Start this BEFORE submitting jobs; otherwise submission
	// blocks once the jobs channel fills up.
	done := make(chan struct{})
	go func() {
		defer close(done)
		processed := 0

		for processed < totalFiles {
			select {
			case <-ctx.Done():
				return

			case result := <-pool.Results():
				results[result.JobID] = result.Result
				stats.FilesIndexed++
				if result.Cached {
					stats.CacheHits++
				}
				processed++
				if progressCallback != nil {
					progressCallback(processed, totalFiles, result.FilePath)
				}

			case fileErr := <-pool.Errors():
				fileErrs[fileErr.JobID] = fileErr.Error
				stats.FilesFailed++
				processed++
				b.logger.Warn("File processing failed",
					"file", fileErr.FilePath,
					"error", fileErr.Error)
			}
		}
	}()

	for i, file := range files {
		err := pool.Submit(FileJob{
			FilePath: file,
			AbsPath:  filepath.Join(rootDir, filepath.FromSlash(file)),
			JobID:    i,
		})
		if err != nil {
			break
		}
	}
	pool.FinishSubmitting()

	<-done

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan cancelled: %w", err)
	}

	for i, err := range fileErrs {
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", files[i], err)
		}
	}

	if fs := fileCache.Stats(); fs.MmapFailures > 0 {
		b.logger.Debug("Some files were read without mmap", "count", fs.MmapFailures)
	}

	return nil
}

// IsCancelled reports whether err came from a cancelled or expired build.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
