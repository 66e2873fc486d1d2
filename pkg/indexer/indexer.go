package indexer

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/importi/pkg/extractor"
)

// ResultCache keeps per-file extraction results between scans of a
// long-running process (watch mode, MCP server).
//
// **Validation:**
//   - An entry is keyed by absolute path and extractor fingerprint
//   - It is only returned while the file's size and modification time
//     still match, so a cached scan equals a fresh one
//
// **Thread Safety:**
//   - golang-lru is internally locked; workers call Get/Put concurrently
//   - Atomic counters for statistics
//
// **Usage:**
//
//	cache, err := NewResultCache(DefaultResultCacheConfig(), logger)
//	builder := NewBuilder(ext, cache, logger)
//	index, stats, err := builder.Build(ctx, root, opts, nil)
type ResultCache struct {
	entries *lru.Cache[string, cacheEntry]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	config ResultCacheConfig
	logger *slog.Logger
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	result  *extractor.PerFileResult
}

// ResultCacheConfig configures the result cache.
type ResultCacheConfig struct {
	// MaxFiles is the maximum number of files kept.
	// Least recently used entries are evicted first.
	// Default: 10000 files
	MaxFiles int
}

// DefaultResultCacheConfig returns the default configuration.
func DefaultResultCacheConfig() ResultCacheConfig {
	return ResultCacheConfig{MaxFiles: 10000}
}

// ResultCacheStats provides statistics about cache effectiveness.
type ResultCacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64

	// HitRate is hits / (hits + misses), 0 when unused
	HitRate float64
}

// NewResultCache creates a result cache.
func NewResultCache(config ResultCacheConfig, logger *slog.Logger) (*ResultCache, error) {
	if config.MaxFiles == 0 {
		config.MaxFiles = DefaultResultCacheConfig().MaxFiles
	}
	if logger == nil {
		logger = slog.Default()
	}

	rc := &ResultCache{
		config: config,
		logger: logger,
	}

	entries, err := lru.NewWithEvict(config.MaxFiles, func(key string, _ cacheEntry) {
		rc.evictions.Add(1)
		logger.Debug("LRU evicting file", "key", key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	rc.entries = entries

	logger.Debug("ResultCache initialized", "max_files", config.MaxFiles)
	return rc, nil
}

// Get returns the cached result for path when it was stored under the same
// fingerprint, size and modification time.
func (rc *ResultCache) Get(fingerprint, path string, size int64, modTime time.Time) (*extractor.PerFileResult, bool) {
	entry, ok := rc.entries.Get(cacheKey(fingerprint, path))
	if !ok || entry.size != size || !entry.modTime.Equal(modTime) {
		rc.misses.Add(1)
		return nil, false
	}
	rc.hits.Add(1)
	return entry.result, true
}

// Put stores result for path.
func (rc *ResultCache) Put(fingerprint, path string, size int64, modTime time.Time, result *extractor.PerFileResult) {
	rc.entries.Add(cacheKey(fingerprint, path), cacheEntry{
		size:    size,
		modTime: modTime,
		result:  result,
	})
}

// InvalidateFile drops every entry for path, whatever its fingerprint.
func (rc *ResultCache) InvalidateFile(path string) int {
	removed := 0
	for _, key := range rc.entries.Keys() {
		if _, p := splitCacheKey(key); p == path {
			if rc.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

// Purge drops all entries.
func (rc *ResultCache) Purge() {
	rc.entries.Purge()
}

// Len returns the number of cached entries.
func (rc *ResultCache) Len() int {
	return rc.entries.Len()
}

// GetStats returns current cache statistics.
func (rc *ResultCache) GetStats() ResultCacheStats {
	stats := ResultCacheStats{
		Entries:   rc.entries.Len(),
		Hits:      rc.hits.Load(),
		Misses:    rc.misses.Load(),
		Evictions: rc.evictions.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

const keySep = "\x00"

func cacheKey(fingerprint, path string) string {
	return fingerprint + keySep + path
}

func splitCacheKey(key string) (fingerprint, path string) {
	fingerprint, path, _ = strings.Cut(key, keySep)
	return fingerprint, path
}
