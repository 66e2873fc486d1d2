package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

// FileCache serves source file contents for the lifetime of one scan.
//
// Files are memory-mapped on first read and stay mapped until Close. The
// byte slices returned by Read alias the mapping, so callers must copy what
// they keep before Close runs. Safe for concurrent use.
type FileCache interface {
	Read(path string) ([]byte, error)
	Size() int
	Stats() FileCacheStats
	Close() error
}

// FileCacheConfig bounds a FileCache. Zero values mean no limit.
type FileCacheConfig struct {
	MaxFiles int
	MaxBytes int64

	Logger *slog.Logger
}

// DefaultFileCacheConfig allows 10K files and 1GB of mapped source.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{MaxFiles: 10000, MaxBytes: 1 << 30}
}

// UnboundedFileCacheConfig returns a config without limits.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{}
}

// FileCacheStats is a snapshot of FileCache counters.
type FileCacheStats struct {
	FilesLoaded  int
	Hits         int64
	Misses       int64
	MmapFailures int
	Bytes        int64
}

// NewFileCache returns an mmap-backed FileCache. A nil config means
// DefaultFileCacheConfig.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &mappedFiles{
		maxFiles: config.MaxFiles,
		maxBytes: config.MaxBytes,
		logger:   logger,
		entries:  make(map[string]*sourceEntry),
	}
}

type sourceEntry struct {
	data   []byte
	region mmap.MMap // nil for empty files and read fallbacks
}

type mappedFiles struct {
	maxFiles int
	maxBytes int64
	logger   *slog.Logger

	mu           sync.RWMutex
	entries      map[string]*sourceEntry
	bytes        int64
	loaded       int
	mmapFailures int

	hits   atomic.Int64
	misses atomic.Int64
}

func (m *mappedFiles) Read(path string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[path]
	m.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		return e.data, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another worker may have loaded it between the two locks.
	if e, ok := m.entries[path]; ok {
		m.hits.Add(1)
		return e.data, nil
	}

	e, err := m.load(path)
	if err != nil {
		m.misses.Add(1)
		return nil, err
	}
	m.entries[path] = e
	m.bytes += int64(len(e.data))
	m.loaded++
	return e.data, nil
}

// load maps path. Caller holds mu for writing.
func (m *mappedFiles) load(path string) (*sourceEntry, error) {
	if m.maxFiles > 0 && len(m.entries) >= m.maxFiles {
		return nil, fmt.Errorf("file cache limit reached: %d files", m.maxFiles)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if m.maxBytes > 0 && m.bytes+size > m.maxBytes {
		return nil, fmt.Errorf("file cache memory limit reached: %d + %d bytes exceeds %d",
			m.bytes, size, m.maxBytes)
	}
	if size == 0 {
		return &sourceEntry{}, nil
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err == nil {
		return &sourceEntry{data: region, region: region}, nil
	}

	m.logger.Warn("mmap failed, reading file instead", "file", path, "error", err)
	m.mmapFailures++
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read %s: %w", path, readErr)
	}
	return &sourceEntry{data: data}, nil
}

func (m *mappedFiles) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *mappedFiles) Stats() FileCacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return FileCacheStats{
		FilesLoaded:  m.loaded,
		Hits:         m.hits.Load(),
		Misses:       m.misses.Load(),
		MmapFailures: m.mmapFailures,
		Bytes:        m.bytes,
	}
}

// Close unmaps every file. Calling it again is a no-op.
func (m *mappedFiles) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for path, e := range m.entries {
		if e.region == nil {
			continue
		}
		if err := e.region.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %s: %w", path, err))
		}
	}
	if len(m.entries) > 0 {
		m.logger.Debug("file cache closed",
			"files", len(m.entries),
			"bytes", m.bytes,
			"hits", m.hits.Load(),
			"mmap_failures", m.mmapFailures)
	}
	m.entries = make(map[string]*sourceEntry)
	m.bytes = 0
	return errors.Join(errs...)
}
