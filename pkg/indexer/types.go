package indexer

import (
	"time"

	"github.com/gnana997/importi/pkg/catalog"
	"github.com/gnana997/importi/pkg/extractor"
)

// ProjectIndex is everything extracted from one scan of a source tree.
//
// It is built once by Builder.Build and treated as read-only afterwards.
type ProjectIndex struct {
	// Root is the directory that was scanned.
	Root string `json:"root"`

	// Files are the scanned paths relative to Root, in discovery order.
	Files []string `json:"files"`

	// Imports maps every scanned file to its import specifiers.
	Imports map[string]extractor.ImportRecord `json:"imports"`

	// Exports maps files that declare at least one export to their
	// declarations in line order.
	Exports map[string][]extractor.ExportDeclaration `json:"exports"`

	// Components are the component candidates in discovery order.
	Components []catalog.ComponentCandidate `json:"components"`
}

// ExportsInOrder returns all declarations ordered by file discovery order,
// then by line.
func (p *ProjectIndex) ExportsInOrder() []extractor.ExportDeclaration {
	decls := make([]extractor.ExportDeclaration, 0)
	for _, f := range p.Files {
		decls = append(decls, p.Exports[f]...)
	}
	return decls
}

// ImportsInOrder returns the import records of all files in discovery order.
func (p *ProjectIndex) ImportsInOrder() []extractor.ImportRecord {
	records := make([]extractor.ImportRecord, 0, len(p.Files))
	for _, f := range p.Files {
		if rec, ok := p.Imports[f]; ok {
			records = append(records, rec)
		}
	}
	return records
}

// UsageSurface returns every import specifier of the project, flattened in
// discovery order. Duplicates are kept.
func (p *ProjectIndex) UsageSurface() []string {
	surface := make([]string, 0)
	for _, f := range p.Files {
		surface = append(surface, p.Imports[f].Names...)
	}
	return surface
}

// BuildOptions configures a project scan.
type BuildOptions struct {
	// Exclude patterns (doublestar syntax, relative to the scan root).
	Exclude []string

	// Workers is the extraction worker count. 0 = util.GetOptimalPoolSize().
	Workers int

	// ComponentExtension identifies component files. "" = ".tsx".
	ComponentExtension string
}

// DefaultBuildOptions returns recommended build options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ComponentExtension: catalog.DefaultExtension,
	}
}

// ScanStats contains statistics about a project scan.
type ScanStats struct {
	// FilesDiscovered is the total number of files found
	FilesDiscovered int `json:"files_discovered"`

	// FilesIndexed is the number of files successfully extracted
	FilesIndexed int `json:"files_indexed"`

	// FilesFailed is the number of files that could not be read
	FilesFailed int `json:"files_failed"`

	// CacheHits is the number of files served from the ResultCache
	CacheHits int `json:"cache_hits"`

	// ImportsExtracted is the total number of import specifiers
	ImportsExtracted int `json:"imports_extracted"`

	// ExportsExtracted is the total number of export declarations
	ExportsExtracted int `json:"exports_extracted"`

	// ComponentsFound is the number of component candidates
	ComponentsFound int `json:"components_found"`

	// WorkerCount is the number of workers used
	WorkerCount int `json:"worker_count"`

	DiscoveryTimeMs int64 `json:"discovery_time_ms"`
	IndexingTimeMs  int64 `json:"indexing_time_ms"`
	TotalTimeMs     int64 `json:"total_time_ms"`

	// FilesPerSecond is the extraction throughput
	FilesPerSecond float64 `json:"files_per_second"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// FileError represents an error that occurred while processing a file.
type FileError struct {
	FilePath string
	JobID    int
	Error    error
}

// ProgressCallback is called after each file is extracted.
//
// Parameters:
//   - indexed: Number of files processed so far
//   - total: Total number of files to process
//   - currentFile: Relative path of the file just processed
type ProgressCallback func(indexed, total int, currentFile string)

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// DebounceMs is the debounce delay in milliseconds.
	// Changes within the window are grouped into a single rescan.
	// Default: 200ms
	DebounceMs int

	// IgnorePatterns are doublestar patterns matched against the path
	// relative to the watched root and against the base name.
	IgnorePatterns []string

	// Extensions of files whose changes trigger a rescan.
	// Default: .ts and .tsx
	Extensions []string
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"**/*.swp",
			"**/*.tmp",
			"**/*~",
			"node_modules/**",
			".git/**",
		},
	}
}

// WatchEvent represents a relevant file system change.
type WatchEvent struct {
	// FilePath is the path relative to the watched root
	FilePath string

	// Op is the operation that occurred (CREATE, WRITE, REMOVE, RENAME)
	Op string

	// Timestamp is when the event was received
	Timestamp time.Time
}
