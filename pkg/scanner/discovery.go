// Package scanner locates the source files a scan reads.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned when an exclude pattern is not valid glob syntax.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// Source extensions scanned by default.
const (
	ExtTS  = ".ts"
	ExtTSX = ".tsx"
)

// Options configures file discovery.
type Options struct {
	// Extensions a file name must end with to be returned.
	Extensions []string
	// Exclude glob patterns, matched against the slash-separated path
	// relative to the root. A matching directory is skipped entirely.
	Exclude []string
}

// DefaultOptions returns the options used for a project scan: every .ts
// and .tsx file, nothing excluded.
func DefaultOptions() Options {
	return Options{
		Extensions: []string{ExtTS, ExtTSX},
	}
}

// DiscoverFiles walks rootDir and returns every file whose name ends with
// one of opts.Extensions.
//
// Paths are relative to rootDir and use forward slashes. Order is the
// lexical walk order of filepath.WalkDir, so it is stable for a given tree.
// Walk errors (missing root, unreadable directory) are returned as-is.
// Symlinks are not followed.
func DiscoverFiles(rootDir string, opts Options) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
		}
	}

	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if relPath != "." && excluded(relPath, opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if HasExtension(d.Name(), opts.Extensions) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// HasExtension reports whether name ends with any of exts.
//
// This is a plain suffix test: "types.d.ts" has extension ".ts" and
// "Button.tsx" does not.
func HasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func excluded(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
