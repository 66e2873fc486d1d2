package util

import "runtime"

// GetOptimalPoolSize returns the worker count for per-file extraction.
//
// Formula: min(max(runtime.NumCPU(), 2), 16)
//
// Extraction is a short read plus a line scan per file, so it is mostly
// I/O bound on small trees and CPU bound on large ones. One worker per core
// is enough; the cap keeps the number of simultaneously mapped files low.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU()

	if poolSize < 2 {
		poolSize = 2
	}
	if poolSize > 16 {
		poolSize = 16
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns pool size with optional override.
//
// If override > 0, uses override value (config `workers`, tests).
// Otherwise, uses GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
