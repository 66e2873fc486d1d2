package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/importi/pkg/scanner"
)

// ChangeHandler is called with the relative paths that changed since the
// last call. It runs on the watcher's timer goroutine; calls never overlap.
type ChangeHandler func(ctx context.Context, events []WatchEvent)

// FileWatcher reports debounced batches of source changes under a root.
// Directories created after Start are picked up, and ignore patterns use
// doublestar syntax. The events only name what triggered a batch; usage is
// global, so handlers rescan the whole tree.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeHandler
	logger   *slog.Logger
	options  WatchOptions
	root     string
	ctx      context.Context

	pending    map[string]WatchEvent
	timer      *time.Timer
	debounceMu sync.Mutex

	// held while onChange runs
	handlerMu sync.Mutex

	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(options WatchOptions, onChange ChangeHandler, logger *slog.Logger) (*FileWatcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	for _, pattern := range options.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", scanner.ErrInvalidPattern, pattern)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.DebounceMs <= 0 {
		options.DebounceMs = 200
	}
	if len(options.Extensions) == 0 {
		options.Extensions = scanner.DefaultOptions().Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileWatcher{
		watcher:  watcher,
		onChange: onChange,
		logger:   logger,
		options:  options,
		pending:  make(map[string]WatchEvent),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching rootPath and every directory below it.
//
// ctx is passed to the change handler; cancelling it does not stop the
// watcher, Stop does.
func (fw *FileWatcher) Start(ctx context.Context, rootPath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	fw.root = rootPath
	fw.ctx = ctx

	if err := fw.addTree(rootPath); err != nil {
		return err
	}

	fw.started = true
	fw.logger.Info("File watcher started", "root", rootPath)

	go fw.eventLoop()

	return nil
}

// addTree watches dir and its subdirectories, skipping ignored ones.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			fw.logger.Warn("Walk error", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop closes the watcher and drops pending changes. Repeat calls return nil.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return nil
	}

	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.pending = make(map[string]WatchEvent)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("File watcher stopped")
	return err
}

// eventLoop is the main event processing loop.
func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// handleEvent filters a file system event and queues it.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if fw.shouldIgnore(path) {
		return
	}

	// A new directory may already contain files; watch it and rescan.
	if event.Op.Has(fsnotify.Create) && isDir(path) {
		if err := fw.addTree(path); err != nil {
			fw.logger.Warn("Failed to watch new directory", "path", path, "error", err)
		}
		fw.queue(path, event.Op)
		return
	}

	if !scanner.HasExtension(path, fw.options.Extensions) {
		// Removing or renaming a directory removes the files inside it.
		if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
			return
		}
		if filepath.Ext(path) != "" {
			return
		}
	}

	if event.Op == fsnotify.Chmod {
		return
	}

	fw.logger.Debug("File event", "op", event.Op.String(), "file", path)
	fw.queue(path, event.Op)
}

// queue records a change and restarts the debounce timer.
func (fw *FileWatcher) queue(path string, op fsnotify.Op) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	rel := fw.relative(path)
	fw.pending[rel] = WatchEvent{
		FilePath:  rel,
		Op:        op.String(),
		Timestamp: time.Now(),
	}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		fw.flush,
	)
}

// flush hands the pending batch to the handler.
func (fw *FileWatcher) flush() {
	fw.debounceMu.Lock()
	if len(fw.pending) == 0 {
		fw.debounceMu.Unlock()
		return
	}
	events := make([]WatchEvent, 0, len(fw.pending))
	for _, ev := range fw.pending {
		events = append(events, ev)
	}
	fw.pending = make(map[string]WatchEvent)
	fw.debounceMu.Unlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].FilePath < events[j].FilePath
	})

	fw.handlerMu.Lock()
	defer fw.handlerMu.Unlock()

	select {
	case <-fw.stopChan:
		return
	default:
	}

	fw.logger.Debug("Dispatching changes", "count", len(events))
	fw.onChange(fw.ctx, events)
}

// shouldIgnore checks a path against the ignore patterns.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	rel := fw.relative(path)
	base := filepath.Base(path)

	for _, pattern := range fw.options.IgnorePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (fw *FileWatcher) relative(path string) string {
	if fw.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.pending)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingChanges: pending,
		IsRunning:      running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingChanges int
	IsRunning      bool
}
