package indexer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/importi/pkg/util"
)

type changeRecorder struct {
	mu      sync.Mutex
	batches [][]WatchEvent
}

func (r *changeRecorder) handle(_ context.Context, events []WatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *changeRecorder) files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, b := range r.batches {
		for _, ev := range b {
			files = append(files, ev.FilePath)
		}
	}
	return files
}

func startWatcher(t *testing.T, root string, rec *changeRecorder) *FileWatcher {
	t.Helper()
	opts := DefaultWatchOptions()
	opts.DebounceMs = 50

	w, err := NewFileWatcher(opts, rec.handle, util.NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), root))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestFileWatcher_ReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/user.ts", "export intraface User {")

	rec := &changeRecorder{}
	w := startWatcher(t, root, rec)
	assert.True(t, w.GetStats().IsRunning)

	writeFile(t, root, "models/user.ts", "export intraface User {\n  id: string;\n")

	require.Eventually(t, func() bool {
		return len(rec.files()) > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, rec.files(), "models/user.ts")
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()

	rec := &changeRecorder{}
	startWatcher(t, root, rec)

	writeFile(t, root, "notes.md", "# notes")
	writeFile(t, root, "draft.ts.swp", "")
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, rec.files())

	writeFile(t, root, "Button.tsx", "export default function Button() {}")
	require.Eventually(t, func() bool {
		return len(rec.files()) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.NotContains(t, rec.files(), "notes.md")
}

func TestFileWatcher_DebouncesBurst(t *testing.T) {
	root := t.TempDir()

	rec := &changeRecorder{}
	startWatcher(t, root, rec)

	for i := 0; i < 5; i++ {
		writeFile(t, root, "app.ts", "import { A } from './a';")
	}

	require.Eventually(t, func() bool {
		return len(rec.files()) > 0
	}, 5*time.Second, 20*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.batches)
	assert.Len(t, rec.batches[0], 1, "repeated events for one file collapse")
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()

	rec := &changeRecorder{}
	startWatcher(t, root, rec)

	writeFile(t, root, "feature/index.ts", "export type Feature = string;")

	require.Eventually(t, func() bool {
		return len(rec.files()) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, rec.files(), "feature")
}

func TestFileWatcher_StartErrors(t *testing.T) {
	rec := &changeRecorder{}

	_, err := NewFileWatcher(DefaultWatchOptions(), nil, nil)
	assert.Error(t, err)

	opts := DefaultWatchOptions()
	opts.IgnorePatterns = []string{"[bad"}
	_, err = NewFileWatcher(opts, rec.handle, nil)
	assert.Error(t, err)

	w, err := NewFileWatcher(DefaultWatchOptions(), rec.handle, util.NewDiscardLogger())
	require.NoError(t, err)
	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	assert.Error(t, w.Start(context.Background(), t.TempDir()), "stopped watcher cannot restart")
	assert.False(t, w.GetStats().IsRunning)
}
