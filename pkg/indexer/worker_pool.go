package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/util"
)

// FileJob represents a file to be processed by the worker pool.
type FileJob struct {
	// FilePath is the path relative to the scan root; it labels the result.
	FilePath string

	// AbsPath is the path the file is read from.
	AbsPath string

	// JobID is the file's position in discovery order.
	JobID int
}

// FileResult contains the extraction result for a file.
type FileResult struct {
	FilePath string
	Result   *extractor.PerFileResult
	JobID    int

	// Cached is true when the result came from the ResultCache.
	Cached bool
}

// WorkerPool extracts files on a fixed set of goroutines.
//
// Jobs carry their discovery index so the collector can store results by
// position. Results and failures come back on separate channels, and the
// collector must be draining both before the first Submit. Cancelling the
// context passed to NewWorkerPool stops the workers and unblocks Submit.
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	extractor  *extractor.Extractor
	files      util.FileCache
	cache      *ResultCache
	logger     *slog.Logger

	// fingerprint of the extractor config, for ResultCache keys
	fingerprint string

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
	cacheHits     atomic.Int64
}

// NewWorkerPool builds a pool that reads through files and, when cache is
// non-nil, consults the ResultCache before reading. numWorkers <= 0 picks
// util.GetOptimalPoolSize.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	ext *extractor.Extractor,
	files util.FileCache,
	cache *ResultCache,
	logger *slog.Logger,
) *WorkerPool {
	numWorkers = util.GetOptimalPoolSizeWithOverride(numWorkers)

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobs:        make(chan FileJob, numWorkers*2),
		results:     make(chan FileResult, numWorkers),
		errors:      make(chan FileError, numWorkers),
		extractor:   ext,
		files:       files,
		cache:       cache,
		logger:      logger,
		fingerprint: ext.Config().Fingerprint(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers. Submit before Start blocks until a worker
// exists to take the job.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("WorkerPool already started")
		return
	}

	wp.logger.Debug("Starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker receives jobs until the jobs channel is closed or the context is
// cancelled.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("Worker cancelled", "worker_id", id)
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

// processJob processes a single file job.
func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	var info os.FileInfo
	if wp.cache != nil {
		var err error
		info, err = os.Stat(job.AbsPath)
		if err != nil {
			wp.fail(job, fmt.Errorf("failed to stat file: %w", err))
			return
		}
		if result, ok := wp.cache.Get(wp.fingerprint, job.AbsPath, info.Size(), info.ModTime()); ok {
			wp.cacheHits.Add(1)
			wp.succeed(job, result, true)
			return
		}
	}

	content, err := wp.files.Read(job.AbsPath)
	if err != nil {
		wp.logger.Debug("File read error", "worker_id", workerID, "file", job.FilePath, "error", err)
		wp.fail(job, fmt.Errorf("failed to read file: %w", err))
		return
	}

	result, err := wp.extractor.ExtractFile(job.FilePath, content)
	if err != nil {
		wp.fail(job, fmt.Errorf("extraction failed: %w", err))
		return
	}

	if wp.cache != nil {
		wp.cache.Put(wp.fingerprint, job.AbsPath, info.Size(), info.ModTime(), result)
	}

	wp.succeed(job, result, false)
}

func (wp *WorkerPool) succeed(job FileJob, result *extractor.PerFileResult, cached bool) {
	wp.jobsProcessed.Add(1)
	select {
	case <-wp.ctx.Done():
	case wp.results <- FileResult{FilePath: job.FilePath, Result: result, JobID: job.JobID, Cached: cached}:
	}
}

func (wp *WorkerPool) fail(job FileJob, err error) {
	wp.jobsFailed.Add(1)
	select {
	case <-wp.ctx.Done():
	case wp.errors <- FileError{FilePath: job.FilePath, JobID: job.JobID, Error: err}:
	}
}

// Submit queues job, waiting for room in the jobs channel.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	wp.jobsSubmitted.Add(1)

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled: %w", wp.ctx.Err())
	case wp.jobs <- job:
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel; workers exit after draining it.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
		wp.logger.Debug("Jobs channel closed", "total_submitted", wp.jobsSubmitted.Load())
	}
}

// Wait blocks until all workers have finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop cancels whatever is still queued, waits for the workers, then
// closes the result channels. Call it once the collector has what it needs;
// later calls do nothing.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}

	wp.cancel()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("Worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load(),
		"cache_hits", wp.cacheHits.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		CacheHits:     wp.cacheHits.Load(),
		QueueLength:   len(wp.jobs),
		ResultsQueued: len(wp.results),
		ErrorsQueued:  len(wp.errors),
	}
}

// WorkerPoolStats is a point-in-time view of a WorkerPool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	CacheHits     int64

	// Channel backlogs at the time of the call.
	QueueLength   int
	ResultsQueued int
	ErrorsQueued  int
}
