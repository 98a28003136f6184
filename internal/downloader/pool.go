package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"igcarousel/pkg/dedup"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/ratelimit"
)

// DownloadJob is a single carousel image to fetch and store.
type DownloadJob struct {
	URL       string
	Shortcode string
	Index     int
}

// DownloadResult reports the outcome of one job.
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	Error    error
	Path     string
	Hash     string
	Size     int
	Duration time.Duration
}

// ImageDownloader fetches image bytes from a URL.
type ImageDownloader interface {
	DownloadImage(url string) ([]byte, error)
}

// ImageStorage persists image bytes for a post and carousel index.
type ImageStorage interface {
	IsSaved(shortcode string, index int) bool
	SavedPath(shortcode string, index int) string
	SaveImage(data []byte, shortcode string, index int) (string, error)
}

// WorkerPool downloads carousel images concurrently.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      ImageDownloader
	storage     ImageStorage
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a download worker pool.
func NewWorkerPool(
	numWorkers int,
	client ImageDownloader,
	storage ImageStorage,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		storage:     storage,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop drains the queue, waits for workers and closes the result
// channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Info("Worker pool stopped")
}

// Submit adds a download job to the queue.
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel download results are delivered on.
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job}

	if wp.storage.IsSaved(job.Shortcode, job.Index) {
		wp.logger.DebugWithFields("Image already saved", map[string]interface{}{
			"shortcode": job.Shortcode,
			"index":     job.Index,
		})
		result.Success = true
		result.Path = wp.storage.SavedPath(job.Shortcode, job.Index)
		result.Duration = time.Since(start)
		return result
	}

	if !wp.rateLimiter.Allow() {
		wp.rateLimiter.Wait()
	}

	data, err := wp.client.DownloadImage(job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to download image", map[string]interface{}{
			"worker_id": workerID,
			"shortcode": job.Shortcode,
			"index":     job.Index,
			"error":     err.Error(),
		})

		return result
	}

	result.Size = len(data)
	result.Hash = dedup.HashBytes(data)

	path, err := wp.storage.SaveImage(data, job.Shortcode, job.Index)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save image", map[string]interface{}{
			"worker_id": workerID,
			"shortcode": job.Shortcode,
			"index":     job.Index,
			"error":     err.Error(),
		})

		return result
	}

	result.Path = path
	result.Success = true
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed job", map[string]interface{}{
		"worker_id": workerID,
		"shortcode": job.Shortcode,
		"index":     job.Index,
		"size":      result.Size,
	})

	return result
}

// QueueSize returns the number of queued jobs.
func (wp *WorkerPool) QueueSize() int {
	return len(wp.jobQueue)
}
