// Package extractor ties the pipeline together: navigate the post
// page, collect and select candidate images, deduplicate, and
// optionally download the final set.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"igcarousel/internal/downloader"
	"igcarousel/pkg/carousel"
	"igcarousel/pkg/config"
	"igcarousel/pkg/dedup"
	"igcarousel/pkg/errors"
	"igcarousel/pkg/instagram"
	"igcarousel/pkg/learning"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/navigator"
	"igcarousel/pkg/ratelimit"
	"igcarousel/pkg/storage"
)

// Options controls a single extraction run.
type Options struct {
	// ExpectedCount is the number of images the post is believed to
	// hold. Zero or one means a single-image post unless the page shows
	// navigation controls.
	ExpectedCount int
	// Download fetches the final URL set to disk.
	Download bool
}

// Result is the outcome of one extraction run.
type Result struct {
	RunID     string
	Shortcode string
	// URLs is the deduplicated main-post image set, in page order.
	URLs []string
	// Hashes maps surviving URLs to content hashes when content-hash
	// dedup ran.
	Hashes map[string]string
	// Files lists paths written when downloading was requested.
	Files []string
	// Expected echoes the expected count the run was asked for.
	Expected int
	// Partial is set when navigation stopped before reaching Expected.
	Partial bool
}

// Extractor orchestrates carousel extraction runs. One Extractor can
// serve many posts; its content-hash set spans runs so repeated images
// across posts are caught.
type Extractor struct {
	cfg        *config.Config
	client     *instagram.Client
	learn      learning.Store
	seenHashes *dedup.Set
	logger     logger.Logger
}

// New creates an Extractor from configuration.
func New(cfg *config.Config) (*Extractor, error) {
	log := logger.GetLogger()

	learn, err := learning.NewFileStore()
	var store learning.Store = learn
	if err != nil {
		log.WithError(err).Warn("navigation strategy store unavailable, using in-memory store")
		store = learning.NewMemoryStore()
	}

	return &Extractor{
		cfg:        cfg,
		client:     instagram.NewClientWithConfig(cfg, log),
		learn:      store,
		seenHashes: dedup.NewSet(),
		logger:     log,
	}, nil
}

// Client returns the underlying Instagram client.
func (e *Extractor) Client() *instagram.Client {
	return e.client
}

// Learning returns the navigation strategy store.
func (e *Extractor) Learning() learning.Store {
	return e.learn
}

// Extract runs the full pipeline for one post. The driver supplies
// page snapshots and navigation steps; shortcode may be a bare code or
// a full post URL.
func (e *Extractor) Extract(ctx context.Context, shortcode string, driver navigator.Driver, opts Options) (*Result, error) {
	shortcode = instagram.SanitizeShortcode(shortcode)
	if !instagram.IsValidShortcode(shortcode) {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeInvalidInput,
			Message: fmt.Sprintf("invalid shortcode: %q", shortcode),
		}
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Shortcode: shortcode,
		Expected:  opts.ExpectedCount,
	}

	e.logger.InfoWithFields("Starting extraction", map[string]interface{}{
		"run_id":    result.RunID,
		"shortcode": shortcode,
		"expected":  opts.ExpectedCount,
	})

	nav := navigator.New(e.selectionRules(), e.cfg.Navigation,
		navigator.WithLearningStore(e.learn),
		navigator.WithLogger(e.logger),
	)

	urls, err := nav.ExtractCarousel(ctx, driver, opts.ExpectedCount)
	if err != nil {
		return nil, err
	}

	urls = dedup.ByPattern(urls)

	if e.cfg.Dedup.ContentHash {
		hashCtx := ctx
		if e.cfg.Dedup.FetchTimeout > 0 {
			var cancel context.CancelFunc
			hashCtx, cancel = context.WithTimeout(ctx, e.cfg.Dedup.FetchTimeout*time.Duration(len(urls)+1))
			defer cancel()
		}
		hr := dedup.ByContentHash(hashCtx, urls, e.client, e.seenHashes, e.logger)
		urls = hr.URLs
		result.Hashes = hr.Hashes
	}

	result.URLs = urls
	result.Partial = opts.ExpectedCount > 1 && len(urls) < opts.ExpectedCount
	logger.LogExtraction(shortcode, opts.ExpectedCount, len(urls))

	if opts.Download && len(urls) > 0 {
		files, err := e.download(urls, shortcode)
		if err != nil {
			return result, err
		}
		result.Files = files
	}

	return result, nil
}

func (e *Extractor) selectionRules() carousel.SelectionRules {
	rules := carousel.DefaultRules()
	if e.cfg.Selection.PositionalWindow > 0 {
		rules.PositionalWindow = e.cfg.Selection.PositionalWindow
	}
	if e.cfg.Selection.MaxCarouselSize > 0 {
		rules.MaxCarouselSize = e.cfg.Selection.MaxCarouselSize
	}
	if e.cfg.Selection.FallbackCap > 0 {
		rules.FallbackCap = e.cfg.Selection.FallbackCap
	}
	return rules
}

func (e *Extractor) outputDir(shortcode string) string {
	if e.cfg.Output.CreatePostFolders {
		return filepath.Join(e.cfg.Output.BaseDirectory, shortcode)
	}
	return e.cfg.Output.BaseDirectory
}

// download fetches the final URL set through the worker pool and
// returns the paths written, in carousel order.
func (e *Extractor) download(urls []string, shortcode string) ([]string, error) {
	manager, err := storage.NewManager(e.outputDir(shortcode))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	requests := e.cfg.RateLimit.RequestsPerMinute
	if requests <= 0 {
		requests = 60
	}
	limiter := ratelimit.NewTokenBucket(requests, time.Minute)

	workers := e.cfg.Download.ConcurrentDownloads
	if workers <= 0 {
		workers = 3
	}

	pool := downloader.NewWorkerPool(workers, e.client, manager, limiter, e.logger)
	pool.Start()

	done := make(chan struct{})
	paths := make([]string, len(urls))
	var firstErr error
	go func() {
		defer close(done)
		for result := range pool.Results() {
			logger.LogDownload(shortcode, result.Job.URL, result.Success, result.Error)
			if !result.Success {
				if firstErr == nil {
					firstErr = result.Error
				}
				continue
			}
			if result.Path != "" && result.Job.Index < len(paths) {
				paths[result.Job.Index] = result.Path
			}
		}
	}()

	for i, url := range urls {
		if err := pool.Submit(downloader.DownloadJob{URL: url, Shortcode: shortcode, Index: i}); err != nil {
			break
		}
	}

	pool.Stop()
	<-done

	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			files = append(files, p)
		}
	}

	if firstErr != nil && len(files) == 0 {
		return nil, fmt.Errorf("all downloads failed: %w", firstErr)
	}
	if firstErr != nil {
		e.logger.WithError(firstErr).Warn("Some downloads failed")
	}

	return files, nil
}
