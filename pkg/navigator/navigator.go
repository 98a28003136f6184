package navigator

import (
	"context"
	"time"

	"igcarousel/pkg/carousel"
	"igcarousel/pkg/config"
	"igcarousel/pkg/dedup"
	"igcarousel/pkg/learning"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/snapshot"
)

// Driver is the external page-driving capability the navigator loops
// over. Snapshot captures the current page state; Step attempts to
// advance the carousel by one image, trying its sub-strategies in
// order, and reports whether any of them worked and which one. A
// failed step is ordinary control flow, not an error.
type Driver interface {
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
	Step(ctx context.Context) (advanced bool, strategy string)
}

// Navigator owns the carousel extraction loop: collect, classify,
// select, union, step, repeat. Stepping and settling belong to the
// driver; the navigator only decides when to stop.
type Navigator struct {
	rules  carousel.SelectionRules
	cfg    config.NavigationConfig
	learn  learning.Store
	logger logger.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLearningStore records per-strategy step outcomes to the store.
func WithLearningStore(store learning.Store) Option {
	return func(n *Navigator) { n.learn = store }
}

// WithLogger overrides the default logger.
func WithLogger(log logger.Logger) Option {
	return func(n *Navigator) { n.logger = log }
}

// New creates a Navigator with the given selection rules and
// navigation settings.
func New(rules carousel.SelectionRules, cfg config.NavigationConfig, opts ...Option) *Navigator {
	n := &Navigator{
		rules:  rules,
		cfg:    cfg,
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ExtractCarousel runs the navigation loop until the expected number
// of images is accumulated, a round of navigation yields nothing new,
// the driver can no longer advance, or the attempt cap
// (expectedCount plus the configured margin) is reached.
//
// Navigation failures are non-fatal: the loop stops early and returns
// whatever was accumulated. It is the caller's job to compare the
// result length against expectedCount. The only hard error is a
// driver that cannot produce the initial snapshot.
func (n *Navigator) ExtractCarousel(ctx context.Context, driver Driver, expectedCount int) ([]string, error) {
	if expectedCount < 1 {
		expectedCount = 1
	}

	snap, err := driver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	isCarousel := expectedCount > 1 || snap.HasNavigation()
	seen := dedup.NewSet()
	var collected []string

	absorb := func(s snapshot.Snapshot) int {
		candidates := carousel.Collect(s)
		selected := carousel.Select(carousel.Classify(candidates), isCarousel, n.rules)

		added := 0
		for _, url := range carousel.URLs(selected) {
			if seen.AddIfNotExists(dedup.CanonicalPattern(url)) {
				collected = append(collected, url)
				added++
			}
		}
		return added
	}

	absorb(snap)

	maxAttempts := expectedCount + n.cfg.AttemptMargin
	for attempt := 1; len(collected) < expectedCount && attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return collected, ctx.Err()
		}

		advanced, strategy := driver.Step(ctx)
		logger.LogNavigation(strategy, attempt, advanced)
		n.recordStrategy(strategy, advanced)
		if !advanced {
			n.logger.DebugWithFields("navigation exhausted, stopping early", map[string]interface{}{
				"attempt":   attempt,
				"collected": len(collected),
			})
			break
		}

		if n.cfg.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return collected, ctx.Err()
			case <-time.After(n.cfg.StepDelay):
			}
		}

		snap, err := driver.Snapshot(ctx)
		if err != nil {
			// Mid-loop snapshot failures end the loop, not the extraction
			n.logger.WithError(err).Warn("snapshot failed after navigation, keeping partial result")
			break
		}

		if absorb(snap) == 0 {
			// A full round with nothing new means the end of the carousel
			n.logger.DebugWithFields("no new images after navigation", map[string]interface{}{
				"attempt":   attempt,
				"collected": len(collected),
			})
			break
		}
	}

	n.logger.InfoWithFields("carousel navigation finished", map[string]interface{}{
		"expected":    expectedCount,
		"collected":   len(collected),
		"is_carousel": isCarousel,
	})

	return collected, nil
}

func (n *Navigator) recordStrategy(strategy string, success bool) {
	if n.learn == nil || strategy == "" {
		return
	}
	if err := n.learn.Record(strategy, success); err != nil {
		n.logger.WithError(err).Warn("failed to record strategy outcome")
	}
}
