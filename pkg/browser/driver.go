package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"igcarousel/pkg/config"
	"igcarousel/pkg/errors"
	"igcarousel/pkg/learning"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/snapshot"
)

// Navigation strategy names, as recorded in the learning store.
const (
	StrategyButtonClick   = "button_click"
	StrategyKeyboardArrow = "keyboard_arrow"
	StrategyTouchSwipe    = "touch_swipe"
	StrategyScript        = "script_fallback"
)

// defaultStrategyOrder is the order sub-strategies are attempted when
// no learning data says otherwise.
var defaultStrategyOrder = []string{
	StrategyButtonClick,
	StrategyKeyboardArrow,
	StrategyTouchSwipe,
	StrategyScript,
}

// nextButtonSelector matches the carousel advance control.
const nextButtonSelector = `button[aria-label="Next"]`

// advanceScript is the last-resort JS fallback: find and click any
// next-looking control directly.
const advanceScript = `(() => {
	const btn = document.querySelector('button[aria-label="Next"], div[role="button"][aria-label="Next"]');
	if (!btn) return false;
	btn.click();
	return true;
})()`

// Driver drives a real browser tab on a post page via chromedp. It
// implements navigator.Driver: snapshots are the tab's serialized DOM,
// steps try click, keyboard, touch and script sub-strategies in turn.
type Driver struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.NavigationConfig
	learn  learning.Store
	logger logger.Logger
}

// NewDriver launches a headless browser, navigates to the post page
// and waits for the first image to render. Close must be called to
// release the browser.
func NewDriver(ctx context.Context, pageURL string, cfg config.NavigationConfig, learn learning.Store, log logger.Logger) (*Driver, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	d := &Driver{
		ctx: taskCtx,
		cancel: func() {
			taskCancel()
			allocCancel()
		},
		cfg:    cfg,
		learn:  learn,
		logger: log,
	}

	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("img", chromedp.ByQuery),
	); err != nil {
		d.cancel()
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNavigation,
			Message: "failed to open post page: " + err.Error(),
		}
	}

	return d, nil
}

// Close releases the browser tab and allocator.
func (d *Driver) Close() {
	d.cancel()
}

// Snapshot serializes the tab's current DOM into a page snapshot.
func (d *Driver) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	runCtx, cancel := d.boundedCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeSnapshot,
			Message: "failed to capture page snapshot: " + err.Error(),
		}
	}

	return snapshot.ParseHTML(html)
}

// Step tries each navigation sub-strategy until one advances the
// carousel, then waits for content to settle. The historically best
// strategy goes first.
func (d *Driver) Step(ctx context.Context) (bool, string) {
	for _, strategy := range d.strategyOrder() {
		if err := d.runStrategy(ctx, strategy); err != nil {
			d.logger.DebugWithFields("navigation sub-strategy failed", map[string]interface{}{
				"strategy": strategy,
				"error":    err.Error(),
			})
			continue
		}

		d.settle(ctx)
		return true, strategy
	}

	return false, ""
}

// strategyOrder puts the learning store's best strategy first.
func (d *Driver) strategyOrder() []string {
	if d.learn == nil {
		return defaultStrategyOrder
	}

	best := d.learn.Best()
	if best == "" || best == defaultStrategyOrder[0] {
		return defaultStrategyOrder
	}

	order := make([]string, 0, len(defaultStrategyOrder))
	order = append(order, best)
	for _, s := range defaultStrategyOrder {
		if s != best {
			order = append(order, s)
		}
	}
	return order
}

func (d *Driver) runStrategy(ctx context.Context, strategy string) error {
	runCtx, cancel := d.boundedCtx(ctx)
	defer cancel()

	switch strategy {
	case StrategyButtonClick:
		return chromedp.Run(runCtx,
			chromedp.Click(nextButtonSelector, chromedp.ByQuery, chromedp.NodeVisible),
		)
	case StrategyKeyboardArrow:
		return chromedp.Run(runCtx, chromedp.KeyEvent(kb.ArrowRight))
	case StrategyTouchSwipe:
		return chromedp.Run(runCtx, chromedp.ActionFunc(swipeLeft))
	case StrategyScript:
		var clicked bool
		if err := chromedp.Run(runCtx, chromedp.Evaluate(advanceScript, &clicked)); err != nil {
			return err
		}
		if !clicked {
			return &errors.Error{
				Type:    errors.ErrorTypeNavigation,
				Message: "no advance control found by script",
			}
		}
		return nil
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeNavigation,
			Message: "unknown strategy: " + strategy,
		}
	}
}

// swipeLeft dispatches a right-to-left touch drag across the viewport
// center, the gesture Instagram's mobile layout expects.
func swipeLeft(ctx context.Context) error {
	start := &input.TouchPoint{X: 600, Y: 400}
	end := &input.TouchPoint{X: 100, Y: 400}

	if err := input.DispatchTouchEvent(input.TouchStart, []*input.TouchPoint{start}).Do(ctx); err != nil {
		return err
	}
	if err := input.DispatchTouchEvent(input.TouchMove, []*input.TouchPoint{end}).Do(ctx); err != nil {
		return err
	}
	return input.DispatchTouchEvent(input.TouchEnd, []*input.TouchPoint{}).Do(ctx)
}

// settle gives the page time to render the next carousel image.
// Instagram swaps images in place with no readiness signal to wait on,
// so this is a fixed delay bounded by the configured settle timeout.
func (d *Driver) settle(ctx context.Context) {
	wait := d.cfg.SettleTimeout
	if wait <= 0 {
		wait = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// boundedCtx derives a chromedp run context that honors both the
// caller's cancellation and the configured settle timeout.
func (d *Driver) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.cfg.SettleTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	runCtx, cancel := context.WithTimeout(d.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
