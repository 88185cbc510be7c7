package track

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/readtime/internal/common"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/progress"
	"github.com/dtnitsch/readtime/pkg/session"
	"github.com/dtnitsch/readtime/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ErrNotArticle is returned when a simulated page is not article-like.
var ErrNotArticle = errors.New("page is not article-like, nothing to track")

const settleTimeout = time.Second

// syntheticLayout stands in for a rendered page. The content element, when
// bounds are set, occupies a fixed vertical band of the document.
type syntheticLayout struct {
	mu       sync.Mutex
	viewport progress.Viewport
	bounds   *progress.Rect
}

func (l *syntheticLayout) Viewport() progress.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

func (l *syntheticLayout) Bounds(*goquery.Selection) (progress.Rect, bool) {
	if l.bounds == nil {
		return progress.Rect{}, false
	}
	return *l.bounds, true
}

func (l *syntheticLayout) scrollTo(y float64) progress.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.viewport.ScrollOffset = y
	return l.viewport
}

// consoleHooks prints UI updates as plain lines.
type consoleHooks struct {
	mu sync.Mutex
	w  io.Writer
}

func (h *consoleHooks) ShowBadge(minutes int) {
	h.printf("badge: %d min read\n", minutes)
}

func (h *consoleHooks) UpdateProgress(percent float64, completed bool) {
	if completed {
		h.printf("progress: %.1f%% (completed)\n", percent)
		return
	}
	h.printf("progress: %.1f%%\n", percent)
}

func (h *consoleHooks) OfferResume(offer session.ResumeOffer) {
	h.printf("resume: %.0f%% read, %d min left\n", offer.Record.Progress, offer.RemainingMinutes)
}

func (h *consoleHooks) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.w, format, args...)
}

type simulation struct {
	viewport progress.Viewport // scroll offset is ignored
	bounds   *progress.Rect
	steps    int
	cfg      session.Config
}

// runSimulation opens page in a Tracker, scrolls from top to bottom in
// equal steps and closes the tracker. It returns the record left in store.
func runSimulation(ctx context.Context, store *storage.Store, settings models.Settings, hooks session.Hooks, page *models.Page, sim simulation) (models.ReadingRecord, error) {
	if sim.steps <= 0 {
		sim.steps = 1
	}
	layout := &syntheticLayout{viewport: sim.viewport, bounds: sim.bounds}
	layout.viewport.ScrollOffset = 0

	tracker := session.NewTracker(store, settings, hooks, sim.cfg)
	defer tracker.Close()

	visit := tracker.Navigate(ctx, page, layout)
	if visit == nil {
		return models.ReadingRecord{}, ErrNotArticle
	}

	maxScroll := max(0, sim.viewport.DocumentHeight-sim.viewport.ViewportHeight)
	for i := 1; i <= sim.steps; i++ {
		v := layout.scrollTo(maxScroll * float64(i) / float64(sim.steps))
		visit.Scroll()

		var bounds *progress.Rect
		if visit.Boundary().Found() {
			bounds = sim.bounds
		}
		if err := settle(ctx, visit, progress.Compute(v, bounds)); err != nil {
			return models.ReadingRecord{}, err
		}
	}

	tracker.Close()
	select {
	case <-visit.Done():
	case <-ctx.Done():
		return models.ReadingRecord{}, ctx.Err()
	}

	rec, ok := store.Get(ctx, page.URL)
	if !ok {
		return models.ReadingRecord{}, fmt.Errorf("no record was saved for %s", page.URL)
	}
	return rec, nil
}

// settle waits for the visit to report want.
func settle(ctx context.Context, visit *session.Visit, want float64) error {
	deadline := time.NewTimer(settleTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()

	for visit.Progress() != want {
		select {
		case <-tick.C:
		case <-deadline.C:
			return fmt.Errorf("progress did not reach %.1f%% (at %.1f%%)", want, visit.Progress())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func SimulateAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	settings, err := common.LoadSettings(c)
	if err != nil {
		return err
	}

	v, bounds, err := viewportFromFlags(c)
	if err != nil {
		return err
	}

	page, _, err := loadPage(c.Context, c, logger)
	if err != nil {
		return err
	}

	store, err := common.OpenStoreFromFlags(c, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := runSimulation(c.Context, store, settings, &consoleHooks{w: os.Stdout}, page, simulation{
		viewport: v,
		bounds:   bounds,
		steps:    c.Int("steps"),
		cfg:      session.Config{Logger: logger},
	})
	if err != nil {
		return err
	}
	return common.PrintYAML(rec)
}
