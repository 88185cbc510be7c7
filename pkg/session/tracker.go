package session

import (
	"context"
	"sync"
	"time"

	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/analytics"
	"github.com/dtnitsch/readtime/pkg/detector"
	"github.com/dtnitsch/readtime/pkg/storage"
)

// Tracker owns at most one active Visit for a long-lived host session.
// Navigating or closing always stops the previous visit and its timers
// before anything new is started.
type Tracker struct {
	store    *storage.Store
	settings models.Settings
	hooks    Hooks
	cfg      Config

	mu         sync.Mutex
	visit      *Visit
	debounce   *time.Timer
	generation uint64 // bumped on every navigation; stale debounced checks compare against it
	closed     bool
}

// NewTracker creates a Tracker. A nil hooks discards UI updates.
func NewTracker(store *storage.Store, settings models.Settings, hooks Hooks, cfg Config) *Tracker {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Tracker{
		store:    store,
		settings: settings.WithDefaults(),
		hooks:    hooks,
		cfg:      cfg.withDefaults(),
	}
}

// Active returns the current visit, or nil.
func (t *Tracker) Active() *Visit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visit
}

// Navigate handles a page load or URL change. The previous visit is torn
// down first; the returned visit is nil when page is not article-like.
func (t *Tracker) Navigate(ctx context.Context, page *models.Page, layout Layout) *Visit {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	t.cancelDebounceLocked()
	t.stopVisitLocked()
	return t.evaluateLocked(ctx, page, layout)
}

// Mutated reports that the DOM of page changed. Re-evaluation is debounced
// so a burst of mutations triggers a single check.
func (t *Tracker) Mutated(ctx context.Context, page *models.Page, layout Layout) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.cancelDebounceLocked()
	gen := t.generation
	t.debounce = time.AfterFunc(t.cfg.DebounceInterval, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.generation {
			return
		}
		t.debounce = nil
		t.evaluateLocked(ctx, page, layout)
	})
}

// Close stops the active visit and all pending checks.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.generation++
	t.cancelDebounceLocked()
	t.stopVisitLocked()
}

func (t *Tracker) cancelDebounceLocked() {
	if t.debounce != nil {
		t.debounce.Stop()
		t.debounce = nil
	}
}

func (t *Tracker) stopVisitLocked() {
	if t.visit != nil {
		t.visit.Stop()
		t.visit = nil
	}
}

// evaluateLocked runs the content-stability checkpoint for page.
func (t *Tracker) evaluateLocked(ctx context.Context, page *models.Page, layout Layout) *Visit {
	if t.closed || page == nil || page.Doc == nil || layout == nil {
		return nil
	}

	if t.visit != nil {
		if t.visit.URL() == page.URL && !t.visit.finished() {
			return t.visit
		}
		t.stopVisitLocked()
	}

	if !detector.IsArticle(page.Doc) {
		return nil
	}

	boundary := detector.LocateContent(page.Doc)
	words := analytics.WordCount(boundary.Text())
	minutes := analytics.EstimateMinutes(words, t.settings.ReadingSpeed)

	t.cfg.Logger.Debug("article detected",
		"url", page.URL,
		"strategy", boundary.Strategy,
		"element", boundary.Describe(),
		"word_count", words,
		"reading_time", minutes,
	)

	if t.settings.ShowBadge && minutes >= 1 {
		t.hooks.ShowBadge(minutes)
	}

	if t.settings.ShowResumeNotification {
		if rec, ok := t.store.Get(ctx, page.URL); ok && rec.Progress > resumeMinProgress && rec.Progress < resumeMaxProgress {
			t.hooks.OfferResume(ResumeOffer{
				Record:           rec,
				RemainingMinutes: analytics.RemainingMinutes(rec.ReadingTime, rec.Progress),
			})
		}
	}

	var progressHooks Hooks
	if t.settings.ShowProgressBar {
		progressHooks = t.hooks
	}

	t.visit = startVisit(ctx, visitParams{
		url:         page.URL,
		title:       page.Title,
		boundary:    boundary,
		wordCount:   words,
		readingTime: minutes,
		layout:      layout,
		store:       t.store,
		hooks:       progressHooks,
	}, t.cfg)
	return t.visit
}
