package session

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/detector"
	"github.com/dtnitsch/readtime/pkg/progress"
	"github.com/dtnitsch/readtime/pkg/storage"
)

// Visit tracks one page visit. All recomputes and saves run on a single
// goroutine, so the triggers never overlap.
type Visit struct {
	url         string
	title       string
	boundary    detector.Boundary
	wordCount   int
	readingTime int

	layout Layout
	store  *storage.Store
	hooks  Hooks // nil when the progress bar is disabled
	cfg    Config

	scrollCh  chan struct{}
	dismissCh chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	pending  atomic.Bool   // a recompute is queued for the next frame
	progress atomic.Uint64 // math.Float64bits of the last computed value
}

type visitParams struct {
	url         string
	title       string
	boundary    detector.Boundary
	wordCount   int
	readingTime int
	layout      Layout
	store       *storage.Store
	hooks       Hooks
}

func startVisit(ctx context.Context, p visitParams, cfg Config) *Visit {
	v := &Visit{
		url:         p.url,
		title:       p.title,
		boundary:    p.boundary,
		wordCount:   p.wordCount,
		readingTime: p.readingTime,
		layout:      p.layout,
		store:       p.store,
		hooks:       p.hooks,
		cfg:         cfg,
		scrollCh:    make(chan struct{}, 1),
		dismissCh:   make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	// the initial value is reported before the caller can move the layout
	v.recompute()
	go v.run(ctx)
	return v
}

func (v *Visit) URL() string                 { return v.url }
func (v *Visit) WordCount() int              { return v.wordCount }
func (v *Visit) ReadingTime() int            { return v.readingTime }
func (v *Visit) Boundary() detector.Boundary { return v.boundary }

// Progress returns the most recently computed progress.
func (v *Visit) Progress() float64 {
	return math.Float64frombits(v.progress.Load())
}

// Done is closed once the visit has flushed and exited.
func (v *Visit) Done() <-chan struct{} {
	return v.done
}

// Scroll notes a scroll event. Recomputes are coalesced to at most one per
// frame; extra notifications while one is pending are dropped.
func (v *Visit) Scroll() {
	if !v.pending.CompareAndSwap(false, true) {
		return
	}
	select {
	case v.scrollCh <- struct{}{}:
	default:
	}
}

// DismissResume records that the reader dismissed the resume prompt, which
// saves the current progress.
func (v *Visit) DismissResume() {
	select {
	case v.dismissCh <- struct{}{}:
	default:
	}
}

// Stop tears the visit down. It returns immediately; the final flush runs
// in the background and is bounded by the flush timeout.
func (v *Visit) Stop() {
	v.stopOnce.Do(func() { close(v.stop) })
}

func (v *Visit) stopped() bool {
	select {
	case <-v.stop:
		return true
	default:
		return false
	}
}

func (v *Visit) finished() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

func (v *Visit) run(ctx context.Context) {
	defer close(v.done)

	ticker := time.NewTicker(v.cfg.SaveInterval)
	defer ticker.Stop()

	var frame <-chan time.Time
	var frameTimer *time.Timer
	defer func() {
		if frameTimer != nil {
			frameTimer.Stop()
		}
	}()

	for {
		select {
		case <-v.stop:
			v.flush(ctx)
			return
		case <-ctx.Done():
			v.flush(ctx)
			return
		case <-ticker.C:
			if v.stopped() {
				continue
			}
			v.save(ctx)
		case <-v.scrollCh:
			if frame == nil {
				frameTimer = time.NewTimer(v.cfg.FrameInterval)
				frame = frameTimer.C
			}
		case <-frame:
			frame = nil
			v.pending.Store(false)
			v.recompute()
		case <-v.dismissCh:
			v.save(ctx)
		}
	}
}

// current computes progress against the content boundary when the host can
// lay it out, and against the whole document otherwise.
func (v *Visit) current() (float64, progress.Viewport) {
	vp := v.layout.Viewport()
	var bounds *progress.Rect
	if v.boundary.Found() {
		if r, ok := v.layout.Bounds(v.boundary.Selection); ok {
			bounds = &r
		}
	}
	pct := progress.Compute(vp, bounds)
	v.progress.Store(math.Float64bits(pct))
	return pct, vp
}

func (v *Visit) recompute() {
	pct, _ := v.current()
	if v.hooks != nil {
		v.hooks.UpdateProgress(pct, pct >= models.CompletionThreshold)
	}
}

func (v *Visit) save(ctx context.Context) bool {
	pct, vp := v.current()
	if !v.store.Admit(pct) {
		return false
	}
	return v.store.Save(ctx, models.ReadingRecord{
		URL:            v.url,
		Title:          v.title,
		Domain:         models.DomainOf(v.url),
		ScrollPosition: vp.ScrollOffset,
		Progress:       pct,
		ReadingTime:    v.readingTime,
		WordCount:      v.wordCount,
	})
}

// flush is the best-effort teardown save. It survives cancellation of the
// visit context but gives up after the flush timeout.
func (v *Visit) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.cfg.FlushTimeout)
	defer cancel()
	if !v.save(flushCtx) {
		v.cfg.Logger.Debug("teardown flush skipped", "url", v.url, "progress", v.Progress())
	}
}
