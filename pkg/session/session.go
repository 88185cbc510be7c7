// Package session drives reading-progress tracking for page visits: it
// re-evaluates pages at content-stability checkpoints, recomputes progress
// on scroll and periodic ticks, and persists it through a storage.Store.
package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/progress"
)

const (
	DefaultSaveInterval     = 5 * time.Second
	DefaultFrameInterval    = 16 * time.Millisecond
	DefaultFlushTimeout     = time.Second
	DefaultDebounceInterval = 500 * time.Millisecond
)

// Resume offers are only made between these progress values.
const (
	resumeMinProgress = 10.0
	resumeMaxProgress = 95.0
)

// Layout is the host's view of the rendered page.
type Layout interface {
	// Viewport returns the current scroll state.
	Viewport() progress.Viewport
	// Bounds returns the vertical extent of sel in document coordinates.
	Bounds(sel *goquery.Selection) (progress.Rect, bool)
}

// ResumeOffer is passed to Hooks when a partially read article is reopened.
type ResumeOffer struct {
	Record           models.ReadingRecord
	RemainingMinutes int
}

// Hooks receive the outputs meant for the UI widgets. ShowBadge,
// OfferResume and the first UpdateProgress of a visit are called with the
// Tracker locked and must not call back into it.
type Hooks interface {
	ShowBadge(minutes int)
	UpdateProgress(percent float64, completed bool)
	OfferResume(offer ResumeOffer)
}

// NopHooks discards every UI update.
type NopHooks struct{}

func (NopHooks) ShowBadge(int)                {}
func (NopHooks) UpdateProgress(float64, bool) {}
func (NopHooks) OfferResume(ResumeOffer)      {}

// Config tunes the timers of a visit.
type Config struct {
	SaveInterval     time.Duration
	FrameInterval    time.Duration
	FlushTimeout     time.Duration
	DebounceInterval time.Duration
	Logger           *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.SaveInterval <= 0 {
		c.SaveInterval = DefaultSaveInterval
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = DefaultFlushTimeout
	}
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = DefaultDebounceInterval
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}
