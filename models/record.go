package models

import (
	"math"
	"net/url"
	"strings"
)

const (
	// CompletionThreshold is the progress at which an article counts as read.
	CompletionThreshold = 90.0

	// AdmissionThreshold is the minimum progress worth persisting.
	AdmissionThreshold = 5.0
)

// ReadingRecord is the persisted reading state of a single URL.
type ReadingRecord struct {
	URL            string  `json:"url" yaml:"url"`
	Title          string  `json:"title" yaml:"title"`
	Domain         string  `json:"domain" yaml:"domain"`
	ScrollPosition float64 `json:"scrollPosition" yaml:"scroll_position"`
	Progress       float64 `json:"progress" yaml:"progress"`
	Timestamp      int64   `json:"timestamp" yaml:"timestamp"` // unix millis of the last write
	Completed      bool    `json:"completed" yaml:"completed"`
	ReadingTime    int     `json:"readingTime" yaml:"reading_time"` // minutes
	WordCount      int     `json:"wordCount" yaml:"word_count"`
}

// Normalize clamps progress and scroll position, derives the domain when it
// is missing, and recomputes Completed from Progress.
func (r ReadingRecord) Normalize() ReadingRecord {
	r.Progress = ClampPercent(r.Progress)
	if r.ScrollPosition < 0 || math.IsNaN(r.ScrollPosition) {
		r.ScrollPosition = 0
	}
	if r.WordCount < 0 {
		r.WordCount = 0
	}
	if r.Domain == "" {
		r.Domain = DomainOf(r.URL)
	}
	r.Completed = r.Progress >= CompletionThreshold
	return r
}

// Valid reports whether the record passes basic shape checks.
func (r ReadingRecord) Valid() bool {
	return r.URL != "" && r.Timestamp > 0
}

// ClampPercent bounds p to [0,100]. NaN maps to 0.
func ClampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// DomainOf returns the lower-cased host of rawURL without a port, or "" when
// the URL cannot be parsed.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
