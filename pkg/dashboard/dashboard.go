// Package dashboard turns stored reading records into the sorted, filtered
// listing and summary numbers shown to the reader.
package dashboard

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/analytics"
	"github.com/dustin/go-humanize"
)

// Status selects records by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status name. An empty name means StatusAll.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusReading:
		return StatusReading, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status filter %q (want all, reading or completed)", s)
}

type Filter struct {
	Status Status
	Query  string // case-insensitive match on title or domain
}

func (f Filter) match(rec models.ReadingRecord) bool {
	switch f.Status {
	case StatusReading:
		if rec.Completed || rec.Progress <= 0 {
			return false
		}
	case StatusCompleted:
		if !rec.Completed {
			return false
		}
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Title), q) ||
		strings.Contains(strings.ToLower(rec.Domain), q)
}

// List returns the records matching f, most recently updated first.
func List(records map[string]models.ReadingRecord, f Filter) []models.ReadingRecord {
	out := make([]models.ReadingRecord, 0, len(records))
	for _, rec := range records {
		if f.match(rec) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b models.ReadingRecord) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
	return out
}

type Stats struct {
	Total       int `json:"total" yaml:"total"`
	Completed   int `json:"completed" yaml:"completed"`
	MinutesRead int `json:"minutesRead" yaml:"minutes_read"`
}

// Summarize counts records and estimates the minutes spent reading them.
func Summarize(records []models.ReadingRecord) Stats {
	var s Stats
	for _, rec := range records {
		s.Total++
		if rec.Completed {
			s.Completed++
		}
		s.MinutesRead += analytics.MinutesRead(rec.ReadingTime, rec.Progress)
	}
	return s
}

// Card is the display form of one record.
type Card struct {
	URL       string  `yaml:"url"`
	Title     string  `yaml:"title"`
	Domain    string  `yaml:"domain"`
	Progress  float64 `yaml:"progress"`
	Status    string  `yaml:"status"`
	TimeLeft  string  `yaml:"time_left"`
	LastRead  string  `yaml:"last_read"`
	Resumable bool    `yaml:"resumable"`
}

func NewCard(rec models.ReadingRecord, now time.Time) Card {
	c := Card{
		URL:       rec.URL,
		Title:     rec.Title,
		Domain:    rec.Domain,
		Progress:  rec.Progress,
		Resumable: !rec.Completed,
		LastRead:  humanize.RelTime(time.UnixMilli(rec.Timestamp), now, "ago", "from now"),
	}
	if rec.Completed {
		c.Status = "Completed"
		c.TimeLeft = "Done"
	} else {
		c.Status = fmt.Sprintf("%d%%", int(math.Round(rec.Progress)))
		c.TimeLeft = fmt.Sprintf("%dm left", analytics.RemainingMinutes(rec.ReadingTime, rec.Progress))
	}
	return c
}
