package dashboard

import (
	"testing"
	"time"

	"github.com/dtnitsch/readtime/models"
)

func fixtures() map[string]models.ReadingRecord {
	recs := []models.ReadingRecord{
		{URL: "https://go.dev/blog/a", Title: "Generics in Go", Domain: "go.dev", Progress: 40, Timestamp: 300, ReadingTime: 10},
		{URL: "https://news.example.com/b", Title: "Market Report", Domain: "news.example.com", Progress: 95, Completed: true, Timestamp: 500, ReadingTime: 4},
		{URL: "https://blog.example.org/c", Title: "Gardening", Domain: "blog.example.org", Progress: 0, Timestamp: 100, ReadingTime: 2},
		{URL: "https://go.dev/doc/d", Title: "Effective Go", Domain: "go.dev", Progress: 100, Completed: true, Timestamp: 200, ReadingTime: 20},
	}
	out := make(map[string]models.ReadingRecord, len(recs))
	for _, r := range recs {
		out[r.URL] = r
	}
	return out
}

func urls(recs []models.ReadingRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.URL
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestList(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{Status: StatusAll}, []string{"https://news.example.com/b", "https://go.dev/blog/a", "https://go.dev/doc/d", "https://blog.example.org/c"}},
		{"reading excludes unstarted", Filter{Status: StatusReading}, []string{"https://go.dev/blog/a"}},
		{"completed", Filter{Status: StatusCompleted}, []string{"https://news.example.com/b", "https://go.dev/doc/d"}},
		{"query on domain", Filter{Query: "GO.DEV"}, []string{"https://go.dev/blog/a", "https://go.dev/doc/d"}},
		{"query on title", Filter{Query: "garden"}, []string{"https://blog.example.org/c"}},
		{"query and status", Filter{Status: StatusCompleted, Query: "effective"}, []string{"https://go.dev/doc/d"}},
		{"no match", Filter{Query: "nothing"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urls(List(fixtures(), tt.filter)); !equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"": StatusAll, "All": StatusAll, "reading": StatusReading, " completed ": StatusCompleted} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("ParseStatus(archived) error = nil")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(List(fixtures(), Filter{}))
	// minutes: 10*0.4=4, 4*0.95=3.8->4, 2*0=0, 20*1=20
	want := Stats{Total: 4, Completed: 2, MinutesRead: 28}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}

func TestNewCard(t *testing.T) {
	recs := fixtures()
	now := time.UnixMilli(recs["https://go.dev/blog/a"].Timestamp).Add(3 * time.Hour)

	reading := NewCard(recs["https://go.dev/blog/a"], now)
	if reading.Status != "40%" || reading.TimeLeft != "6m left" || !reading.Resumable {
		t.Errorf("reading card = %+v", reading)
	}
	if reading.LastRead != "3 hours ago" {
		t.Errorf("LastRead = %q, want %q", reading.LastRead, "3 hours ago")
	}

	done := NewCard(recs["https://go.dev/doc/d"], now)
	if done.Status != "Completed" || done.TimeLeft != "Done" || done.Resumable {
		t.Errorf("completed card = %+v", done)
	}
}
