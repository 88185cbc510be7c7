package track

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/detector"
	"github.com/dtnitsch/readtime/pkg/parser"
	"github.com/dtnitsch/readtime/pkg/progress"
	"github.com/dtnitsch/readtime/pkg/session"
	"github.com/dtnitsch/readtime/pkg/storage"
)

func articleHTML(words int) string {
	body := strings.TrimSpace(strings.Repeat("lorem ", words))
	return `<html><head><title>A Long Read</title></head><body>
<nav><a href="/">home</a></nav>
<article id="story"><h1>A Long Read</h1>
<p>` + body + `</p></article>
</body></html>`
}

func parsePage(t *testing.T, url, html string) *models.Page {
	t.Helper()
	p := &parser.Parser{}
	page, err := p.Parse(models.ParseRequest{URL: url, HTML: html})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return page
}

func fastSimulation(steps int, bounds *progress.Rect) simulation {
	return simulation{
		viewport: progress.Viewport{DocumentHeight: 4000, ViewportHeight: 800},
		bounds:   bounds,
		steps:    steps,
		cfg: session.Config{
			SaveInterval:  time.Hour,
			FrameInterval: 2 * time.Millisecond,
		},
	}
}

func TestInspect(t *testing.T) {
	page := parsePage(t, "https://example.com/post", articleHTML(450))
	got := inspect(page, models.Settings{ReadingSpeed: 150})

	if !got.IsArticle {
		t.Error("IsArticle = false")
	}
	if got.Boundary.Strategy != detector.StrategySelector || got.Boundary.Element != "article#story" {
		t.Errorf("Boundary = %+v", got.Boundary)
	}
	// 450 body words plus the three heading words
	if got.WordCount != 453 {
		t.Errorf("WordCount = %d, want 453", got.WordCount)
	}
	if got.ReadingMinutes != 4 || got.ReadingSpeed != 150 {
		t.Errorf("ReadingMinutes/Speed = %d/%d, want 4/150", got.ReadingMinutes, got.ReadingSpeed)
	}
	if got.Domain != "example.com" || got.Title == "" {
		t.Errorf("Domain/Title = %q/%q", got.Domain, got.Title)
	}
}

func TestInspect_DefaultSpeed(t *testing.T) {
	page := parsePage(t, "https://example.com/post", articleHTML(450))
	if got := inspect(page, models.Settings{}); got.ReadingSpeed != models.DefaultReadingSpeed {
		t.Errorf("ReadingSpeed = %d, want %d", got.ReadingSpeed, models.DefaultReadingSpeed)
	}
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name          string
		v             progress.Viewport
		bounds        *progress.Rect
		wantProgress  float64
		wantCompleted bool
		wantMode      string
	}{
		{"top of document", progress.Viewport{ScrollOffset: 0, DocumentHeight: 2000, ViewportHeight: 800}, nil, 0, false, "document"},
		{"near bottom", progress.Viewport{ScrollOffset: 1150, DocumentHeight: 2000, ViewportHeight: 800}, nil, 100, true, "document"},
		{"half of content", progress.Viewport{ScrollOffset: 1000, DocumentHeight: 5000, ViewportHeight: 800}, &progress.Rect{Top: 200, Bottom: 2600}, 50, false, "bounded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeProgress(tt.v, tt.bounds)
			if got.Progress != tt.wantProgress || got.Completed != tt.wantCompleted || got.Mode != tt.wantMode {
				t.Errorf("computeProgress() = %+v", got)
			}
		})
	}
}

func TestRunSimulation_ReadsToCompletion(t *testing.T) {
	store := storage.New(storage.NewMemoryBackend())
	defer store.Close()
	var out bytes.Buffer
	page := parsePage(t, "https://example.com/post", articleHTML(450))

	rec, err := runSimulation(context.Background(), store, models.DefaultSettings(), &consoleHooks{w: &out}, page, fastSimulation(4, nil))
	if err != nil {
		t.Fatalf("runSimulation() error = %v", err)
	}

	if rec.Progress != 100 || !rec.Completed {
		t.Errorf("record progress/completed = %v/%v, want 100/true", rec.Progress, rec.Completed)
	}
	if rec.ReadingTime != 3 || rec.Title != "A Long Read" {
		t.Errorf("record = %+v", rec)
	}

	printed := out.String()
	for _, want := range []string{"badge: 3 min read", "progress: 0.0%", "(completed)"} {
		if !strings.Contains(printed, want) {
			t.Errorf("hook output missing %q:\n%s", want, printed)
		}
	}
}

func TestRunSimulation_BoundedContent(t *testing.T) {
	store := storage.New(storage.NewMemoryBackend())
	defer store.Close()
	page := parsePage(t, "https://example.com/bounded", articleHTML(450))

	// content ends well above the document bottom, so the last steps pin at 100
	rec, err := runSimulation(context.Background(), store, models.DefaultSettings(), session.NopHooks{}, page,
		fastSimulation(8, &progress.Rect{Top: 400, Bottom: 2000}))
	if err != nil {
		t.Fatalf("runSimulation() error = %v", err)
	}
	if rec.Progress != 100 {
		t.Errorf("Progress = %v, want 100", rec.Progress)
	}
}

func TestRunSimulation_ResumeOffered(t *testing.T) {
	ctx := context.Background()
	store := storage.New(storage.NewMemoryBackend())
	defer store.Close()
	store.Save(ctx, models.ReadingRecord{URL: "https://example.com/post", Progress: 40, ReadingTime: 3})

	var out bytes.Buffer
	page := parsePage(t, "https://example.com/post", articleHTML(450))
	if _, err := runSimulation(ctx, store, models.DefaultSettings(), &consoleHooks{w: &out}, page, fastSimulation(2, nil)); err != nil {
		t.Fatalf("runSimulation() error = %v", err)
	}
	if !strings.Contains(out.String(), "resume: 40% read, 2 min left") {
		t.Errorf("no resume offer in output:\n%s", out.String())
	}
}

func TestRunSimulation_NotArticle(t *testing.T) {
	store := storage.New(storage.NewMemoryBackend())
	defer store.Close()
	page := parsePage(t, "https://example.com/", `<html><body><nav>menu</nav></body></html>`)

	_, err := runSimulation(context.Background(), store, models.DefaultSettings(), nil, page, fastSimulation(2, nil))
	if !errors.Is(err, ErrNotArticle) {
		t.Errorf("runSimulation() error = %v, want ErrNotArticle", err)
	}
	if len(store.GetAll(context.Background())) != 0 {
		t.Error("a record was saved for a non-article page")
	}
}
