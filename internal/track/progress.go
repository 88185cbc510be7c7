package track

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/readtime/internal/common"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/analytics"
	"github.com/dtnitsch/readtime/pkg/progress"
	"github.com/urfave/cli/v2"
)

type ProgressReport struct {
	Progress  float64 `yaml:"progress"`
	Completed bool    `yaml:"completed"`
	Mode      string  `yaml:"mode"` // document or bounded
}

func ProgressAction(c *cli.Context) error {
	v, bounds, err := viewportFromFlags(c)
	if err != nil {
		return err
	}
	return common.PrintYAML(computeProgress(v, bounds))
}

func computeProgress(v progress.Viewport, bounds *progress.Rect) ProgressReport {
	p := progress.Compute(v, bounds)
	mode := "document"
	if bounds != nil {
		mode = "bounded"
	}
	return ProgressReport{Progress: p, Completed: p >= models.CompletionThreshold, Mode: mode}
}

// viewportFromFlags reads --scroll, --doc-height and --viewport-height, plus
// the optional --top/--bottom content bounds.
func viewportFromFlags(c *cli.Context) (progress.Viewport, *progress.Rect, error) {
	v := progress.Viewport{
		ScrollOffset:   c.Float64("scroll"),
		DocumentHeight: c.Float64("doc-height"),
		ViewportHeight: c.Float64("viewport-height"),
	}
	if v.DocumentHeight <= 0 {
		return v, nil, errors.New("--doc-height must be positive")
	}

	if !c.IsSet("top") && !c.IsSet("bottom") {
		return v, nil, nil
	}
	r := progress.Rect{Top: c.Float64("top"), Bottom: c.Float64("bottom")}
	if !c.IsSet("bottom") {
		r.Bottom = v.DocumentHeight
	}
	if r.Bottom <= r.Top {
		return v, nil, fmt.Errorf("--bottom (%.0f) must be greater than --top (%.0f)", r.Bottom, r.Top)
	}
	return v, &r, nil
}

func SaveAction(c *cli.Context) error {
	pageURL, err := common.ResolveURL(c.String("url"))
	if err != nil {
		return err
	}

	rec := models.ReadingRecord{
		URL:            pageURL,
		Title:          c.String("title"),
		ScrollPosition: c.Float64("scroll"),
		Progress:       c.Float64("progress"),
		ReadingTime:    c.Int("reading-time"),
		WordCount:      c.Int("word-count"),
	}
	if rec.ReadingTime == 0 && rec.WordCount > 0 {
		settings, err := common.LoadSettings(c)
		if err != nil {
			return err
		}
		rec.ReadingTime = analytics.EstimateMinutes(rec.WordCount, settings.ReadingSpeed)
	}

	logger := common.NewLogger(c)
	store, err := common.OpenStoreFromFlags(c, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if !c.Bool("force") && !store.Admit(rec.Progress) {
		fmt.Printf("Not saved: progress %.1f%% is below the %.0f%% admission threshold (use --force)\n", rec.Progress, models.AdmissionThreshold)
		return nil
	}
	if !store.Save(c.Context, rec) {
		return fmt.Errorf("failed to save %s", pageURL)
	}

	saved, _ := store.Get(c.Context, pageURL)
	logger.Info("saved reading progress", "url", pageURL, "progress", saved.Progress, "at", time.UnixMilli(saved.Timestamp).Format(time.RFC3339))
	return common.PrintYAML(saved)
}
