package track

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/readtime/internal/common"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/analytics"
	"github.com/dtnitsch/readtime/pkg/caching"
	"github.com/dtnitsch/readtime/pkg/detector"
	"github.com/dtnitsch/readtime/pkg/fetcher"
	"github.com/dtnitsch/readtime/pkg/parser"
	"github.com/urfave/cli/v2"
)

// Inspection is the YAML report printed by `inspect`.
type Inspection struct {
	URL            string         `yaml:"url"`
	Title          string         `yaml:"title"`
	Byline         string         `yaml:"byline,omitempty"`
	Domain         string         `yaml:"domain"`
	IsArticle      bool           `yaml:"is_article"`
	Boundary       BoundaryReport `yaml:"boundary"`
	WordCount      int            `yaml:"word_count"`
	ReadingMinutes int            `yaml:"reading_minutes"`
	ReadingSpeed   int            `yaml:"reading_speed"`
	CacheHit       bool           `yaml:"cache_hit,omitempty"`
}

type BoundaryReport struct {
	Strategy detector.Strategy `yaml:"strategy"`
	Selector string            `yaml:"selector,omitempty"`
	Element  string            `yaml:"element"`
}

func InspectAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	settings, err := common.LoadSettings(c)
	if err != nil {
		return err
	}

	page, hit, err := loadPage(c.Context, c, logger)
	if err != nil {
		return err
	}

	report := inspect(page, settings)
	report.CacheHit = hit
	return common.PrintYAML(report)
}

func inspect(page *models.Page, settings models.Settings) Inspection {
	settings = settings.WithDefaults()
	boundary := detector.LocateContent(page.Doc)
	words := analytics.WordCount(boundary.Text())

	return Inspection{
		URL:       page.URL,
		Title:     page.Title,
		Byline:    page.Byline,
		Domain:    page.Domain,
		IsArticle: detector.IsArticle(page.Doc),
		Boundary: BoundaryReport{
			Strategy: boundary.Strategy,
			Selector: boundary.Selector,
			Element:  boundary.Describe(),
		},
		WordCount:      words,
		ReadingMinutes: analytics.EstimateMinutes(words, settings.ReadingSpeed),
		ReadingSpeed:   settings.ReadingSpeed,
	}
}

// loadPage parses --file when given, otherwise fetches --url through the
// page cache. hit reports a cache hit.
func loadPage(ctx context.Context, c *cli.Context, logger *slog.Logger) (page *models.Page, hit bool, err error) {
	rawURL := c.String("url")
	file := c.String("file")
	if rawURL == "" && file == "" {
		return nil, false, fmt.Errorf("either --url or --file is required")
	}

	var pageURL string
	if rawURL != "" {
		pageURL, err = common.ResolveURL(rawURL)
		if err != nil {
			return nil, false, err
		}
	}

	var html []byte
	if file != "" {
		html, err = os.ReadFile(file)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if pageURL == "" {
			abs, _ := filepath.Abs(file)
			pageURL = "file://" + filepath.ToSlash(abs)
		}
	} else {
		html, hit, err = fetchHTML(ctx, c, pageURL, logger)
		if err != nil {
			return nil, false, err
		}
	}

	p := &parser.Parser{}
	page, err = p.Parse(models.ParseRequest{URL: pageURL, HTML: string(html)})
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return page, hit, nil
}

func fetchHTML(ctx context.Context, c *cli.Context, pageURL string, logger *slog.Logger) ([]byte, bool, error) {
	f := fetcher.NewFetcher()

	maxAge := c.Duration("max-age")
	if c.Bool("force-fetch") {
		maxAge = 0
	}
	cache, err := caching.NewCache(c.String("cache-dir"), maxAge)
	if err != nil {
		logger.Warn("page cache unavailable, fetching directly", "error", err)
		html, err := f.GetHTMLBytes(ctx, pageURL)
		return html, false, err
	}

	start := time.Now()
	html, hit, err := cache.Fetch(ctx, pageURL, f.GetHTMLBytes)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	logger.Info("page loaded", "url", pageURL, "cache_hit", hit, "bytes", len(html), "duration", time.Since(start).String())
	return html, hit, nil
}
