package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dtnitsch/readtime/internal/library"
	"github.com/dtnitsch/readtime/internal/track"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/help"
	"github.com/dtnitsch/readtime/pkg/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "readtime",
		Usage: "Estimate reading time and track reading progress of web articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Value:   models.BackendSQLite,
				Usage:   "Progress store: memory, sqlite or redis",
				EnvVars: []string{"READTIME_STORE"},
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (default: readtime.db next to the binary)",
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Value:   "localhost:6379",
				Usage:   "Redis address for --store redis",
				EnvVars: []string{"READTIME_REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:  "namespace",
				Value: storage.DefaultNamespace,
				Usage: "Collection the records are kept under",
			},
			&cli.IntFlag{
				Name:  "capacity",
				Value: storage.DefaultCapacity,
				Usage: "Maximum number of records kept; the least recently read are evicted",
			},
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "YAML settings file (reading_speed, show_badge, ...)",
				EnvVars: []string{"READTIME_SETTINGS"},
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "inspect",
				Usage:  "Detect the article body of a page and estimate its reading time",
				Flags:  append(pageFlags(), cacheFlags()...),
				Action: track.InspectAction,
			},
			{
				Name:   "progress",
				Usage:  "Compute reading progress for a scroll position",
				Flags:  viewportFlags(0, 0),
				Action: track.ProgressAction,
			},
			{
				Name:  "save",
				Usage: "Record reading progress for a URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "Article URL", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Article title"},
					&cli.Float64Flag{Name: "scroll", Usage: "Scroll offset in pixels"},
					&cli.Float64Flag{Name: "progress", Usage: "Progress percentage (0-100)", Required: true},
					&cli.IntFlag{Name: "reading-time", Usage: "Reading time in minutes (estimated from --word-count when omitted)"},
					&cli.IntFlag{Name: "word-count", Usage: "Words in the article body"},
					&cli.BoolFlag{Name: "force", Usage: "Save even below the admission threshold"},
				},
				Action: track.SaveAction,
			},
			{
				Name:  "simulate",
				Usage: "Open a page in a tracker, scroll to the bottom and persist the result",
				Flags: append(append(pageFlags(), cacheFlags()...),
					append(viewportFlags(4000, 800),
						&cli.IntFlag{Name: "steps", Value: 10, Usage: "Number of scroll steps from top to bottom"},
					)...,
				),
				Action: track.SimulateAction,
			},
			{
				Name:      "get",
				Usage:     "Show the stored record for a URL",
				ArgsUsage: "<url>",
				Action:    library.GetAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete the stored record for a URL",
				ArgsUsage: "<url>",
				Action:    library.DeleteAction,
			},
			{
				Name:  "list",
				Usage: "List tracked articles, most recently read first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Value: "all", Usage: "all, reading or completed"},
					&cli.StringFlag{Name: "search", Usage: "Match title or domain (case-insensitive)"},
					&cli.StringFlag{Name: "format", Value: "table", Usage: "table or yaml"},
				},
				Action: library.ListAction,
			},
			{
				Name:   "stats",
				Usage:  "Show totals across tracked articles",
				Action: library.StatsAction,
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Usage: "Page URL (fetched unless --file is given)"},
		&cli.StringFlag{Name: "file", Usage: "Read HTML from a local file"},
	}
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "cache-dir", Value: ".readtime-cache", Usage: "Directory for fetched pages"},
		&cli.DurationFlag{Name: "max-age", Value: time.Hour, Usage: "How long fetched pages stay fresh"},
		&cli.BoolFlag{Name: "force-fetch", Usage: "Ignore cached pages"},
	}
}

func viewportFlags(docHeight, viewportHeight float64) []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "scroll", Usage: "Scroll offset in pixels"},
		&cli.Float64Flag{Name: "doc-height", Value: docHeight, Usage: "Document height in pixels", Required: docHeight == 0},
		&cli.Float64Flag{Name: "viewport-height", Value: viewportHeight, Usage: "Viewport height in pixels", Required: viewportHeight == 0},
		&cli.Float64Flag{Name: "top", Usage: "Top of the content element in document coordinates"},
		&cli.Float64Flag{Name: "bottom", Usage: "Bottom of the content element in document coordinates"},
	}
}
