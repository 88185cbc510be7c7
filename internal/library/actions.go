package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/readtime/internal/common"
	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/dashboard"
	"github.com/dtnitsch/readtime/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ListAction prints stored records, newest first.
func ListAction(c *cli.Context) error {
	status, err := dashboard.ParseStatus(c.String("filter"))
	if err != nil {
		return err
	}
	filter := dashboard.Filter{Status: status, Query: c.String("search")}

	return withStore(c, func(ctx context.Context, store *storage.Store) error {
		records := dashboard.List(store.GetAll(ctx), filter)
		if strings.ToLower(c.String("format")) == "yaml" {
			return common.PrintYAML(cards(records, time.Now()))
		}
		printTable(os.Stdout, records, time.Now())
		return nil
	})
}

// GetAction prints the record for one URL.
func GetAction(c *cli.Context) error {
	url, err := urlArg(c)
	if err != nil {
		return err
	}
	return withStore(c, func(ctx context.Context, store *storage.Store) error {
		rec, ok := store.Get(ctx, url)
		if !ok {
			return fmt.Errorf("no reading record for %s", url)
		}
		return common.PrintYAML(detail(rec, time.Now()))
	})
}

// DeleteAction removes the record for one URL.
func DeleteAction(c *cli.Context) error {
	url, err := urlArg(c)
	if err != nil {
		return err
	}
	return withStore(c, func(ctx context.Context, store *storage.Store) error {
		existed := remove(ctx, store, url)
		if existed {
			fmt.Printf("Deleted %s\n", url)
		} else {
			fmt.Printf("No record for %s\n", url)
		}
		return nil
	})
}

// StatsAction prints totals across all records.
func StatsAction(c *cli.Context) error {
	return withStore(c, func(ctx context.Context, store *storage.Store) error {
		records := dashboard.List(store.GetAll(ctx), dashboard.Filter{})
		return common.PrintYAML(dashboard.Summarize(records))
	})
}

func withStore(c *cli.Context, fn func(context.Context, *storage.Store) error) error {
	logger := common.NewLogger(c)
	store, err := common.OpenStoreFromFlags(c, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(c.Context, store)
}

func urlArg(c *cli.Context) (string, error) {
	if c.NArg() == 0 {
		return "", fmt.Errorf("a URL argument is required")
	}
	return common.ResolveURL(c.Args().First())
}

// remove deletes url and reports whether a record was there.
func remove(ctx context.Context, store *storage.Store, url string) bool {
	_, existed := store.Get(ctx, url)
	store.Delete(ctx, url)
	return existed
}

type recordDetail struct {
	Record models.ReadingRecord `yaml:"record"`
	Card   dashboard.Card       `yaml:"card"`
}

func detail(rec models.ReadingRecord, now time.Time) recordDetail {
	return recordDetail{Record: rec, Card: dashboard.NewCard(rec, now)}
}

func cards(records []models.ReadingRecord, now time.Time) []dashboard.Card {
	out := make([]dashboard.Card, len(records))
	for i, rec := range records {
		out[i] = dashboard.NewCard(rec, now)
	}
	return out
}

func printTable(w io.Writer, records []models.ReadingRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No articles found")
		return
	}

	fmt.Fprintf(w, "%-10s %-10s %-16s %-40s %-24s\n", "Status", "Time", "Last Read", "Title", "Domain")
	fmt.Fprintln(w, strings.Repeat("-", 104))
	for _, rec := range records {
		card := dashboard.NewCard(rec, now)
		fmt.Fprintf(w, "%-10s %-10s %-16s %-40s %-24s\n",
			card.Status,
			card.TimeLeft,
			card.LastRead,
			truncate(titleOrURL(card), 40),
			truncate(card.Domain, 24),
		)
	}

	stats := dashboard.Summarize(records)
	fmt.Fprintf(w, "\nTotal: %d articles (%d completed, ~%d minutes read)\n", stats.Total, stats.Completed, stats.MinutesRead)
}

func titleOrURL(c dashboard.Card) string {
	if c.Title != "" {
		return c.Title
	}
	return c.URL
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
