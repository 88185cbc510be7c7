package main

import (
	"os"
	"path/filepath"
	"testing"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().Run(append([]string{"readtime", "--quiet"}, args...))
}

func TestCommandsHaveActions(t *testing.T) {
	for _, cmd := range newApp().Commands {
		if cmd.Action == nil {
			t.Errorf("command %q has no action", cmd.Name)
		}
	}
}

func TestSaveThenGetOnSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readtime.db")
	store := []string{"--store", "sqlite", "--db", dbPath}

	if err := run(t, append(store, "save", "--url", "https://example.com/post", "--progress", "42", "--word-count", "600")...); err != nil {
		t.Fatalf("save error = %v", err)
	}
	if err := run(t, append(store, "get", "https://example.com/post")...); err != nil {
		t.Errorf("get error = %v", err)
	}
	if err := run(t, append(store, "list", "--filter", "reading")...); err != nil {
		t.Errorf("list error = %v", err)
	}
	if err := run(t, append(store, "stats")...); err != nil {
		t.Errorf("stats error = %v", err)
	}
	if err := run(t, append(store, "delete", "https://example.com/post")...); err != nil {
		t.Errorf("delete error = %v", err)
	}
	if err := run(t, append(store, "get", "https://example.com/post")...); err == nil {
		t.Error("get after delete: error = nil")
	}
}

func TestInspectAndSimulateFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "article.html")
	html := "<html><head><title>Post</title></head><body><article><p>"
	for i := 0; i < 300; i++ {
		html += "word "
	}
	html += "</p></article></body></html>"
	if err := os.WriteFile(file, []byte(html), 0644); err != nil {
		t.Fatalf("failed to write article: %v", err)
	}

	if err := run(t, "inspect", "--file", file); err != nil {
		t.Errorf("inspect error = %v", err)
	}
	if err := run(t, "--store", "memory", "simulate", "--file", file, "--url", "https://example.com/post", "--steps", "3"); err != nil {
		t.Errorf("simulate error = %v", err)
	}
}

func TestInvalidInput(t *testing.T) {
	tests := [][]string{
		{"--store", "bogus", "stats"},
		{"--store", "memory", "list", "--filter", "archived"},
		{"--store", "memory", "get"},
		{"inspect"},
		{"progress", "--scroll", "10", "--doc-height", "2000", "--viewport-height", "800", "--top", "900", "--bottom", "100"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("%v: error = nil", args)
		}
	}
}
