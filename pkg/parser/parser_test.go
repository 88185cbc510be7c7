package parser

import (
	"strings"
	"testing"

	"github.com/dtnitsch/readtime/models"
)

func TestParse(t *testing.T) {
	html := `<html><head><title>
		A   Long   Walk </title></head><body><article><h1>A Long Walk</h1>` +
		strings.Repeat("<p>We walked for hours along the river and talked about everything.</p>", 10) +
		`</article></body></html>`

	p := &Parser{}
	page, err := p.Parse(models.ParseRequest{URL: "https://Blog.Example.com:8080/walk?x=1", HTML: html})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if page.Title == "" || strings.Contains(page.Title, "  ") {
		t.Errorf("Title = %q, want normalized non-empty title", page.Title)
	}
	if page.Domain != "blog.example.com" {
		t.Errorf("Domain = %q, want %q", page.Domain, "blog.example.com")
	}
	if page.Doc == nil || page.Doc.Find("p").Length() != 10 {
		t.Error("Doc does not hold the original document")
	}
}

func TestParse_BadURL(t *testing.T) {
	p := &Parser{}
	if _, err := p.Parse(models.ParseRequest{URL: "http://[::1", HTML: "<p>x</p>"}); err == nil {
		t.Error("Parse() error = nil, want error for malformed URL")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"  a  b\n\nc ", "a b c"},
		{"\tsingle\t", "single"},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
