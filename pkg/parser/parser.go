package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/readtime/models"
	"github.com/go-shiori/go-readability"
)

type Parser struct{}

// Parse builds a Page from raw HTML. The title and byline come from
// go-readability when it can extract an article, otherwise from <title>.
func (p *Parser) Parse(req models.ParseRequest) (*models.Page, error) {
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &models.Page{
		URL:    req.URL,
		Title:  normalizeText(doc.Find("title").First().Text()),
		Domain: models.DomainOf(req.URL),
		Doc:    doc,
	}

	// readability only enriches metadata; a failure here is not fatal
	article, err := readability.FromReader(strings.NewReader(req.HTML), parsedURL)
	if err == nil {
		if title := normalizeText(article.Title); title != "" {
			page.Title = title
		}
		page.Byline = normalizeText(article.Byline)
	}

	return page, nil
}

// normalizeText collapses whitespace runs into single spaces.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
