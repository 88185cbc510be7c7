package models

import "github.com/PuerkitoBio/goquery"

// Page is a parsed web page ready for content detection.
type Page struct {
	URL    string            `json:"url" yaml:"url"`
	Title  string            `json:"title" yaml:"title"`
	Domain string            `json:"domain" yaml:"domain"`
	Byline string            `json:"byline,omitempty" yaml:"byline,omitempty"`
	Doc    *goquery.Document `json:"-" yaml:"-"`
}
