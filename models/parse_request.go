package models

// ParseRequest is the input to the page parser.
type ParseRequest struct {
	URL  string
	HTML string
}
