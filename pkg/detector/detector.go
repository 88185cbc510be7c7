package detector

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// MinParagraphs is the paragraph count above which a page is article-like.
	MinParagraphs = 5

	// MinContentLength is the rendered text length a selector match must
	// exceed to be accepted as the content body.
	MinContentLength = 500
)

// contentSelectors are tried in order, most specific first.
var contentSelectors = []string{
	"article",
	`[role="article"]`,
	".post-content",
	".entry-content",
	".article-content",
	"#content",
	"main",
}

// Strategy names the tier of LocateContent that produced a Boundary.
type Strategy string

const (
	// StrategySelector: the first sufficiently long match of contentSelectors.
	StrategySelector Strategy = "selector"
	// StrategyParagraphParent: the element holding the most <p> children.
	StrategyParagraphParent Strategy = "paragraph-parent"
	// StrategyDocument: nothing was located; progress uses the whole page.
	StrategyDocument Strategy = "document"
)

// Boundary is the region of a document considered the main content body.
// A Boundary with no selection means progress is measured against the
// whole document.
type Boundary struct {
	Selection *goquery.Selection
	Strategy  Strategy
	Selector  string // only set for StrategySelector

	text string
}

// Found reports whether a bounded content element was located.
func (b Boundary) Found() bool {
	return b.Selection != nil && b.Selection.Length() > 0
}

// Text returns the rendered text of the boundary, or of the document body
// when nothing was found.
func (b Boundary) Text() string {
	return b.text
}

// Describe returns a short CSS-like label for the located element.
func (b Boundary) Describe() string {
	if !b.Found() {
		return "document"
	}
	node := b.Selection.Get(0)
	var sb strings.Builder
	sb.WriteString(node.Data)
	if id, ok := b.Selection.Attr("id"); ok && id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	if class, ok := b.Selection.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			sb.WriteString(".")
			sb.WriteString(c)
		}
	}
	return sb.String()
}

// IsArticle is a cheap admission test: the document has an article element
// or role, or more than MinParagraphs paragraphs.
func IsArticle(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	if doc.Find(`article, [role="article"]`).Length() > 0 {
		return true
	}
	return doc.Find("p").Length() > MinParagraphs
}

// LocateContent finds the main content element of doc. It tries the
// selector priority list, then the parent holding the most paragraphs, and
// finally falls back to the whole document.
func LocateContent(doc *goquery.Document) Boundary {
	if doc == nil {
		return Boundary{Strategy: StrategyDocument}
	}

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := RenderedText(sel)
		if utf8.RuneCountInString(text) > MinContentLength {
			return Boundary{Selection: sel, Strategy: StrategySelector, Selector: selector, text: text}
		}
	}

	if parent := largestParagraphParent(doc); parent != nil {
		return Boundary{Selection: parent, Strategy: StrategyParagraphParent, text: RenderedText(parent)}
	}

	return Boundary{Strategy: StrategyDocument, text: RenderedText(doc.Find("body"))}
}

// largestParagraphParent groups paragraphs by their immediate parent and
// returns the parent with the most paragraph children. Ties go to the parent
// that reached the count first.
func largestParagraphParent(doc *goquery.Document) *goquery.Selection {
	counts := make(map[*html.Node]int)
	var best *goquery.Selection
	maxCount := 0

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		parent := p.Parent()
		if parent.Length() == 0 {
			return
		}
		node := parent.Get(0)
		counts[node]++
		if counts[node] > maxCount {
			maxCount = counts[node]
			best = parent
		}
	})

	return best
}

// skippedElements never contribute rendered text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// blockElements break the text flow, so their content never runs into the
// text of a neighbouring element.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// RenderedText approximates the visible text of sel: script, style and
// noscript content is dropped, block elements are separated, and
// whitespace runs collapse to one space.
func RenderedText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, node := range sel.Nodes {
		writeText(&sb, node)
		sb.WriteByte(' ')
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte(' ')
	}
}
