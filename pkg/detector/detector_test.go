package detector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head><title>t</title></head><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func paragraphs(n int, text string) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("<p>")
		sb.WriteString(text)
		sb.WriteString("</p>")
	}
	return sb.String()
}

func TestIsArticle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"article tag without paragraphs", "<article>short</article>", true},
		{"article role", `<div role="article">short</div>`, true},
		{"six paragraphs", paragraphs(6, "text"), true},
		{"exactly five paragraphs", paragraphs(5, "text"), false},
		{"empty body", "", false},
		{"navigation only", "<nav><a href='/'>home</a></nav>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsArticle(mustDoc(t, tt.body)); got != tt.want {
				t.Errorf("IsArticle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsArticle_NilDocument(t *testing.T) {
	if IsArticle(nil) {
		t.Error("IsArticle(nil) = true, want false")
	}
}

func TestLocateContent_SelectorPriority(t *testing.T) {
	long := strings.Repeat("word ", 150)
	body := `<main>` + paragraphs(3, long) + `</main><article id="story">` + paragraphs(2, long) + `</article>`

	b := LocateContent(mustDoc(t, body))
	if b.Strategy != StrategySelector {
		t.Fatalf("Strategy = %q, want %q", b.Strategy, StrategySelector)
	}
	if b.Selector != "article" {
		t.Errorf("Selector = %q, want %q", b.Selector, "article")
	}
	if !b.Found() {
		t.Fatal("Found() = false, want true")
	}
	if got := b.Describe(); got != "article#story" {
		t.Errorf("Describe() = %q, want %q", got, "article#story")
	}
}

func TestLocateContent_ShortSelectorMatchRejected(t *testing.T) {
	long := strings.Repeat("word ", 150)
	body := `<article>Related links</article><div class="entry-content">` + paragraphs(2, long) + `</div>`

	b := LocateContent(mustDoc(t, body))
	if b.Selector != ".entry-content" {
		t.Errorf("Selector = %q, want %q", b.Selector, ".entry-content")
	}
}

func TestLocateContent_LengthThresholdIsExclusive(t *testing.T) {
	body := `<div id="content">` + strings.Repeat("a", MinContentLength) + `</div>`

	b := LocateContent(mustDoc(t, body))
	if b.Strategy == StrategySelector {
		t.Errorf("text of exactly %d characters was accepted", MinContentLength)
	}
}

func TestLocateContent_ScriptTextIgnored(t *testing.T) {
	body := `<main><script>` + strings.Repeat("var x = 1;", 100) + `</script>tiny</main>`

	b := LocateContent(mustDoc(t, body))
	if b.Strategy == StrategySelector {
		t.Error("script text counted towards rendered length")
	}
}

func TestLocateContent_ParagraphParentFallback(t *testing.T) {
	body := `<div class="intro">` + paragraphs(1, "hello") + `</div>` +
		`<div class="body">` + paragraphs(4, "story text") + `</div>` +
		`<aside>` + paragraphs(2, "ad") + `</aside>`

	b := LocateContent(mustDoc(t, body))
	if b.Strategy != StrategyParagraphParent {
		t.Fatalf("Strategy = %q, want %q", b.Strategy, StrategyParagraphParent)
	}
	if class, _ := b.Selection.Attr("class"); class != "body" {
		t.Errorf("selected parent class = %q, want %q", class, "body")
	}
	if got := len(strings.Fields(b.Text())); got != 8 {
		t.Errorf("word count of boundary text = %d, want 8", got)
	}
}

func TestLocateContent_ParagraphParentTieGoesToFirst(t *testing.T) {
	body := `<div class="first">` + paragraphs(2, "a") + `</div><div class="second">` + paragraphs(2, "b") + `</div>`

	b := LocateContent(mustDoc(t, body))
	if class, _ := b.Selection.Attr("class"); class != "first" {
		t.Errorf("selected parent class = %q, want %q", class, "first")
	}
}

func TestLocateContent_NoContentFound(t *testing.T) {
	b := LocateContent(mustDoc(t, `<div>just some   loose text</div>`))
	if b.Found() {
		t.Fatal("Found() = true, want false")
	}
	if b.Strategy != StrategyDocument {
		t.Errorf("Strategy = %q, want %q", b.Strategy, StrategyDocument)
	}
	if b.Text() != "just some loose text" {
		t.Errorf("Text() = %q, want body text", b.Text())
	}
	if b.Describe() != "document" {
		t.Errorf("Describe() = %q, want %q", b.Describe(), "document")
	}
}

func TestLocateContent_IsStateless(t *testing.T) {
	doc := mustDoc(t, `<div class="body">`+paragraphs(3, "x")+`</div>`)
	first := LocateContent(doc)
	second := LocateContent(doc)
	if first.Selection.Get(0) != second.Selection.Get(0) {
		t.Error("repeated LocateContent returned different elements")
	}
}

func TestRenderedText_BlockBoundaries(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"adjacent paragraphs", "<p>a b</p><p>c d</p>", "a b c d"},
		{"line break", "one<br>two", "one two"},
		{"list items", "<ul><li>x</li><li>y</li></ul>", "x y"},
		{"heading then paragraph", "<h2>Title</h2><p>body</p>", "Title body"},
		{"inline elements do not split words", "<p>un<b>break</b>able <em>text</em></p>", "unbreakable text"},
		{"comments dropped", "<p>kept<!-- hidden --></p>", "kept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, "<div id=\"root\">"+tt.body+"</div>")
			if got := RenderedText(doc.Find("#root")); got != tt.want {
				t.Errorf("RenderedText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocateContent_MinifiedParagraphWordCount(t *testing.T) {
	body := "<article>" + strings.Repeat("<p>Alpha beta gamma delta</p>", 200) + "</article>"

	b := LocateContent(mustDoc(t, body))
	if b.Strategy != StrategySelector {
		t.Fatalf("Strategy = %q, want %q", b.Strategy, StrategySelector)
	}
	if got := len(strings.Fields(b.Text())); got != 800 {
		t.Errorf("word count of boundary text = %d, want 800", got)
	}
}
