package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const defaultMaxBodyChars = 4000

// Selectors tried in order for the article body; the first non-empty match wins.
var bodySelectors = []string{
	"#dic_area",
	"#articleBodyContents",
	"#newsct_article",
	"article",
	"main",
}

// BodyFetcher downloads an article page and converts its main content to
// markdown.
type BodyFetcher struct {
	httpClient *http.Client
	converter  *md.Converter
	maxChars   int
}

func NewBodyFetcher() *BodyFetcher {
	return &BodyFetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		converter:  md.NewConverter("", true, nil),
		maxChars:   defaultMaxBodyChars,
	}
}

func (f *BodyFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("body fetch: empty url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("body request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; reporter-assistant)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	doc.Find("script, style, noscript, iframe, nav, header, footer, figure").Remove()

	content := doc.Find("body")
	for _, sel := range bodySelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			content = s
			break
		}
	}

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	markdown, err := f.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("fetching %s: no article text", pageURL)
	}
	return clip(markdown, f.maxChars), nil
}

func clip(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
