package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxResults = 5

	// MaxResults is Naver's display limit. It also caps one analysis batch.
	MaxResults = 100

	articleDelimiter = "\n---\n"
)

type Article struct {
	ExternalID  string
	Title       string
	Description string
	Body        string
	URL         string
	OriginalURL string
	PublishedAt time.Time
	Source      string
}

// Gateway retrieves the raw search results for a topic as one text blob.
// Use SplitArticles to turn the blob into per-article texts.
type Gateway interface {
	Search(ctx context.Context, topic string, maxResults int) (string, error)
	Name() string
}

type RetrievalError struct {
	Gateway string
	Topic   string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s retrieval for %q failed: %v", e.Gateway, e.Topic, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// FormatArticles renders articles in the blob format SplitArticles reads.
func FormatArticles(articles []Article) string {
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, formatArticle(a))
	}
	return strings.Join(blocks, articleDelimiter)
}

func formatArticle(a Article) string {
	var sb strings.Builder
	sb.WriteString("제목: " + a.Title + "\n")
	if !a.PublishedAt.IsZero() {
		sb.WriteString("날짜: " + a.PublishedAt.Format("2006-01-02 15:04") + "\n")
	}
	if a.OriginalURL != "" {
		sb.WriteString("링크: " + a.OriginalURL + "\n")
	} else if a.URL != "" {
		sb.WriteString("링크: " + a.URL + "\n")
	}
	text := a.Body
	if strings.TrimSpace(text) == "" {
		text = a.Description
	}
	if text != "" {
		sb.WriteString("\n" + text)
	}
	return strings.TrimSpace(sb.String())
}

// SplitArticles splits a search blob into per-article texts, in blob order.
// A blob holding a Naver search API response ({"items": [...]}) is decoded
// item by item; anything else is split on "---" delimiter lines.
func SplitArticles(blob string) []string {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "{") {
		var resp naverResponse
		if err := json.Unmarshal([]byte(trimmed), &resp); err == nil && resp.Items != nil {
			articles := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				articles = append(articles, formatArticle(item.toArticle("")))
			}
			return articles
		}
	}

	var articles []string
	var current []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			articles = append(articles, text)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if articles == nil {
		return []string{}
	}
	return articles
}

func clampResults(maxResults int) int {
	if maxResults <= 0 {
		return DefaultMaxResults
	}
	if maxResults > MaxResults {
		return MaxResults
	}
	return maxResults
}
