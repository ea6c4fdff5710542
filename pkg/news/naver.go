package news

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const naverNewsURL = "https://openapi.naver.com/v1/search/news.json"

type NaverClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	bodies       *BodyFetcher
	logger       *slog.Logger
}

func NewNaverClient(clientID, clientSecret string) *NaverClient {
	return &NaverClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       slog.Default().With("component", "naver_client"),
	}
}

// WithBodies makes Fetch replace each search snippet with the article page
// body when it can be downloaded.
func (c *NaverClient) WithBodies(f *BodyFetcher) *NaverClient {
	c.bodies = f
	return c
}

func (c *NaverClient) Name() string {
	return "Naver"
}

func (c *NaverClient) Search(ctx context.Context, topic string, maxResults int) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", &RetrievalError{Gateway: c.Name(), Topic: topic, Err: errors.New("empty topic")}
	}
	articles, err := c.Fetch(ctx, topic, maxResults)
	if err != nil {
		return "", &RetrievalError{Gateway: c.Name(), Topic: topic, Err: err}
	}
	return FormatArticles(articles), nil
}

func (c *NaverClient) Fetch(ctx context.Context, topic string, limit int) ([]Article, error) {
	params := url.Values{}
	params.Set("query", topic)
	params.Set("display", strconv.Itoa(clampResults(limit)))
	params.Set("start", "1")
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, naverNewsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr naverError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("naver fetch: status %d: %s %s", resp.StatusCode, apiErr.ErrorCode, apiErr.ErrorMessage)
	}

	var raw naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("naver decode: %w", err)
	}

	articles := make([]Article, 0, len(raw.Items))
	for _, item := range raw.Items {
		a := item.toArticle(c.Name())
		if c.bodies != nil {
			body, err := c.bodies.Fetch(ctx, a.bodyURL())
			if err != nil {
				c.logger.Warn("error fetching article body, keeping snippet", "url", a.bodyURL(), "error", err)
			} else {
				a.Body = body
			}
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func (a Article) bodyURL() string {
	if a.OriginalURL != "" {
		return a.OriginalURL
	}
	return a.URL
}

func generateExternalID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)[:16]
}

// stripMarkup drops the <b> highlights and HTML entities Naver puts in titles
// and descriptions.
func stripMarkup(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

type naverResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

func (item naverItem) toArticle(source string) Article {
	publishedAt, err := time.Parse(time.RFC1123Z, item.PubDate)
	if err != nil {
		publishedAt = time.Time{}
	}

	id := item.OriginalLink
	if id == "" {
		id = item.Link
	}

	return Article{
		ExternalID:  generateExternalID(id),
		Title:       stripMarkup(item.Title),
		Description: stripMarkup(item.Description),
		URL:         item.Link,
		OriginalURL: item.OriginalLink,
		PublishedAt: publishedAt,
		Source:      source,
	}
}

type naverError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}
