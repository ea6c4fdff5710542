package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/salmon131/my-reporter-assistant/internal/analysis"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

const degradedCountHeader = "X-Analysis-Degraded-Count"

type BatchRunner interface {
	RunDetailed(ctx context.Context, articles []string) (*analysis.BatchResult, error)
}

type NewsHandler struct {
	gateway    news.Gateway
	batch      BatchRunner
	maxResults int
}

func NewNewsHandler(gateway news.Gateway, batch BatchRunner, maxResults int) *NewsHandler {
	return &NewsHandler{gateway: gateway, batch: batch, maxResults: maxResults}
}

func (h *NewsHandler) PostNewsSearch(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}

	maxResults := h.maxResults
	if req.MaxResults > 0 {
		maxResults = req.MaxResults
	}

	blob, err := h.gateway.Search(c.Request.Context(), topic, maxResults)
	if err != nil {
		writeRetrievalError(c, topic, err)
		return
	}

	c.JSON(http.StatusOK, NewsSearchResponse{NewsArticles: news.SplitArticles(blob)})
}

func (h *NewsHandler) PostNewsAnalyze(c *gin.Context) {
	var req NewsAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "news_articles is required"})
		return
	}

	if len(req.NewsArticles) > news.MaxResults {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("news_articles accepts at most %d articles", news.MaxResults)})
		return
	}

	res, err := h.batch.RunDetailed(c.Request.Context(), req.NewsArticles)
	if err != nil {
		requestLogger(c).Warn("news analysis aborted", "articles", len(req.NewsArticles), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": requestCancelledMsg})
		return
	}

	c.Header(degradedCountHeader, strconv.Itoa(res.DegradedCount()))
	if res.SummaryDegraded {
		c.Header(degradedHeader, "true")
	}
	c.JSON(http.StatusOK, res.BatchSummary)
}

func writeRetrievalError(c *gin.Context, topic string, err error) {
	log := requestLogger(c)

	if errors.Is(err, context.Canceled) {
		log.Warn("news search cancelled", "topic", topic)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": requestCancelledMsg})
		return
	}

	var rerr *news.RetrievalError
	if errors.As(err, &rerr) {
		log.Error("news retrieval failed", "gateway", rerr.Gateway, "topic", topic, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "News retrieval failed"})
		return
	}

	log.Error("error searching news", "topic", topic, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMsg})
}
