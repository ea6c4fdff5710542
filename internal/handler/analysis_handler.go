package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/salmon131/my-reporter-assistant/internal/model"
	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
)

const (
	degradedHeader      = "X-Analysis-Degraded"
	minSituationRunes   = 5
	healthMessage       = "AI 취재 디렉터 API 서버가 정상 작동 중입니다."
	providerErrorMsg    = "AI provider error"
	providerTimeoutMsg  = "AI provider timed out"
	internalErrorMsg    = "Internal error"
	requestCancelledMsg = "Request cancelled"
)

type Analyzer interface {
	Direct(ctx context.Context, situation string) (llm.Outcome[model.Directing], error)
	Perspective(ctx context.Context, situation, lens string) (llm.Outcome[model.PerspectiveSet], error)
	DeepDive(ctx context.Context, topic string) (llm.Outcome[model.DeepDive], error)
	Examples() prompt.Examples
	ModelUsed() string
}

type AnalysisHandler struct {
	analyzer Analyzer
	version  string
}

func NewAnalysisHandler(analyzer Analyzer, version string) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, version: version}
}

func (h *AnalysisHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: healthMessage,
		Version: h.version,
		Model:   h.analyzer.ModelUsed(),
	})
}

func (h *AnalysisHandler) GetExamples(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Examples())
}

func (h *AnalysisHandler) PostDirect(c *gin.Context) {
	var req SituationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	situation := strings.TrimSpace(req.Situation)
	if situation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "situation is required"})
		return
	}

	out, err := h.analyzer.Direct(c.Request.Context(), situation)
	if err != nil {
		writeStageError(c, "direct", err)
		return
	}

	writeOutcome(c, out.Degraded, out.Record)
}

func (h *AnalysisHandler) PostPerspective(c *gin.Context) {
	var req PerspectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	situation := strings.TrimSpace(req.Situation)
	if utf8.RuneCountInString(situation) < minSituationRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "situation must be at least 5 characters"})
		return
	}

	lens := strings.TrimSpace(req.Perspective)
	if lens == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "perspective is required"})
		return
	}

	out, err := h.analyzer.Perspective(c.Request.Context(), situation, lens)
	if err != nil {
		writeStageError(c, "perspective", err)
		return
	}

	writeOutcome(c, out.Degraded, out.Record)
}

func (h *AnalysisHandler) PostDeepDive(c *gin.Context) {
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

	out, err := h.analyzer.DeepDive(c.Request.Context(), topic)
	if err != nil {
		writeStageError(c, "deep_dive", err)
		return
	}

	writeOutcome(c, out.Degraded, out.Record)
}

func writeOutcome(c *gin.Context, degraded bool, record any) {
	if degraded {
		c.Header(degradedHeader, "true")
	}
	c.JSON(http.StatusOK, record)
}

func writeStageError(c *gin.Context, stage string, err error) {
	log := requestLogger(c)

	if errors.Is(err, context.Canceled) {
		log.Warn("analysis cancelled", "stage", stage)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": requestCancelledMsg})
		return
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		log.Error("provider error", "stage", stage, "provider", perr.Provider, "error", err)
		if perr.Timeout() {
			c.JSON(http.StatusBadGateway, gin.H{"error": providerTimeoutMsg})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": providerErrorMsg})
		return
	}

	log.Error("error running analysis", "stage", stage, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMsg})
}
