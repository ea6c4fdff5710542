package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type ReportStore interface {
	GetReports(limit, offset int) ([]model.AnalysisReport, error)
	GetReportTotal() (int, error)
	GetLatestReport() (*model.AnalysisReport, error)
	GetReportByID(id int64) (*model.AnalysisReport, error)
}

type ReportHandler struct {
	repository ReportStore
}

func NewReportHandler(repository ReportStore) *ReportHandler {
	return &ReportHandler{repository: repository}
}

func toReportSummaryResponse(r model.AnalysisReport) ReportSummaryResponse {
	return ReportSummaryResponse{
		ID:              r.ID,
		JobID:           r.JobID,
		Topic:           r.Topic,
		Summary:         r.Summary,
		SummaryDegraded: r.SummaryDegraded,
		ArticleCount:    r.ArticleCount,
		DegradedCount:   r.DegradedCount,
		ModelUsed:       r.ModelUsed,
		PromptVersion:   r.PromptVersion,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func toReportResponse(r model.AnalysisReport) ReportResponse {
	articles := make([]ReportArticleResponse, len(r.Articles))
	for i, a := range r.Articles {
		articles[i] = ReportArticleResponse{
			ArticleAnalysis: a.ArticleAnalysis,
			SourceText:      a.SourceText,
			Degraded:        a.Degraded,
		}
	}
	return ReportResponse{
		ReportSummaryResponse: toReportSummaryResponse(r),
		ArticleAnalyses:       articles,
	}
}

func (h *ReportHandler) GetReports(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	reports, err := h.repository.GetReports(limit, offset)
	if err != nil {
		slog.Error("error fetching reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetReportTotal()
	if err != nil {
		slog.Error("error fetching report total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := ReportsResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		History: []ReportSummaryResponse{},
	}

	if len(reports) > 0 {
		latest := toReportSummaryResponse(reports[0])
		res.Latest = &latest
		for _, r := range reports[1:] {
			res.History = append(res.History, toReportSummaryResponse(r))
		}
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) GetLatestReport(c *gin.Context) {
	report, err := h.repository.GetLatestReport()
	if err != nil {
		slog.Error("error fetching latest report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report available"})
		return
	}

	c.JSON(http.StatusOK, toReportResponse(*report))
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	id := c.Param("id")

	reportID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.Error("invalid report id", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	report, err := h.repository.GetReportByID(reportID)
	if err != nil {
		slog.Error("error fetching report", "error", err, "report_id", reportID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, toReportResponse(*report))
}
