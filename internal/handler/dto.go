package handler

import "github.com/salmon131/my-reporter-assistant/internal/model"

type SituationRequest struct {
	Situation string `json:"situation"`
}

type PerspectiveRequest struct {
	Situation   string `json:"situation"`
	Perspective string `json:"perspective"`
}

type TopicRequest struct {
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
}

type NewsAnalyzeRequest struct {
	NewsArticles []string `json:"news_articles" binding:"required"`
}

type NewsSearchResponse struct {
	NewsArticles []string `json:"news_articles"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

type JobResponse struct {
	ID         int64  `json:"id"`
	Topic      string `json:"topic"`
	Status     string `json:"status"`
	ErrorCount int    `json:"error_count"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type JobAcceptedResponse struct {
	JobID  int64  `json:"job_id"`
	Status string `json:"status"`
}

type ReportSummaryResponse struct {
	ID              int64  `json:"id"`
	JobID           int64  `json:"job_id"`
	Topic           string `json:"topic"`
	Summary         string `json:"summary"`
	SummaryDegraded bool   `json:"summary_degraded"`
	ArticleCount    int    `json:"article_count"`
	DegradedCount   int    `json:"degraded_count"`
	ModelUsed       string `json:"model_used"`
	PromptVersion   string `json:"prompt_version"`
	CreatedAt       string `json:"created_at"`
}

type ReportArticleResponse struct {
	model.ArticleAnalysis
	SourceText string `json:"source_text"`
	Degraded   bool   `json:"degraded"`
}

type ReportResponse struct {
	ReportSummaryResponse
	ArticleAnalyses []ReportArticleResponse `json:"article_analyses"`
}

type ReportsResponse struct {
	Latest  *ReportSummaryResponse  `json:"latest"`
	History []ReportSummaryResponse `json:"history"`
	Total   int                     `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}
