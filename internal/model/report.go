package model

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type AnalysisJob struct {
	ID         int64
	Topic      string
	Status     string
	ErrorCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ProcessingError struct {
	ID           int64
	JobID        int64
	ErrorMessage string
	ErrorType    string
	CreatedAt    time.Time
}

type AnalysisReport struct {
	ID              int64
	JobID           int64
	Topic           string
	Summary         string
	SummaryDegraded bool
	ArticleCount    int
	DegradedCount   int
	ModelUsed       string
	PromptVersion   string
	CreatedAt       time.Time
	Articles        []ReportArticle
}

type ReportArticle struct {
	ArticleAnalysis
	SourceText string
	Degraded   bool
}
