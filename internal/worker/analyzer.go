// Package worker drains the analysis queue: each job id popped from Redis is
// turned into a topic search, a batch analysis and a stored report.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/salmon131/my-reporter-assistant/db"
	"github.com/salmon131/my-reporter-assistant/internal/analysis"
	"github.com/salmon131/my-reporter-assistant/internal/model"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

const (
	errTypeRetrieval = "retrieval_error"
	errTypeStorage   = "storage_error"
)

type JobStore interface {
	GetJob(id int64) (*model.AnalysisJob, error)
	GetErrorCount(jobID int64) (int, error)
	UpdateStatus(id int64, status string) error
	SaveError(jobID int64, errMsg string, errType string) error
}

type ReportStore interface {
	SaveReportAndComplete(report *model.AnalysisReport) error
}

type Queue interface {
	Push(ctx context.Context, id string) error
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

type Batch interface {
	RunDetailed(ctx context.Context, articles []string) (*analysis.BatchResult, error)
	ModelUsed() string
}

type Options struct {
	MaxResults    int
	MaxRetries    int
	RetryDelay    time.Duration
	PollTimeout   time.Duration
	PromptVersion string
}

type Analyzer struct {
	jobs       JobStore
	reports    ReportStore
	queue      Queue
	deadLetter Queue
	gateway    news.Gateway
	batch      Batch
	opts       Options
	logger     *slog.Logger
}

func NewAnalyzer(jobs JobStore, reports ReportStore, queue, deadLetter Queue, gateway news.Gateway, batch Batch, opts Options) *Analyzer {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	return &Analyzer{
		jobs:       jobs,
		reports:    reports,
		queue:      queue,
		deadLetter: deadLetter,
		gateway:    gateway,
		batch:      batch,
		opts:       opts,
		logger:     slog.Default().With("component", "analyzer"),
	}
}

// Run pops and processes jobs until ctx is done or the queue fails.
func (a *Analyzer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		id, err := a.queue.Pop(ctx, a.opts.PollTimeout)
		if errors.Is(err, db.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("error popping from Redis queue", "error", err)
			return err
		}

		if err := a.Process(ctx, id); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("error processing job", "job_id", id, "error", err)
		}
	}
}

// Process runs one queued job. Retryable failures are recorded against the
// job and the job is pushed back onto the queue after RetryDelay.
func (a *Analyzer) Process(ctx context.Context, id string) error {
	jobID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		a.logger.Error("invalid job id in queue", "id", id, "error", err)
		return nil
	}

	errorCount, err := a.jobs.GetErrorCount(jobID)
	if err != nil {
		return fmt.Errorf("error getting error count: %w", err)
	}

	if errorCount >= a.opts.MaxRetries {
		a.logger.Warn("job exceeded max retries, marking as failed", "job_id", jobID, "error_count", errorCount)
		if err := a.jobs.UpdateStatus(jobID, model.StatusFailed); err != nil {
			return err
		}
		if a.deadLetter != nil {
			return a.deadLetter.Push(ctx, id)
		}
		return nil
	}

	job, err := a.jobs.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("error getting job: %w", err)
	}
	if job == nil {
		a.logger.Warn("job not found in DB", "job_id", jobID)
		return nil
	}
	if job.Status == model.StatusCompleted {
		a.logger.Info("job already completed, skipping", "job_id", jobID)
		return nil
	}

	if err := a.jobs.UpdateStatus(jobID, model.StatusProcessing); err != nil {
		return err
	}

	log := a.logger.With("job_id", jobID, "topic", job.Topic)

	blob, err := a.gateway.Search(ctx, job.Topic, a.opts.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return a.release(jobID, ctx.Err())
		}
		log.Error("error retrieving news", "gateway", a.gateway.Name(), "error", err)
		return a.retry(ctx, jobID, err, errTypeRetrieval)
	}

	articles := news.SplitArticles(blob)
	log.Info("articles retrieved", "gateway", a.gateway.Name(), "count", len(articles))

	res, err := a.batch.RunDetailed(ctx, articles)
	if err != nil {
		return a.release(jobID, err)
	}

	report := buildReport(job, articles, res)
	report.ModelUsed = a.batch.ModelUsed()
	report.PromptVersion = a.opts.PromptVersion

	if err := a.reports.SaveReportAndComplete(report); err != nil {
		log.Error("error saving report", "error", err)
		return a.retry(ctx, jobID, err, errTypeStorage)
	}

	log.Info("job analyzed successfully",
		"report_id", report.ID,
		"articles", report.ArticleCount,
		"degraded", report.DegradedCount,
	)
	return nil
}

func (a *Analyzer) retry(ctx context.Context, jobID int64, cause error, errType string) error {
	if err := a.jobs.SaveError(jobID, cause.Error(), errType); err != nil {
		a.logger.Error("error saving job error", "job_id", jobID, "error", err)
	}
	if err := a.jobs.UpdateStatus(jobID, model.StatusPending); err != nil {
		a.logger.Error("error resetting job status", "job_id", jobID, "error", err)
	}
	if err := a.queue.Push(ctx, strconv.FormatInt(jobID, 10)); err != nil {
		return fmt.Errorf("error requeueing job: %w", err)
	}
	sleep(ctx, a.opts.RetryDelay)
	return nil
}

// release hands an interrupted job back to the queue without counting it as
// a failure, so the next worker picks it up from scratch.
func (a *Analyzer) release(jobID int64, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.jobs.UpdateStatus(jobID, model.StatusPending); err != nil {
		a.logger.Error("error resetting job status", "job_id", jobID, "error", err)
	}
	if err := a.queue.Push(ctx, strconv.FormatInt(jobID, 10)); err != nil {
		a.logger.Error("error requeueing interrupted job", "job_id", jobID, "error", err)
	}
	return cause
}

func buildReport(job *model.AnalysisJob, articles []string, res *analysis.BatchResult) *model.AnalysisReport {
	report := &model.AnalysisReport{
		JobID:           job.ID,
		Topic:           job.Topic,
		Summary:         res.Summary,
		SummaryDegraded: res.SummaryDegraded,
		ArticleCount:    len(res.ArticleAnalyses),
		DegradedCount:   res.DegradedCount(),
		Articles:        make([]model.ReportArticle, len(res.ArticleAnalyses)),
	}
	for i, a := range res.ArticleAnalyses {
		report.Articles[i] = model.ReportArticle{
			ArticleAnalysis: a,
			SourceText:      articles[i],
			Degraded:        res.Degraded[i],
		}
	}
	return report
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
