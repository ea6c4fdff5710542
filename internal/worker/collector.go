package worker

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type JobCreator interface {
	CreateJob(topic string) (*model.AnalysisJob, error)
	UpdateStatus(id int64, status string) error
}

type CollectResult struct {
	Queued  int
	Skipped int
	Errors  int
}

// Collect creates one analysis job per watch topic and queues it.
func Collect(ctx context.Context, jobs JobCreator, queue Queue, topics []string) CollectResult {
	var res CollectResult
	seen := make(map[string]bool, len(topics))

	for _, t := range topics {
		topic := strings.TrimSpace(t)
		if topic == "" || seen[topic] {
			res.Skipped++
			continue
		}
		seen[topic] = true

		job, err := jobs.CreateJob(topic)
		if err != nil {
			slog.Error("error creating analysis job", "topic", topic, "error", err)
			res.Errors++
			continue
		}

		if err := queue.Push(ctx, strconv.FormatInt(job.ID, 10)); err != nil {
			slog.Error("error pushing to Redis queue", "topic", topic, "job_id", job.ID, "error", err)
			if err := jobs.UpdateStatus(job.ID, model.StatusFailed); err != nil {
				slog.Error("error marking job failed", "job_id", job.ID, "error", err)
			}
			res.Errors++
			continue
		}

		res.Queued++
	}

	return res
}
