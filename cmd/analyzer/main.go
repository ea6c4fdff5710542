package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/salmon131/my-reporter-assistant/db"
	"github.com/salmon131/my-reporter-assistant/internal/app"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/internal/repository"
	"github.com/salmon131/my-reporter-assistant/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("error building analysis pipeline: %v", err)
	}

	analyzer := worker.NewAnalyzer(
		repository.NewJobRepository(db.DB),
		repository.NewReportRepository(db.DB),
		db.Queue{Key: db.AnalyzeQueueKey},
		db.Queue{Key: db.DeadLetterKey},
		pipeline.Gateway,
		pipeline.Batch,
		worker.Options{
			MaxResults:    cfg.Retrieval.MaxResults,
			MaxRetries:    cfg.Worker.MaxRetries,
			RetryDelay:    cfg.RetryDelay(),
			PollTimeout:   cfg.PollTimeout(),
			PromptVersion: pipeline.Prompts.Version,
		},
	)

	slog.Info("analyzer started", "queue", db.AnalyzeQueueKey)

	if err := analyzer.Run(ctx); err != nil {
		log.Fatalf("analyzer stopped: %v", err)
	}

	slog.Info("analyzer stopped")
}
