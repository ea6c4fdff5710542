package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/salmon131/my-reporter-assistant/db"
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

	if len(cfg.Worker.WatchTopics) == 0 {
		slog.Error("no watch topics configured")
		return
	}

	ctx := context.Background()

	err = db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	jobs := repository.NewJobRepository(db.DB)
	res := worker.Collect(ctx, jobs, db.Queue{Key: db.AnalyzeQueueKey}, cfg.Worker.WatchTopics)

	slog.Info("collect complete", "queued", res.Queued, "skipped", res.Skipped, "errors", res.Errors)
}
