package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/salmon131/my-reporter-assistant/db"
	"github.com/salmon131/my-reporter-assistant/internal/app"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/internal/handler"
	"github.com/salmon131/my-reporter-assistant/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	cfg.SetupLogger()

	ctx := context.Background()

	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("error building analysis pipeline: %v", err)
	}

	analysisHandler := handler.NewAnalysisHandler(pipeline.Director, config.Version)
	newsHandler := handler.NewNewsHandler(pipeline.Gateway, pipeline.Batch, cfg.Retrieval.MaxResults)

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID())

	slog.Info("AllowOrigins URL:", "urls", cfg.Server.AllowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-Analysis-Degraded", "X-Analysis-Degraded-Count"},
	}))

	api := r.Group("/api")
	api.GET("/health", analysisHandler.GetHealth)
	api.GET("/examples", analysisHandler.GetExamples)
	api.POST("/direct", analysisHandler.PostDirect)
	api.POST("/perspective", analysisHandler.PostPerspective)
	api.POST("/deep-dive", analysisHandler.PostDeepDive)
	api.POST("/news-search", newsHandler.PostNewsSearch)
	api.POST("/news-analyze", newsHandler.PostNewsAnalyze)

	if cfg.DatabaseURL != "" && cfg.RedisURL != "" {
		if err := db.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer db.Close()

		if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer db.CloseRedis()

		jobHandler := handler.NewJobHandler(repository.NewJobRepository(db.DB), db.Queue{Key: db.AnalyzeQueueKey})
		reportHandler := handler.NewReportHandler(repository.NewReportRepository(db.DB))

		api.POST("/news-analyze/jobs", jobHandler.PostAnalyzeJob)
		api.GET("/jobs/:id", jobHandler.GetJob)
		api.GET("/reports", reportHandler.GetReports)
		api.GET("/reports/latest", reportHandler.GetLatestReport)
		api.GET("/reports/:id", reportHandler.GetReport)
	} else {
		slog.Warn("DATABASE_URL or REDIS_URL not set, job and report routes disabled")
	}

	err = r.Run(":" + cfg.Server.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
