// Package app builds the analysis pipeline shared by the binaries from a
// loaded Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/salmon131/my-reporter-assistant/internal/analysis"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

type Pipeline struct {
	Prompts  *prompt.Set
	Director *analysis.Director
	Batch    *analysis.BatchAnalyzer
	Gateway  news.Gateway
}

func LoadPrompts(cfg *config.Config) (*prompt.Set, error) {
	if cfg.Analysis.PromptsPath == "" {
		return prompt.Default()
	}
	return prompt.Load(cfg.Analysis.PromptsPath)
}

func NewGateway(cfg *config.Config) news.Gateway {
	if cfg.Retrieval.Gateway == "mcp" {
		return news.NewMCPGateway(cfg.Retrieval.MCPCommand, cfg.Retrieval.MCPArgs, cfg.MCPEnv(), cfg.Retrieval.MCPTool)
	}

	client := news.NewNaverClient(cfg.Retrieval.ClientID, cfg.Retrieval.ClientSecret)
	if cfg.Retrieval.FetchBodies {
		client = client.WithBodies(news.NewBodyFetcher())
	}
	return client
}

func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	prompts, err := LoadPrompts(cfg)
	if err != nil {
		return nil, fmt.Errorf("error loading prompts: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg.Provider())
	if err != nil {
		return nil, fmt.Errorf("error creating LLM provider: %w", err)
	}

	runner := llm.NewRunner(provider, cfg.LLMTimeout())
	gateway := NewGateway(cfg)

	slog.Info("analysis pipeline ready",
		"provider", provider.Name(),
		"gateway", gateway.Name(),
		"prompt_version", prompts.Version,
		"concurrency", cfg.Analysis.Concurrency,
	)

	return &Pipeline{
		Prompts:  prompts,
		Director: analysis.NewDirector(runner, prompts),
		Batch:    analysis.NewBatchAnalyzer(runner, prompts, cfg.Analysis.Concurrency),
		Gateway:  gateway,
	}, nil
}
