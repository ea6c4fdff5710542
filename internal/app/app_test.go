package app

import (
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

func TestNewGateway(t *testing.T) {
	cfg := config.Default()

	_, ok := NewGateway(cfg).(*news.NaverClient)
	assert.Equal(t, true, ok)

	cfg.Retrieval.Gateway = "mcp"
	gw, ok := NewGateway(cfg).(*news.MCPGateway)
	assert.Equal(t, true, ok)
	assert.Equal(t, "NaverMCP", gw.Name())
}

func TestLoadPrompts(t *testing.T) {
	cfg := config.Default()

	set, err := LoadPrompts(cfg)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, "", set.Version)

	cfg.Analysis.PromptsPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadPrompts(cfg)
	assert.NotEqual(t, nil, err)
}

func TestNewPipeline_MissingAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = ""

	_, err := NewPipeline(t.Context(), cfg)
	assert.NotEqual(t, nil, err)
}

func TestNewPipeline_OpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.Model = "gpt-4o-mini"

	p, err := NewPipeline(t.Context(), cfg)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Naver", p.Gateway.Name())
	assert.NotEqual(t, nil, p.Director)
	assert.NotEqual(t, nil, p.Batch)
}
