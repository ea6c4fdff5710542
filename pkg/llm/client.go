package llm

import "context"

type Tool string

const (
	// ToolWebSearch lets the provider ground its answer on a live web search.
	// Providers without a search tool ignore it.
	ToolWebSearch Tool = "web_search"
)

type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	Tools       []Tool
}

// Provider is the generative text-completion backend. Generate makes exactly
// one remote call and returns the raw text, which may be empty.
type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}
