// Package prompt holds the instruction templates sent to the generative
// provider. The defaults are embedded; a YAML file with the same layout can
// replace them at startup.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/salmon131/my-reporter-assistant/pkg/llm"
	"gopkg.in/yaml.v3"
)

const (
	StageDirecting       = "directing"
	StagePerspective     = "perspective"
	StageDeepDive        = "deep_dive"
	StageArticleAnalysis = "article_analysis"
	StageSynthesis       = "synthesis"
)

var requiredStages = []string{
	StageDirecting,
	StagePerspective,
	StageDeepDive,
	StageArticleAnalysis,
	StageSynthesis,
}

//go:embed prompts.yaml
var defaultPrompts []byte

type Template struct {
	System      string   `yaml:"system"`
	User        string   `yaml:"user"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Tools       []string `yaml:"tools"`
}

type Example struct {
	Title     string `yaml:"title" json:"title"`
	Situation string `yaml:"situation" json:"situation"`
}

type Examples struct {
	Situations   []Example `yaml:"situations" json:"examples"`
	Perspectives []string  `yaml:"perspectives" json:"perspectives"`
}

type Set struct {
	Version  string              `yaml:"version"`
	Stages   map[string]Template `yaml:"stages"`
	Examples Examples            `yaml:"examples"`

	compiled map[string]compiled
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

func Default() (*Set, error) {
	return Parse(defaultPrompts)
}

// Load reads a prompt set from path, or returns the embedded set when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	set.compiled = make(map[string]compiled, len(set.Stages))
	for _, name := range requiredStages {
		tmpl, ok := set.Stages[name]
		if !ok {
			return nil, fmt.Errorf("prompts: stage %q is not defined", name)
		}
		if strings.TrimSpace(tmpl.User) == "" {
			return nil, fmt.Errorf("prompts: stage %q has an empty user template", name)
		}

		system, err := template.New(name + ".system").Option("missingkey=error").Parse(tmpl.System)
		if err != nil {
			return nil, fmt.Errorf("prompts: stage %q system template: %w", name, err)
		}
		user, err := template.New(name + ".user").Option("missingkey=error").Parse(tmpl.User)
		if err != nil {
			return nil, fmt.Errorf("prompts: stage %q user template: %w", name, err)
		}
		set.compiled[name] = compiled{system: system, user: user}
	}

	return &set, nil
}

// Render fills the stage templates with data and returns the provider prompt.
func (s *Set) Render(stage string, data any) (llm.Prompt, error) {
	c, ok := s.compiled[stage]
	if !ok {
		return llm.Prompt{}, fmt.Errorf("prompts: unknown stage %q", stage)
	}
	tmpl := s.Stages[stage]

	var system, user strings.Builder
	if err := c.system.Execute(&system, data); err != nil {
		return llm.Prompt{}, fmt.Errorf("prompts: render %s system: %w", stage, err)
	}
	if err := c.user.Execute(&user, data); err != nil {
		return llm.Prompt{}, fmt.Errorf("prompts: render %s user: %w", stage, err)
	}

	tools := make([]llm.Tool, 0, len(tmpl.Tools))
	for _, t := range tmpl.Tools {
		tools = append(tools, llm.Tool(t))
	}

	return llm.Prompt{
		System:      strings.TrimSpace(system.String()),
		User:        strings.TrimSpace(user.String()),
		Temperature: tmpl.Temperature,
		MaxTokens:   tmpl.MaxTokens,
		Tools:       tools,
	}, nil
}
