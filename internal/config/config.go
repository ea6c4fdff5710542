// Package config assembles runtime settings from defaults, an optional YAML
// settings file and the environment (including a .env file), in that order.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
	"gopkg.in/yaml.v3"
)

const Version = "1.0.0"

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Worker    WorkerConfig    `yaml:"worker"`
	Server    ServerConfig    `yaml:"server"`

	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
	LogLevel    string `yaml:"log_level"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	APIKey   string `yaml:"-"`
}

type AnalysisConfig struct {
	Concurrency int    `yaml:"concurrency"`
	PromptsPath string `yaml:"prompts_path"`
}

type RetrievalConfig struct {
	Gateway      string   `yaml:"gateway"`
	MaxResults   int      `yaml:"max_results"`
	FetchBodies  bool     `yaml:"fetch_bodies"`
	MCPCommand   string   `yaml:"mcp_command"`
	MCPArgs      []string `yaml:"mcp_args"`
	MCPTool      string   `yaml:"mcp_tool"`
	ClientID     string   `yaml:"-"`
	ClientSecret string   `yaml:"-"`
}

type WorkerConfig struct {
	MaxRetries  int      `yaml:"max_retries"`
	RetryDelay  string   `yaml:"retry_delay"`
	PollTimeout string   `yaml:"poll_timeout"`
	WatchTopics []string `yaml:"watch_topics"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  "60s",
		},
		Analysis: AnalysisConfig{
			Concurrency: 4,
		},
		Retrieval: RetrievalConfig{
			Gateway:    "naver",
			MaxResults: 5,
			MCPCommand: "npx",
			MCPArgs:    []string{"-y", "@isnow890/naver-search-mcp"},
		},
		Worker: WorkerConfig{
			MaxRetries:  3,
			RetryDelay:  "5s",
			PollTimeout: "0s",
		},
		Server: ServerConfig{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		LogLevel: "info",
	}
}

// Load reads .env, then the YAML file at SETTINGS_PATH if set, then applies
// environment overrides. Secrets only come from the environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SETTINGS_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		c.LLM.Timeout = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	default:
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if n, ok, err := envInt("ANALYSIS_CONCURRENCY"); err != nil {
		return err
	} else if ok {
		c.Analysis.Concurrency = n
	}
	if v := os.Getenv("PROMPTS_PATH"); v != "" {
		c.Analysis.PromptsPath = v
	}

	if v := os.Getenv("NEWS_GATEWAY"); v != "" {
		c.Retrieval.Gateway = strings.ToLower(v)
	}
	if n, ok, err := envInt("NEWS_MAX_RESULTS"); err != nil {
		return err
	} else if ok {
		c.Retrieval.MaxResults = n
	}
	if b, ok, err := envBool("NEWS_FETCH_BODIES"); err != nil {
		return err
	} else if ok {
		c.Retrieval.FetchBodies = b
	}
	c.Retrieval.ClientID = os.Getenv("NAVER_CLIENT_ID")
	c.Retrieval.ClientSecret = os.Getenv("NAVER_CLIENT_SECRET")

	if n, ok, err := envInt("MAX_RETRIES"); err != nil {
		return err
	} else if ok {
		c.Worker.MaxRetries = n
	}
	if v := os.Getenv("WATCH_TOPICS"); v != "" {
		c.Worker.WatchTopics = splitList(v)
	}

	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, v)
	}

	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.RedisURL = os.Getenv("REDIS_URL")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) validate() error {
	for name, v := range map[string]string{
		"llm.timeout":         c.LLM.Timeout,
		"worker.retry_delay":  c.Worker.RetryDelay,
		"worker.poll_timeout": c.Worker.PollTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	switch c.Retrieval.Gateway {
	case "naver", "mcp":
	default:
		return fmt.Errorf("unknown news gateway %q", c.Retrieval.Gateway)
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis concurrency must be at least 1, got %d", c.Analysis.Concurrency)
	}
	return nil
}

func (c *Config) Provider() llm.ProviderConfig {
	return llm.ProviderConfig{
		Name:    c.LLM.Provider,
		APIKey:  c.LLM.APIKey,
		Model:   c.LLM.Model,
		BaseURL: c.LLM.BaseURL,
	}
}

func (c *Config) LLMTimeout() time.Duration {
	d, _ := time.ParseDuration(c.LLM.Timeout)
	return d
}

func (c *Config) RetryDelay() time.Duration {
	d, _ := time.ParseDuration(c.Worker.RetryDelay)
	return d
}

func (c *Config) PollTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Worker.PollTimeout)
	return d
}

// MCPEnv is the environment passed to the news MCP server subprocess.
func (c *Config) MCPEnv() []string {
	return []string{
		"NAVER_CLIENT_ID=" + c.Retrieval.ClientID,
		"NAVER_CLIENT_SECRET=" + c.Retrieval.ClientSecret,
	}
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SetupLogger installs a JSON slog handler on stdout as the default logger.
func (c *Config) SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

func envInt(key string) (int, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, true, nil
}

func envBool(key string) (bool, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, true, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
