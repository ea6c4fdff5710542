package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmon131/my-reporter-assistant/internal/app"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

func loadPipeline(cmd *cobra.Command) (*config.Config, *app.Pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.SetupLogger()

	p, err := app.NewPipeline(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func noteDegraded(cmd *cobra.Command, degraded bool) {
	if degraded {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: provider output was unusable, showing fallback result")
	}
}

// argText joins positional args, or reads stdin when the only arg is "-".
func argText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

// readArticles loads a news blob from path ("-" for stdin) and splits it
// into articles.
func readArticles(cmd *cobra.Command, path string) ([]string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	return news.SplitArticles(string(data)), nil
}
