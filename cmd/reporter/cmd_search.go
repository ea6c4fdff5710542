package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmon131/my-reporter-assistant/internal/app"
	"github.com/salmon131/my-reporter-assistant/internal/config"
	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

var searchFlags struct {
	maxResults int
	raw        bool
}

var searchCmd = &cobra.Command{
	Use:   "search <topic...>",
	Short: "Search recent news on a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntVar(&searchFlags.maxResults, "max-results", 0, "Number of articles to fetch (default from config)")
	f.BoolVar(&searchFlags.raw, "raw", false, "Print the search blob instead of a JSON article list")
}

func runSearch(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetupLogger()

	maxResults := cfg.Retrieval.MaxResults
	if searchFlags.maxResults > 0 {
		maxResults = searchFlags.maxResults
	}

	blob, err := app.NewGateway(cfg).Search(cmd.Context(), topic, maxResults)
	if err != nil {
		return err
	}

	if searchFlags.raw {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), blob)
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string][]string{"news_articles": news.SplitArticles(blob)})
}
