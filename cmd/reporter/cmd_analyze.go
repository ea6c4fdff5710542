package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmon131/my-reporter-assistant/pkg/news"
)

var analyzeFlags struct {
	topic      string
	file       string
	maxResults int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze news articles one by one and summarize them together",
	Long:  "Analyze either the results of a topic search (--topic) or articles read\nfrom a file (--file, \"-\" for stdin). Articles in a file are separated by \"---\" lines.",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.topic, "topic", "", "Search this topic and analyze the results")
	f.StringVar(&analyzeFlags.file, "file", "", "Analyze articles from this file")
	f.IntVar(&analyzeFlags.maxResults, "max-results", 0, "Number of articles to fetch with --topic (default from config)")

	analyzeCmd.MarkFlagsMutuallyExclusive("topic", "file")
	analyzeCmd.MarkFlagsOneRequired("topic", "file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	var articles []string
	if analyzeFlags.file != "" {
		articles, err = readArticles(cmd, analyzeFlags.file)
		if err != nil {
			return err
		}
	} else {
		topic := strings.TrimSpace(analyzeFlags.topic)
		if topic == "" {
			return errors.New("topic is required")
		}
		maxResults := cfg.Retrieval.MaxResults
		if analyzeFlags.maxResults > 0 {
			maxResults = analyzeFlags.maxResults
		}
		blob, err := p.Gateway.Search(cmd.Context(), topic, maxResults)
		if err != nil {
			return err
		}
		articles = news.SplitArticles(blob)
	}

	if len(articles) > news.MaxResults {
		return fmt.Errorf("at most %d articles can be analyzed at once, got %d", news.MaxResults, len(articles))
	}

	res, err := p.Batch.RunDetailed(cmd.Context(), articles)
	if err != nil {
		return err
	}

	if n := res.DegradedCount(); n > 0 || res.SummaryDegraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d article analyses fell back, summary fallback: %t\n",
			n, len(articles), res.SummaryDegraded)
	}
	return printJSON(cmd.OutOrStdout(), res.BatchSummary)
}
