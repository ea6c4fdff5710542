package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/salmon131/my-reporter-assistant/internal/model"
	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// BatchResult is a BatchSummary plus which parts of it came from fallbacks.
// Degraded[i] refers to ArticleAnalyses[i].
type BatchResult struct {
	model.BatchSummary
	Degraded        []bool
	SummaryDegraded bool
}

func (r *BatchResult) DegradedCount() int {
	n := 0
	for _, d := range r.Degraded {
		if d {
			n++
		}
	}
	return n
}

type BatchAnalyzer struct {
	runner      *llm.Runner
	prompts     *prompt.Set
	concurrency int
	logger      *slog.Logger
}

func NewBatchAnalyzer(runner *llm.Runner, prompts *prompt.Set, concurrency int) *BatchAnalyzer {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &BatchAnalyzer{
		runner:      runner,
		prompts:     prompts,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "batch_analyzer"),
	}
}

func (b *BatchAnalyzer) ModelUsed() string {
	return b.runner.ProviderName()
}

func (b *BatchAnalyzer) Run(ctx context.Context, articles []string) (*model.BatchSummary, error) {
	res, err := b.RunDetailed(ctx, articles)
	if err != nil {
		return nil, err
	}
	return &res.BatchSummary, nil
}

// RunDetailed analyzes every article, then synthesizes one summary over all
// of them. The only error it returns is the context's: per-article and
// synthesis failures are folded into fallbacks.
func (b *BatchAnalyzer) RunDetailed(ctx context.Context, articles []string) (*BatchResult, error) {
	analyses := make([]model.ArticleAnalysis, len(articles))
	degraded := make([]bool, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, article := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, isFallback, err := b.analyzeArticle(gctx, i, article)
			if err != nil {
				return err
			}
			analyses[i] = analysis
			degraded[i] = isFallback
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BatchResult{
		BatchSummary: model.BatchSummary{ArticleAnalyses: analyses},
		Degraded:     degraded,
	}

	if len(analyses) == 0 {
		return res, nil
	}

	summary, summaryDegraded, err := b.synthesize(ctx, analyses)
	if err != nil {
		return nil, err
	}
	res.Summary = summary
	res.SummaryDegraded = summaryDegraded

	b.logger.Info("batch analyzed",
		"articles", len(articles),
		"degraded", res.DegradedCount(),
		"summary_degraded", summaryDegraded,
	)
	return res, nil
}

// analyzeArticle returns the analysis for articles[index], always tagged with
// index. A non-nil error means the batch context was cancelled.
func (b *BatchAnalyzer) analyzeArticle(ctx context.Context, index int, article string) (model.ArticleAnalysis, bool, error) {
	p, err := b.prompts.Render(prompt.StageArticleAnalysis, struct {
		Index   int
		Article string
	}{index, article})
	if err != nil {
		b.logger.Error("error rendering article prompt", "article_index", index, "error", err)
		return fallbackArticle(index), true, nil
	}

	out, err := llm.RunStage(ctx, b.runner, articleStage(index), p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ArticleAnalysis{}, false, ctxErr
		}
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			b.logger.Warn("article analysis fell back after provider error", "article_index", index, "error", err)
		}
		return fallbackArticle(index), true, nil
	}

	analysis := out.Record
	analysis.ArticleIndex = index
	if analysis.Angles == nil {
		analysis.Angles = []string{}
	}
	if analysis.Issues == nil {
		analysis.Issues = []string{}
	}
	if analysis.Implications == nil {
		analysis.Implications = []string{}
	}
	return analysis, out.Degraded, nil
}

func (b *BatchAnalyzer) synthesize(ctx context.Context, analyses []model.ArticleAnalysis) (string, bool, error) {
	p, err := b.prompts.Render(prompt.StageSynthesis, struct {
		Count    int
		Analyses string
	}{len(analyses), formatAnalysesForSynthesis(analyses)})
	if err != nil {
		b.logger.Error("error rendering synthesis prompt", "error", err)
		return fallbackSummary, true, nil
	}

	out, err := llm.RunStage(ctx, b.runner, synthesisStage, p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		b.logger.Warn("synthesis fell back after provider error", "error", err)
		return fallbackSummary, true, nil
	}
	return out.Record.Summary, out.Degraded, nil
}
