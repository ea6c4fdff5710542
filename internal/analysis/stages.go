// Package analysis runs the journalistic analysis stages on top of the
// provider pipeline in pkg/llm: single-shot directing, perspective and
// deep-dive analyses, and the two-phase article batch.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/salmon131/my-reporter-assistant/internal/model"
	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
)

var questionGroupSchema = llm.Schema{Fields: []llm.Field{
	llm.Required("target", llm.KindString),
	llm.Required("questions", llm.KindStringList),
}}

var directingSchema = llm.Schema{Fields: []llm.Field{
	llm.Required("issues", llm.KindStringList),
	llm.ObjectList("questions", questionGroupSchema),
	llm.Required("angles", llm.KindStringList),
	llm.Required("interpretation", llm.KindString),
	llm.Required("additionalPoints", llm.KindStringList),
	llm.Required("checklist", llm.KindStringList),
}}

var perspectiveSchema = llm.Schema{Fields: []llm.Field{
	llm.ObjectList("perspectives", llm.Schema{Fields: []llm.Field{
		llm.Required("viewpoint", llm.KindString),
		llm.Required("issues", llm.KindStringList),
		llm.Required("questions", llm.KindStringList),
		llm.Required("implications", llm.KindStringList),
	}}),
}}

var deepDiveSchema = llm.Schema{Fields: []llm.Field{
	llm.Required("background", llm.KindString),
	llm.Required("keyPoints", llm.KindStringList),
	llm.Required("analysis", llm.KindString),
	llm.Required("implications", llm.KindStringList),
}}

var articleSchema = llm.Schema{
	Fields: []llm.Field{
		llm.Required("title", llm.KindString),
		llm.Required("angles", llm.KindStringList),
		llm.Required("issues", llm.KindStringList),
		llm.Optional("framing", llm.KindString),
		llm.Required("implications", llm.KindStringList),
	},
	Assigned: []string{"article_index"},
}

var synthesisSchema = llm.Schema{Fields: []llm.Field{
	llm.Required("summary", llm.KindString),
}}

const (
	fallbackNotice       = "AI 응답을 해석하지 못해 기본 안내를 표시합니다."
	fallbackRetry        = "잠시 후 다시 시도해주세요."
	fallbackArticleTitle = "기사 분석에 실패했습니다"
	fallbackSummary      = "종합 요약을 생성하지 못했습니다. 기사별 분석 결과를 참고해주세요."
)

var directingStage = llm.Stage[model.Directing]{
	Name:   prompt.StageDirecting,
	Schema: directingSchema,
	Fallback: func(error) model.Directing {
		return model.Directing{
			Issues:           []string{fallbackNotice},
			Questions:        []model.QuestionGroup{{Target: "시스템", Questions: []string{fallbackRetry}}},
			Angles:           []string{"기술적 오류"},
			Interpretation:   "AI 응답을 파싱하는 중 오류가 발생했습니다.",
			AdditionalPoints: []string{fallbackRetry},
			Checklist:        []string{"시스템 확인"},
		}
	},
}

var deepDiveStage = llm.Stage[model.DeepDive]{
	Name:   prompt.StageDeepDive,
	Schema: deepDiveSchema,
	Fallback: func(error) model.DeepDive {
		return model.DeepDive{
			Background:   fallbackNotice,
			KeyPoints:    []string{fallbackRetry},
			Analysis:     "AI 응답을 파싱하는 중 오류가 발생했습니다.",
			Implications: []string{},
		}
	},
}

func perspectiveStage(lens string) llm.Stage[model.PerspectiveSet] {
	return llm.Stage[model.PerspectiveSet]{
		Name:   prompt.StagePerspective,
		Schema: perspectiveSchema,
		Fallback: func(error) model.PerspectiveSet {
			return model.PerspectiveSet{Perspectives: []model.Perspective{{
				Viewpoint:    lens,
				Issues:       []string{fallbackNotice},
				Questions:    []string{fallbackRetry},
				Implications: []string{"시스템 확인이 필요합니다."},
			}}}
		},
	}
}

func articleStage(index int) llm.Stage[model.ArticleAnalysis] {
	return llm.Stage[model.ArticleAnalysis]{
		Name:   prompt.StageArticleAnalysis,
		Schema: articleSchema,
		Fallback: func(error) model.ArticleAnalysis {
			return fallbackArticle(index)
		},
	}
}

func fallbackArticle(index int) model.ArticleAnalysis {
	return model.ArticleAnalysis{
		ArticleIndex: index,
		Title:        fallbackArticleTitle,
		Angles:       []string{},
		Issues:       []string{},
		Framing:      nil,
		Implications: []string{},
	}
}

var synthesisStage = llm.Stage[model.Synthesis]{
	Name:   prompt.StageSynthesis,
	Schema: synthesisSchema,
	Fallback: func(error) model.Synthesis {
		return model.Synthesis{Summary: fallbackSummary}
	},
}

// Director runs the single-shot stages. Provider failures are returned to the
// caller; unusable provider output comes back as a degraded Outcome.
type Director struct {
	runner  *llm.Runner
	prompts *prompt.Set
}

func NewDirector(runner *llm.Runner, prompts *prompt.Set) *Director {
	return &Director{runner: runner, prompts: prompts}
}

func (d *Director) Direct(ctx context.Context, situation string) (llm.Outcome[model.Directing], error) {
	p, err := d.prompts.Render(prompt.StageDirecting, struct{ Situation string }{situation})
	if err != nil {
		return llm.Outcome[model.Directing]{}, err
	}
	return llm.RunStage(ctx, d.runner, directingStage, p)
}

func (d *Director) Perspective(ctx context.Context, situation, lens string) (llm.Outcome[model.PerspectiveSet], error) {
	lens = strings.TrimSpace(lens)
	p, err := d.prompts.Render(prompt.StagePerspective, struct{ Situation, Perspective string }{situation, lens})
	if err != nil {
		return llm.Outcome[model.PerspectiveSet]{}, err
	}
	return llm.RunStage(ctx, d.runner, perspectiveStage(lens), p)
}

func (d *Director) DeepDive(ctx context.Context, topic string) (llm.Outcome[model.DeepDive], error) {
	p, err := d.prompts.Render(prompt.StageDeepDive, struct{ Topic string }{topic})
	if err != nil {
		return llm.Outcome[model.DeepDive]{}, err
	}
	return llm.RunStage(ctx, d.runner, deepDiveStage, p)
}

func (d *Director) Examples() prompt.Examples {
	return d.prompts.Examples
}

func (d *Director) ModelUsed() string {
	return d.runner.ProviderName()
}

func formatAnalysesForSynthesis(analyses []model.ArticleAnalysis) string {
	var sb strings.Builder
	for _, a := range analyses {
		framing := "(없음)"
		if a.Framing != nil && *a.Framing != "" {
			framing = *a.Framing
		}
		sb.WriteString(fmt.Sprintf("[%d] 제목: %s\n", a.ArticleIndex, a.Title))
		sb.WriteString(fmt.Sprintf("    보도 각도: %s\n", joinOrNone(a.Angles)))
		sb.WriteString(fmt.Sprintf("    쟁점: %s\n", joinOrNone(a.Issues)))
		sb.WriteString(fmt.Sprintf("    프레이밍: %s\n", framing))
		sb.WriteString(fmt.Sprintf("    시사점: %s\n", joinOrNone(a.Implications)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(없음)"
	}
	return strings.Join(items, "; ")
}
