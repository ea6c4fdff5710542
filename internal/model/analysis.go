package model

type QuestionGroup struct {
	Target    string   `json:"target"`
	Questions []string `json:"questions"`
}

type Directing struct {
	Issues           []string        `json:"issues"`
	Questions        []QuestionGroup `json:"questions"`
	Angles           []string        `json:"angles"`
	Interpretation   string          `json:"interpretation"`
	AdditionalPoints []string        `json:"additionalPoints"`
	Checklist        []string        `json:"checklist"`
}

type Perspective struct {
	Viewpoint    string   `json:"viewpoint"`
	Issues       []string `json:"issues"`
	Questions    []string `json:"questions"`
	Implications []string `json:"implications"`
}

type PerspectiveSet struct {
	Perspectives []Perspective `json:"perspectives"`
}

type DeepDive struct {
	Background   string   `json:"background"`
	KeyPoints    []string `json:"keyPoints"`
	Analysis     string   `json:"analysis"`
	Implications []string `json:"implications"`
}

// ArticleAnalysis is the per-article result of a batch. ArticleIndex is the
// zero-based position of the source article in the batch input.
type ArticleAnalysis struct {
	ArticleIndex int      `json:"article_index"`
	Title        string   `json:"title"`
	Angles       []string `json:"angles"`
	Issues       []string `json:"issues"`
	Framing      *string  `json:"framing"`
	Implications []string `json:"implications"`
}

type BatchSummary struct {
	ArticleAnalyses []ArticleAnalysis `json:"article_analyses"`
	Summary         string            `json:"summary"`
}

// Synthesis is the provider-side shape of the cross-article summary.
type Synthesis struct {
	Summary string `json:"summary"`
}
