package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
)

var articleMarker = regexp.MustCompile(`ARTICLE-(\d+)`)

type fakeProvider struct {
	mu               sync.Mutex
	respond          func(p llm.Prompt) (string, error)
	delay            func(p llm.Prompt) time.Duration
	calls            int
	lastUser         string
	synthesisPrompts []string
}

func (f *fakeProvider) lastPromptUser() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUser
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func (f *fakeProvider) Generate(ctx context.Context, p llm.Prompt) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastUser = p.User
	if isSynthesis(p) {
		f.synthesisPrompts = append(f.synthesisPrompts, p.User)
	}
	f.mu.Unlock()

	if f.delay != nil {
		if d := f.delay(p); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return f.respond(p)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) synthesisCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.synthesisPrompts)
}

func isSynthesis(p llm.Prompt) bool {
	return strings.Contains(p.User, "기사별 분석 결과")
}

// articleNumber returns N for prompts built from an "ARTICLE-N" article text.
func articleNumber(p llm.Prompt) int {
	m := articleMarker.FindStringSubmatch(p.User)
	if m == nil {
		return -1
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	return n
}

func articleJSON(n int) string {
	return fmt.Sprintf("```json\n{\"title\":\"title-%d\",\"angles\":[\"angle-%d\"],\"issues\":[\"issue-%d\"],\"framing\":\"framing-%d\",\"implications\":[\"impl-%d\"]}\n```", n, n, n, n, n)
}

func testArticles(n int) []string {
	articles := make([]string, n)
	for i := range articles {
		articles[i] = fmt.Sprintf("ARTICLE-%d 본문입니다.", i)
	}
	return articles
}

func newTestBatch(t *testing.T, provider llm.Provider, concurrency int) *BatchAnalyzer {
	t.Helper()
	prompts, err := prompt.Default()
	if err != nil {
		t.Fatalf("prompt.Default: %v", err)
	}
	return NewBatchAnalyzer(llm.NewRunner(provider, 5*time.Second), prompts, concurrency)
}

func newTestDirector(t *testing.T, provider llm.Provider) *Director {
	t.Helper()
	prompts, err := prompt.Default()
	if err != nil {
		t.Fatalf("prompt.Default: %v", err)
	}
	return NewDirector(llm.NewRunner(provider, 5*time.Second), prompts)
}
