package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/salmon131/my-reporter-assistant/internal/model"
	"github.com/salmon131/my-reporter-assistant/internal/prompt"
	"github.com/salmon131/my-reporter-assistant/pkg/llm"
)

type fakeAnalyzer struct {
	directing   llm.Outcome[model.Directing]
	perspective llm.Outcome[model.PerspectiveSet]
	deepDive    llm.Outcome[model.DeepDive]
	err         error

	gotSituation string
	gotLens      string
	gotTopic     string
}

func (f *fakeAnalyzer) Direct(ctx context.Context, situation string) (llm.Outcome[model.Directing], error) {
	f.gotSituation = situation
	return f.directing, f.err
}

func (f *fakeAnalyzer) Perspective(ctx context.Context, situation, lens string) (llm.Outcome[model.PerspectiveSet], error) {
	f.gotSituation, f.gotLens = situation, lens
	return f.perspective, f.err
}

func (f *fakeAnalyzer) DeepDive(ctx context.Context, topic string) (llm.Outcome[model.DeepDive], error) {
	f.gotTopic = topic
	return f.deepDive, f.err
}

func (f *fakeAnalyzer) Examples() prompt.Examples {
	return prompt.Examples{
		Situations:   []prompt.Example{{Title: "아파트 화재", Situation: "강남구 아파트에서 화재가 발생했다."}},
		Perspectives: []string{"사회적 관점", "법적 관점"},
	}
}

func (f *fakeAnalyzer) ModelUsed() string {
	return "fake-model"
}

func newTestAnalysisRouter(analyzer Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	h := NewAnalysisHandler(analyzer, "1.0.0")
	r.GET("/api/health", h.GetHealth)
	r.GET("/api/examples", h.GetExamples)
	r.POST("/api/direct", h.PostDirect)
	r.POST("/api/perspective", h.PostPerspective)
	r.POST("/api/deep-dive", h.PostDeepDive)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	r := newTestAnalysisRouter(&fakeAnalyzer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var res HealthResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "1.0.0", res.Version)
	assert.Equal(t, "fake-model", res.Model)
}

func TestGetExamples(t *testing.T) {
	r := newTestAnalysisRouter(&fakeAnalyzer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/examples", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var res map[string]any
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res["examples"].([]any)))
	assert.Equal(t, 2, len(res["perspectives"].([]any)))
}

func TestPostDirect_Success(t *testing.T) {
	analyzer := &fakeAnalyzer{directing: llm.Outcome[model.Directing]{Record: model.Directing{
		Issues:           []string{"안전 점검"},
		Questions:        []model.QuestionGroup{{Target: "소방당국", Questions: []string{"원인은?"}}},
		Angles:           []string{},
		AdditionalPoints: []string{},
		Checklist:        []string{},
	}}}
	r := newTestAnalysisRouter(analyzer)

	w := postJSON(r, "/api/direct", `{"situation": "  아파트 화재  "}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", w.Header().Get(degradedHeader))
	assert.NotEqual(t, "", w.Header().Get(requestIDHeader))
	assert.Equal(t, "아파트 화재", analyzer.gotSituation)

	var res model.Directing
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, []string{"안전 점검"}, res.Issues)
	assert.Equal(t, "소방당국", res.Questions[0].Target)
}

func TestPostDirect_DegradedHeader(t *testing.T) {
	analyzer := &fakeAnalyzer{directing: llm.Outcome[model.Directing]{
		Record:   model.Directing{Issues: []string{"fallback"}},
		Degraded: true,
		Cause:    &llm.ValidationError{MissingField: "questions", Path: "$"},
	}}
	r := newTestAnalysisRouter(analyzer)

	w := postJSON(r, "/api/direct", `{"situation": "상황 설명"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(degradedHeader))
}

func TestPostDirect_BadInput(t *testing.T) {
	r := newTestAnalysisRouter(&fakeAnalyzer{})

	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/api/direct", `{"situation": "   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/api/direct", `not json`).Code)
}

func TestPostDirect_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "provider failure",
			err:      &llm.ProviderError{Provider: "gemini", Stage: "directing", Err: errors.New("429")},
			wantCode: http.StatusBadGateway,
			wantMsg:  providerErrorMsg,
		},
		{
			name:     "provider timeout",
			err:      &llm.ProviderError{Provider: "gemini", Stage: "directing", Err: context.DeadlineExceeded},
			wantCode: http.StatusBadGateway,
			wantMsg:  providerTimeoutMsg,
		},
		{
			name:     "cancelled",
			err:      &llm.ProviderError{Provider: "gemini", Stage: "directing", Err: context.Canceled},
			wantCode: http.StatusServiceUnavailable,
			wantMsg:  requestCancelledMsg,
		},
		{
			name:     "other",
			err:      errors.New("template: missing key"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  internalErrorMsg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestAnalysisRouter(&fakeAnalyzer{err: tt.err})

			w := postJSON(r, "/api/direct", `{"situation": "상황 설명"}`)

			assert.Equal(t, tt.wantCode, w.Code)
			var res map[string]string
			json.Unmarshal(w.Body.Bytes(), &res)
			assert.Equal(t, tt.wantMsg, res["error"])
		})
	}
}

func TestPostPerspective(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "ok", body: `{"situation": "공사장 붕괴 사고", "perspective": "법적 관점"}`, wantCode: http.StatusOK},
		{name: "situation too short", body: `{"situation": "붕괴", "perspective": "법적 관점"}`, wantCode: http.StatusBadRequest},
		{name: "missing perspective", body: `{"situation": "공사장 붕괴 사고"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{perspective: llm.Outcome[model.PerspectiveSet]{Record: model.PerspectiveSet{
				Perspectives: []model.Perspective{{Viewpoint: "법적 관점"}},
			}}}
			r := newTestAnalysisRouter(analyzer)

			w := postJSON(r, "/api/perspective", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "법적 관점", analyzer.gotLens)
				var res model.PerspectiveSet
				json.Unmarshal(w.Body.Bytes(), &res)
				assert.Equal(t, "법적 관점", res.Perspectives[0].Viewpoint)
			}
		})
	}
}

func TestPostDeepDive(t *testing.T) {
	analyzer := &fakeAnalyzer{deepDive: llm.Outcome[model.DeepDive]{Record: model.DeepDive{
		Background: "배경", KeyPoints: []string{"핵심"}, Analysis: "분석", Implications: []string{},
	}}}
	r := newTestAnalysisRouter(analyzer)

	w := postJSON(r, "/api/deep-dive", `{"topic": "전세 사기"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "전세 사기", analyzer.gotTopic)

	var res model.DeepDive
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "배경", res.Background)

	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/api/deep-dive", `{"topic": ""}`).Code)
}

func TestRequestID_PropagatesCallerID(t *testing.T) {
	r := newTestAnalysisRouter(&fakeAnalyzer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}
