package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type fakeJobStore struct {
	job       *model.AnalysisJob
	lastError *model.ProcessingError
	createErr error
	getErr    error

	created  []string
	statuses map[int64]string
}

func (f *fakeJobStore) CreateJob(topic string) (*model.AnalysisJob, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, topic)
	return &model.AnalysisJob{ID: int64(len(f.created)), Topic: topic, Status: model.StatusPending}, nil
}

func (f *fakeJobStore) GetJob(id int64) (*model.AnalysisJob, error) {
	return f.job, f.getErr
}

func (f *fakeJobStore) GetLastError(jobID int64) (*model.ProcessingError, error) {
	return f.lastError, nil
}

func (f *fakeJobStore) UpdateStatus(id int64, status string) error {
	if f.statuses == nil {
		f.statuses = map[int64]string{}
	}
	f.statuses[id] = status
	return nil
}

type fakeQueue struct {
	pushed []string
	err    error
}

func (f *fakeQueue) Push(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, id)
	return nil
}

func newTestJobRouter(store JobStore, queue JobQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewJobHandler(store, queue)
	r.POST("/api/news-analyze/jobs", h.PostAnalyzeJob)
	r.GET("/api/jobs/:id", h.GetJob)
	return r
}

func TestPostAnalyzeJob_Accepted(t *testing.T) {
	store := &fakeJobStore{}
	queue := &fakeQueue{}
	r := newTestJobRouter(store, queue)

	w := postJSON(r, "/api/news-analyze/jobs", `{"topic": "반도체 수출"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"반도체 수출"}, store.created)
	assert.Equal(t, []string{"1"}, queue.pushed)

	var res JobAcceptedResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, int64(1), res.JobID)
	assert.Equal(t, model.StatusPending, res.Status)
}

func TestPostAnalyzeJob_QueueFailureMarksJobFailed(t *testing.T) {
	store := &fakeJobStore{}
	r := newTestJobRouter(store, &fakeQueue{err: errors.New("redis down")})

	w := postJSON(r, "/api/news-analyze/jobs", `{"topic": "반도체 수출"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, model.StatusFailed, store.statuses[1])
}

func TestPostAnalyzeJob_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		store    *fakeJobStore
		wantCode int
	}{
		{name: "missing topic", body: `{}`, store: &fakeJobStore{}, wantCode: http.StatusBadRequest},
		{name: "invalid json", body: `{`, store: &fakeJobStore{}, wantCode: http.StatusBadRequest},
		{name: "db error", body: `{"topic": "금리"}`, store: &fakeJobStore{createErr: errors.New("DB down")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakeQueue{}
			r := newTestJobRouter(tt.store, queue)

			w := postJSON(r, "/api/news-analyze/jobs", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, 0, len(queue.pushed))
		})
	}
}

func TestGetJob(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	completed := &model.AnalysisJob{ID: 4, Topic: "금리", Status: model.StatusCompleted, CreatedAt: created, UpdatedAt: created}
	retrying := &model.AnalysisJob{ID: 5, Topic: "금리", Status: model.StatusPending, ErrorCount: 2, CreatedAt: created, UpdatedAt: created}
	lastError := &model.ProcessingError{JobID: 5, ErrorMessage: "Naver retrieval failed", ErrorType: "retrieval_error"}

	tests := []struct {
		name          string
		path          string
		store         *fakeJobStore
		wantCode      int
		wantLastError string
	}{
		{name: "invalid id", path: "/api/jobs/abc", store: &fakeJobStore{}, wantCode: http.StatusBadRequest},
		{name: "not found", path: "/api/jobs/9", store: &fakeJobStore{}, wantCode: http.StatusNotFound},
		{name: "db error", path: "/api/jobs/9", store: &fakeJobStore{getErr: errors.New("DB down")}, wantCode: http.StatusInternalServerError},
		{name: "completed", path: "/api/jobs/4", store: &fakeJobStore{job: completed}, wantCode: http.StatusOK},
		{
			name:          "retrying with last error",
			path:          "/api/jobs/5",
			store:         &fakeJobStore{job: retrying, lastError: lastError},
			wantCode:      http.StatusOK,
			wantLastError: "Naver retrieval failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestJobRouter(tt.store, &fakeQueue{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var res JobResponse
			json.Unmarshal(w.Body.Bytes(), &res)
			assert.Equal(t, tt.store.job.ID, res.ID)
			assert.Equal(t, tt.store.job.Status, res.Status)
			assert.Equal(t, tt.wantLastError, res.LastError)
			assert.Equal(t, "2026-03-02T09:00:00Z", res.CreatedAt)
		})
	}
}
