package worker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/salmon131/my-reporter-assistant/db"
	"github.com/salmon131/my-reporter-assistant/internal/analysis"
	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type fakeJobStore struct {
	mu       sync.Mutex
	jobs     map[int64]*model.AnalysisJob
	errors   map[int64][]string
	statuses []string
	nextID   int64
}

func newFakeJobStore(jobs ...*model.AnalysisJob) *fakeJobStore {
	s := &fakeJobStore{jobs: map[int64]*model.AnalysisJob{}, errors: map[int64][]string{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
		if j.ID > s.nextID {
			s.nextID = j.ID
		}
	}
	return s
}

func (s *fakeJobStore) CreateJob(topic string) (*model.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	job := &model.AnalysisJob{ID: s.nextID, Topic: topic, Status: model.StatusPending}
	s.jobs[job.ID] = job
	return job, nil
}

func (s *fakeJobStore) GetJob(id int64) (*model.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (s *fakeJobStore) GetErrorCount(jobID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors[jobID]), nil
}

func (s *fakeJobStore) UpdateStatus(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeJobStore) SaveError(jobID int64, errMsg string, errType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[jobID] = append(s.errors[jobID], errType+": "+errMsg)
	return nil
}

func (s *fakeJobStore) status(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id].Status
}

type fakeReportStore struct {
	saved []*model.AnalysisReport
	err   error
	jobs  *fakeJobStore
}

func (s *fakeReportStore) SaveReportAndComplete(report *model.AnalysisReport) error {
	if s.err != nil {
		return s.err
	}
	report.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, report)
	if s.jobs != nil {
		s.jobs.UpdateStatus(report.JobID, model.StatusCompleted)
	}
	return nil
}

// fakeQueue is an in-memory stand-in for a Redis list: Push prepends, Pop
// takes from the tail.
type fakeQueue struct {
	mu    sync.Mutex
	items []string
	err   error
}

func (q *fakeQueue) Push(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.items = append([]string{id}, q.items...)
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	if len(q.items) == 0 {
		return "", db.ErrQueueEmpty
	}
	id := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return id, nil
}

func (q *fakeQueue) snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.items...)
}

type fakeGateway struct {
	blob  string
	err   error
	calls int
}

func (g *fakeGateway) Search(ctx context.Context, topic string, maxResults int) (string, error) {
	g.calls++
	return g.blob, g.err
}

func (g *fakeGateway) Name() string {
	return "fake"
}

// fakeBatch marks every article whose text contains "broken" as degraded.
type fakeBatch struct {
	err         error
	gotArticles []string
}

func (b *fakeBatch) RunDetailed(ctx context.Context, articles []string) (*analysis.BatchResult, error) {
	b.gotArticles = articles
	if b.err != nil {
		return nil, b.err
	}
	res := &analysis.BatchResult{
		BatchSummary: model.BatchSummary{ArticleAnalyses: make([]model.ArticleAnalysis, len(articles))},
		Degraded:     make([]bool, len(articles)),
	}
	for i, a := range articles {
		res.ArticleAnalyses[i] = model.ArticleAnalysis{
			ArticleIndex: i, Title: a, Angles: []string{}, Issues: []string{}, Implications: []string{},
		}
		res.Degraded[i] = strings.Contains(a, "broken")
	}
	if len(articles) > 0 {
		res.Summary = "종합 요약"
	}
	return res, nil
}

func (b *fakeBatch) ModelUsed() string {
	return "fake-model"
}
