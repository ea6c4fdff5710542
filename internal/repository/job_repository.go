package repository

import (
	"database/sql"

	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) CreateJob(topic string) (*model.AnalysisJob, error) {
	job := model.AnalysisJob{Topic: topic}
	err := r.db.QueryRow(`
		INSERT INTO analysis_job(topic, status)
		VALUES($1, $2)
		RETURNING id, status, created_at, updated_at
	`, topic, model.StatusPending).Scan(&job.ID, &job.Status, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetJob(id int64) (*model.AnalysisJob, error) {
	var job model.AnalysisJob
	err := r.db.QueryRow(`
		SELECT j.id, j.topic, j.status, j.created_at, j.updated_at,
			(SELECT COUNT(*) FROM processing_error e WHERE e.job_id = j.id)
		FROM analysis_job j
		WHERE j.id = $1
	`, id).Scan(&job.ID, &job.Topic, &job.Status, &job.CreatedAt, &job.UpdatedAt, &job.ErrorCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *JobRepository) UpdateStatus(id int64, status string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_job SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	return err
}

func (r *JobRepository) GetErrorCount(jobID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM processing_error WHERE job_id = $1
	`, jobID).Scan(&count)
	return count, err
}

func (r *JobRepository) SaveError(jobID int64, errMsg string, errType string) error {
	_, err := r.db.Exec(`
		INSERT INTO processing_error(job_id, error_message, error_type)
		VALUES($1, $2, $3)
	`, jobID, errMsg, errType)

	return err
}

func (r *JobRepository) GetLastError(jobID int64) (*model.ProcessingError, error) {
	var e model.ProcessingError
	err := r.db.QueryRow(`
		SELECT id, job_id, error_message, error_type, created_at
		FROM processing_error
		WHERE job_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, jobID).Scan(&e.ID, &e.JobID, &e.ErrorMessage, &e.ErrorType, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &e, nil
}
