package repository

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/salmon131/my-reporter-assistant/internal/model"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReportAndComplete stores the report with all of its article analyses
// and marks the owning job completed, in one transaction.
func (r *ReportRepository) SaveReportAndComplete(report *model.AnalysisReport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO analysis_report(job_id, topic, summary, summary_degraded, article_count, degraded_count, model_used, prompt_version)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, report.JobID, report.Topic, report.Summary, report.SummaryDegraded, report.ArticleCount,
		report.DegradedCount, report.ModelUsed, report.PromptVersion).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return err
	}

	for _, a := range report.Articles {
		_, err = tx.Exec(`
			INSERT INTO article_analysis(report_id, article_index, title, angles, issues, framing, implications, source_text, degraded)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, report.ID, a.ArticleIndex, a.Title, pq.Array(a.Angles), pq.Array(a.Issues), a.Framing,
			pq.Array(a.Implications), a.SourceText, a.Degraded)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		UPDATE analysis_job SET status = $1, updated_at = now() WHERE id = $2
	`, model.StatusCompleted, report.JobID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ReportRepository) GetReports(limit, offset int) ([]model.AnalysisReport, error) {
	rows, err := r.db.Query(`
		SELECT id, job_id, topic, summary, summary_degraded, article_count, degraded_count, model_used, prompt_version, created_at
		FROM analysis_report
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.AnalysisReport
	for rows.Next() {
		var rep model.AnalysisReport
		if err := scanReport(rows, &rep); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *ReportRepository) GetReportTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM analysis_report`).Scan(&total)
	return total, err
}

func (r *ReportRepository) GetLatestReport() (*model.AnalysisReport, error) {
	return r.getReport(`
		SELECT id, job_id, topic, summary, summary_degraded, article_count, degraded_count, model_used, prompt_version, created_at
		FROM analysis_report
		ORDER BY created_at DESC
		LIMIT 1
	`)
}

func (r *ReportRepository) GetReportByID(id int64) (*model.AnalysisReport, error) {
	return r.getReport(`
		SELECT id, job_id, topic, summary, summary_degraded, article_count, degraded_count, model_used, prompt_version, created_at
		FROM analysis_report
		WHERE id = $1
	`, id)
}

func (r *ReportRepository) getReport(query string, args ...any) (*model.AnalysisReport, error) {
	var rep model.AnalysisReport
	err := scanReport(r.db.QueryRow(query, args...), &rep)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	rep.Articles, err = r.getArticles(rep.ID)
	if err != nil {
		return nil, err
	}

	return &rep, nil
}

func (r *ReportRepository) getArticles(reportID int64) ([]model.ReportArticle, error) {
	rows, err := r.db.Query(`
		SELECT article_index, title, angles, issues, framing, implications, source_text, degraded
		FROM article_analysis
		WHERE report_id = $1
		ORDER BY article_index ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []model.ReportArticle{}
	for rows.Next() {
		var a model.ReportArticle
		var framing sql.NullString
		err := rows.Scan(&a.ArticleIndex, &a.Title, pq.Array(&a.Angles), pq.Array(&a.Issues), &framing,
			pq.Array(&a.Implications), &a.SourceText, &a.Degraded)
		if err != nil {
			return nil, err
		}
		if framing.Valid {
			a.Framing = &framing.String
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner, rep *model.AnalysisReport) error {
	return row.Scan(&rep.ID, &rep.JobID, &rep.Topic, &rep.Summary, &rep.SummaryDegraded, &rep.ArticleCount,
		&rep.DegradedCount, &rep.ModelUsed, &rep.PromptVersion, &rep.CreatedAt)
}
