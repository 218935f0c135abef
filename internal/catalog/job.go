package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"gamedex/internal/models"
	"gamedex/internal/shared"
)

// JobRepository persists ingestion run bookkeeping.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Start records a new running job and returns it with a generated id.
func (r *JobRepository) Start(service models.Service, region string) (*models.Job, error) {
	job := &models.Job{
		ID:        shared.GenerateID(),
		Service:   service,
		Region:    region,
		Status:    models.JobRunning,
		StartedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO jobs (id, service, region, status, started_at, inserted)
		VALUES (?, ?, ?, ?, ?, 0)
	`

	_, err := r.db.Exec(query, job.ID, string(job.Service), job.Region, string(job.Status), job.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}

	return job, nil
}

// Finish marks a job as completed. A non-empty errMsg records the run as
// failed; otherwise it is marked ok with the inserted row count.
func (r *JobRepository) Finish(job *models.Job, inserted int, errMsg string) error {
	job.FinishedAt = time.Now().UTC()
	job.Inserted = inserted
	job.Status = models.JobOK
	job.Error = errMsg
	if errMsg != "" {
		job.Status = models.JobFailed
	}

	query := `
		UPDATE jobs
		SET status = ?, finished_at = ?, inserted = ?, error = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, string(job.Status), job.FinishedAt, inserted, nullableString(errMsg), job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", job.ID, shared.ErrJobNotFound)
	}

	return nil
}

// Recent returns the most recent jobs, newest first, capped at limit.
func (r *JobRepository) Recent(limit int) ([]*models.Job, error) {
	query := `
		SELECT id, service, region, status, started_at, finished_at, inserted, error
		FROM jobs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		var svc, status string
		var finished sql.NullTime
		var errMsg sql.NullString

		err := rows.Scan(&job.ID, &svc, &job.Region, &status, &job.StartedAt, &finished, &job.Inserted, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		job.Service = models.Service(svc)
		job.Status = models.JobStatus(status)
		job.FinishedAt = finished.Time
		job.Error = errMsg.String
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}
