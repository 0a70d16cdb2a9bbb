package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vmtuan/stockroom/internal/storage/db"
)

type CreateJobParams struct {
	JobType string
	Args    json.RawMessage
}

type ListPendingJobsParams struct {
	BatchSize   int32
	MaxAttempts int32
}

type PendingJob struct {
	ID       uuid.UUID
	JobType  string
	Args     json.RawMessage
	Attempts int32
}

type MarkJobsItem struct {
	ID    uuid.UUID
	Error *string
}

type MarkJobsParams struct {
	Items []MarkJobsItem
}

// JobRepository is the durable background job queue. A job row stays pending
// until it either succeeds or exhausts its attempts, so execution is
// at-least-once and job bodies must be idempotent.
type JobRepository interface {
	WithDB(db db.DB) JobRepository
	CreateJob(ctx context.Context, params CreateJobParams) error
	ListPendingJobs(ctx context.Context, params ListPendingJobsParams) ([]PendingJob, error)
	MarkJobs(ctx context.Context, params MarkJobsParams) error
}

type jobRepository struct {
	db db.DB
}

func NewJobRepository(db db.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r jobRepository) WithDB(db db.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r jobRepository) CreateJob(ctx context.Context, params CreateJobParams) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO background_jobs (job_type, args, created_at)
		VALUES (@job_type, @args, @created_at)
	`, pgx.NamedArgs{
		"job_type":   params.JobType,
		"args":       params.Args,
		"created_at": time.Now(),
	}); err != nil {
		return fmt.Errorf("insert background job: %w", err)
	}

	return nil
}

func (r jobRepository) ListPendingJobs(ctx context.Context, params ListPendingJobsParams) ([]PendingJob, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_type, args, attempts
		FROM background_jobs
		WHERE processed_at IS NULL AND attempts < $1
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, params.MaxAttempts, params.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []PendingJob
	for rows.Next() {
		var job PendingJob
		if err := rows.Scan(&job.ID, &job.JobType, &job.Args, &job.Attempts); err != nil {
			return nil, fmt.Errorf("scan background job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate background jobs: %w", err)
	}

	return jobs, nil
}

// MarkJobs marks succeeded jobs processed and bumps the attempt counter on
// failed ones, keeping them pending for the next poll until MaxAttempts.
func (r jobRepository) MarkJobs(ctx context.Context, params MarkJobsParams) error {
	ids := make([]uuid.UUID, 0, len(params.Items))
	errs := make([]*string, 0, len(params.Items))
	for _, item := range params.Items {
		ids = append(ids, item.ID)
		errs = append(errs, item.Error)
	}

	_, err := r.db.Exec(ctx, `
		UPDATE background_jobs AS j
		SET
			processed_at = CASE WHEN e.error IS NULL THEN NOW() ELSE NULL END,
			attempts     = j.attempts + CASE WHEN e.error IS NULL THEN 0 ELSE 1 END,
			last_error   = e.error
		FROM (
			SELECT UNNEST(@ids::uuid[])    AS id,
				   UNNEST(@errors::text[]) AS error
		) AS e
		WHERE j.id = e.id;
	`, pgx.NamedArgs{
		"ids":    ids,
		"errors": errs,
	})
	if err != nil {
		return fmt.Errorf("background jobs bulk update: %w", err)
	}

	return nil
}
