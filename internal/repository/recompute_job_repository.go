package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

const recomputeJobColumns = `id, academic_year, status, trigger, summary, error_message, created_by, created_at, finished_at`

// RecomputeJobRepository persists recompute pipeline runs.
type RecomputeJobRepository struct {
	db *sqlx.DB
}

// NewRecomputeJobRepository constructs the repository.
func NewRecomputeJobRepository(db *sqlx.DB) *RecomputeJobRepository {
	return &RecomputeJobRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *RecomputeJobRepository) Create(ctx context.Context, job *models.RecomputeJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.RecomputeStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO recompute_jobs (` + recomputeJobColumns + `)
VALUES (:id, :academic_year, :status, :trigger, :summary, :error_message, :created_by, :created_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create recompute job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *RecomputeJobRepository) GetByID(ctx context.Context, id string) (*models.RecomputeJob, error) {
	const query = `SELECT ` + recomputeJobColumns + ` FROM recompute_jobs WHERE id = $1`
	var job models.RecomputeJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get recompute job: %w", err)
	}
	return &job, nil
}

// FindActive returns queued or running jobs of the academic year.
func (r *RecomputeJobRepository) FindActive(ctx context.Context, academicYear string) ([]models.RecomputeJob, error) {
	const query = `SELECT ` + recomputeJobColumns + ` FROM recompute_jobs
WHERE academic_year = $1 AND status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC`
	var jobs []models.RecomputeJob
	if err := r.db.SelectContext(ctx, &jobs, query, academicYear); err != nil {
		return nil, fmt.Errorf("list active recompute jobs: %w", err)
	}
	return jobs, nil
}

// UpdateRecomputeJobParams defines the mutable fields.
type UpdateRecomputeJobParams struct {
	Status       *models.RecomputeStatus
	Summary      *models.RecomputeSummary
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *RecomputeJobRepository) Update(ctx context.Context, id string, params UpdateRecomputeJobParams) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if params.Status != nil {
		args = append(args, *params.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Summary != nil {
		args = append(args, *params.Summary)
		set = append(set, fmt.Sprintf("summary = $%d", len(args)))
	}
	if params.ErrorMessage != nil {
		args = append(args, *params.ErrorMessage)
		set = append(set, fmt.Sprintf("error_message = $%d", len(args)))
	}
	if params.FinishedAt != nil {
		args = append(args, *params.FinishedAt)
		set = append(set, fmt.Sprintf("finished_at = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE recompute_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update recompute job: %w", err)
	}
	return nil
}
