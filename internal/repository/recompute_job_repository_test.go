package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

var recomputeJobRowColumns = []string{"id", "academic_year", "status", "trigger", "summary", "error_message", "created_by", "created_at", "finished_at"}

func TestRecomputeJobRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRecomputeJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recompute_jobs")).
		WithArgs(sqlmock.AnyArg(), "2024-2025", "QUEUED", "batch_update", sqlmock.AnyArg(), nil, "user-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.RecomputeJob{AcademicYear: "2024-2025", Trigger: models.TriggerBatchUpdate, CreatedBy: "user-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows(recomputeJobRowColumns).
		AddRow(job.ID, "2024-2025", "QUEUED", "batch_update", `{"validation":{"valid":0,"fixed":0,"failed":0},"calculation":{"successful":0,"failed":0}}`, nil, "user-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM recompute_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecomputeStatusQueued, fetched.Status)
	assert.Nil(t, fetched.Summary.Refresh)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRecomputeJobRepository(db)

	now := time.Now()
	status := models.RecomputeStatusFailed
	message := "database unavailable"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recompute_jobs SET status = $1, error_message = $2, finished_at = $3 WHERE id = $4")).
		WithArgs(status, message, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateRecomputeJobParams{Status: &status, ErrorMessage: &message, FinishedAt: &now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeJobRepositoryUpdateNoop(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRecomputeJobRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateRecomputeJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeJobRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRecomputeJobRepository(db)

	rows := sqlmock.NewRows(recomputeJobRowColumns).
		AddRow("job-1", "2024-2025", "PROCESSING", "manual", `{}`, nil, "user-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("status IN ('QUEUED', 'PROCESSING')")).
		WithArgs("2024-2025").
		WillReturnRows(rows)

	jobs, err := repo.FindActive(context.Background(), "2024-2025")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.RecomputeStatusProcessing, jobs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
