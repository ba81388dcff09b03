package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

// TestResultRepository reads graded results joined with their tests.
type TestResultRepository struct {
	db *sqlx.DB
}

// NewTestResultRepository constructs the repository.
func NewTestResultRepository(db *sqlx.DB) *TestResultRepository {
	return &TestResultRepository{db: db}
}

// ListPresentForStudent returns the student's non-absent results. Results
// whose test was deleted come back with nil test fields.
func (r *TestResultRepository) ListPresentForStudent(ctx context.Context, studentID string) ([]models.GradedResult, error) {
	const query = `SELECT r.id AS result_id, r.test_id, r.obtained_marks, r.is_absent,
t.subject, t.total_marks, t.test_date, t.test_type, t.category
FROM test_results r LEFT JOIN tests t ON t.id = r.test_id
WHERE r.student_id = $1 AND r.is_absent = FALSE
ORDER BY t.test_date ASC NULLS LAST, r.id ASC`
	var results []models.GradedResult
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	return results, nil
}
