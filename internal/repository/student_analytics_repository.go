package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

const analyticsColumns = `a.id, a.student_id, COALESCE(s.full_name, '') AS student_name, a.academic_year, a.class_id, a.grade, a.campus, a.program,
a.overall, a.subjects, a.history, a.updated_at`

// StudentAnalyticsRepository persists per-student analytics documents.
type StudentAnalyticsRepository struct {
	db *sqlx.DB
}

// NewStudentAnalyticsRepository constructs the repository.
func NewStudentAnalyticsRepository(db *sqlx.DB) *StudentAnalyticsRepository {
	return &StudentAnalyticsRepository{db: db}
}

// Upsert writes the document keyed by (student_id, academic_year), replacing
// every computed field of an existing row.
func (r *StudentAnalyticsRepository) Upsert(ctx context.Context, doc *models.StudentAnalytics) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `INSERT INTO student_analytics (id, student_id, academic_year, class_id, grade, campus, program, overall, subjects, history, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (student_id, academic_year) DO UPDATE SET
class_id = EXCLUDED.class_id, grade = EXCLUDED.grade, campus = EXCLUDED.campus, program = EXCLUDED.program,
overall = EXCLUDED.overall, subjects = EXCLUDED.subjects, history = EXCLUDED.history, updated_at = EXCLUDED.updated_at
RETURNING id`
	var id string
	err := r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.StudentID, doc.AcademicYear, doc.ClassID, doc.Grade, doc.Campus, doc.Program,
		doc.Overall, doc.Subjects, doc.History, doc.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert student analytics: %w", err)
	}
	doc.ID = id
	return nil
}

// FindByStudentYear returns the document of one student for one year.
func (r *StudentAnalyticsRepository) FindByStudentYear(ctx context.Context, studentID, academicYear string) (*models.StudentAnalytics, error) {
	query := `SELECT ` + analyticsColumns + ` FROM student_analytics a LEFT JOIN students s ON s.id = a.student_id
WHERE a.student_id = $1 AND a.academic_year = $2`
	var doc models.StudentAnalytics
	if err := r.db.GetContext(ctx, &doc, query, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("get student analytics: %w", err)
	}
	return &doc, nil
}

// List returns the documents of a year, optionally narrowed by placement,
// ordered by student name.
func (r *StudentAnalyticsRepository) List(ctx context.Context, filter models.StudentAnalyticsFilter) ([]models.StudentAnalytics, error) {
	conditions := []string{"a.academic_year = $1"}
	args := []interface{}{filter.AcademicYear}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		conditions = append(conditions, fmt.Sprintf("a.campus = $%d", len(args)))
	}
	if filter.Grade != "" {
		args = append(args, filter.Grade)
		conditions = append(conditions, fmt.Sprintf("a.grade = $%d", len(args)))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("a.class_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM student_analytics a LEFT JOIN students s ON s.id = a.student_id WHERE %s ORDER BY student_name ASC, a.student_id ASC`,
		analyticsColumns, strings.Join(conditions, " AND "))
	var docs []models.StudentAnalytics
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list student analytics: %w", err)
	}
	return docs, nil
}

// DistinctSubjects lists every subject name present in the year's documents.
func (r *StudentAnalyticsRepository) DistinctSubjects(ctx context.Context, academicYear string) ([]string, error) {
	const query = `SELECT DISTINCT subject.value->>'subject_name' AS subject_name
FROM student_analytics a CROSS JOIN LATERAL jsonb_array_elements(a.subjects) AS subject
WHERE a.academic_year = $1 AND COALESCE(subject.value->>'subject_name', '') <> ''
ORDER BY subject_name ASC`
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, query, academicYear); err != nil {
		return nil, fmt.Errorf("list analytics subjects: %w", err)
	}
	return subjects, nil
}
