package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

// Admission stage is stored under two column names; the current one wins
// whenever it is set.
const studentColumns = `id, full_name, COALESCE(gender, '') AS gender, COALESCE(program, '') AS program, COALESCE(grade, '') AS grade, class_id,
admission_stage, legacy_admission_stage, matric_marks, matric_total, matric_percentage, matric_subjects`

const admittedClause = `COALESCE(admission_stage, legacy_admission_stage) = $1`

// StudentRepository reads the student fields zone analytics depends on.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a new repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a single student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// ListAdmitted returns every fully admitted student ordered by name.
func (r *StudentRepository) ListAdmitted(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE ` + admittedClause + ` ORDER BY full_name ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.FullyAdmittedStage); err != nil {
		return nil, fmt.Errorf("list admitted students: %w", err)
	}
	return students, nil
}

// ListUnassigned returns admitted students without a home class.
func (r *StudentRepository) ListUnassigned(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE class_id IS NULL AND ` + admittedClause + ` ORDER BY full_name ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.FullyAdmittedStage); err != nil {
		return nil, fmt.Errorf("list unassigned students: %w", err)
	}
	return students, nil
}

// ListByIDs fetches the given students. Unknown ids are omitted.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+studentColumns+` FROM students WHERE id IN (?) ORDER BY full_name ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build student id query: %w", err)
	}
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list students by id: %w", err)
	}
	return students, nil
}
