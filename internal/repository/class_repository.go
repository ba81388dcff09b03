package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	"github.com/noah-isme/sma-zone-analytics/pkg/database"
)

var (
	// ErrStudentAlreadyAssigned is returned when the student gained a class concurrently.
	ErrStudentAlreadyAssigned = errors.New("student already assigned to a class")
	// ErrClassFull is returned when the class reached capacity before the roster insert.
	ErrClassFull = errors.New("class is at capacity")
)

// ClassRepository handles classes and their rosters.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID retrieves a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, campus, grade, program, created_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// ListAll returns every class ordered for skeleton building.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, campus, grade, program, created_at FROM classes ORDER BY campus ASC, grade ASC, name ASC, id ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListLoads returns classes matching the criteria with their roster sizes,
// least loaded first and ties broken by id.
func (r *ClassRepository) ListLoads(ctx context.Context, criteria models.ClassCriteria) ([]models.ClassLoad, error) {
	const query = `SELECT c.id, c.name, c.campus, c.grade, c.program, c.created_at, COUNT(cs.student_id) AS enrolled
FROM classes c LEFT JOIN class_students cs ON cs.class_id = c.id
WHERE c.campus = $1 AND c.grade = $2 AND c.program = $3
GROUP BY c.id, c.name, c.campus, c.grade, c.program, c.created_at
ORDER BY enrolled ASC, c.id ASC`
	var loads []models.ClassLoad
	if err := r.db.SelectContext(ctx, &loads, query, criteria.Campus, criteria.Grade, criteria.Program); err != nil {
		return nil, fmt.Errorf("list class loads: %w", err)
	}
	return loads, nil
}

// AssignStudent sets the student's class and adds them to the roster in one
// transaction. The class row is locked so concurrent assignments cannot push
// the roster past capacity.
func (r *ClassRepository) AssignStudent(ctx context.Context, studentID, classID string, capacity int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked string
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM classes WHERE id = $1 FOR UPDATE`, classID); err != nil {
			return fmt.Errorf("lock class: %w", err)
		}

		var enrolled int
		if err := tx.GetContext(ctx, &enrolled, `SELECT COUNT(*) FROM class_students WHERE class_id = $1`, classID); err != nil {
			return fmt.Errorf("count class roster: %w", err)
		}
		if capacity > 0 && enrolled >= capacity {
			return ErrClassFull
		}

		res, err := tx.ExecContext(ctx, `UPDATE students SET class_id = $1 WHERE id = $2 AND class_id IS NULL`, classID, studentID)
		if err != nil {
			return fmt.Errorf("update student class: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update student class: %w", err)
		}
		if affected == 0 {
			return ErrStudentAlreadyAssigned
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO class_students (class_id, student_id) VALUES ($1, $2) ON CONFLICT (class_id, student_id) DO NOTHING`, classID, studentID); err != nil {
			return fmt.Errorf("insert class roster: %w", err)
		}
		return nil
	})
}
