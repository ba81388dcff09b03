package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

// ZoneStatisticsRepository persists aggregation documents.
type ZoneStatisticsRepository struct {
	db *sqlx.DB
}

// NewZoneStatisticsRepository constructs the repository.
func NewZoneStatisticsRepository(db *sqlx.DB) *ZoneStatisticsRepository {
	return &ZoneStatisticsRepository{db: db}
}

// Upsert replaces the document identified by type, year and subject. Overall
// documents use an empty subject name.
func (r *ZoneStatisticsRepository) Upsert(ctx context.Context, stats *models.ZoneStatistics) error {
	if stats.ID == "" {
		stats.ID = uuid.NewString()
	}
	const query = `INSERT INTO zone_statistics (id, statistic_type, academic_year, subject_name, campus_stats, college_wide, students_processed, calculation_duration_ms, generation, last_updated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (statistic_type, academic_year, subject_name) DO UPDATE SET
campus_stats = EXCLUDED.campus_stats, college_wide = EXCLUDED.college_wide, students_processed = EXCLUDED.students_processed,
calculation_duration_ms = EXCLUDED.calculation_duration_ms, generation = EXCLUDED.generation, last_updated = EXCLUDED.last_updated
RETURNING id`
	var id string
	err := r.db.QueryRowxContext(ctx, query,
		stats.ID, stats.StatisticType, stats.AcademicYear, stats.SubjectName, stats.CampusStats, stats.CollegeWide,
		stats.StudentsProcessed, stats.CalculationDurationMs, stats.Generation, stats.LastUpdated,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert zone statistics: %w", err)
	}
	stats.ID = id
	return nil
}

// Find returns one aggregation document.
func (r *ZoneStatisticsRepository) Find(ctx context.Context, statisticType models.StatisticType, academicYear, subjectName string) (*models.ZoneStatistics, error) {
	const query = `SELECT id, statistic_type, academic_year, subject_name, campus_stats, college_wide, students_processed, calculation_duration_ms, generation, last_updated
FROM zone_statistics WHERE statistic_type = $1 AND academic_year = $2 AND subject_name = $3`
	var stats models.ZoneStatistics
	if err := r.db.GetContext(ctx, &stats, query, statisticType, academicYear, subjectName); err != nil {
		return nil, fmt.Errorf("get zone statistics: %w", err)
	}
	return &stats, nil
}
