package models

import (
	"database/sql/driver"
	"time"
)

// RecomputeStatus captures background job lifecycle states.
type RecomputeStatus string

const (
	RecomputeStatusQueued     RecomputeStatus = "QUEUED"
	RecomputeStatusProcessing RecomputeStatus = "PROCESSING"
	RecomputeStatusFinished   RecomputeStatus = "FINISHED"
	RecomputeStatusFailed     RecomputeStatus = "FAILED"
)

// RecomputeJob is the persisted record of one validate, calculate and
// aggregate pipeline run.
type RecomputeJob struct {
	ID           string             `db:"id" json:"id"`
	AcademicYear string             `db:"academic_year" json:"academic_year"`
	Status       RecomputeStatus    `db:"status" json:"status"`
	Trigger      CalculationTrigger `db:"trigger" json:"trigger"`
	Summary      RecomputeSummary   `db:"summary" json:"summary"`
	ErrorMessage *string            `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string             `db:"created_by" json:"created_by"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time         `db:"finished_at" json:"finished_at,omitempty"`
}

// RecomputeSummary reports what each pipeline phase did.
type RecomputeSummary struct {
	Validation  BatchValidationCounts `json:"validation"`
	Calculation CalculationCounts     `json:"calculation"`
	Refresh     *RefreshSummary       `json:"refresh,omitempty"`
}

// BatchValidationCounts tallies a prerequisite batch.
type BatchValidationCounts struct {
	Valid  int `json:"valid"`
	Fixed  int `json:"fixed"`
	Failed int `json:"failed"`
}

// CalculationCounts tallies a calculation batch.
type CalculationCounts struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// RefreshSummary reports one full statistics regeneration.
type RefreshSummary struct {
	AcademicYear      string   `json:"academic_year"`
	Generation        string   `json:"generation"`
	StudentsProcessed int      `json:"students_processed"`
	Subjects          []string `json:"subjects"`
	DurationMs        int64    `json:"duration_ms"`
}

// Value marshals the summary for JSONB storage.
func (s RecomputeSummary) Value() (driver.Value, error) {
	return jsonValue(s, "recompute summary")
}

// Scan unmarshals the summary.
func (s *RecomputeSummary) Scan(value interface{}) error {
	*s = RecomputeSummary{}
	return scanJSON(value, s, "recompute summary")
}
