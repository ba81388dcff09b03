package dto

import "github.com/noah-isme/sma-zone-analytics/internal/models"

// AcademicYearRequest is the body of year-scoped write operations.
type AcademicYearRequest struct {
	AcademicYear string `json:"academicYear" validate:"required"`
}

// CalculateRequest triggers recalculation of one student.
type CalculateRequest struct {
	AcademicYear string                    `json:"academicYear" validate:"required"`
	Trigger      models.CalculationTrigger `json:"trigger" validate:"omitempty,oneof=manual automatic new_result batch_update"`
}

// RecomputeRequest starts the full pipeline for a year.
type RecomputeRequest struct {
	AcademicYear string `json:"academicYear" validate:"required"`
	Async        bool   `json:"async"`
}

// CalculationError names a student whose calculation failed.
type CalculationError struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Error       string `json:"error"`
}

// CalculationBatchReport tallies a calculate-all run.
type CalculationBatchReport struct {
	AcademicYear string             `json:"academicYear"`
	Total        int                `json:"total"`
	Successful   int                `json:"successful"`
	Failed       int                `json:"failed"`
	Errors       []CalculationError `json:"errors"`
}

// RecomputeJobResponse is returned after enqueueing a recompute.
type RecomputeJobResponse struct {
	ID           string                   `json:"id"`
	AcademicYear string                   `json:"academicYear"`
	Status       models.RecomputeStatus   `json:"status"`
	Summary      *models.RecomputeSummary `json:"summary,omitempty"`
	Error        *string                  `json:"error,omitempty"`
}
