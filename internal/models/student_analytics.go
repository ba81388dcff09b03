package models

import (
	"database/sql/driver"
	"time"
)

// CalculationTrigger records why an analytics document was recalculated.
type CalculationTrigger string

const (
	TriggerManual      CalculationTrigger = "manual"
	TriggerAutomatic   CalculationTrigger = "automatic"
	TriggerNewResult   CalculationTrigger = "new_result"
	TriggerBatchUpdate CalculationTrigger = "batch_update"
)

// Valid reports whether t is a known trigger.
func (t CalculationTrigger) Valid() bool {
	switch t {
	case TriggerManual, TriggerAutomatic, TriggerNewResult, TriggerBatchUpdate:
		return true
	}
	return false
}

// OverallAnalytics summarises all counted Class Tests of a student.
type OverallAnalytics struct {
	MatriculationPercentage  *float64  `json:"matriculation_percentage"`
	CurrentOverallPercentage float64   `json:"current_overall_percentage"`
	OverallZone              Zone      `json:"overall_zone"`
	TotalCTsIncluded         int       `json:"total_cts_included"`
	TotalMarksObtained       float64   `json:"total_marks_obtained"`
	TotalMaxMarks            float64   `json:"total_max_marks"`
	LastUpdated              time.Time `json:"last_updated"`
}

// Value marshals the overall block for JSONB storage.
func (o OverallAnalytics) Value() (driver.Value, error) {
	return jsonValue(o, "overall analytics")
}

// Scan unmarshals the overall block.
func (o *OverallAnalytics) Scan(value interface{}) error {
	*o = OverallAnalytics{}
	return scanJSON(value, o, "overall analytics")
}

// SubjectTestResult is one counted test inside a subject breakdown.
type SubjectTestResult struct {
	TestID        string    `json:"test_id"`
	ObtainedMarks float64   `json:"obtained_marks"`
	TotalMarks    float64   `json:"total_marks"`
	Percentage    float64   `json:"percentage"`
	TestDate      time.Time `json:"test_date"`
	TestType      string    `json:"test_type"`
}

// SubjectAnalytics is the per-subject breakdown of a student.
type SubjectAnalytics struct {
	SubjectName        string              `json:"subject_name"`
	CurrentPercentage  float64             `json:"current_percentage"`
	Zone               Zone                `json:"zone"`
	TotalCTsIncluded   int                 `json:"total_cts_included"`
	TotalMarksObtained float64             `json:"total_marks_obtained"`
	TotalMaxMarks      float64             `json:"total_max_marks"`
	TestResults        []SubjectTestResult `json:"test_results"`
	LastUpdated        time.Time           `json:"last_updated"`
}

// SubjectAnalyticsList is persisted as JSONB.
type SubjectAnalyticsList []SubjectAnalytics

// Value marshals the subject list.
func (s SubjectAnalyticsList) Value() (driver.Value, error) {
	if s == nil {
		s = SubjectAnalyticsList{}
	}
	return jsonValue(s, "subject analytics")
}

// Scan unmarshals the subject list.
func (s *SubjectAnalyticsList) Scan(value interface{}) error {
	*s = nil
	return scanJSON(value, s, "subject analytics")
}

// CalculationEntry is one entry of the bounded calculation history.
type CalculationEntry struct {
	CalculatedAt       time.Time          `json:"calculated_at"`
	OverallZone        Zone               `json:"overall_zone"`
	OverallPercentage  float64            `json:"overall_percentage"`
	TotalTestsIncluded int                `json:"total_tests_included"`
	Trigger            CalculationTrigger `json:"trigger"`
}

// CalculationHistory is ordered oldest first and persisted as JSONB.
type CalculationHistory []CalculationEntry

// Append returns a new history with entry added and only the most recent
// limit entries kept. The receiver is not modified.
func (h CalculationHistory) Append(entry CalculationEntry, limit int) CalculationHistory {
	next := make(CalculationHistory, 0, len(h)+1)
	next = append(next, h...)
	next = append(next, entry)
	if limit > 0 && len(next) > limit {
		next = next[len(next)-limit:]
	}
	return next
}

// Value marshals the history.
func (h CalculationHistory) Value() (driver.Value, error) {
	if h == nil {
		h = CalculationHistory{}
	}
	return jsonValue(h, "calculation history")
}

// Scan unmarshals the history.
func (h *CalculationHistory) Scan(value interface{}) error {
	*h = nil
	return scanJSON(value, h, "calculation history")
}

// StudentAnalytics is the per-student, per-academic-year analytics document.
// Placement fields are a snapshot taken at calculation time.
type StudentAnalytics struct {
	ID           string               `db:"id" json:"id"`
	StudentID    string               `db:"student_id" json:"student_id"`
	StudentName  string               `db:"student_name" json:"student_name,omitempty"`
	AcademicYear string               `db:"academic_year" json:"academic_year"`
	ClassID      *string              `db:"class_id" json:"class_id,omitempty"`
	Grade        string               `db:"grade" json:"grade"`
	Campus       Campus               `db:"campus" json:"campus"`
	Program      string               `db:"program" json:"program"`
	Overall      OverallAnalytics     `db:"overall" json:"overall_analytics"`
	Subjects     SubjectAnalyticsList `db:"subjects" json:"subject_analytics"`
	History      CalculationHistory   `db:"history" json:"calculation_history"`
	UpdatedAt    time.Time            `db:"updated_at" json:"updated_at"`
}

// Subject returns the breakdown for the named subject.
func (a *StudentAnalytics) Subject(name string) (SubjectAnalytics, bool) {
	for _, s := range a.Subjects {
		if s.SubjectName == name {
			return s, true
		}
	}
	return SubjectAnalytics{}, false
}

// StudentAnalyticsFilter narrows analytics documents within one academic year.
type StudentAnalyticsFilter struct {
	AcademicYear string
	Campus       Campus
	Grade        string
	ClassID      string
}
