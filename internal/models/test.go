package models

import "time"

// TestCategoryClassTest is the only test category counted by zone analytics.
const TestCategoryClassTest = "Class Test"

// GradedResult is a test result joined with its parent test. Test fields are
// nil when the parent test no longer exists.
type GradedResult struct {
	ResultID      string     `db:"result_id"`
	TestID        string     `db:"test_id"`
	ObtainedMarks float64    `db:"obtained_marks"`
	IsAbsent      bool       `db:"is_absent"`
	Subject       *string    `db:"subject"`
	TotalMarks    *float64   `db:"total_marks"`
	TestDate      *time.Time `db:"test_date"`
	TestType      *string    `db:"test_type"`
	Category      *string    `db:"category"`
}

// CountsTowardZones reports whether the result is a present, resolvable Class Test.
func (r GradedResult) CountsTowardZones() bool {
	if r.IsAbsent || r.Subject == nil || r.TotalMarks == nil || r.Category == nil {
		return false
	}
	return *r.Category == TestCategoryClassTest
}
