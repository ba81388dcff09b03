package dto

import "github.com/noah-isme/sma-zone-analytics/internal/models"

// PrerequisiteIssueCode identifies one missing analytics prerequisite.
type PrerequisiteIssueCode string

const (
	IssueNoClass     PrerequisiteIssueCode = "NO_CLASS"
	IssueNoProgram   PrerequisiteIssueCode = "NO_PROGRAM"
	IssueNoGrade     PrerequisiteIssueCode = "NO_GRADE"
	IssueNoGender    PrerequisiteIssueCode = "NO_GENDER"
	IssueNotAdmitted PrerequisiteIssueCode = "NOT_FULLY_ADMITTED"
	IssueNoBaseline  PrerequisiteIssueCode = "NO_MATRICULATION_BASELINE"
)

// PrerequisiteIssue is a single validation finding.
type PrerequisiteIssue struct {
	Code    PrerequisiteIssueCode `json:"code"`
	Message string                `json:"message"`
}

// PrerequisiteResult is the outcome of validating one student.
type PrerequisiteResult struct {
	StudentID  string              `json:"studentId"`
	IsValid    bool                `json:"isValid"`
	Issues     []PrerequisiteIssue `json:"issues"`
	CanAutoFix bool                `json:"canAutoFix"`
	Student    *models.Student     `json:"student,omitempty"`
}

// HasIssue reports whether code is among the issues.
func (r *PrerequisiteResult) HasIssue(code PrerequisiteIssueCode) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// PrerequisiteFixResult is the outcome of validate-and-fix for one student.
type PrerequisiteFixResult struct {
	StudentID       string              `json:"studentId"`
	Success         bool                `json:"success"`
	FixesApplied    []string            `json:"fixesApplied"`
	RemainingIssues []PrerequisiteIssue `json:"remainingIssues"`
	Message         string              `json:"message"`
}

// PrerequisiteBatchRequest lists students to validate and fix.
type PrerequisiteBatchRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,unique,dive,required"`
}

// PrerequisiteBatchEntry is the per-student line of a batch report.
type PrerequisiteBatchEntry struct {
	StudentID string                 `json:"studentId"`
	Outcome   string                 `json:"outcome"`
	Result    *PrerequisiteFixResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Batch entry outcomes.
const (
	OutcomeValid  = "valid"
	OutcomeFixed  = "fixed"
	OutcomeFailed = "failed"
)

// PrerequisiteBatchReport tallies a prerequisite batch.
type PrerequisiteBatchReport struct {
	Total   int                      `json:"total"`
	Valid   int                      `json:"valid"`
	Fixed   int                      `json:"fixed"`
	Failed  int                      `json:"failed"`
	Results []PrerequisiteBatchEntry `json:"results"`
}
