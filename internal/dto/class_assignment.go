package dto

import "github.com/noah-isme/sma-zone-analytics/internal/models"

// AssignmentResult is the outcome of assigning one student to a class.
type AssignmentResult struct {
	StudentID       string `json:"studentId"`
	Success         bool   `json:"success"`
	AlreadyAssigned bool   `json:"alreadyAssigned"`
	Message         string `json:"message"`
	ClassID         string `json:"classId,omitempty"`
	ClassName       string `json:"className,omitempty"`
}

// ClassSuggestion describes the class a student would be placed in.
type ClassSuggestion struct {
	StudentID string            `json:"studentId"`
	Criteria  ClassCriteriaView `json:"criteria"`
	Class     *models.ClassLoad `json:"class"`
}

// ClassCriteriaView echoes the placement criteria derived from the student.
type ClassCriteriaView struct {
	Campus  models.Campus `json:"campus"`
	Grade   string        `json:"grade"`
	Program string        `json:"program"`
}

// AssignSelectedRequest lists the students to place.
type AssignSelectedRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,unique,dive,required"`
}

// AssignmentFailure names a student that could not be placed.
type AssignmentFailure struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName,omitempty"`
	Reason      string `json:"reason"`
}

// BatchAssignmentReport tallies a batch class assignment.
type BatchAssignmentReport struct {
	Total           int                 `json:"total"`
	Assigned        int                 `json:"assigned"`
	Failed          int                 `json:"failed"`
	AlreadyAssigned int                 `json:"alreadyAssigned"`
	Failures        []AssignmentFailure `json:"failures"`
	Assignments     []AssignmentResult  `json:"assignments"`
}
