package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

type prerequisiteStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type classAutoAssigner interface {
	AutoAssignClass(ctx context.Context, studentID string) (*dto.AssignmentResult, error)
}

// PrerequisiteService checks that a student record carries what analytics
// needs and repairs the one gap that can be repaired automatically: a missing
// class assignment.
type PrerequisiteService struct {
	students prerequisiteStudentReader
	assigner classAutoAssigner
	logger   *zap.Logger
}

// NewPrerequisiteService constructs the validator.
func NewPrerequisiteService(students prerequisiteStudentReader, assigner classAutoAssigner, logger *zap.Logger) *PrerequisiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{students: students, assigner: assigner, logger: logger}
}

// Validate reports every missing prerequisite of the student.
func (s *PrerequisiteService) Validate(ctx context.Context, studentID string) (*dto.PrerequisiteResult, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return checkPrerequisites(student), nil
}

func checkPrerequisites(student *models.Student) *dto.PrerequisiteResult {
	issues := make([]dto.PrerequisiteIssue, 0)
	if !student.HasClass() {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNoClass, Message: "student is not assigned to a class"})
	}
	if student.Program == "" {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNoProgram, Message: "program is missing"})
	}
	if student.Grade == "" {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNoGrade, Message: "grade is missing"})
	}
	if student.Gender == "" {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNoGender, Message: "gender is missing"})
	}
	if !student.IsFullyAdmitted() {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNotAdmitted, Message: "admission is not complete"})
	}
	if _, ok := student.MatriculationBaseline(); !ok {
		issues = append(issues, dto.PrerequisiteIssue{Code: dto.IssueNoBaseline, Message: "matriculation marks are missing"})
	}

	return &dto.PrerequisiteResult{
		StudentID:  student.ID,
		IsValid:    len(issues) == 0,
		Issues:     issues,
		CanAutoFix: onlyAutoFixable(issues),
		Student:    student,
	}
}

func onlyAutoFixable(issues []dto.PrerequisiteIssue) bool {
	for _, issue := range issues {
		if issue.Code != dto.IssueNoClass {
			return false
		}
	}
	return true
}

// ValidateAndFix validates the student and, when the only gap is a missing
// class, assigns one and validates again. Students with any other issue are
// left untouched.
func (s *PrerequisiteService) ValidateAndFix(ctx context.Context, studentID string) (*dto.PrerequisiteFixResult, error) {
	result, err := s.Validate(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if result.IsValid {
		return &dto.PrerequisiteFixResult{
			StudentID:       studentID,
			Success:         true,
			FixesApplied:    []string{},
			RemainingIssues: []dto.PrerequisiteIssue{},
			Message:         "all prerequisites met",
		}, nil
	}
	if !result.CanAutoFix {
		return &dto.PrerequisiteFixResult{
			StudentID:       studentID,
			Success:         false,
			FixesApplied:    []string{},
			RemainingIssues: result.Issues,
			Message:         "manual data entry required",
		}, nil
	}

	fixes := make([]string, 0, 1)
	assignment, err := s.assigner.AutoAssignClass(ctx, studentID)
	switch {
	case err != nil:
		s.logger.Warn("auto class assignment failed", zap.String("student_id", studentID), zap.Error(err))
	case assignment.Success && !assignment.AlreadyAssigned:
		fixes = append(fixes, fmt.Sprintf("assigned to class %s", assignment.ClassName))
	case !assignment.Success:
		s.logger.Info("no class available for auto assignment", zap.String("student_id", studentID), zap.String("reason", assignment.Message))
	}

	after, err := s.Validate(ctx, studentID)
	if err != nil {
		return nil, err
	}
	message := "prerequisites fixed"
	if !after.IsValid {
		message = "automatic fix did not resolve all issues"
		if assignment != nil && !assignment.Success {
			message = assignment.Message
		}
	}
	return &dto.PrerequisiteFixResult{
		StudentID:       studentID,
		Success:         after.IsValid,
		FixesApplied:    fixes,
		RemainingIssues: after.Issues,
		Message:         message,
	}, nil
}

// ValidateBatch runs ValidateAndFix for each student in order. Per-student
// errors are reported in the entry and never abort the batch.
func (s *PrerequisiteService) ValidateBatch(ctx context.Context, studentIDs []string) (*dto.PrerequisiteBatchReport, error) {
	report := &dto.PrerequisiteBatchReport{
		Total:   len(studentIDs),
		Results: make([]dto.PrerequisiteBatchEntry, 0, len(studentIDs)),
	}
	for _, id := range studentIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := dto.PrerequisiteBatchEntry{StudentID: id}
		fix, err := s.ValidateAndFix(ctx, id)
		switch {
		case err != nil:
			entry.Outcome = dto.OutcomeFailed
			entry.Error = err.Error()
			report.Failed++
		case fix.Success && len(fix.FixesApplied) == 0:
			entry.Outcome = dto.OutcomeValid
			entry.Result = fix
			report.Valid++
		case fix.Success:
			entry.Outcome = dto.OutcomeFixed
			entry.Result = fix
			report.Fixed++
		default:
			entry.Outcome = dto.OutcomeFailed
			entry.Result = fix
			report.Failed++
		}
		report.Results = append(report.Results, entry)
	}
	s.logger.Info("prerequisite batch finished",
		zap.Int("total", report.Total),
		zap.Int("valid", report.Valid),
		zap.Int("fixed", report.Fixed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *PrerequisiteService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}
