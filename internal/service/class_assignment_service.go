package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	"github.com/noah-isme/sma-zone-analytics/internal/repository"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

// DefaultClassCapacity is the roster size at which a class stops accepting students.
const DefaultClassCapacity = 40

const maxAssignAttempts = 3

type assignmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListUnassigned(ctx context.Context) ([]models.Student, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

type assignmentClassRepository interface {
	ListLoads(ctx context.Context, criteria models.ClassCriteria) ([]models.ClassLoad, error)
	AssignStudent(ctx context.Context, studentID, classID string, capacity int) error
}

// ClassAssignmentService places students in the least loaded class of their
// campus, grade and program.
type ClassAssignmentService struct {
	students assignmentStudentRepository
	classes  assignmentClassRepository
	capacity int
	logger   *zap.Logger
}

// NewClassAssignmentService constructs the resolver. A non-positive capacity
// falls back to DefaultClassCapacity.
func NewClassAssignmentService(students assignmentStudentRepository, classes assignmentClassRepository, capacity int, logger *zap.Logger) *ClassAssignmentService {
	if capacity <= 0 {
		capacity = DefaultClassCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassAssignmentService{students: students, classes: classes, capacity: capacity, logger: logger}
}

func criteriaFor(student *models.Student) models.ClassCriteria {
	return models.ClassCriteria{Campus: student.Campus(), Grade: student.Grade, Program: student.Program}
}

// SuggestClass returns the eligible class with the fewest students, or nil
// when no class matches or every match is full. Ties go to the lowest id.
func (s *ClassAssignmentService) SuggestClass(ctx context.Context, student *models.Student) (*models.ClassLoad, error) {
	loads, err := s.classes.ListLoads(ctx, criteriaFor(student))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load candidate classes")
	}
	var best *models.ClassLoad
	for i := range loads {
		candidate := &loads[i]
		if candidate.Enrolled >= s.capacity {
			continue
		}
		if best == nil || candidate.Enrolled < best.Enrolled ||
			(candidate.Enrolled == best.Enrolled && candidate.ID < best.ID) {
			best = candidate
		}
	}
	return best, nil
}

// SuggestClassForStudent resolves the student and returns the suggestion with
// the criteria used.
func (s *ClassAssignmentService) SuggestClassForStudent(ctx context.Context, studentID string) (*dto.ClassSuggestion, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	class, err := s.SuggestClass(ctx, student)
	if err != nil {
		return nil, err
	}
	criteria := criteriaFor(student)
	return &dto.ClassSuggestion{
		StudentID: studentID,
		Criteria:  dto.ClassCriteriaView{Campus: criteria.Campus, Grade: criteria.Grade, Program: criteria.Program},
		Class:     class,
	}, nil
}

// AutoAssignClass places an unassigned student. Already assigned students are
// a successful no-op.
func (s *ClassAssignmentService) AutoAssignClass(ctx context.Context, studentID string) (*dto.AssignmentResult, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.assign(ctx, student)
}

func (s *ClassAssignmentService) assign(ctx context.Context, student *models.Student) (*dto.AssignmentResult, error) {
	if student.HasClass() {
		return &dto.AssignmentResult{
			StudentID:       student.ID,
			Success:         true,
			AlreadyAssigned: true,
			ClassID:         *student.ClassID,
			Message:         "student already has a class",
		}, nil
	}

	criteria := criteriaFor(student)
	for attempt := 1; attempt <= maxAssignAttempts; attempt++ {
		class, err := s.SuggestClass(ctx, student)
		if err != nil {
			return nil, err
		}
		if class == nil {
			return &dto.AssignmentResult{
				StudentID: student.ID,
				Success:   false,
				Message:   fmt.Sprintf("no class with free capacity for %s %s %s", criteria.Campus, criteria.Grade, criteria.Program),
			}, nil
		}

		err = s.classes.AssignStudent(ctx, student.ID, class.ID, s.capacity)
		switch {
		case err == nil:
			s.logger.Info("student assigned to class",
				zap.String("student_id", student.ID),
				zap.String("class_id", class.ID),
				zap.Int("enrolled_before", class.Enrolled),
			)
			return &dto.AssignmentResult{
				StudentID: student.ID,
				Success:   true,
				ClassID:   class.ID,
				ClassName: class.Name,
				Message:   fmt.Sprintf("assigned to %s", class.Name),
			}, nil
		case errors.Is(err, repository.ErrStudentAlreadyAssigned):
			return &dto.AssignmentResult{
				StudentID:       student.ID,
				Success:         true,
				AlreadyAssigned: true,
				Message:         "student was assigned concurrently",
			}, nil
		case errors.Is(err, repository.ErrClassFull):
			s.logger.Debug("class filled before assignment, retrying", zap.String("class_id", class.ID), zap.Int("attempt", attempt))
			continue
		default:
			return nil, appErrors.Internal(err, "failed to assign class")
		}
	}
	return &dto.AssignmentResult{
		StudentID: student.ID,
		Success:   false,
		Message:   "candidate classes filled up during assignment",
	}, nil
}

// AssignAllUnassignedStudents places every admitted student without a class.
func (s *ClassAssignmentService) AssignAllUnassignedStudents(ctx context.Context) (*dto.BatchAssignmentReport, error) {
	students, err := s.students.ListUnassigned(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list unassigned students")
	}
	return s.assignBatch(ctx, students, nil), nil
}

// AssignSelectedStudents places the given students. Unknown ids are reported
// as failures.
func (s *ClassAssignmentService) AssignSelectedStudents(ctx context.Context, studentIDs []string) (*dto.BatchAssignmentReport, error) {
	students, err := s.students.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load selected students")
	}
	byID := make(map[string]models.Student, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}
	ordered := make([]models.Student, 0, len(studentIDs))
	missing := make([]string, 0)
	for _, id := range studentIDs {
		if student, ok := byID[id]; ok {
			ordered = append(ordered, student)
			continue
		}
		missing = append(missing, id)
	}
	return s.assignBatch(ctx, ordered, missing), nil
}

func (s *ClassAssignmentService) assignBatch(ctx context.Context, students []models.Student, missing []string) *dto.BatchAssignmentReport {
	report := &dto.BatchAssignmentReport{
		Total:       len(students) + len(missing),
		Failures:    make([]dto.AssignmentFailure, 0),
		Assignments: make([]dto.AssignmentResult, 0, len(students)),
	}
	for _, id := range missing {
		report.Failed++
		report.Failures = append(report.Failures, dto.AssignmentFailure{StudentID: id, Reason: "student not found"})
	}
	for i := range students {
		student := &students[i]
		result, err := s.assign(ctx, student)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, dto.AssignmentFailure{StudentID: student.ID, StudentName: student.FullName, Reason: err.Error()})
			continue
		}
		report.Assignments = append(report.Assignments, *result)
		switch {
		case result.AlreadyAssigned:
			report.AlreadyAssigned++
		case result.Success:
			report.Assigned++
		default:
			report.Failed++
			report.Failures = append(report.Failures, dto.AssignmentFailure{StudentID: student.ID, StudentName: student.FullName, Reason: result.Message})
		}
	}
	s.logger.Info("batch class assignment finished",
		zap.Int("total", report.Total),
		zap.Int("assigned", report.Assigned),
		zap.Int("already_assigned", report.AlreadyAssigned),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (s *ClassAssignmentService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}
