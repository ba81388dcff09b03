package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

const (
	// DefaultCalculationBatchSize bounds concurrent per-student calculations.
	DefaultCalculationBatchSize = 10
	// DefaultHistoryLimit is the number of calculation history entries kept.
	DefaultHistoryLimit = 10
)

type analyticsStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListAdmitted(ctx context.Context) ([]models.Student, error)
}

type analyticsClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type analyticsResultReader interface {
	ListPresentForStudent(ctx context.Context, studentID string) ([]models.GradedResult, error)
}

type studentAnalyticsStore interface {
	FindByStudentYear(ctx context.Context, studentID, academicYear string) (*models.StudentAnalytics, error)
	Upsert(ctx context.Context, doc *models.StudentAnalytics) error
}

type prerequisiteFixer interface {
	ValidateAndFix(ctx context.Context, studentID string) (*dto.PrerequisiteFixResult, error)
}

// StudentAnalyticsConfig tunes batch calculation.
type StudentAnalyticsConfig struct {
	BatchSize    int
	HistoryLimit int
}

// StudentAnalyticsService computes and stores per-student zone analytics.
type StudentAnalyticsService struct {
	students      analyticsStudentReader
	classes       analyticsClassReader
	results       analyticsResultReader
	store         studentAnalyticsStore
	prerequisites prerequisiteFixer
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	batchSize     int
	historyLimit  int
	now           func() time.Time
}

// NewStudentAnalyticsService constructs the builder service.
func NewStudentAnalyticsService(
	students analyticsStudentReader,
	classes analyticsClassReader,
	results analyticsResultReader,
	store studentAnalyticsStore,
	prerequisites prerequisiteFixer,
	cache *CacheService,
	metrics *MetricsService,
	cfg StudentAnalyticsConfig,
	logger *zap.Logger,
) *StudentAnalyticsService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultCalculationBatchSize
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentAnalyticsService{
		students:      students,
		classes:       classes,
		results:       results,
		store:         store,
		prerequisites: prerequisites,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		batchSize:     cfg.BatchSize,
		historyLimit:  cfg.HistoryLimit,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// AnalyticsInput is everything BuildStudentAnalytics needs for one student and year.
type AnalyticsInput struct {
	Student      *models.Student
	Class        *models.Class
	AcademicYear string
	Results      []models.GradedResult
	Previous     *models.StudentAnalytics
	Trigger      models.CalculationTrigger
	HistoryLimit int
	Now          time.Time
}

// BuildStudentAnalytics derives a complete analytics document from source
// data. Only present Class Test results with a resolvable test count. The
// previous document contributes only its id and history.
func BuildStudentAnalytics(in AnalyticsInput) models.StudentAnalytics {
	type counted struct {
		subject string
		result  models.SubjectTestResult
	}

	tuples := make([]counted, 0, len(in.Results))
	for _, r := range in.Results {
		if !r.CountsTowardZones() {
			continue
		}
		var testDate time.Time
		if r.TestDate != nil {
			testDate = *r.TestDate
		}
		var testType string
		if r.TestType != nil {
			testType = *r.TestType
		}
		tuples = append(tuples, counted{
			subject: *r.Subject,
			result: models.SubjectTestResult{
				TestID:        r.TestID,
				ObtainedMarks: r.ObtainedMarks,
				TotalMarks:    *r.TotalMarks,
				Percentage:    models.WeightedPercentage(r.ObtainedMarks, *r.TotalMarks),
				TestDate:      testDate,
				TestType:      testType,
			},
		})
	}

	var obtained, possible float64
	bySubject := make(map[string][]models.SubjectTestResult)
	for _, t := range tuples {
		obtained += t.result.ObtainedMarks
		possible += t.result.TotalMarks
		bySubject[t.subject] = append(bySubject[t.subject], t.result)
	}
	overallPct := models.WeightedPercentage(obtained, possible)

	names := make([]string, 0, len(bySubject))
	for name := range bySubject {
		names = append(names, name)
	}
	sort.Strings(names)

	subjects := make(models.SubjectAnalyticsList, 0, len(names))
	for _, name := range names {
		results := bySubject[name]
		var subObtained, subMax float64
		for _, r := range results {
			subObtained += r.ObtainedMarks
			subMax += r.TotalMarks
		}
		if subMax <= 0 {
			continue
		}
		pct := models.WeightedPercentage(subObtained, subMax)
		subjects = append(subjects, models.SubjectAnalytics{
			SubjectName:        name,
			CurrentPercentage:  pct,
			Zone:               models.ClassifyZone(pct),
			TotalCTsIncluded:   len(results),
			TotalMarksObtained: subObtained,
			TotalMaxMarks:      subMax,
			TestResults:        results,
			LastUpdated:        in.Now,
		})
	}

	overall := models.OverallAnalytics{
		CurrentOverallPercentage: overallPct,
		OverallZone:              models.ClassifyZone(overallPct),
		TotalCTsIncluded:         len(tuples),
		TotalMarksObtained:       obtained,
		TotalMaxMarks:            possible,
		LastUpdated:              in.Now,
	}
	if baseline, ok := in.Student.MatriculationBaseline(); ok {
		pct := baseline.Percentage
		overall.MatriculationPercentage = &pct
	}

	trigger := in.Trigger
	if trigger == "" {
		trigger = models.TriggerManual
	}
	limit := in.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var history models.CalculationHistory
	var id string
	if in.Previous != nil {
		history = in.Previous.History
		id = in.Previous.ID
	}
	history = history.Append(models.CalculationEntry{
		CalculatedAt:       in.Now,
		OverallZone:        overall.OverallZone,
		OverallPercentage:  overall.CurrentOverallPercentage,
		TotalTestsIncluded: overall.TotalCTsIncluded,
		Trigger:            trigger,
	}, limit)

	doc := models.StudentAnalytics{
		ID:           id,
		StudentID:    in.Student.ID,
		StudentName:  in.Student.FullName,
		AcademicYear: in.AcademicYear,
		ClassID:      in.Student.ClassID,
		Grade:        in.Student.Grade,
		Campus:       in.Student.Campus(),
		Program:      in.Student.Program,
		Overall:      overall,
		Subjects:     subjects,
		History:      history,
		UpdatedAt:    in.Now,
	}
	// The class row is the authority on placement once the student has one.
	if in.Class != nil {
		doc.Campus = in.Class.Campus
		doc.Grade = in.Class.Grade
		if in.Class.Program != "" {
			doc.Program = in.Class.Program
		}
	}
	return doc
}

// CalculateForStudent validates, builds and persists the analytics document of
// one student for one academic year.
func (s *StudentAnalyticsService) CalculateForStudent(ctx context.Context, studentID, academicYear string, trigger models.CalculationTrigger) (*models.StudentAnalytics, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if trigger == "" {
		trigger = models.TriggerManual
	}
	if !trigger.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown calculation trigger")
	}

	doc, err := s.calculateRecorded(ctx, studentID, academicYear, trigger)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, academicYear)
	return doc, nil
}

func (s *StudentAnalyticsService) calculateRecorded(ctx context.Context, studentID, academicYear string, trigger models.CalculationTrigger) (*models.StudentAnalytics, error) {
	doc, err := s.calculate(ctx, studentID, academicYear, trigger)
	s.metrics.RecordCalculation(err == nil)
	return doc, err
}

// Cached class rosters and exports read analytics documents directly, so any
// persisted recalculation drops the year's cached views.
func (s *StudentAnalyticsService) invalidate(ctx context.Context, academicYear string) {
	if err := s.cache.InvalidateYear(ctx, academicYear); err != nil {
		s.logger.Warn("failed to invalidate zone cache", zap.String("academic_year", academicYear), zap.Error(err))
	}
}

func (s *StudentAnalyticsService) calculate(ctx context.Context, studentID, academicYear string, trigger models.CalculationTrigger) (*models.StudentAnalytics, error) {
	fix, err := s.prerequisites.ValidateAndFix(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !fix.Success {
		codes := make([]string, 0, len(fix.RemainingIssues))
		for _, issue := range fix.RemainingIssues {
			codes = append(codes, string(issue.Code))
		}
		s.logger.Warn("calculating with unresolved prerequisites",
			zap.String("student_id", studentID),
			zap.String("academic_year", academicYear),
			zap.Strings("issues", codes),
		)
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	var class *models.Class
	if student.HasClass() {
		class, err = s.classes.FindByID(ctx, *student.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load class")
		}
		if class == nil {
			s.logger.Warn("student references missing class", zap.String("student_id", studentID), zap.String("class_id", *student.ClassID))
		}
	}

	start := time.Now()
	results, err := s.results.ListPresentForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load test results")
	}
	s.metrics.ObserveDBQuery("student_results", time.Since(start))

	previous, err := s.store.FindByStudentYear(ctx, studentID, academicYear)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load existing analytics")
		}
		previous = nil
	}

	doc := BuildStudentAnalytics(AnalyticsInput{
		Student:      student,
		Class:        class,
		AcademicYear: academicYear,
		Results:      results,
		Previous:     previous,
		Trigger:      trigger,
		HistoryLimit: s.historyLimit,
		Now:          s.now(),
	})
	if err := s.store.Upsert(ctx, &doc); err != nil {
		return nil, appErrors.Internal(err, "failed to save student analytics")
	}
	return &doc, nil
}

// CalculateAllStudentAnalytics recalculates every admitted student in batches.
// Students within a batch run concurrently and batches run one after another.
// A failing student is reported and never aborts the run.
func (s *StudentAnalyticsService) CalculateAllStudentAnalytics(ctx context.Context, academicYear string) (*dto.CalculationBatchReport, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	students, err := s.students.ListAdmitted(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admitted students")
	}

	report := &dto.CalculationBatchReport{
		AcademicYear: academicYear,
		Total:        len(students),
		Errors:       make([]dto.CalculationError, 0),
	}
	batches := (len(students) + s.batchSize - 1) / s.batchSize

	for batch := 0; batch < batches; batch++ {
		if err := ctx.Err(); err != nil {
			if report.Successful > 0 {
				s.invalidate(context.WithoutCancel(ctx), academicYear)
			}
			return report, err
		}
		start := batch * s.batchSize
		end := start + s.batchSize
		if end > len(students) {
			end = len(students)
		}
		chunk := students[start:end]
		failures := make([]*dto.CalculationError, len(chunk))

		var g errgroup.Group
		g.SetLimit(s.batchSize)
		for i := range chunk {
			i, student := i, chunk[i]
			g.Go(func() error {
				_, err := s.calculateRecorded(ctx, student.ID, academicYear, models.TriggerBatchUpdate)
				if err != nil {
					failures[i] = &dto.CalculationError{StudentID: student.ID, StudentName: student.FullName, Error: err.Error()}
				}
				return nil
			})
		}
		_ = g.Wait()

		batchFailed := 0
		for _, failure := range failures {
			if failure != nil {
				report.Errors = append(report.Errors, *failure)
				batchFailed++
			}
		}
		report.Failed += batchFailed
		report.Successful += len(chunk) - batchFailed

		s.logger.Info("analytics batch processed",
			zap.String("academic_year", academicYear),
			zap.Int("batch", batch+1),
			zap.Int("batches", batches),
			zap.Int("processed", end),
			zap.Int("failed", batchFailed),
		)
	}

	if report.Successful > 0 {
		s.invalidate(ctx, academicYear)
	}
	s.logger.Info("analytics calculation finished",
		zap.String("academic_year", academicYear),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
