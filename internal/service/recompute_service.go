package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	"github.com/noah-isme/sma-zone-analytics/internal/repository"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/jobs"
)

// RecomputeJobType identifies recompute jobs on the background queue.
const RecomputeJobType = "zone_recompute"

type recomputeJobStore interface {
	Create(ctx context.Context, job *models.RecomputeJob) error
	GetByID(ctx context.Context, id string) (*models.RecomputeJob, error)
	FindActive(ctx context.Context, academicYear string) ([]models.RecomputeJob, error)
	Update(ctx context.Context, id string, params repository.UpdateRecomputeJobParams) error
}

type recomputeStudentLister interface {
	ListAdmitted(ctx context.Context) ([]models.Student, error)
}

type prerequisiteBatchRunner interface {
	ValidateBatch(ctx context.Context, studentIDs []string) (*dto.PrerequisiteBatchReport, error)
}

type analyticsBatchCalculator interface {
	CalculateAllStudentAnalytics(ctx context.Context, academicYear string) (*dto.CalculationBatchReport, error)
}

type statisticsRefresher interface {
	RefreshAllStatistics(ctx context.Context, academicYear string) (*models.RefreshSummary, error)
}

type recomputeDispatcher interface {
	Enqueue(job jobs.Job) error
}

// RecomputeService runs the validate, calculate and aggregate pipeline for an
// academic year. At most one pipeline runs per year at a time.
type RecomputeService struct {
	jobs        recomputeJobStore
	students    recomputeStudentLister
	validator   prerequisiteBatchRunner
	calculator  analyticsBatchCalculator
	aggregator  statisticsRefresher
	queue       recomputeDispatcher
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
	mu          sync.Mutex
	activeYears map[string]struct{}
}

// NewRecomputeService constructs the pipeline service. The queue may be
// attached later with AttachQueue.
func NewRecomputeService(
	jobStore recomputeJobStore,
	students recomputeStudentLister,
	validator prerequisiteBatchRunner,
	calculator analyticsBatchCalculator,
	aggregator statisticsRefresher,
	metrics *MetricsService,
	logger *zap.Logger,
) *RecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputeService{
		jobs:        jobStore,
		students:    students,
		validator:   validator,
		calculator:  calculator,
		aggregator:  aggregator,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		activeYears: make(map[string]struct{}),
	}
}

// AttachQueue sets the dispatcher used by Enqueue.
func (s *RecomputeService) AttachQueue(queue recomputeDispatcher) {
	s.queue = queue
}

func (s *RecomputeService) acquire(academicYear string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.activeYears[academicYear]; busy {
		return false
	}
	s.activeYears[academicYear] = struct{}{}
	return true
}

func (s *RecomputeService) release(academicYear string) {
	s.mu.Lock()
	delete(s.activeYears, academicYear)
	s.mu.Unlock()
}

func (s *RecomputeService) ensureIdle(ctx context.Context, academicYear string) error {
	active, err := s.jobs.FindActive(ctx, academicYear)
	if err != nil {
		return appErrors.Internal(err, "failed to check running recomputes")
	}
	if len(active) > 0 {
		return appErrors.Clone(appErrors.ErrRecomputeInProgress, fmt.Sprintf("recompute %s is already running for %s", active[0].ID, academicYear))
	}
	return nil
}

// Run executes the pipeline synchronously.
func (s *RecomputeService) Run(ctx context.Context, academicYear string) (*models.RecomputeSummary, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if !s.acquire(academicYear) {
		return nil, appErrors.Clone(appErrors.ErrRecomputeInProgress, "")
	}
	defer s.release(academicYear)

	if err := s.ensureIdle(ctx, academicYear); err != nil {
		return nil, err
	}
	return s.pipeline(ctx, academicYear)
}

func (s *RecomputeService) pipeline(ctx context.Context, academicYear string) (*models.RecomputeSummary, error) {
	start := time.Now()
	logger := s.logger.With(zap.String("academic_year", academicYear))
	summary := &models.RecomputeSummary{}

	students, err := s.students.ListAdmitted(ctx)
	if err != nil {
		s.metrics.RecordRecompute(models.RecomputeStatusFailed)
		return nil, appErrors.Internal(err, "failed to list admitted students")
	}
	ids := make([]string, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	validation, err := s.validator.ValidateBatch(ctx, ids)
	if err != nil {
		s.metrics.RecordRecompute(models.RecomputeStatusFailed)
		return nil, err
	}
	summary.Validation = models.BatchValidationCounts{Valid: validation.Valid, Fixed: validation.Fixed, Failed: validation.Failed}
	logger.Info("recompute validation finished", zap.Int("valid", validation.Valid), zap.Int("fixed", validation.Fixed), zap.Int("failed", validation.Failed))

	calculation, err := s.calculator.CalculateAllStudentAnalytics(ctx, academicYear)
	if err != nil {
		s.metrics.RecordRecompute(models.RecomputeStatusFailed)
		return nil, err
	}
	summary.Calculation = models.CalculationCounts{Successful: calculation.Successful, Failed: calculation.Failed}

	refresh, err := s.aggregator.RefreshAllStatistics(ctx, academicYear)
	if err != nil {
		s.metrics.RecordRecompute(models.RecomputeStatusFailed)
		return nil, err
	}
	summary.Refresh = refresh

	s.metrics.RecordRecompute(models.RecomputeStatusFinished)
	logger.Info("recompute finished",
		zap.Int("successful", calculation.Successful),
		zap.Int("failed", calculation.Failed),
		zap.Int("subjects", len(refresh.Subjects)),
		zap.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

// Enqueue records a recompute job and hands it to the background queue.
func (s *RecomputeService) Enqueue(ctx context.Context, academicYear, createdBy string) (*dto.RecomputeJobResponse, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "recompute queue is not configured")
	}
	s.mu.Lock()
	_, busy := s.activeYears[academicYear]
	s.mu.Unlock()
	if busy {
		return nil, appErrors.Clone(appErrors.ErrRecomputeInProgress, "")
	}
	if err := s.ensureIdle(ctx, academicYear); err != nil {
		return nil, err
	}

	job := &models.RecomputeJob{
		AcademicYear: academicYear,
		Status:       models.RecomputeStatusQueued,
		Trigger:      models.TriggerBatchUpdate,
		CreatedBy:    createdBy,
		CreatedAt:    s.now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create recompute job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: RecomputeJobType, Payload: academicYear}); err != nil {
		s.finish(ctx, job.ID, models.RecomputeStatusFailed, nil, "failed to enqueue job")
		return nil, appErrors.Internal(err, "failed to enqueue recompute job")
	}
	s.metrics.RecordRecompute(models.RecomputeStatusQueued)
	return &dto.RecomputeJobResponse{ID: job.ID, AcademicYear: academicYear, Status: job.Status}, nil
}

// HandleJob processes a queued recompute. Failures leave the job PROCESSING so
// the queue can retry; MarkFailed closes it once retries run out.
func (s *RecomputeService) HandleJob(ctx context.Context, job jobs.Job) error {
	record, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if !s.acquire(record.AcademicYear) {
		return appErrors.Clone(appErrors.ErrRecomputeInProgress, "")
	}
	defer s.release(record.AcademicYear)

	processing := models.RecomputeStatusProcessing
	if err := s.jobs.Update(ctx, record.ID, repository.UpdateRecomputeJobParams{Status: &processing}); err != nil {
		return err
	}
	summary, err := s.pipeline(ctx, record.AcademicYear)
	if err != nil {
		msg := err.Error()
		if updateErr := s.jobs.Update(ctx, record.ID, repository.UpdateRecomputeJobParams{ErrorMessage: &msg}); updateErr != nil {
			s.logger.Warn("failed to record recompute error", zap.String("job_id", record.ID), zap.Error(updateErr))
		}
		return err
	}
	s.finish(ctx, record.ID, models.RecomputeStatusFinished, summary, "")
	return nil
}

// MarkFailed is the queue give-up hook.
func (s *RecomputeService) MarkFailed(ctx context.Context, job jobs.Job, err error) {
	msg := "recompute failed"
	if err != nil {
		msg = err.Error()
	}
	s.finish(ctx, job.ID, models.RecomputeStatusFailed, nil, msg)
}

func (s *RecomputeService) finish(ctx context.Context, id string, status models.RecomputeStatus, summary *models.RecomputeSummary, message string) {
	now := s.now()
	params := repository.UpdateRecomputeJobParams{Status: &status, Summary: summary, FinishedAt: &now}
	if message != "" {
		params.ErrorMessage = &message
	}
	if err := s.jobs.Update(ctx, id, params); err != nil {
		s.logger.Warn("failed to finalise recompute job", zap.String("job_id", id), zap.String("status", string(status)), zap.Error(err))
	}
}

// Status reports a recompute job.
func (s *RecomputeService) Status(ctx context.Context, id string) (*dto.RecomputeJobResponse, error) {
	record, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recompute job not found")
		}
		return nil, appErrors.Internal(err, "failed to load recompute job")
	}
	resp := &dto.RecomputeJobResponse{
		ID:           record.ID,
		AcademicYear: record.AcademicYear,
		Status:       record.Status,
		Error:        record.ErrorMessage,
	}
	if record.Status == models.RecomputeStatusFinished {
		summary := record.Summary
		resp.Summary = &summary
	}
	return resp, nil
}
