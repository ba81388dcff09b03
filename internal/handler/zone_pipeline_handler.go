package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/response"
)

type studentCalculator interface {
	CalculateForStudent(ctx context.Context, studentID, academicYear string, trigger models.CalculationTrigger) (*models.StudentAnalytics, error)
}

type statisticsRefresher interface {
	RefreshAllStatistics(ctx context.Context, academicYear string) (*models.RefreshSummary, error)
}

type recomputeRunner interface {
	Run(ctx context.Context, academicYear string) (*models.RecomputeSummary, error)
	Enqueue(ctx context.Context, academicYear, createdBy string) (*dto.RecomputeJobResponse, error)
	Status(ctx context.Context, id string) (*dto.RecomputeJobResponse, error)
}

// ZonePipelineHandler exposes the write side: recalculation, aggregation and
// the full recompute pipeline.
type ZonePipelineHandler struct {
	calculator studentCalculator
	refresher  statisticsRefresher
	recompute  recomputeRunner
	validate   *validator.Validate
}

// NewZonePipelineHandler constructs the handler.
func NewZonePipelineHandler(calculator studentCalculator, refresher statisticsRefresher, recompute recomputeRunner, validate *validator.Validate) *ZonePipelineHandler {
	return &ZonePipelineHandler{
		calculator: calculator,
		refresher:  refresher,
		recompute:  recompute,
		validate:   ensureValidator(validate),
	}
}

// Calculate godoc
// @Summary Recalculate analytics for one student
// @Tags Zones
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body dto.CalculateRequest true "Calculation request"
// @Success 200 {object} response.Envelope
// @Router /zones/students/{studentId}/calculate [post]
func (h *ZonePipelineHandler) Calculate(c *gin.Context) {
	var req dto.CalculateRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		response.Error(c, err)
		return
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = models.TriggerManual
	}
	doc, err := h.calculator.CalculateForStudent(c.Request.Context(), c.Param("studentId"), req.AcademicYear, trigger)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Regenerate overall and per-subject statistics
// @Tags Zones
// @Accept json
// @Produce json
// @Param payload body dto.AcademicYearRequest true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/statistics/refresh [post]
func (h *ZonePipelineHandler) Refresh(c *gin.Context) {
	var req dto.AcademicYearRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.refresher.RefreshAllStatistics(c.Request.Context(), req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetGeneration(c, summary.Generation)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Recompute godoc
// @Summary Run validate, calculate and refresh for a year
// @Tags Zones
// @Accept json
// @Produce json
// @Param payload body dto.RecomputeRequest true "Recompute request"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /zones/recompute [post]
func (h *ZonePipelineHandler) Recompute(c *gin.Context) {
	var req dto.RecomputeRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.Async {
		createdBy := ""
		if claims := middleware.Claims(c); claims != nil {
			createdBy = claims.UserID
		}
		job, err := h.recompute.Enqueue(c.Request.Context(), req.AcademicYear, createdBy)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, job)
		return
	}
	summary, err := h.recompute.Run(c.Request.Context(), req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// RecomputeStatus godoc
// @Summary Status of a queued recompute
// @Tags Zones
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /zones/recompute/{id} [get]
func (h *ZonePipelineHandler) RecomputeStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "job id is required"))
		return
	}
	job, err := h.recompute.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
