package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/response"
)

type prerequisiteService interface {
	Validate(ctx context.Context, studentID string) (*dto.PrerequisiteResult, error)
	ValidateAndFix(ctx context.Context, studentID string) (*dto.PrerequisiteFixResult, error)
	ValidateBatch(ctx context.Context, studentIDs []string) (*dto.PrerequisiteBatchReport, error)
}

// PrerequisiteHandler exposes analytics prerequisite checks.
type PrerequisiteHandler struct {
	service  prerequisiteService
	validate *validator.Validate
}

// NewPrerequisiteHandler constructs the handler.
func NewPrerequisiteHandler(service prerequisiteService, validate *validator.Validate) *PrerequisiteHandler {
	return &PrerequisiteHandler{service: service, validate: ensureValidator(validate)}
}

// Validate godoc
// @Summary Check whether a student can receive analytics
// @Tags Prerequisites
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /zones/prerequisites/{studentId} [get]
func (h *PrerequisiteHandler) Validate(c *gin.Context) {
	result, err := h.service.Validate(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Fix godoc
// @Summary Validate a student and apply automatic fixes
// @Tags Prerequisites
// @Produce json
// @Param studentId path string true "Student ID"
// @Param strict query bool false "Fail with 412 when issues remain"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /zones/prerequisites/{studentId}/fix [post]
func (h *PrerequisiteHandler) Fix(c *gin.Context) {
	strict := false
	if raw := c.Query("strict"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "strict must be a boolean"))
			return
		}
		strict = parsed
	}

	result, err := h.service.ValidateAndFix(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if strict && !result.Success {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, result.Message))
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Batch godoc
// @Summary Validate and fix a list of students
// @Tags Prerequisites
// @Accept json
// @Produce json
// @Param payload body dto.PrerequisiteBatchRequest true "Students"
// @Success 200 {object} response.Envelope
// @Router /zones/prerequisites/batch [post]
func (h *PrerequisiteHandler) Batch(c *gin.Context) {
	var req dto.PrerequisiteBatchRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.ValidateBatch(c.Request.Context(), req.StudentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}
