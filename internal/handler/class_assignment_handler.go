package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	"github.com/noah-isme/sma-zone-analytics/pkg/response"
)

type classAssignmentService interface {
	SuggestClassForStudent(ctx context.Context, studentID string) (*dto.ClassSuggestion, error)
	AutoAssignClass(ctx context.Context, studentID string) (*dto.AssignmentResult, error)
	AssignAllUnassignedStudents(ctx context.Context) (*dto.BatchAssignmentReport, error)
	AssignSelectedStudents(ctx context.Context, studentIDs []string) (*dto.BatchAssignmentReport, error)
}

// ClassAssignmentHandler places students into classes.
type ClassAssignmentHandler struct {
	service  classAssignmentService
	validate *validator.Validate
}

// NewClassAssignmentHandler constructs the handler.
func NewClassAssignmentHandler(service classAssignmentService, validate *validator.Validate) *ClassAssignmentHandler {
	return &ClassAssignmentHandler{service: service, validate: ensureValidator(validate)}
}

// Suggest godoc
// @Summary Suggest the least loaded matching class
// @Tags ClassAssignments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /class-assignments/suggest/{studentId} [get]
func (h *ClassAssignmentHandler) Suggest(c *gin.Context) {
	suggestion, err := h.service.SuggestClassForStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil, middleware.ExtractMeta(c))
}

// Assign godoc
// @Summary Assign one student to a class
// @Tags ClassAssignments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /class-assignments/{studentId} [post]
func (h *ClassAssignmentHandler) Assign(c *gin.Context) {
	result, err := h.service.AutoAssignClass(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// AssignUnassigned godoc
// @Summary Assign every admitted student without a class
// @Tags ClassAssignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /class-assignments/unassigned [post]
func (h *ClassAssignmentHandler) AssignUnassigned(c *gin.Context) {
	report, err := h.service.AssignAllUnassignedStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// AssignSelected godoc
// @Summary Assign the listed students
// @Tags ClassAssignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignSelectedRequest true "Students"
// @Success 200 {object} response.Envelope
// @Router /class-assignments/selected [post]
func (h *ClassAssignmentHandler) AssignSelected(c *gin.Context) {
	var req dto.AssignSelectedRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.AssignSelectedStudents(c.Request.Context(), req.StudentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}
