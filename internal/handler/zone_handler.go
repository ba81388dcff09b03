package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/response"
)

type zoneQueryService interface {
	Overview(ctx context.Context, academicYear string) (*dto.OverviewResponse, bool, error)
	Campus(ctx context.Context, academicYear string, campus models.Campus) (*dto.CampusDetailResponse, bool, error)
	Grade(ctx context.Context, academicYear string, campus models.Campus, grade string) (*dto.GradeDetailResponse, bool, error)
	Class(ctx context.Context, academicYear, classID string) (*dto.ClassDetailResponse, bool, error)
	Subjects(ctx context.Context, academicYear string) ([]string, error)
	Subject(ctx context.Context, academicYear, subject string) (*dto.SubjectDetailResponse, bool, error)
	Student(ctx context.Context, academicYear, studentID string) (*dto.StudentDetailResponse, error)
	SearchStudents(ctx context.Context, filter dto.StudentSearchFilter) ([]dto.StudentZoneSummary, error)
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportPayload, error)
}

// ZoneHandler serves the read side of zone analytics.
type ZoneHandler struct {
	service  zoneQueryService
	validate *validator.Validate
}

// NewZoneHandler constructs the handler.
func NewZoneHandler(service zoneQueryService, validate *validator.Validate) *ZoneHandler {
	return &ZoneHandler{service: service, validate: ensureValidator(validate)}
}

func academicYearParam(c *gin.Context) (string, error) {
	year := strings.TrimSpace(c.Query("academicYear"))
	if year == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	return year, nil
}

func respondStatistics(c *gin.Context, data interface{}, meta dto.StatisticsMeta, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetGeneration(c, meta.Generation)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}

// Overview godoc
// @Summary College-wide zone distribution
// @Tags Zones
// @Produce json
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /zones/overview [get]
func (h *ZoneHandler) Overview(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, hit, err := h.service.Overview(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondStatistics(c, resp, resp.Meta, hit)
}

// Campus godoc
// @Summary Zone distribution of one campus
// @Tags Zones
// @Produce json
// @Param campus path string true "Boys or Girls"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/campuses/{campus} [get]
func (h *ZoneHandler) Campus(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	campus, ok := models.ParseCampus(c.Param("campus"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "campus must be Boys or Girls"))
		return
	}
	resp, hit, err := h.service.Campus(c.Request.Context(), year, campus)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondStatistics(c, resp, resp.Meta, hit)
}

// Grade godoc
// @Summary Zone distribution of one grade within a campus
// @Tags Zones
// @Produce json
// @Param campus path string true "Boys or Girls"
// @Param grade path string true "11th or 12th"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/campuses/{campus}/grades/{grade} [get]
func (h *ZoneHandler) Grade(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	campus, ok := models.ParseCampus(c.Param("campus"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "campus must be Boys or Girls"))
		return
	}
	grade, ok := models.ParseGrade(c.Param("grade"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade must be 11th or 12th"))
		return
	}
	resp, hit, err := h.service.Grade(c.Request.Context(), year, campus, grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondStatistics(c, resp, resp.Meta, hit)
}

// Class godoc
// @Summary Class zone distribution with roster
// @Tags Zones
// @Produce json
// @Param classId path string true "Class ID"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/classes/{classId} [get]
func (h *ZoneHandler) Class(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, hit, err := h.service.Class(c.Request.Context(), year, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondStatistics(c, resp, resp.Meta, hit)
}

// Subjects lists subjects with analytics in the year.
func (h *ZoneHandler) Subjects(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	subjects, err := h.service.Subjects(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil, middleware.ExtractMeta(c))
}

// Subject godoc
// @Summary Zone distribution for one subject
// @Tags Zones
// @Produce json
// @Param subject path string true "Subject name"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/subjects/{subject} [get]
func (h *ZoneHandler) Subject(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, hit, err := h.service.Subject(c.Request.Context(), year, c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondStatistics(c, resp, resp.Meta, hit)
}

// Student godoc
// @Summary Analytics of one student
// @Tags Zones
// @Produce json
// @Param studentId path string true "Student ID"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /zones/students/{studentId} [get]
func (h *ZoneHandler) Student(c *gin.Context) {
	year, err := academicYearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.service.Student(c.Request.Context(), year, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// Search godoc
// @Summary Search students by placement and zone
// @Tags Zones
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param campus query string false "Boys or Girls"
// @Param grade query string false "11th or 12th"
// @Param classId query string false "Class ID"
// @Param zone query string false "green, blue, yellow or red"
// @Param subject query string false "Subject whose zone the zone filter applies to"
// @Success 200 {object} response.Envelope
// @Router /zones/students [get]
func (h *ZoneHandler) Search(c *gin.Context) {
	var filter dto.StudentSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	normalizePlacement(&filter.Campus, &filter.Grade, &filter.Zone)
	if err := validateStruct(h.validate, filter); err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.service.SearchStudents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["count"] = len(students)
	response.JSON(c, http.StatusOK, students, nil, meta)
}

// Export godoc
// @Summary Export zone data
// @Tags Zones
// @Produce json,text/csv,application/pdf
// @Param academicYear query string true "Academic year"
// @Param level query string true "overview, campus, grade, class, subject or students"
// @Param format query string false "json (default), csv or pdf"
// @Success 200 {file} file
// @Router /zones/export [get]
func (h *ZoneHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	req.Level = dto.ExportLevel(strings.ToLower(string(req.Level)))
	req.Format = dto.ExportFormat(strings.ToLower(string(req.Format)))
	normalizePlacement(&req.Campus, &req.Grade, &req.Zone)
	if err := validateStruct(h.validate, req); err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if payload.JSON != nil {
		response.JSON(c, http.StatusOK, payload.JSON, nil, middleware.ExtractMeta(c))
		return
	}
	response.Attachment(c, payload.Filename, payload.ContentType, payload.Body)
}
