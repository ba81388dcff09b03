package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

type zoneQueryStub struct {
	overview    *dto.OverviewResponse
	campus      *dto.CampusDetailResponse
	grade       *dto.GradeDetailResponse
	class       *dto.ClassDetailResponse
	subject     *dto.SubjectDetailResponse
	student     *dto.StudentDetailResponse
	subjects    []string
	search      []dto.StudentZoneSummary
	export      *dto.ExportPayload
	hit         bool
	err         error
	lastCampus  models.Campus
	lastGrade   string
	lastFilter  dto.StudentSearchFilter
	lastExport  dto.ExportRequest
	lastStudent string
}

func (s *zoneQueryStub) Overview(context.Context, string) (*dto.OverviewResponse, bool, error) {
	return s.overview, s.hit, s.err
}

func (s *zoneQueryStub) Campus(_ context.Context, _ string, campus models.Campus) (*dto.CampusDetailResponse, bool, error) {
	s.lastCampus = campus
	return s.campus, s.hit, s.err
}

func (s *zoneQueryStub) Grade(_ context.Context, _ string, campus models.Campus, grade string) (*dto.GradeDetailResponse, bool, error) {
	s.lastCampus = campus
	s.lastGrade = grade
	return s.grade, s.hit, s.err
}

func (s *zoneQueryStub) Class(context.Context, string, string) (*dto.ClassDetailResponse, bool, error) {
	return s.class, s.hit, s.err
}

func (s *zoneQueryStub) Subjects(context.Context, string) ([]string, error) {
	return s.subjects, s.err
}

func (s *zoneQueryStub) Subject(context.Context, string, string) (*dto.SubjectDetailResponse, bool, error) {
	return s.subject, s.hit, s.err
}

func (s *zoneQueryStub) Student(_ context.Context, _ string, studentID string) (*dto.StudentDetailResponse, error) {
	s.lastStudent = studentID
	return s.student, s.err
}

func (s *zoneQueryStub) SearchStudents(_ context.Context, filter dto.StudentSearchFilter) ([]dto.StudentZoneSummary, error) {
	s.lastFilter = filter
	return s.search, s.err
}

func (s *zoneQueryStub) Export(_ context.Context, req dto.ExportRequest) (*dto.ExportPayload, error) {
	s.lastExport = req
	return s.export, s.err
}

func statsMeta() dto.StatisticsMeta {
	return dto.StatisticsMeta{
		AcademicYear:      "2024-2025",
		Generation:        "gen-7",
		StudentsProcessed: 12,
		LastUpdated:       time.Date(2024, 11, 4, 9, 30, 0, 0, time.UTC),
	}
}

func TestZoneHandlerOverviewRequiresAcademicYear(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/overview", nil)

	h.Overview(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, rec))
}

func TestZoneHandlerOverviewSetsCacheAndGeneration(t *testing.T) {
	stub := &zoneQueryStub{
		overview: &dto.OverviewResponse{
			Meta:        statsMeta(),
			CollegeWide: models.ZoneDistribution{Green: 4, Blue: 3, Yellow: 2, Red: 3},
		},
		hit: true,
	}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/overview?academicYear=2024-2025", nil)

	h.Overview(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "gen-7", envelope.Meta["generation"])
	college := envelope.Data["collegeWide"].(map[string]interface{})
	assert.EqualValues(t, 4, college["green"])
}

func TestZoneHandlerOverviewNotReady(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{err: appErrors.ErrStatisticsNotReady}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/overview?academicYear=2024-2025", nil)

	h.Overview(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "STATISTICS_NOT_READY", errorCode(t, rec))
}

func TestZoneHandlerCampusParsesLooseValues(t *testing.T) {
	stub := &zoneQueryStub{campus: &dto.CampusDetailResponse{Meta: statsMeta(), Campus: models.CampusGirls}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/campuses/girls?academicYear=2024-2025", nil, gin.Param{Key: "campus", Value: "girls"})

	h.Campus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CampusGirls, stub.lastCampus)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestZoneHandlerCampusRejectsUnknown(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/campuses/mixed?academicYear=2024-2025", nil, gin.Param{Key: "campus", Value: "mixed"})

	h.Campus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZoneHandlerGradeNormalisesGrade(t *testing.T) {
	stub := &zoneQueryStub{grade: &dto.GradeDetailResponse{Meta: statsMeta(), Campus: models.CampusBoys, Grade: "11th"}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/campuses/Boys/grades/11?academicYear=2024-2025", nil,
		gin.Param{Key: "campus", Value: "Boys"}, gin.Param{Key: "grade", Value: "11"})

	h.Grade(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CampusBoys, stub.lastCampus)
	assert.Equal(t, "11th", stub.lastGrade)
}

func TestZoneHandlerGradeRejectsUnknown(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/campuses/Boys/grades/9th?academicYear=2024-2025", nil,
		gin.Param{Key: "campus", Value: "Boys"}, gin.Param{Key: "grade", Value: "9th"})

	h.Grade(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZoneHandlerSubjectsList(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{subjects: []string{"Biology", "Chemistry"}}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/subjects?academicYear=2024-2025", nil)

	h.Subjects(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, []interface{}{"Biology", "Chemistry"}, envelope.Data)
}

func TestZoneHandlerStudentPassesID(t *testing.T) {
	stub := &zoneQueryStub{student: &dto.StudentDetailResponse{}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/students/s1?academicYear=2024-2025", nil, gin.Param{Key: "studentId", Value: "s1"})

	h.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", stub.lastStudent)
}

func TestZoneHandlerSearchNormalisesFilter(t *testing.T) {
	stub := &zoneQueryStub{search: []dto.StudentZoneSummary{{StudentID: "s1", StudentName: "Ayesha"}}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/students?academicYear=2024-2025&campus=girls&grade=12&zone=GREEN&subject=Biology", nil)

	h.Search(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CampusGirls, stub.lastFilter.Campus)
	assert.Equal(t, "12th", stub.lastFilter.Grade)
	assert.Equal(t, models.ZoneGreen, stub.lastFilter.Zone)
	assert.Equal(t, "Biology", stub.lastFilter.Subject)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.EqualValues(t, 1, envelope.Meta["count"])
}

func TestZoneHandlerSearchRejectsUnknownZone(t *testing.T) {
	stub := &zoneQueryStub{}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/students?academicYear=2024-2025&zone=purple", nil)

	h.Search(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.lastFilter.AcademicYear)
}

func TestZoneHandlerSearchRequiresAcademicYear(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/students?zone=green", nil)

	h.Search(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZoneHandlerExportCSVAttachment(t *testing.T) {
	stub := &zoneQueryStub{export: &dto.ExportPayload{
		Filename:    "zones_class_2024-2025_g11a.csv",
		ContentType: "text/csv",
		Body:        []byte("Student Name,Overall Zone,Overall %,Matriculation %,Total CTs\n"),
	}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/export?academicYear=2024-2025&level=CLASS&format=csv&classId=g11a", nil)

	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ExportLevel("class"), stub.lastExport.Level)
	assert.Equal(t, "g11a", stub.lastExport.ClassID)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "zones_class_2024-2025_g11a.csv")
	assert.Contains(t, rec.Body.String(), "Student Name,Overall Zone")
}

func TestZoneHandlerExportJSONEnvelope(t *testing.T) {
	stub := &zoneQueryStub{export: &dto.ExportPayload{JSON: map[string]interface{}{"level": "overview"}}}
	h := NewZoneHandler(stub, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/export?academicYear=2024-2025&level=overview", nil)

	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "overview", envelope.Data["level"])
}

func TestZoneHandlerExportRejectsUnknownFormat(t *testing.T) {
	h := NewZoneHandler(&zoneQueryStub{}, nil)
	c, rec := newTestContext(http.MethodGet, "/zones/export?academicYear=2024-2025&level=overview&format=xlsx", nil)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
