package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/export"
)

// ClassExportHeaders is the column order of class roster CSV exports.
var ClassExportHeaders = []string{"Student Name", "Overall Zone", "Overall %", "Matriculation %", "Total CTs"}

// StudentExportHeaders is the column order of student search CSV exports.
var StudentExportHeaders = []string{"Student Name", "Campus", "Grade", "Class", "Overall Zone", "Overall %", "Matriculation %", "Total CTs"}

// StatisticsExportHeaders is the column order of zone count CSV exports.
var StatisticsExportHeaders = []string{"Level", "Campus", "Grade", "Class", "Green", "Blue", "Yellow", "Red", "Total"}

type queryStatisticsReader interface {
	Find(ctx context.Context, statisticType models.StatisticType, academicYear, subjectName string) (*models.ZoneStatistics, error)
}

type queryAnalyticsReader interface {
	List(ctx context.Context, filter models.StudentAnalyticsFilter) ([]models.StudentAnalytics, error)
	FindByStudentYear(ctx context.Context, studentID, academicYear string) (*models.StudentAnalytics, error)
	DistinctSubjects(ctx context.Context, academicYear string) ([]string, error)
}

type queryStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledDatasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ZoneQueryService answers read-side zone queries from stored statistics and
// analytics documents. It never aggregates on demand.
type ZoneQueryService struct {
	statistics queryStatisticsReader
	analytics  queryAnalyticsReader
	students   queryStudentReader
	cache      *CacheService
	metrics    *MetricsService
	csv        datasetRenderer
	pdf        titledDatasetRenderer
	logger     *zap.Logger
}

// NewZoneQueryService constructs the query facade.
func NewZoneQueryService(
	statistics queryStatisticsReader,
	analytics queryAnalyticsReader,
	students queryStudentReader,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *ZoneQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoneQueryService{
		statistics: statistics,
		analytics:  analytics,
		students:   students,
		cache:      cache,
		metrics:    metrics,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

func requireYear(academicYear string) error {
	if strings.TrimSpace(academicYear) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	return nil
}

// cached serves key from cache or computes and stores it.
func cached[T any](ctx context.Context, s *ZoneQueryService, key string, load func() (*T, error)) (*T, bool, error) {
	var hit T
	if ok, err := s.cache.Get(ctx, key, &hit); err == nil && ok {
		return &hit, true, nil
	}
	value, err := load()
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		s.logger.Warn("cache zone query", zap.String("key", key), zap.Error(err))
	}
	return value, false, nil
}

func (s *ZoneQueryService) loadStatistics(ctx context.Context, statisticType models.StatisticType, academicYear, subject string) (*models.ZoneStatistics, error) {
	start := time.Now()
	stats, err := s.statistics.Find(ctx, statisticType, academicYear, subject)
	s.metrics.ObserveDBQuery("zone_statistics", time.Since(start))
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load zone statistics")
	}
	if statisticType == models.StatisticSubject {
		if _, overallErr := s.loadStatistics(ctx, models.StatisticOverall, academicYear, ""); overallErr != nil {
			return nil, overallErr
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no statistics for subject %q in %s", subject, academicYear))
	}
	return nil, appErrors.Clone(appErrors.ErrStatisticsNotReady, fmt.Sprintf("zone statistics for %s have not been generated; trigger a recompute", academicYear))
}

func statisticsMeta(stats *models.ZoneStatistics) dto.StatisticsMeta {
	return dto.StatisticsMeta{
		AcademicYear:      stats.AcademicYear,
		Generation:        stats.Generation,
		StudentsProcessed: stats.StudentsProcessed,
		LastUpdated:       stats.LastUpdated,
	}
}

// Overview returns college-wide counts with a per-campus breakdown.
func (s *ZoneQueryService) Overview(ctx context.Context, academicYear string) (*dto.OverviewResponse, bool, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, false, err
	}
	return cached(ctx, s, makeZoneCacheKey(academicYear, "overview"), func() (*dto.OverviewResponse, error) {
		stats, err := s.loadStatistics(ctx, models.StatisticOverall, academicYear, "")
		if err != nil {
			return nil, err
		}
		resp := &dto.OverviewResponse{
			Meta:        statisticsMeta(stats),
			CollegeWide: stats.CollegeWide,
			Campuses:    make([]dto.ZoneBreakdown, 0, len(stats.CampusStats)),
		}
		for _, campus := range stats.CampusStats {
			resp.Campuses = append(resp.Campuses, dto.ZoneBreakdown{Name: string(campus.Campus), Distribution: campus.CampusZoneDistribution})
		}
		return resp, nil
	})
}

// Campus returns one campus with a per-grade breakdown.
func (s *ZoneQueryService) Campus(ctx context.Context, academicYear string, campus models.Campus) (*dto.CampusDetailResponse, bool, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, false, err
	}
	return cached(ctx, s, makeZoneCacheKey(academicYear, "campus", string(campus)), func() (*dto.CampusDetailResponse, error) {
		stats, err := s.loadStatistics(ctx, models.StatisticOverall, academicYear, "")
		if err != nil {
			return nil, err
		}
		campusStats, ok := stats.CampusStats.Campus(campus)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
		}
		resp := &dto.CampusDetailResponse{
			Meta:         statisticsMeta(stats),
			Campus:       campus,
			Distribution: campusStats.CampusZoneDistribution,
			Grades:       make([]dto.ZoneBreakdown, 0, len(campusStats.GradeStats)),
		}
		for _, grade := range campusStats.GradeStats {
			resp.Grades = append(resp.Grades, dto.ZoneBreakdown{Name: grade.Grade, Distribution: grade.GradeZoneDistribution})
		}
		return resp, nil
	})
}

// Grade returns one grade of a campus with a per-class breakdown.
func (s *ZoneQueryService) Grade(ctx context.Context, academicYear string, campus models.Campus, grade string) (*dto.GradeDetailResponse, bool, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, false, err
	}
	return cached(ctx, s, makeZoneCacheKey(academicYear, "grade", string(campus), grade), func() (*dto.GradeDetailResponse, error) {
		stats, err := s.loadStatistics(ctx, models.StatisticOverall, academicYear, "")
		if err != nil {
			return nil, err
		}
		campusStats, ok := stats.CampusStats.Campus(campus)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
		}
		gradeStats, ok := campusStats.Grade(grade)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		resp := &dto.GradeDetailResponse{
			Meta:         statisticsMeta(stats),
			Campus:       campus,
			Grade:        grade,
			Distribution: gradeStats.GradeZoneDistribution,
			Classes:      make([]dto.ZoneBreakdown, 0, len(gradeStats.ClassStats)),
		}
		for _, class := range gradeStats.ClassStats {
			resp.Classes = append(resp.Classes, dto.ZoneBreakdown{ID: class.ClassID, Name: class.ClassName, Distribution: class.ZoneDistribution})
		}
		return resp, nil
	})
}

// Class returns class counts and the class roster sorted by student name.
func (s *ZoneQueryService) Class(ctx context.Context, academicYear, classID string) (*dto.ClassDetailResponse, bool, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, false, err
	}
	return cached(ctx, s, makeZoneCacheKey(academicYear, "class", classID), func() (*dto.ClassDetailResponse, error) {
		stats, err := s.loadStatistics(ctx, models.StatisticOverall, academicYear, "")
		if err != nil {
			return nil, err
		}
		campus, grade, classStats, ok := stats.FindClass(classID)
		if !ok || classID == "" {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		docs, err := s.listAnalytics(ctx, models.StudentAnalyticsFilter{AcademicYear: academicYear, ClassID: classID})
		if err != nil {
			return nil, err
		}
		students := make([]dto.StudentZoneSummary, 0, len(docs))
		for i := range docs {
			students = append(students, summarize(&docs[i], true))
		}
		sortByName(students)
		return &dto.ClassDetailResponse{
			Meta:         statisticsMeta(stats),
			ClassID:      classStats.ClassID,
			ClassName:    classStats.ClassName,
			Campus:       campus,
			Grade:        grade,
			Distribution: classStats.ZoneDistribution,
			Students:     students,
		}, nil
	})
}

// Subjects lists the subjects with stored analytics in the year.
func (s *ZoneQueryService) Subjects(ctx context.Context, academicYear string) ([]string, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, err
	}
	if _, err := s.loadStatistics(ctx, models.StatisticOverall, academicYear, ""); err != nil {
		return nil, err
	}
	subjects, err := s.analytics.DistinctSubjects(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []string{}
	}
	return subjects, nil
}

// Subject returns the zone tree of one subject.
func (s *ZoneQueryService) Subject(ctx context.Context, academicYear, subject string) (*dto.SubjectDetailResponse, bool, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, false, err
	}
	return cached(ctx, s, makeZoneCacheKey(academicYear, "subject", subject), func() (*dto.SubjectDetailResponse, error) {
		stats, err := s.loadStatistics(ctx, models.StatisticSubject, academicYear, subject)
		if err != nil {
			return nil, err
		}
		resp := &dto.SubjectDetailResponse{
			Meta:        statisticsMeta(stats),
			SubjectName: subject,
			CollegeWide: stats.CollegeWide,
			Campuses:    make([]dto.CampusTree, 0, len(stats.CampusStats)),
		}
		for _, campus := range stats.CampusStats {
			tree := dto.CampusTree{Campus: campus.Campus, Distribution: campus.CampusZoneDistribution, Grades: make([]dto.ZoneBreakdown, 0, len(campus.GradeStats))}
			for _, grade := range campus.GradeStats {
				tree.Grades = append(tree.Grades, dto.ZoneBreakdown{Name: grade.Grade, Distribution: grade.GradeZoneDistribution})
			}
			resp.Campuses = append(resp.Campuses, tree)
		}
		return resp, nil
	})
}

// Student returns the stored analytics of a student with subject-level
// matriculation comparisons resolved from the student record.
func (s *ZoneQueryService) Student(ctx context.Context, academicYear, studentID string) (*dto.StudentDetailResponse, error) {
	if err := requireYear(academicYear); err != nil {
		return nil, err
	}
	doc, err := s.analytics.FindByStudentYear(ctx, studentID, academicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "analytics have not been calculated for this student")
		}
		return nil, appErrors.Internal(err, "failed to load student analytics")
	}

	resp := &dto.StudentDetailResponse{Analytics: *doc, Comparisons: make([]dto.SubjectComparison, 0, len(doc.Subjects))}
	matric := map[string]float64{}
	student, err := s.students.FindByID(ctx, studentID)
	switch {
	case err == nil:
		if baseline, ok := student.MatriculationBaseline(); ok {
			resp.BaselineSource = baseline.Source
			for _, subject := range baseline.Subjects {
				matric[strings.ToLower(strings.TrimSpace(subject.Name))] = models.WeightedPercentage(subject.Obtained, subject.Total)
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		s.logger.Warn("analytics document without student record", zap.String("student_id", studentID))
	default:
		return nil, appErrors.Internal(err, "failed to load student")
	}

	for _, subject := range doc.Subjects {
		comparison := dto.SubjectComparison{
			SubjectName:       subject.SubjectName,
			CurrentPercentage: subject.CurrentPercentage,
			Zone:              subject.Zone,
		}
		if pct, ok := matric[strings.ToLower(strings.TrimSpace(subject.SubjectName))]; ok {
			baseline := pct
			change := models.RoundPercentage(subject.CurrentPercentage - pct)
			comparison.MatriculationPercentage = &baseline
			comparison.Change = &change
		}
		resp.Comparisons = append(resp.Comparisons, comparison)
	}
	return resp, nil
}

// SearchStudents filters analytics documents by placement and zone. When a
// subject is given, the zone filter applies to that subject's zone and
// students without the subject are excluded.
func (s *ZoneQueryService) SearchStudents(ctx context.Context, filter dto.StudentSearchFilter) ([]dto.StudentZoneSummary, error) {
	if err := requireYear(filter.AcademicYear); err != nil {
		return nil, err
	}
	if _, err := s.loadStatistics(ctx, models.StatisticOverall, filter.AcademicYear, ""); err != nil {
		return nil, err
	}
	docs, err := s.listAnalytics(ctx, models.StudentAnalyticsFilter{
		AcademicYear: filter.AcademicYear,
		Campus:       filter.Campus,
		Grade:        filter.Grade,
		ClassID:      filter.ClassID,
	})
	if err != nil {
		return nil, err
	}

	results := make([]dto.StudentZoneSummary, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		zone := doc.Overall.OverallZone
		summary := summarize(doc, false)
		if filter.Subject != "" {
			subject, ok := doc.Subject(filter.Subject)
			if !ok {
				continue
			}
			zone = subject.Zone
			matched := subjectSummary(subject)
			summary.MatchedSubject = &matched
		}
		if filter.Zone != "" && zone != filter.Zone {
			continue
		}
		results = append(results, summary)
	}
	sortByName(results)
	return results, nil
}

func (s *ZoneQueryService) listAnalytics(ctx context.Context, filter models.StudentAnalyticsFilter) ([]models.StudentAnalytics, error) {
	start := time.Now()
	docs, err := s.analytics.List(ctx, filter)
	s.metrics.ObserveDBQuery("student_analytics_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student analytics")
	}
	return docs, nil
}

func summarize(doc *models.StudentAnalytics, withSubjects bool) dto.StudentZoneSummary {
	summary := dto.StudentZoneSummary{
		StudentID:               doc.StudentID,
		StudentName:             doc.StudentName,
		Campus:                  doc.Campus,
		Grade:                   doc.Grade,
		OverallZone:             doc.Overall.OverallZone,
		OverallPercentage:       doc.Overall.CurrentOverallPercentage,
		MatriculationPercentage: doc.Overall.MatriculationPercentage,
		TotalCTs:                doc.Overall.TotalCTsIncluded,
	}
	if doc.ClassID != nil {
		summary.ClassID = *doc.ClassID
	}
	if withSubjects {
		summary.Subjects = make([]dto.SubjectZoneSummary, 0, len(doc.Subjects))
		for _, subject := range doc.Subjects {
			summary.Subjects = append(summary.Subjects, subjectSummary(subject))
		}
	}
	return summary
}

func subjectSummary(subject models.SubjectAnalytics) dto.SubjectZoneSummary {
	return dto.SubjectZoneSummary{
		SubjectName: subject.SubjectName,
		Percentage:  subject.CurrentPercentage,
		Zone:        subject.Zone,
		TotalCTs:    subject.TotalCTsIncluded,
	}
}

func sortByName(students []dto.StudentZoneSummary) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := strings.ToLower(students[i].StudentName), strings.ToLower(students[j].StudentName)
		if a != b {
			return a < b
		}
		return students[i].StudentID < students[j].StudentID
	})
}

// Export renders the requested level as JSON, CSV or PDF.
func (s *ZoneQueryService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportPayload, error) {
	if err := requireYear(req.AcademicYear); err != nil {
		return nil, err
	}
	if req.Format == "" {
		req.Format = dto.ExportJSON
	}

	var (
		body    interface{}
		dataset export.Dataset
		title   string
		err     error
	)
	switch req.Level {
	case dto.ExportOverview:
		var stats *models.ZoneStatistics
		stats, err = s.loadStatistics(ctx, models.StatisticOverall, req.AcademicYear, "")
		if err == nil {
			body, dataset, title = stats, statisticsDataset(stats.CampusStats, stats.CollegeWide, "", ""), "Zone Overview "+req.AcademicYear
		}
	case dto.ExportCampus, dto.ExportGrade:
		if req.Campus == "" || (req.Level == dto.ExportGrade && req.Grade == "") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "campus and grade are required for this export level")
		}
		var stats *models.ZoneStatistics
		stats, err = s.loadStatistics(ctx, models.StatisticOverall, req.AcademicYear, "")
		if err == nil {
			campus, ok := stats.CampusStats.Campus(req.Campus)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
			}
			if req.Level == dto.ExportGrade {
				if _, ok := campus.Grade(req.Grade); !ok {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
				}
			}
			subtree := models.CampusStatsList{*campus}
			body, dataset = subtree, statisticsDataset(subtree, models.ZoneDistribution{}, req.Campus, req.Grade)
			title = fmt.Sprintf("Zone Statistics %s %s %s", req.Campus, req.Grade, req.AcademicYear)
		}
	case dto.ExportSubject:
		if req.Subject == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject is required for this export level")
		}
		var stats *models.ZoneStatistics
		stats, err = s.loadStatistics(ctx, models.StatisticSubject, req.AcademicYear, req.Subject)
		if err == nil {
			body, dataset = stats, statisticsDataset(stats.CampusStats, stats.CollegeWide, "", "")
			title = fmt.Sprintf("%s Zones %s", req.Subject, req.AcademicYear)
		}
	case dto.ExportClass:
		if req.ClassID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required for this export level")
		}
		var detail *dto.ClassDetailResponse
		detail, _, err = s.Class(ctx, req.AcademicYear, req.ClassID)
		if err == nil {
			body, dataset = detail, classDataset(detail.Students)
			title = fmt.Sprintf("%s Zones %s", detail.ClassName, req.AcademicYear)
		}
	case dto.ExportStudents:
		var students []dto.StudentZoneSummary
		students, err = s.SearchStudents(ctx, dto.StudentSearchFilter{
			AcademicYear: req.AcademicYear,
			Campus:       req.Campus,
			Grade:        req.Grade,
			ClassID:      req.ClassID,
			Zone:         req.Zone,
			Subject:      req.Subject,
		})
		if err == nil {
			body, dataset, title = students, studentsDataset(students), "Student Zones "+req.AcademicYear
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export level")
	}
	if err != nil {
		return nil, err
	}

	filename := exportFilename(req)
	switch req.Format {
	case dto.ExportJSON:
		payload, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode export")
		}
		return &dto.ExportPayload{Filename: filename + ".json", ContentType: "application/json", Body: payload, JSON: body}, nil
	case dto.ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv export")
		}
		return &dto.ExportPayload{Filename: filename + ".csv", ContentType: "text/csv", Body: payload}, nil
	case dto.ExportPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render pdf export")
		}
		return &dto.ExportPayload{Filename: filename + ".pdf", ContentType: "application/pdf", Body: payload}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

func exportFilename(req dto.ExportRequest) string {
	parts := []string{"zones", string(req.Level), req.AcademicYear}
	for _, extra := range []string{string(req.Campus), req.Grade, req.ClassID, req.Subject} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	name := strings.Join(parts, "_")
	return strings.NewReplacer(" ", "-", "/", "-", "\"", "").Replace(name)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptionalPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return formatPercent(*v)
}

func distributionRow(level string, campus models.Campus, grade, class string, d models.ZoneDistribution) map[string]string {
	return map[string]string{
		"Level":  level,
		"Campus": string(campus),
		"Grade":  grade,
		"Class":  class,
		"Green":  strconv.Itoa(d.Green),
		"Blue":   strconv.Itoa(d.Blue),
		"Yellow": strconv.Itoa(d.Yellow),
		"Red":    strconv.Itoa(d.Red),
		"Total":  strconv.Itoa(d.Total),
	}
}

// statisticsDataset flattens a zone tree into one row per node. A non-empty
// campus or grade narrows the rows to that subtree; the college row is only
// emitted for unscoped exports.
func statisticsDataset(tree models.CampusStatsList, college models.ZoneDistribution, campusFilter models.Campus, gradeFilter string) export.Dataset {
	rows := make([]map[string]string, 0)
	if campusFilter == "" {
		rows = append(rows, distributionRow("College", "", "", "", college))
	}
	for _, campus := range tree {
		if campusFilter != "" && campus.Campus != campusFilter {
			continue
		}
		if gradeFilter == "" {
			rows = append(rows, distributionRow("Campus", campus.Campus, "", "", campus.CampusZoneDistribution))
		}
		for _, grade := range campus.GradeStats {
			if gradeFilter != "" && grade.Grade != gradeFilter {
				continue
			}
			rows = append(rows, distributionRow("Grade", campus.Campus, grade.Grade, "", grade.GradeZoneDistribution))
			for _, class := range grade.ClassStats {
				rows = append(rows, distributionRow("Class", campus.Campus, grade.Grade, class.ClassName, class.ZoneDistribution))
			}
		}
	}
	return export.Dataset{Headers: StatisticsExportHeaders, Rows: rows}
}

func classDataset(students []dto.StudentZoneSummary) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, map[string]string{
			"Student Name":    student.StudentName,
			"Overall Zone":    string(student.OverallZone),
			"Overall %":       formatPercent(student.OverallPercentage),
			"Matriculation %": formatOptionalPercent(student.MatriculationPercentage),
			"Total CTs":       strconv.Itoa(student.TotalCTs),
		})
	}
	return export.Dataset{Headers: ClassExportHeaders, Rows: rows}
}

func studentsDataset(students []dto.StudentZoneSummary) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		zone, pct := student.OverallZone, student.OverallPercentage
		if student.MatchedSubject != nil {
			zone, pct = student.MatchedSubject.Zone, student.MatchedSubject.Percentage
		}
		rows = append(rows, map[string]string{
			"Student Name":    student.StudentName,
			"Campus":          string(student.Campus),
			"Grade":           student.Grade,
			"Class":           student.ClassID,
			"Overall Zone":    string(zone),
			"Overall %":       formatPercent(pct),
			"Matriculation %": formatOptionalPercent(student.MatriculationPercentage),
			"Total CTs":       strconv.Itoa(student.TotalCTs),
		})
	}
	return export.Dataset{Headers: StudentExportHeaders, Rows: rows}
}
