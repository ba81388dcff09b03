package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

// UnassignedClassName labels the leaf collecting students whose class is not
// part of the class catalogue for their campus and grade.
const UnassignedClassName = "Unassigned"

type aggregationAnalyticsReader interface {
	List(ctx context.Context, filter models.StudentAnalyticsFilter) ([]models.StudentAnalytics, error)
	DistinctSubjects(ctx context.Context, academicYear string) ([]string, error)
}

type aggregationClassReader interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type zoneStatisticsWriter interface {
	Upsert(ctx context.Context, stats *models.ZoneStatistics) error
}

// ZoneAggregationService folds student analytics into zone statistics trees.
type ZoneAggregationService struct {
	analytics     aggregationAnalyticsReader
	classes       aggregationClassReader
	statistics    zoneStatisticsWriter
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	now           func() time.Time
	newGeneration func() string
}

// NewZoneAggregationService constructs the aggregation engine.
func NewZoneAggregationService(
	analytics aggregationAnalyticsReader,
	classes aggregationClassReader,
	statistics zoneStatisticsWriter,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *ZoneAggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoneAggregationService{
		analytics:     analytics,
		classes:       classes,
		statistics:    statistics,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newGeneration: uuid.NewString,
	}
}

// zoneSelector picks the zone a document is counted under, or false to skip it.
type zoneSelector func(doc *models.StudentAnalytics) (models.Zone, bool)

func overallZone(doc *models.StudentAnalytics) (models.Zone, bool) {
	return doc.Overall.OverallZone, doc.Overall.OverallZone != ""
}

func subjectZone(subject string) zoneSelector {
	return func(doc *models.StudentAnalytics) (models.Zone, bool) {
		entry, ok := doc.Subject(subject)
		if !ok || entry.Zone == "" {
			return "", false
		}
		return entry.Zone, true
	}
}

// BuildZoneTree builds the Boys/Girls x 11th/12th skeleton from the class
// catalogue and counts each placeable document once at class, grade, campus
// and college level. Documents without campus or grade, or outside the fixed
// campus and grade sets, are skipped. It returns the number of documents counted.
func BuildZoneTree(classes []models.Class, docs []models.StudentAnalytics, selectZone zoneSelector) (models.CampusStatsList, models.ZoneDistribution, int) {
	sorted := make([]models.Class, len(classes))
	copy(sorted, classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	tree := make(models.CampusStatsList, 0, len(models.Campuses))
	for _, campus := range models.Campuses {
		campusStats := models.CampusStats{Campus: campus, GradeStats: make([]models.GradeStats, 0, len(models.Grades))}
		for _, grade := range models.Grades {
			gradeStats := models.GradeStats{Grade: grade, ClassStats: make([]models.ClassStats, 0)}
			for _, class := range sorted {
				if class.Campus == campus && class.Grade == grade {
					gradeStats.ClassStats = append(gradeStats.ClassStats, models.ClassStats{ClassID: class.ID, ClassName: class.Name})
				}
			}
			campusStats.GradeStats = append(campusStats.GradeStats, gradeStats)
		}
		tree = append(tree, campusStats)
	}

	var college models.ZoneDistribution
	processed := 0
	for i := range docs {
		doc := &docs[i]
		zone, ok := selectZone(doc)
		if !ok || doc.Campus == "" || doc.Grade == "" {
			continue
		}
		campusStats, ok := tree.Campus(doc.Campus)
		if !ok {
			continue
		}
		gradeStats, ok := campusStats.Grade(doc.Grade)
		if !ok {
			continue
		}

		classID := ""
		if doc.ClassID != nil {
			classID = *doc.ClassID
		}
		classStats, ok := gradeStats.Class(classID)
		if !ok {
			classStats, ok = gradeStats.Class("")
			if !ok {
				gradeStats.ClassStats = append(gradeStats.ClassStats, models.ClassStats{ClassName: UnassignedClassName})
				classStats = &gradeStats.ClassStats[len(gradeStats.ClassStats)-1]
			}
		}

		classStats.ZoneDistribution.Add(zone)
		gradeStats.GradeZoneDistribution.Add(zone)
		campusStats.CampusZoneDistribution.Add(zone)
		college.Add(zone)
		processed++
	}
	return tree, college, processed
}

// GenerateOverallStatistics regenerates the overall statistics document of a year.
func (s *ZoneAggregationService) GenerateOverallStatistics(ctx context.Context, academicYear string) (*models.ZoneStatistics, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	stats, err := s.generate(ctx, academicYear, models.StatisticOverall, "", s.newGeneration())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, academicYear)
	return stats, nil
}

// GenerateSubjectStatistics regenerates the statistics document of one subject,
// classifying each student by that subject's own zone.
func (s *ZoneAggregationService) GenerateSubjectStatistics(ctx context.Context, subjectName, academicYear string) (*models.ZoneStatistics, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if subjectName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject name is required")
	}
	stats, err := s.generate(ctx, academicYear, models.StatisticSubject, subjectName, s.newGeneration())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, academicYear)
	return stats, nil
}

func (s *ZoneAggregationService) generate(ctx context.Context, academicYear string, statisticType models.StatisticType, subjectName, generation string) (*models.ZoneStatistics, error) {
	start := time.Now()

	docs, err := s.analytics.List(ctx, models.StudentAnalyticsFilter{AcademicYear: academicYear})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student analytics")
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load classes")
	}
	s.metrics.ObserveDBQuery("aggregation_sources", time.Since(start))

	selectZone := overallZone
	if statisticType == models.StatisticSubject {
		selectZone = subjectZone(subjectName)
	}
	tree, college, processed := BuildZoneTree(classes, docs, selectZone)

	elapsed := time.Since(start)
	stats := &models.ZoneStatistics{
		StatisticType:         statisticType,
		AcademicYear:          academicYear,
		SubjectName:           subjectName,
		CampusStats:           tree,
		CollegeWide:           college,
		StudentsProcessed:     processed,
		CalculationDurationMs: elapsed.Milliseconds(),
		Generation:            generation,
		LastUpdated:           s.now(),
	}
	if err := s.statistics.Upsert(ctx, stats); err != nil {
		return nil, appErrors.Internal(err, "failed to save zone statistics")
	}
	s.metrics.ObserveAggregation(statisticType, elapsed)

	s.logger.Info("zone statistics generated",
		zap.String("academic_year", academicYear),
		zap.String("statistic_type", string(statisticType)),
		zap.String("subject", subjectName),
		zap.Int("students_processed", processed),
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", elapsed),
	)
	return stats, nil
}

// GetAllSubjects lists subjects that appear in at least one analytics document of the year.
func (s *ZoneAggregationService) GetAllSubjects(ctx context.Context, academicYear string) ([]string, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
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

// RefreshAllStatistics regenerates the overall document and then every subject
// document of the year, sequentially. All documents of one run share a generation.
func (s *ZoneAggregationService) RefreshAllStatistics(ctx context.Context, academicYear string) (*models.RefreshSummary, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	start := time.Now()
	generation := s.newGeneration()

	overall, err := s.generate(ctx, academicYear, models.StatisticOverall, "", generation)
	if err != nil {
		return nil, err
	}
	subjects, err := s.GetAllSubjects(ctx, academicYear)
	if err != nil {
		return nil, err
	}
	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.generate(ctx, academicYear, models.StatisticSubject, subject, generation); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx, academicYear)

	return &models.RefreshSummary{
		AcademicYear:      academicYear,
		Generation:        generation,
		StudentsProcessed: overall.StudentsProcessed,
		Subjects:          subjects,
		DurationMs:        time.Since(start).Milliseconds(),
	}, nil
}

func (s *ZoneAggregationService) invalidate(ctx context.Context, academicYear string) {
	if err := s.cache.InvalidateYear(ctx, academicYear); err != nil {
		s.logger.Warn("failed to invalidate zone cache", zap.String("academic_year", academicYear), zap.Error(err))
	}
}
