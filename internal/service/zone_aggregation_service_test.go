package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

type analyticsReaderStub struct {
	docs []models.StudentAnalytics
}

func (a *analyticsReaderStub) List(_ context.Context, filter models.StudentAnalyticsFilter) ([]models.StudentAnalytics, error) {
	out := make([]models.StudentAnalytics, 0, len(a.docs))
	for _, doc := range a.docs {
		if doc.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Campus != "" && doc.Campus != filter.Campus {
			continue
		}
		if filter.Grade != "" && doc.Grade != filter.Grade {
			continue
		}
		if filter.ClassID != "" && (doc.ClassID == nil || *doc.ClassID != filter.ClassID) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (a *analyticsReaderStub) FindByStudentYear(_ context.Context, studentID, academicYear string) (*models.StudentAnalytics, error) {
	for _, doc := range a.docs {
		if doc.StudentID == studentID && doc.AcademicYear == academicYear {
			found := doc
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (a *analyticsReaderStub) DistinctSubjects(_ context.Context, academicYear string) ([]string, error) {
	seen := map[string]struct{}{}
	for _, doc := range a.docs {
		if doc.AcademicYear != academicYear {
			continue
		}
		for _, subject := range doc.Subjects {
			seen[subject.SubjectName] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type catalogueStub struct {
	classes []models.Class
}

func (c *catalogueStub) ListAll(_ context.Context) ([]models.Class, error) {
	return c.classes, nil
}

type statisticsStoreStub struct {
	mu    sync.Mutex
	docs  map[string]models.ZoneStatistics
	order []string
}

func statisticsKey(statisticType models.StatisticType, year, subject string) string {
	return string(statisticType) + "|" + year + "|" + subject
}

func (s *statisticsStoreStub) Upsert(_ context.Context, stats *models.ZoneStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[string]models.ZoneStatistics)
	}
	key := statisticsKey(stats.StatisticType, stats.AcademicYear, stats.SubjectName)
	if existing, ok := s.docs[key]; ok {
		stats.ID = existing.ID
	} else {
		stats.ID = "stats-" + key
	}
	s.docs[key] = *stats
	s.order = append(s.order, key)
	return nil
}

func (s *statisticsStoreStub) Find(_ context.Context, statisticType models.StatisticType, academicYear, subjectName string) (*models.ZoneStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.docs[statisticsKey(statisticType, academicYear, subjectName)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &stats, nil
}

func analyticsDoc(studentID, name string, campus models.Campus, grade, classID string, overall models.Zone, subjects ...models.SubjectAnalytics) models.StudentAnalytics {
	doc := models.StudentAnalytics{
		ID:           "doc-" + studentID,
		StudentID:    studentID,
		StudentName:  name,
		AcademicYear: "2024-2025",
		Campus:       campus,
		Grade:        grade,
		Overall:      models.OverallAnalytics{OverallZone: overall, CurrentOverallPercentage: 70, TotalCTsIncluded: 3},
		Subjects:     subjects,
	}
	if classID != "" {
		doc.ClassID = strPtr(classID)
	}
	return doc
}

func subjectEntry(name string, pct float64) models.SubjectAnalytics {
	return models.SubjectAnalytics{SubjectName: name, CurrentPercentage: pct, Zone: models.ClassifyZone(pct), TotalCTsIncluded: 1}
}

func sampleCatalogue() []models.Class {
	return []models.Class{
		{ID: "g11b", Name: "11-B", Campus: models.CampusGirls, Grade: models.Grade11},
		{ID: "g11a", Name: "11-A", Campus: models.CampusGirls, Grade: models.Grade11},
		{ID: "b12a", Name: "12-A", Campus: models.CampusBoys, Grade: models.Grade12},
		{ID: "b11a", Name: "11-A", Campus: models.CampusBoys, Grade: models.Grade11},
	}
}

func sampleDocs() []models.StudentAnalytics {
	return []models.StudentAnalytics{
		analyticsDoc("s1", "Ayesha", models.CampusGirls, models.Grade11, "g11a", models.ZoneGreen, subjectEntry("Biology", 80)),
		analyticsDoc("s2", "Bushra", models.CampusGirls, models.Grade11, "g11a", models.ZoneBlue, subjectEntry("Biology", 72), subjectEntry("Physics", 50)),
		analyticsDoc("s3", "Dua", models.CampusGirls, models.Grade11, "g11b", models.ZoneRed),
		analyticsDoc("s4", "Bilal", models.CampusBoys, models.Grade12, "b12a", models.ZoneYellow, subjectEntry("Physics", 68)),
		analyticsDoc("s5", "Hamza", models.CampusBoys, models.Grade12, "gone", models.ZoneGreen),
		analyticsDoc("s6", "NoCampus", "", models.Grade11, "g11a", models.ZoneGreen),
		analyticsDoc("s7", "NoGrade", models.CampusBoys, "", "b11a", models.ZoneGreen),
	}
}

func assertTreeSums(t *testing.T, tree models.CampusStatsList, college models.ZoneDistribution) {
	t.Helper()
	var campusTotal int
	for _, campus := range tree {
		var gradeTotal int
		for _, grade := range campus.GradeStats {
			var classTotal int
			for _, class := range grade.ClassStats {
				assert.Equal(t, class.ZoneDistribution.Green+class.ZoneDistribution.Blue+class.ZoneDistribution.Yellow+class.ZoneDistribution.Red, class.ZoneDistribution.Total)
				classTotal += class.ZoneDistribution.Total
			}
			assert.Equal(t, grade.GradeZoneDistribution.Total, classTotal, "grade %s %s", campus.Campus, grade.Grade)
			gradeTotal += grade.GradeZoneDistribution.Total
		}
		assert.Equal(t, campus.CampusZoneDistribution.Total, gradeTotal, "campus %s", campus.Campus)
		campusTotal += campus.CampusZoneDistribution.Total
	}
	assert.Equal(t, college.Total, campusTotal)
}

func TestBuildZoneTreeCountsEachStudentOnceAtEveryLevel(t *testing.T) {
	tree, college, processed := BuildZoneTree(sampleCatalogue(), sampleDocs(), overallZone)

	assert.Equal(t, 5, processed)
	assert.Equal(t, models.ZoneDistribution{Green: 2, Blue: 1, Yellow: 1, Red: 1, Total: 5}, college)
	assertTreeSums(t, tree, college)

	require.Len(t, tree, 2)
	assert.Equal(t, models.CampusBoys, tree[0].Campus)
	assert.Equal(t, models.CampusGirls, tree[1].Campus)

	girls11, ok := tree[1].Grade(models.Grade11)
	require.True(t, ok)
	require.Len(t, girls11.ClassStats, 2)
	assert.Equal(t, "11-A", girls11.ClassStats[0].ClassName)
	assert.Equal(t, models.ZoneDistribution{Green: 1, Blue: 1, Total: 2}, girls11.ClassStats[0].ZoneDistribution)
	assert.Equal(t, models.ZoneDistribution{Red: 1, Total: 1}, girls11.ClassStats[1].ZoneDistribution)

	boys12, ok := tree[0].Grade(models.Grade12)
	require.True(t, ok)
	require.Len(t, boys12.ClassStats, 2)
	assert.Equal(t, UnassignedClassName, boys12.ClassStats[1].ClassName)
	assert.Equal(t, 1, boys12.ClassStats[1].ZoneDistribution.Green)
}

func TestBuildZoneTreeKeepsEmptyClasses(t *testing.T) {
	tree, college, processed := BuildZoneTree(sampleCatalogue(), nil, overallZone)

	assert.Equal(t, 0, processed)
	assert.Equal(t, 0, college.Total)
	boys11, ok := tree[0].Grade(models.Grade11)
	require.True(t, ok)
	require.Len(t, boys11.ClassStats, 1)
	assert.Equal(t, "b11a", boys11.ClassStats[0].ClassID)
	girls12, ok := tree[1].Grade(models.Grade12)
	require.True(t, ok)
	assert.Empty(t, girls12.ClassStats)
}

func TestBuildZoneTreeBySubjectZone(t *testing.T) {
	tree, college, processed := BuildZoneTree(sampleCatalogue(), sampleDocs(), subjectZone("Physics"))

	assert.Equal(t, 2, processed)
	assert.Equal(t, models.ZoneDistribution{Yellow: 1, Red: 1, Total: 2}, college)
	assertTreeSums(t, tree, college)
}

func newAggregationFixture(docs []models.StudentAnalytics) (*ZoneAggregationService, *statisticsStoreStub, *memoryCacheRepo) {
	store := &statisticsStoreStub{}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewZoneAggregationService(&analyticsReaderStub{docs: docs}, &catalogueStub{classes: sampleCatalogue()}, store, cache, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	svc.newGeneration = func() string { return "gen-1" }
	return svc, store, cacheRepo
}

func TestGenerateOverallStatisticsIsIdempotent(t *testing.T) {
	svc, store, _ := newAggregationFixture(sampleDocs())

	first, err := svc.GenerateOverallStatistics(context.Background(), "2024-2025")
	require.NoError(t, err)
	second, err := svc.GenerateOverallStatistics(context.Background(), "2024-2025")
	require.NoError(t, err)

	first.CalculationDurationMs, second.CalculationDurationMs = 0, 0
	assert.Equal(t, first, second)
	assert.Len(t, store.docs, 1)
	assert.Equal(t, 5, second.StudentsProcessed)
}

func TestGenerateStatisticsRequiresYear(t *testing.T) {
	svc, _, _ := newAggregationFixture(nil)

	_, err := svc.GenerateOverallStatistics(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.GenerateSubjectStatistics(context.Background(), "", "2024-2025")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGetAllSubjects(t *testing.T) {
	svc, _, _ := newAggregationFixture(sampleDocs())
	subjects, err := svc.GetAllSubjects(context.Background(), "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"Biology", "Physics"}, subjects)

	empty, _, _ := newAggregationFixture(nil)
	subjects, err = empty.GetAllSubjects(context.Background(), "2024-2025")
	require.NoError(t, err)
	assert.NotNil(t, subjects)
	assert.Empty(t, subjects)
}

func TestRefreshAllStatistics(t *testing.T) {
	svc, store, cacheRepo := newAggregationFixture(sampleDocs())
	cacheRepo.items["zones:2024-2025:overview"] = []byte(`{}`)
	cacheRepo.items["zones:2023-2024:overview"] = []byte(`{}`)

	summary, err := svc.RefreshAllStatistics(context.Background(), "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", summary.Generation)
	assert.Equal(t, 5, summary.StudentsProcessed)
	assert.Equal(t, []string{"Biology", "Physics"}, summary.Subjects)

	assert.Equal(t, []string{
		statisticsKey(models.StatisticOverall, "2024-2025", ""),
		statisticsKey(models.StatisticSubject, "2024-2025", "Biology"),
		statisticsKey(models.StatisticSubject, "2024-2025", "Physics"),
	}, store.order)
	for _, doc := range store.docs {
		assert.Equal(t, "gen-1", doc.Generation)
	}
	biology := store.docs[statisticsKey(models.StatisticSubject, "2024-2025", "Biology")]
	assert.Equal(t, models.ZoneDistribution{Green: 1, Blue: 1, Total: 2}, biology.CollegeWide)

	assert.NotContains(t, cacheRepo.items, "zones:2024-2025:overview")
	assert.Contains(t, cacheRepo.items, "zones:2023-2024:overview")

	again, err := svc.RefreshAllStatistics(context.Background(), "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, summary.Subjects, again.Subjects)
	assert.Len(t, store.docs, 3)
}
