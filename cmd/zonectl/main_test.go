package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

type fakeServices struct {
	admitted      []models.Student
	validated     []string
	calcStudent   string
	calcYear      string
	subject       string
	refreshedYear string
	closed        bool
	err           error
}

func (f *fakeServices) ListAdmitted(context.Context) ([]models.Student, error) {
	return f.admitted, nil
}

func (f *fakeServices) ValidateBatch(_ context.Context, ids []string) (*dto.PrerequisiteBatchReport, error) {
	f.validated = ids
	return &dto.PrerequisiteBatchReport{Total: len(ids), Valid: len(ids)}, nil
}

func (f *fakeServices) AssignAllUnassignedStudents(context.Context) (*dto.BatchAssignmentReport, error) {
	return &dto.BatchAssignmentReport{Total: 2, Assigned: 2}, nil
}

func (f *fakeServices) CalculateForStudent(_ context.Context, studentID, academicYear string, _ models.CalculationTrigger) (*models.StudentAnalytics, error) {
	f.calcStudent = studentID
	f.calcYear = academicYear
	return &models.StudentAnalytics{StudentID: studentID, AcademicYear: academicYear}, nil
}

func (f *fakeServices) CalculateAllStudentAnalytics(_ context.Context, academicYear string) (*dto.CalculationBatchReport, error) {
	f.calcYear = academicYear
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CalculationBatchReport{AcademicYear: academicYear, Total: 5, Successful: 4, Failed: 1}, nil
}

func (f *fakeServices) GenerateOverallStatistics(_ context.Context, academicYear string) (*models.ZoneStatistics, error) {
	return &models.ZoneStatistics{AcademicYear: academicYear, StatisticType: models.StatisticOverall}, nil
}

func (f *fakeServices) GenerateSubjectStatistics(_ context.Context, subjectName, academicYear string) (*models.ZoneStatistics, error) {
	f.subject = subjectName
	return &models.ZoneStatistics{AcademicYear: academicYear, StatisticType: models.StatisticSubject}, nil
}

func (f *fakeServices) RefreshAllStatistics(_ context.Context, academicYear string) (*models.RefreshSummary, error) {
	f.refreshedYear = academicYear
	return &models.RefreshSummary{AcademicYear: academicYear, Generation: "gen-1"}, nil
}

func (f *fakeServices) Run(context.Context, string) (*models.RecomputeSummary, error) {
	return &models.RecomputeSummary{}, nil
}

func runCLI(t *testing.T, fake *fakeServices, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (*toolkit, func(), error) {
		return &toolkit{
			students:   fake,
			validator:  fake,
			assigner:   fake,
			calculator: fake,
			statistics: fake,
			pipeline:   fake,
		}, func() { fake.closed = true }, nil
	}
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalculateRequiresYear(t *testing.T) {
	fake := &fakeServices{}

	_, err := runCLI(t, fake, "calculate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "year")
	assert.Empty(t, fake.calcYear)
}

func TestCalculateAllPrintsReport(t *testing.T) {
	fake := &fakeServices{}

	out, err := runCLI(t, fake, "calculate", "--year", "2024-2025")

	require.NoError(t, err)
	assert.True(t, fake.closed)
	var report dto.CalculationBatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Successful)
	assert.Equal(t, 1, report.Failed)
}

func TestCalculateSingleStudent(t *testing.T) {
	fake := &fakeServices{}

	_, err := runCLI(t, fake, "calculate", "--year", "2024-2025", "--student", "s9")

	require.NoError(t, err)
	assert.Equal(t, "s9", fake.calcStudent)
	assert.Equal(t, "2024-2025", fake.calcYear)
}

func TestCalculatePropagatesErrors(t *testing.T) {
	fake := &fakeServices{err: errors.New("database unavailable")}

	_, err := runCLI(t, fake, "calculate", "--year", "2024-2025")

	require.Error(t, err)
	assert.True(t, fake.closed)
}

func TestValidateDefaultsToAdmittedStudents(t *testing.T) {
	fake := &fakeServices{admitted: []models.Student{{ID: "s1"}, {ID: "s2"}}}

	_, err := runCLI(t, fake, "validate")

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, fake.validated)
}

func TestValidateExplicitStudents(t *testing.T) {
	fake := &fakeServices{admitted: []models.Student{{ID: "s1"}, {ID: "s2"}}}

	_, err := runCLI(t, fake, "validate", "s7")

	require.NoError(t, err)
	assert.Equal(t, []string{"s7"}, fake.validated)
}

func TestAggregateSubject(t *testing.T) {
	fake := &fakeServices{}

	_, err := runCLI(t, fake, "aggregate", "--year", "2024-2025", "--subject", "Biology")

	require.NoError(t, err)
	assert.Equal(t, "Biology", fake.subject)
}

func TestRefresh(t *testing.T) {
	fake := &fakeServices{}

	out, err := runCLI(t, fake, "refresh", "--year", "2024-2025")

	require.NoError(t, err)
	assert.Equal(t, "2024-2025", fake.refreshedYear)
	assert.Contains(t, out, "gen-1")
}

func TestAssignClasses(t *testing.T) {
	out, err := runCLI(t, &fakeServices{}, "assign-classes")

	require.NoError(t, err)
	assert.Contains(t, out, `"assigned": 2`)
}
