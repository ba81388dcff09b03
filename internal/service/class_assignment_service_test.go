package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	"github.com/noah-isme/sma-zone-analytics/internal/repository"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

type classRepoStub struct {
	loads     []models.ClassLoad
	criteria  []models.ClassCriteria
	assigned  map[string]string
	assignErr map[string]error
	listErr   error
}

func (c *classRepoStub) ListLoads(_ context.Context, criteria models.ClassCriteria) ([]models.ClassLoad, error) {
	c.criteria = append(c.criteria, criteria)
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]models.ClassLoad, len(c.loads))
	copy(out, c.loads)
	return out, nil
}

func (c *classRepoStub) AssignStudent(_ context.Context, studentID, classID string, capacity int) error {
	if err, ok := c.assignErr[studentID]; ok {
		return err
	}
	for i := range c.loads {
		if c.loads[i].ID != classID {
			continue
		}
		if c.loads[i].Enrolled >= capacity {
			return repository.ErrClassFull
		}
		c.loads[i].Enrolled++
	}
	if c.assigned == nil {
		c.assigned = make(map[string]string)
	}
	c.assigned[studentID] = classID
	return nil
}

func classLoad(id, name string, enrolled int) models.ClassLoad {
	return models.ClassLoad{
		Class:    models.Class{ID: id, Name: name, Campus: models.CampusGirls, Grade: models.Grade11, Program: "Pre-Medical"},
		Enrolled: enrolled,
	}
}

func TestSuggestClassPicksLeastLoaded(t *testing.T) {
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c1", "11-A", 25), classLoad("c2", "11-B", 10)}}
	svc := NewClassAssignmentService(&studentRepoStub{}, classes, 0, nil)
	student := admittedStudent("s1", "Ayesha")

	class, err := svc.SuggestClass(context.Background(), &student)
	require.NoError(t, err)
	require.NotNil(t, class)
	assert.Equal(t, "c2", class.ID)
	require.Len(t, classes.criteria, 1)
	assert.Equal(t, models.ClassCriteria{Campus: models.CampusGirls, Grade: models.Grade11, Program: "Pre-Medical"}, classes.criteria[0])
}

func TestSuggestClassTieBreaksOnLowestID(t *testing.T) {
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c9", "11-C", 12), classLoad("c3", "11-A", 12)}}
	svc := NewClassAssignmentService(&studentRepoStub{}, classes, 0, nil)
	student := admittedStudent("s1", "Ayesha")

	class, err := svc.SuggestClass(context.Background(), &student)
	require.NoError(t, err)
	require.NotNil(t, class)
	assert.Equal(t, "c3", class.ID)
}

func TestSuggestClassSkipsFullClasses(t *testing.T) {
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c1", "11-A", 40), classLoad("c2", "11-B", 39)}}
	svc := NewClassAssignmentService(&studentRepoStub{}, classes, 0, nil)
	student := admittedStudent("s1", "Ayesha")

	class, err := svc.SuggestClass(context.Background(), &student)
	require.NoError(t, err)
	require.NotNil(t, class)
	assert.Equal(t, "c2", class.ID)

	classes.loads[1].Enrolled = 40
	class, err = svc.SuggestClass(context.Background(), &student)
	require.NoError(t, err)
	assert.Nil(t, class)
}

func TestSuggestClassUsesBoysCampusForNonFemale(t *testing.T) {
	classes := &classRepoStub{}
	svc := NewClassAssignmentService(&studentRepoStub{}, classes, 0, nil)
	student := admittedStudent("s1", "Bilal")
	student.Gender = "Male"

	_, err := svc.SuggestClass(context.Background(), &student)
	require.NoError(t, err)
	assert.Equal(t, models.CampusBoys, classes.criteria[0].Campus)
}

func TestAutoAssignClass(t *testing.T) {
	student := admittedStudent("s1", "Ayesha")
	student.ClassID = nil
	students := &studentRepoStub{students: map[string]*models.Student{"s1": &student}}
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c1", "11-A", 25), classLoad("c2", "11-B", 10)}}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	result, err := svc.AutoAssignClass(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "c2", result.ClassID)
	assert.Equal(t, "11-B", result.ClassName)
	assert.Equal(t, "c2", classes.assigned["s1"])
	assert.Equal(t, 11, classes.loads[1].Enrolled)
}

func TestAutoAssignClassAlreadyAssigned(t *testing.T) {
	student := admittedStudent("s1", "Ayesha")
	students := &studentRepoStub{students: map[string]*models.Student{"s1": &student}}
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c2", "11-B", 10)}}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	result, err := svc.AutoAssignClass(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.AlreadyAssigned)
	assert.Empty(t, classes.assigned)
	assert.Empty(t, classes.criteria)
}

func TestAutoAssignClassNoCandidate(t *testing.T) {
	student := admittedStudent("s1", "Ayesha")
	student.ClassID = nil
	students := &studentRepoStub{students: map[string]*models.Student{"s1": &student}}
	svc := NewClassAssignmentService(students, &classRepoStub{}, 0, nil)

	result, err := svc.AutoAssignClass(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no class with free capacity")
}

func TestAutoAssignClassNotFound(t *testing.T) {
	svc := NewClassAssignmentService(&studentRepoStub{students: map[string]*models.Student{}}, &classRepoStub{}, 0, nil)

	_, err := svc.AutoAssignClass(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAutoAssignClassConcurrentAssignment(t *testing.T) {
	student := admittedStudent("s1", "Ayesha")
	student.ClassID = nil
	students := &studentRepoStub{students: map[string]*models.Student{"s1": &student}}
	classes := &classRepoStub{
		loads:     []models.ClassLoad{classLoad("c1", "11-A", 1)},
		assignErr: map[string]error{"s1": repository.ErrStudentAlreadyAssigned},
	}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	result, err := svc.AutoAssignClass(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.AlreadyAssigned)
}

func TestAssignAllUnassignedStudents(t *testing.T) {
	first := admittedStudent("s1", "Ayesha")
	first.ClassID = nil
	second := admittedStudent("s2", "Bushra")
	second.ClassID = nil
	third := admittedStudent("s3", "Dua")
	third.ClassID = nil
	students := &studentRepoStub{admitted: []models.Student{first, second, third}}
	classes := &classRepoStub{
		loads:     []models.ClassLoad{classLoad("c1", "11-A", 30)},
		assignErr: map[string]error{"s3": errors.New("connection reset")},
	}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	report, err := svc.AssignAllUnassignedStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Assigned)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.AlreadyAssigned)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "s3", report.Failures[0].StudentID)
	assert.Equal(t, "Dua", report.Failures[0].StudentName)
}

func TestAssignAllUnassignedStudentsStopsAtCapacity(t *testing.T) {
	first := admittedStudent("s1", "Ayesha")
	first.ClassID = nil
	second := admittedStudent("s2", "Bushra")
	second.ClassID = nil
	students := &studentRepoStub{admitted: []models.Student{first, second}}
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c1", "11-A", 39)}}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	report, err := svc.AssignAllUnassignedStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Assigned)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 40, classes.loads[0].Enrolled)
}

func TestAssignSelectedStudents(t *testing.T) {
	unassigned := admittedStudent("s1", "Ayesha")
	unassigned.ClassID = nil
	placed := admittedStudent("s2", "Bushra")
	students := &studentRepoStub{students: map[string]*models.Student{"s1": &unassigned, "s2": &placed}}
	classes := &classRepoStub{loads: []models.ClassLoad{classLoad("c1", "11-A", 5)}}
	svc := NewClassAssignmentService(students, classes, 0, nil)

	report, err := svc.AssignSelectedStudents(context.Background(), []string{"s1", "s2", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Assigned)
	assert.Equal(t, 1, report.AlreadyAssigned)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "ghost", report.Failures[0].StudentID)
	assert.Equal(t, "student not found", report.Failures[0].Reason)
}
