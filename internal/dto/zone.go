package dto

import (
	"time"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

// StatisticsMeta carries provenance of the aggregation document a response was built from.
type StatisticsMeta struct {
	AcademicYear      string    `json:"academicYear"`
	Generation        string    `json:"generation"`
	StudentsProcessed int       `json:"studentsProcessed"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// ZoneBreakdown is a named node with its zone counts.
type ZoneBreakdown struct {
	Name         string                  `json:"name"`
	ID           string                  `json:"id,omitempty"`
	Distribution models.ZoneDistribution `json:"distribution"`
}

// OverviewResponse is the college-wide view.
type OverviewResponse struct {
	Meta        StatisticsMeta          `json:"meta"`
	CollegeWide models.ZoneDistribution `json:"collegeWide"`
	Campuses    []ZoneBreakdown         `json:"campuses"`
}

// CampusDetailResponse is one campus with its grades.
type CampusDetailResponse struct {
	Meta         StatisticsMeta          `json:"meta"`
	Campus       models.Campus           `json:"campus"`
	Distribution models.ZoneDistribution `json:"distribution"`
	Grades       []ZoneBreakdown         `json:"grades"`
}

// GradeDetailResponse is one grade of a campus with its classes.
type GradeDetailResponse struct {
	Meta         StatisticsMeta          `json:"meta"`
	Campus       models.Campus           `json:"campus"`
	Grade        string                  `json:"grade"`
	Distribution models.ZoneDistribution `json:"distribution"`
	Classes      []ZoneBreakdown         `json:"classes"`
}

// StudentZoneSummary is one student line in rosters and search results.
type StudentZoneSummary struct {
	StudentID               string               `json:"studentId"`
	StudentName             string               `json:"studentName"`
	ClassID                 string               `json:"classId,omitempty"`
	Campus                  models.Campus        `json:"campus"`
	Grade                   string               `json:"grade"`
	OverallZone             models.Zone          `json:"overallZone"`
	OverallPercentage       float64              `json:"overallPercentage"`
	MatriculationPercentage *float64             `json:"matriculationPercentage"`
	TotalCTs                int                  `json:"totalCTs"`
	Subjects                []SubjectZoneSummary `json:"subjects,omitempty"`
	MatchedSubject          *SubjectZoneSummary  `json:"matchedSubject,omitempty"`
}

// SubjectZoneSummary is a compact subject breakdown.
type SubjectZoneSummary struct {
	SubjectName string      `json:"subjectName"`
	Percentage  float64     `json:"percentage"`
	Zone        models.Zone `json:"zone"`
	TotalCTs    int         `json:"totalCTs"`
}

// ClassDetailResponse is one class with its full roster sorted by name.
type ClassDetailResponse struct {
	Meta         StatisticsMeta          `json:"meta"`
	ClassID      string                  `json:"classId"`
	ClassName    string                  `json:"className"`
	Campus       models.Campus           `json:"campus"`
	Grade        string                  `json:"grade"`
	Distribution models.ZoneDistribution `json:"distribution"`
	Students     []StudentZoneSummary    `json:"students"`
}

// SubjectDetailResponse is the zone tree of one subject.
type SubjectDetailResponse struct {
	Meta        StatisticsMeta          `json:"meta"`
	SubjectName string                  `json:"subjectName"`
	CollegeWide models.ZoneDistribution `json:"collegeWide"`
	Campuses    []CampusTree            `json:"campuses"`
}

// CampusTree is a campus with nested grade breakdowns.
type CampusTree struct {
	Campus       models.Campus           `json:"campus"`
	Distribution models.ZoneDistribution `json:"distribution"`
	Grades       []ZoneBreakdown         `json:"grades"`
}

// SubjectComparison pairs current subject performance with the matriculation score.
type SubjectComparison struct {
	SubjectName             string      `json:"subjectName"`
	CurrentPercentage       float64     `json:"currentPercentage"`
	Zone                    models.Zone `json:"zone"`
	MatriculationPercentage *float64    `json:"matriculationPercentage"`
	Change                  *float64    `json:"change"`
}

// StudentDetailResponse is the analytics document of a student with comparisons.
type StudentDetailResponse struct {
	Analytics      models.StudentAnalytics `json:"analytics"`
	BaselineSource models.BaselineSource   `json:"baselineSource,omitempty"`
	Comparisons    []SubjectComparison     `json:"comparisons"`
}

// StudentSearchFilter combines optional search criteria within one academic year.
type StudentSearchFilter struct {
	AcademicYear string        `form:"academicYear" validate:"required"`
	Campus       models.Campus `form:"campus" validate:"omitempty,oneof=Boys Girls"`
	Grade        string        `form:"grade" validate:"omitempty,oneof=11th 12th"`
	ClassID      string        `form:"classId"`
	Zone         models.Zone   `form:"zone" validate:"omitempty,oneof=green blue yellow red"`
	Subject      string        `form:"subject"`
}

// ExportLevel selects what an export covers.
type ExportLevel string

const (
	ExportOverview ExportLevel = "overview"
	ExportCampus   ExportLevel = "campus"
	ExportGrade    ExportLevel = "grade"
	ExportClass    ExportLevel = "class"
	ExportSubject  ExportLevel = "subject"
	ExportStudents ExportLevel = "students"
)

// ExportFormat selects the rendered representation.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
)

// ExportRequest describes one export.
type ExportRequest struct {
	AcademicYear string        `form:"academicYear" validate:"required"`
	Level        ExportLevel   `form:"level" validate:"required,oneof=overview campus grade class subject students"`
	Format       ExportFormat  `form:"format" validate:"omitempty,oneof=json csv pdf"`
	Campus       models.Campus `form:"campus" validate:"omitempty,oneof=Boys Girls"`
	Grade        string        `form:"grade" validate:"omitempty,oneof=11th 12th"`
	ClassID      string        `form:"classId"`
	Subject      string        `form:"subject"`
	Zone         models.Zone   `form:"zone" validate:"omitempty,oneof=green blue yellow red"`
}

// ExportPayload is a rendered export ready to stream.
type ExportPayload struct {
	Filename    string
	ContentType string
	Body        []byte
	JSON        interface{}
}
