package models

import (
	"database/sql/driver"
	"time"
)

// StatisticType distinguishes overall from per-subject aggregation documents.
type StatisticType string

const (
	StatisticOverall StatisticType = "overall"
	StatisticSubject StatisticType = "subject"
)

// ClassStats is the leaf of the aggregation tree.
type ClassStats struct {
	ClassID          string           `json:"class_id"`
	ClassName        string           `json:"class_name"`
	ZoneDistribution ZoneDistribution `json:"zone_distribution"`
}

// GradeStats aggregates the classes of one grade within a campus.
type GradeStats struct {
	Grade                 string           `json:"grade"`
	ClassStats            []ClassStats     `json:"class_stats"`
	GradeZoneDistribution ZoneDistribution `json:"grade_zone_distribution"`
}

// Class returns the stats of the given class.
func (g *GradeStats) Class(classID string) (*ClassStats, bool) {
	for i := range g.ClassStats {
		if g.ClassStats[i].ClassID == classID {
			return &g.ClassStats[i], true
		}
	}
	return nil, false
}

// CampusStats aggregates the grades of one campus.
type CampusStats struct {
	Campus                 Campus           `json:"campus"`
	GradeStats             []GradeStats     `json:"grade_stats"`
	CampusZoneDistribution ZoneDistribution `json:"campus_zone_distribution"`
}

// Grade returns the stats of the given grade.
func (c *CampusStats) Grade(grade string) (*GradeStats, bool) {
	for i := range c.GradeStats {
		if c.GradeStats[i].Grade == grade {
			return &c.GradeStats[i], true
		}
	}
	return nil, false
}

// CampusStatsList is persisted as JSONB.
type CampusStatsList []CampusStats

// Campus returns the stats of the given campus.
func (l CampusStatsList) Campus(campus Campus) (*CampusStats, bool) {
	for i := range l {
		if l[i].Campus == campus {
			return &l[i], true
		}
	}
	return nil, false
}

// Value marshals the campus tree.
func (l CampusStatsList) Value() (driver.Value, error) {
	if l == nil {
		l = CampusStatsList{}
	}
	return jsonValue(l, "campus stats")
}

// Scan unmarshals the campus tree.
func (l *CampusStatsList) Scan(value interface{}) error {
	*l = nil
	return scanJSON(value, l, "campus stats")
}

// ZoneStatistics is a regenerated aggregation document for one academic year,
// either overall or for a single subject. Documents written by one refresh run
// share a Generation.
type ZoneStatistics struct {
	ID                    string           `db:"id" json:"id"`
	StatisticType         StatisticType    `db:"statistic_type" json:"statistic_type"`
	AcademicYear          string           `db:"academic_year" json:"academic_year"`
	SubjectName           string           `db:"subject_name" json:"subject_name,omitempty"`
	CampusStats           CampusStatsList  `db:"campus_stats" json:"campus_stats"`
	CollegeWide           ZoneDistribution `db:"college_wide" json:"college_wide_stats"`
	StudentsProcessed     int              `db:"students_processed" json:"students_processed"`
	CalculationDurationMs int64            `db:"calculation_duration_ms" json:"calculation_duration_ms"`
	Generation            string           `db:"generation" json:"generation"`
	LastUpdated           time.Time        `db:"last_updated" json:"last_updated"`
}

// FindClass locates a class anywhere in the tree.
func (s *ZoneStatistics) FindClass(classID string) (Campus, string, *ClassStats, bool) {
	for ci := range s.CampusStats {
		campus := &s.CampusStats[ci]
		for gi := range campus.GradeStats {
			grade := &campus.GradeStats[gi]
			if class, ok := grade.Class(classID); ok {
				return campus.Campus, grade.Grade, class, true
			}
		}
	}
	return "", "", nil, false
}
