package models

import (
	"database/sql/driver"
	"math"
	"strings"
)

// Zone is the ordinal performance tier derived from a percentage.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneBlue   Zone = "blue"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// Zones lists every tier from best to worst.
var Zones = []Zone{ZoneGreen, ZoneBlue, ZoneYellow, ZoneRed}

const (
	greenThreshold  = 76.0
	blueThreshold   = 71.0
	yellowThreshold = 66.0
)

// ClassifyZone maps a percentage to its zone. Anything below 66, including
// zero, negative and NaN input, is red.
func ClassifyZone(percentage float64) Zone {
	switch {
	case percentage >= greenThreshold:
		return ZoneGreen
	case percentage >= blueThreshold:
		return ZoneBlue
	case percentage >= yellowThreshold:
		return ZoneYellow
	default:
		return ZoneRed
	}
}

// ParseZone validates a zone name case-insensitively.
func ParseZone(raw string) (Zone, bool) {
	z := Zone(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Zones {
		if z == known {
			return z, true
		}
	}
	return "", false
}

// Campus partitions students by gender.
type Campus string

const (
	CampusBoys  Campus = "Boys"
	CampusGirls Campus = "Girls"
)

// Campuses is the fixed campus set used for aggregation skeletons.
var Campuses = []Campus{CampusBoys, CampusGirls}

// CampusForGender derives the campus from a gender value. Only "female"
// (any case) maps to Girls; every other value maps to Boys.
func CampusForGender(gender string) Campus {
	if strings.EqualFold(strings.TrimSpace(gender), "female") {
		return CampusGirls
	}
	return CampusBoys
}

// ParseCampus matches a campus name case-insensitively.
func ParseCampus(raw string) (Campus, bool) {
	for _, c := range Campuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(c)) {
			return c, true
		}
	}
	return "", false
}

// Grade levels covered by zone analytics.
const (
	Grade11 = "11th"
	Grade12 = "12th"
)

// Grades is the fixed grade set used for aggregation skeletons.
var Grades = []string{Grade11, Grade12}

// ParseGrade accepts "11th"/"12th" and the bare numbers.
func ParseGrade(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "11th", "11":
		return Grade11, true
	case "12th", "12":
		return Grade12, true
	}
	return "", false
}

// ZoneDistribution counts students per zone.
type ZoneDistribution struct {
	Green  int `json:"green"`
	Blue   int `json:"blue"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
	Total  int `json:"total"`
}

// Add records one student in zone z.
func (d *ZoneDistribution) Add(z Zone) {
	switch z {
	case ZoneGreen:
		d.Green++
	case ZoneBlue:
		d.Blue++
	case ZoneYellow:
		d.Yellow++
	default:
		d.Red++
	}
	d.Total++
}

// Count returns the number of students in zone z.
func (d ZoneDistribution) Count(z Zone) int {
	switch z {
	case ZoneGreen:
		return d.Green
	case ZoneBlue:
		return d.Blue
	case ZoneYellow:
		return d.Yellow
	case ZoneRed:
		return d.Red
	}
	return 0
}

// Value marshals the distribution for JSONB storage.
func (d ZoneDistribution) Value() (driver.Value, error) {
	return jsonValue(d, "zone distribution")
}

// Scan unmarshals a JSONB distribution.
func (d *ZoneDistribution) Scan(value interface{}) error {
	*d = ZoneDistribution{}
	return scanJSON(value, d, "zone distribution")
}

// WeightedPercentage returns obtained/max*100 rounded to two decimals, or zero
// when max is not positive.
func WeightedPercentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return RoundPercentage(obtained / max * 100)
}

// RoundPercentage rounds to two decimal places.
func RoundPercentage(v float64) float64 {
	return math.Round(v*100) / 100
}
