package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyZoneBoundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		want       Zone
	}{
		{100, ZoneGreen},
		{76, ZoneGreen},
		{75.999, ZoneBlue},
		{71, ZoneBlue},
		{70.999, ZoneYellow},
		{66, ZoneYellow},
		{65.999, ZoneRed},
		{0, ZoneRed},
		{-5, ZoneRed},
		{math.NaN(), ZoneRed},
		{140, ZoneGreen},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyZone(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestClassifyZoneMonotonic(t *testing.T) {
	rank := map[Zone]int{ZoneGreen: 3, ZoneBlue: 2, ZoneYellow: 1, ZoneRed: 0}
	prev := rank[ClassifyZone(100)]
	for p := 100.0; p >= 0; p -= 0.25 {
		current := rank[ClassifyZone(p)]
		assert.LessOrEqual(t, current, prev, "percentage %v", p)
		prev = current
	}
}

func TestCampusForGender(t *testing.T) {
	assert.Equal(t, CampusGirls, CampusForGender("female"))
	assert.Equal(t, CampusGirls, CampusForGender(" FEMALE "))
	assert.Equal(t, CampusBoys, CampusForGender("male"))
	assert.Equal(t, CampusBoys, CampusForGender(""))
	assert.Equal(t, CampusBoys, CampusForGender("other"))
}

func TestZoneDistributionAdd(t *testing.T) {
	var d ZoneDistribution
	for _, z := range []Zone{ZoneGreen, ZoneGreen, ZoneBlue, ZoneRed} {
		d.Add(z)
	}
	assert.Equal(t, ZoneDistribution{Green: 2, Blue: 1, Red: 1, Total: 4}, d)
	assert.Equal(t, 2, d.Count(ZoneGreen))
	assert.Equal(t, 0, d.Count(ZoneYellow))
}

func TestWeightedPercentage(t *testing.T) {
	assert.Equal(t, 78.26, WeightedPercentage(90, 115))
	assert.Equal(t, 0.0, WeightedPercentage(10, 0))
}

func TestParseHelpers(t *testing.T) {
	z, ok := ParseZone("Green")
	assert.True(t, ok)
	assert.Equal(t, ZoneGreen, z)
	_, ok = ParseZone("purple")
	assert.False(t, ok)

	g, ok := ParseGrade("11")
	assert.True(t, ok)
	assert.Equal(t, Grade11, g)

	c, ok := ParseCampus("girls")
	assert.True(t, ok)
	assert.Equal(t, CampusGirls, c)
}
