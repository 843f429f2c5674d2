package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestSyntheticSamplesStayInRange(t *testing.T) {
	g := NewSyntheticDataGenerator(42)
	samples := g.Generate(2000)
	require.Len(t, samples, 2000)

	for _, s := range samples {
		assert.GreaterOrEqual(t, s.AvgPreviousGrades, 0.0)
		assert.LessOrEqual(t, s.AvgPreviousGrades, 100.0)
		assert.GreaterOrEqual(t, s.AttendancePercentage, 40.0)
		assert.LessOrEqual(t, s.AttendancePercentage, 100.0)
		assert.GreaterOrEqual(t, s.ParticipationAverage, 1.0)
		assert.LessOrEqual(t, s.ParticipationAverage, 3.0)
		assert.GreaterOrEqual(t, s.TargetGrade, 0.0)
		assert.LessOrEqual(t, s.TargetGrade, 100.0)
	}
}

func TestSyntheticCorrelationsPointTheRightWay(t *testing.T) {
	g := NewSyntheticDataGenerator(42)
	samples := g.Generate(2000)

	avg := make([]float64, len(samples))
	attendance := make([]float64, len(samples))
	target := make([]float64, len(samples))
	for i, s := range samples {
		avg[i] = s.AvgPreviousGrades
		attendance[i] = s.AttendancePercentage
		target[i] = s.TargetGrade
	}

	assert.Greater(t, stat.Correlation(avg, target, nil), 0.3,
		"previous grades should correlate positively with the target")
	assert.Greater(t, stat.Correlation(attendance, target, nil), 0.3,
		"attendance should correlate positively with the target")
}

func TestSyntheticGeneratorIsReproducible(t *testing.T) {
	a := NewSyntheticDataGenerator(7).Generate(100)
	b := NewSyntheticDataGenerator(7).Generate(100)
	assert.Equal(t, a, b)

	c := NewSyntheticDataGenerator(8).Generate(100)
	assert.NotEqual(t, a, c)
}

func TestSyntheticGeneratorZeroSamples(t *testing.T) {
	g := NewSyntheticDataGenerator(42)
	assert.Empty(t, g.Generate(0))
}
