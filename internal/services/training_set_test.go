package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (f *fixture) newBuilder(syntheticSamples int) *TrainingSetBuilder {
	return NewTrainingSetBuilder(
		f.gradeRepo, f.newExtractor(), NewSyntheticDataGenerator(42), syntheticSamples, zap.NewNop())
}

func TestBuildUsesLastGradeAsLabel(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(3)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 60)
	f.addGradeTotal(studentID, classID, periodIDs[1], 70)

	set, err := f.newBuilder(0).Build(classID)
	require.NoError(t, err)

	require.Equal(t, 1, set.RealSamples)
	require.Equal(t, 1, set.Len())
	// Метка — последний период, признаки — только предыдущие
	assert.InDelta(t, 70, set.Labels[0], 0.001)
	assert.InDelta(t, 60, set.Features[0][0], 0.001)
}

func TestBuildSkipsStudentsWithSingleGrade(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(2)
	one := f.enrollStudent(classID, "Ana")
	two := f.enrollStudent(classID, "Luis")
	f.addGradeTotal(one, classID, periodIDs[0], 55)
	f.addGradeTotal(two, classID, periodIDs[0], 65)
	f.addGradeTotal(two, classID, periodIDs[1], 75)

	set, err := f.newBuilder(0).Build(classID)
	require.NoError(t, err)

	assert.Equal(t, 1, set.RealSamples)
}

func TestBuildAppendsSyntheticSamples(t *testing.T) {
	f := newFixture(t)
	classID, _ := f.createClassWithPeriods(2)

	set, err := f.newBuilder(50).Build(classID)
	require.NoError(t, err)

	assert.Equal(t, 0, set.RealSamples)
	assert.Equal(t, 50, set.Len())
	for _, row := range set.Features {
		require.Len(t, row, 3)
	}
}
