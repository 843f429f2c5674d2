package services

import (
	"math"
	"strings"
	"testing"

	"github.com/rodryv99/backend-smart-class/pkg/forest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainInsufficientData(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(3)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 60)
	f.addGradeTotal(studentID, classID, periodIDs[1], 70)

	// Без синтетики один реальный пример никогда не дотянет до минимума
	trainer, _ := f.newTrainer(0, 20)
	_, err := trainer.Train(classID)
	assert.ErrorIs(t, err, ErrInsufficientTrainingData)
}

func TestTrainPersistsAndActivatesModel(t *testing.T) {
	f := newFixture(t)
	classID, _ := f.createClassWithPeriods(3)

	trainer, artifacts := f.newTrainer(150, 20)
	record, err := trainer.Train(classID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.ModelVersion, "RF_"))
	assert.Equal(t, "RandomForest", record.Algorithm)
	assert.Equal(t, 150, record.TrainingSamples)
	assert.True(t, record.IsActive)
	assert.NotEmpty(t, record.ModelFilePath)

	// Артефакт читается и десериализуется обратно в рабочий лес
	data, err := artifacts.LoadModel(record.ModelFilePath)
	require.NoError(t, err)
	model, err := forest.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 3, model.NumFeatures)

	active, err := f.predictionRepo.GetActiveModel(classID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, active.ID)
}

func TestRetrainDeactivatesPreviousModel(t *testing.T) {
	f := newFixture(t)
	classID, _ := f.createClassWithPeriods(3)

	trainer, _ := f.newTrainer(150, 20)
	first, err := trainer.Train(classID)
	require.NoError(t, err)
	second, err := trainer.Train(classID)
	require.NoError(t, err)

	active, err := f.predictionRepo.GetActiveModel(classID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	records, err := f.predictionRepo.ListModelsByClass(classID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		if r.ID == first.ID {
			assert.False(t, r.IsActive)
		}
	}
}

func TestImputeColumnMeans(t *testing.T) {
	features := [][]float64{
		{1, math.NaN(), 3},
		{3, 4, math.NaN()},
		{math.NaN(), 8, 9},
	}
	imputeColumnMeans(features)

	assert.InDelta(t, 2, features[2][0], 0.001)
	assert.InDelta(t, 6, features[0][1], 0.001)
	assert.InDelta(t, 6, features[1][2], 0.001)
}

func TestSplitTrainValidationProportions(t *testing.T) {
	n := 10
	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := range labels {
		features[i] = []float64{float64(i)}
		labels[i] = float64(i)
	}

	trainX, trainY, valX, valY := splitTrainValidation(features, labels)
	assert.Len(t, valY, 2)
	assert.Len(t, trainY, 8)
	assert.Len(t, valX, 2)
	assert.Len(t, trainX, 8)

	// Разбиение детерминировано
	_, trainY2, _, valY2 := splitTrainValidation(features, labels)
	assert.Equal(t, trainY, trainY2)
	assert.Equal(t, valY, valY2)
}
