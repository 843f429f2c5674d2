package forest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDataset(n int) ([][]float64, []float64) {
	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		features[i] = []float64{x * 100, 50 + x*50, 1 + x*2}
		labels[i] = 20 + x*70
	}
	return features, labels
}

func TestTrainEmptySet(t *testing.T) {
	_, err := Train(nil, nil, DefaultConfig())
	assert.Error(t, err)
}

func TestTrainLengthMismatch(t *testing.T) {
	_, err := Train([][]float64{{1, 2, 3}}, []float64{1, 2}, DefaultConfig())
	assert.Error(t, err)
}

func TestTrainInconsistentRows(t *testing.T) {
	_, err := Train([][]float64{{1, 2, 3}, {1, 2}}, []float64{1, 2}, DefaultConfig())
	assert.Error(t, err)
}

func TestForestLearnsMonotonicRelation(t *testing.T) {
	features, labels := linearDataset(200)

	model, err := Train(features, labels, DefaultConfig())
	require.NoError(t, err)

	low := model.Predict([]float64{10, 55, 1.2})
	high := model.Predict([]float64{90, 95, 2.8})
	assert.Greater(t, high, low, "higher features should predict a higher grade")

	// Предсказание не выходит за диапазон обучающих меток
	assert.GreaterOrEqual(t, high, 20.0)
	assert.LessOrEqual(t, high, 90.0)
}

func TestForestIsDeterministicForSeed(t *testing.T) {
	features, labels := linearDataset(100)
	cfg := DefaultConfig()

	a, err := Train(features, labels, cfg)
	require.NoError(t, err)
	b, err := Train(features, labels, cfg)
	require.NoError(t, err)

	x := []float64{42, 70, 2}
	assert.Equal(t, a.Predict(x), b.Predict(x))
}

func TestForestAccuracyOnTrainingData(t *testing.T) {
	features, labels := linearDataset(300)

	model, err := Train(features, labels, DefaultConfig())
	require.NoError(t, err)

	var sumAbs float64
	for i, row := range features {
		sumAbs += math.Abs(labels[i] - model.Predict(row))
	}
	mae := sumAbs / float64(len(labels))
	assert.Less(t, mae, 5.0, "forest should fit a smooth monotonic relation closely")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	features, labels := linearDataset(50)

	model, err := Train(features, labels, DefaultConfig())
	require.NoError(t, err)

	data, err := model.Encode()
	require.NoError(t, err)

	restored, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, model.NumFeatures, restored.NumFeatures)

	x := []float64{33, 66, 1.5}
	assert.Equal(t, model.Predict(x), restored.Predict(x))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not a forest"))
	assert.Error(t, err)
}

func TestConstantFeaturesFallBackToMean(t *testing.T) {
	features := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	labels := []float64{40, 50, 60, 40, 50, 60}

	model, err := Train(features, labels, DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 50, model.Predict([]float64{1, 1, 1}), 5)
}
