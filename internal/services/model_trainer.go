package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/pkg/forest"
	"github.com/rodryv99/backend-smart-class/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Зерно разбиения train/validation фиксировано, чтобы метрики двух обучений
// на одинаковых данных совпадали
const splitSeed = 42

// ModelTrainer обучает и версионирует модель класса
type ModelTrainer struct {
	builder        *TrainingSetBuilder
	predictionRepo repository.PredictionRepository
	artifacts      *storage.Storage
	forestConfig   forest.Config
	minSamples     int
	logger         *zap.Logger
}

// NewModelTrainer создает новый тренер моделей
func NewModelTrainer(
	builder *TrainingSetBuilder,
	predictionRepo repository.PredictionRepository,
	artifacts *storage.Storage,
	forestConfig forest.Config,
	minSamples int,
	logger *zap.Logger,
) *ModelTrainer {
	return &ModelTrainer{
		builder:        builder,
		predictionRepo: predictionRepo,
		artifacts:      artifacts,
		forestConfig:   forestConfig,
		minSamples:     minSamples,
		logger:         logger,
	}
}

// Train собирает набор, обучает лес, сохраняет артефакт и в одной транзакции
// заменяет активную запись модели класса. Нехватка данных — ожидаемое условие
// (ErrInsufficientTrainingData), любой другой сбой прерывает операцию, не
// трогая прежнюю активную модель.
func (t *ModelTrainer) Train(classID uuid.UUID) (*models.MLModel, error) {
	set, err := t.builder.Build(classID)
	if err != nil {
		return nil, err
	}

	if set.Len() < t.minSamples {
		t.logger.Warn("not enough samples to train",
			zap.String("class_id", classID.String()),
			zap.Int("samples", set.Len()),
			zap.Int("required", t.minSamples))
		return nil, ErrInsufficientTrainingData
	}

	// Пропуски заполняем средними по столбцу, а не выбрасываем строки:
	// набор и так маленький
	imputeColumnMeans(set.Features)

	trainX, trainY, valX, valY := splitTrainValidation(set.Features, set.Labels)

	model, err := forest.Train(trainX, trainY, t.forestConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to train forest: %w", err)
	}

	trainScore := rSquared(model, trainX, trainY)
	valScore := rSquared(model, valX, valY)
	mae := meanAbsoluteError(model, valX, valY)

	trainedAt := time.Now()
	version := "RF_" + trainedAt.Format("20060102_150405")

	artifact, err := model.Encode()
	if err != nil {
		return nil, err
	}
	filePath, err := t.artifacts.SaveModel(classID, trainedAt, artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to persist model artifact: %w", err)
	}

	record := &models.MLModel{
		ClassID:           classID,
		ModelVersion:      version,
		Algorithm:         "RandomForest",
		TrainingScore:     trainScore,
		ValidationScore:   valScore,
		MeanAbsoluteError: mae,
		TrainingSamples:   set.Len(),
		ModelFilePath:     filePath,
	}

	if err := t.predictionRepo.ActivateModel(record); err != nil {
		return nil, fmt.Errorf("failed to activate model record: %w", err)
	}

	t.logger.Info("model trained",
		zap.String("class_id", classID.String()),
		zap.String("version", version),
		zap.Float64("training_score", trainScore),
		zap.Float64("validation_score", valScore),
		zap.Float64("mae", mae),
		zap.Int("samples", set.Len()))

	return record, nil
}

// imputeColumnMeans заменяет NaN средним по столбцу
func imputeColumnMeans(features [][]float64) {
	if len(features) == 0 {
		return
	}
	cols := len(features[0])
	for c := 0; c < cols; c++ {
		var sum float64
		count := 0
		for _, row := range features {
			if !math.IsNaN(row[c]) {
				sum += row[c]
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		for _, row := range features {
			if math.IsNaN(row[c]) {
				row[c] = mean
			}
		}
	}
}

// splitTrainValidation делит набор 80/20 с фиксированным зерном
func splitTrainValidation(features [][]float64, labels []float64) ([][]float64, []float64, [][]float64, []float64) {
	n := len(labels)
	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)

	valSize := int(math.Ceil(float64(n) * 0.2))
	if valSize < 1 {
		valSize = 1
	}

	var trainX, valX [][]float64
	var trainY, valY []float64
	for i, idx := range perm {
		if i < valSize {
			valX = append(valX, features[idx])
			valY = append(valY, labels[idx])
		} else {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		}
	}
	return trainX, trainY, valX, valY
}

func rSquared(model *forest.Forest, features [][]float64, labels []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	estimates := make([]float64, len(labels))
	for i, row := range features {
		estimates[i] = model.Predict(row)
	}
	return stat.RSquaredFrom(estimates, labels, nil)
}

func meanAbsoluteError(model *forest.Forest, features [][]float64, labels []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	var sum float64
	for i, row := range features {
		sum += math.Abs(labels[i] - model.Predict(row))
	}
	return sum / float64(len(labels))
}
