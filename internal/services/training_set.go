package services

import (
	"fmt"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrainingSet представляет собранный набор для обучения модели
type TrainingSet struct {
	Features    [][]float64
	Labels      []float64
	RealSamples int
}

// Len возвращает общее число примеров
func (s *TrainingSet) Len() int {
	return len(s.Labels)
}

// TrainingSetBuilder собирает обучающий набор класса: по одному реальному
// примеру на ученика с двумя и более оцененными периодами плюс синтетическая
// добавка фиксированного размера
type TrainingSetBuilder struct {
	gradeRepo        repository.GradeRepository
	extractor        *FeatureExtractor
	generator        *SyntheticDataGenerator
	syntheticSamples int
	logger           *zap.Logger
}

// NewTrainingSetBuilder создает новый сборщик обучающих наборов
func NewTrainingSetBuilder(
	gradeRepo repository.GradeRepository,
	extractor *FeatureExtractor,
	generator *SyntheticDataGenerator,
	syntheticSamples int,
	logger *zap.Logger,
) *TrainingSetBuilder {
	return &TrainingSetBuilder{
		gradeRepo:        gradeRepo,
		extractor:        extractor,
		generator:        generator,
		syntheticSamples: syntheticSamples,
		logger:           logger,
	}
}

// Build собирает набор для класса. Последний известный период каждого ученика
// играет роль "будущего": признаки строятся по всем периодам кроме последнего,
// последний дает целевую ноту. Без реальных примеров набор будет чисто
// синтетическим.
func (b *TrainingSetBuilder) Build(classID uuid.UUID) (*TrainingSet, error) {
	grades, err := b.gradeRepo.ListByClass(classID)
	if err != nil {
		return nil, fmt.Errorf("failed to load class grades: %w", err)
	}

	set := &TrainingSet{}

	// Оценки упорядочены по (ученик, тип периода, номер)
	byStudent := make(map[uuid.UUID][]models.Grade)
	var studentOrder []uuid.UUID
	for _, g := range grades {
		if _, ok := byStudent[g.StudentID]; !ok {
			studentOrder = append(studentOrder, g.StudentID)
		}
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	for _, studentID := range studentOrder {
		studentGrades := byStudent[studentID]
		if len(studentGrades) < 2 {
			continue
		}

		window := studentGrades[:len(studentGrades)-1]
		target := studentGrades[len(studentGrades)-1]

		windowPeriodIDs := make([]uuid.UUID, 0, len(window))
		for _, g := range window {
			windowPeriodIDs = append(windowPeriodIDs, g.PeriodID)
		}

		features, err := b.extractor.Extract(studentID, classID, windowPeriodIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to extract features for student %s: %w", studentID, err)
		}
		if features == nil {
			continue
		}

		set.Features = append(set.Features, features.Vector())
		set.Labels = append(set.Labels, target.NotaTotal)
		set.RealSamples++
	}

	synthetic := b.generator.Generate(b.syntheticSamples)
	for _, s := range synthetic {
		set.Features = append(set.Features, []float64{
			s.AvgPreviousGrades,
			s.AttendancePercentage,
			s.ParticipationAverage,
		})
		set.Labels = append(set.Labels, s.TargetGrade)
	}

	b.logger.Info("training set assembled",
		zap.String("class_id", classID.String()),
		zap.Int("real_samples", set.RealSamples),
		zap.Int("synthetic_samples", len(synthetic)),
		zap.Int("total", set.Len()))

	return set, nil
}
