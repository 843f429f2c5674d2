package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/pkg/forest"
	"github.com/rodryv99/backend-smart-class/pkg/storage"
	"github.com/rodryv99/backend-smart-class/pkg/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// AccuracyStats представляет сводку точности прогнозов класса по истории
type AccuracyStats struct {
	Count             int     `json:"count"`
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
	MeanDifference    float64 `json:"mean_difference"`
	Correlation       float64 `json:"correlation"`
}

// PredictionService интерфейс движка прогнозов
type PredictionService interface {
	// Train обучает модель класса по требованию
	Train(classID uuid.UUID) (*models.MLModel, error)

	// PredictNextPeriod делает прогноз на ближайший неоцененный период.
	// Возвращает (nil, nil), если прогнозировать нечего: у ученика нет оценок
	// или все периоды класса уже оценены.
	PredictNextPeriod(studentID, classID uuid.UUID) (*models.Prediction, error)

	// PredictPeriod делает прогноз на конкретный период. В ретроспективном
	// режиме реальная оценка периода обязана существовать и исключается из
	// окна признаков.
	PredictPeriod(studentID, classID, periodID uuid.UUID, retrospective bool) (*models.Prediction, error)

	// RefreshStudent пересчитывает прогноз ученика (фоновые вызовы)
	RefreshStudent(studentID, classID uuid.UUID) error
	// RefreshClassPredictions пересчитывает прогнозы всех учеников класса
	RefreshClassPredictions(classID uuid.UUID) (int, error)
	// GenerateRetrospective строит ретроспективные прогнозы класса на период
	GenerateRetrospective(classID, periodID uuid.UUID) (int, error)

	// ResolvePrediction переводит живой прогноз в историю при появлении
	// реальной оценки. Возвращает (nil, nil), если живого прогноза не было.
	ResolvePrediction(studentID, classID, periodID uuid.UUID, actualGrade float64) (*models.PredictionHistory, error)

	// AccuracyStats возвращает сводку точности по истории класса
	AccuracyStats(classID uuid.UUID) (*AccuracyStats, error)
}

type predictionService struct {
	gradeRepo      repository.GradeRepository
	academicRepo   repository.AcademicRepository
	predictionRepo repository.PredictionRepository
	extractor      *FeatureExtractor
	trainer        *ModelTrainer
	artifacts      *storage.Storage
	bot            *telegram.Bot
	logger         *zap.Logger
}

// NewPredictionService создает новый сервис прогнозов
func NewPredictionService(
	gradeRepo repository.GradeRepository,
	academicRepo repository.AcademicRepository,
	predictionRepo repository.PredictionRepository,
	extractor *FeatureExtractor,
	trainer *ModelTrainer,
	artifacts *storage.Storage,
	bot *telegram.Bot,
	logger *zap.Logger,
) PredictionService {
	return &predictionService{
		gradeRepo:      gradeRepo,
		academicRepo:   academicRepo,
		predictionRepo: predictionRepo,
		extractor:      extractor,
		trainer:        trainer,
		artifacts:      artifacts,
		bot:            bot,
		logger:         logger,
	}
}

func (s *predictionService) Train(classID uuid.UUID) (*models.MLModel, error) {
	record, err := s.trainer.Train(classID)
	if err != nil {
		return nil, err
	}

	if s.bot != nil {
		if class, err := s.academicRepo.GetClass(classID); err == nil {
			if err := s.bot.NotifyModelTrained(class.Name, record.ModelVersion,
				record.ValidationScore, record.MeanAbsoluteError, record.TrainingSamples); err != nil {
				s.logger.Warn("failed to send training notification", zap.Error(err))
			}
		}
	}

	return record, nil
}

func (s *predictionService) PredictNextPeriod(studentID, classID uuid.UUID) (*models.Prediction, error) {
	grades, err := s.gradeRepo.ListByStudent(studentID, classID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load student grades: %w", err)
	}
	if len(grades) == 0 {
		return nil, nil
	}

	periods, err := s.academicRepo.GetClassPeriods(classID)
	if err != nil {
		return nil, fmt.Errorf("failed to load class periods: %w", err)
	}

	graded := make(map[uuid.UUID]bool, len(grades))
	for _, g := range grades {
		graded[g.PeriodID] = true
	}

	// Ближайший период без оценки; если все оценены, прогнозировать нечего
	var nextPeriod *models.Period
	for i := range periods {
		if !graded[periods[i].ID] {
			nextPeriod = &periods[i]
			break
		}
	}
	if nextPeriod == nil {
		return nil, nil
	}

	// Признаки строятся по всем уже оцененным периодам
	features, err := s.extractor.Extract(studentID, classID, nil)
	if err != nil {
		return nil, err
	}
	if features == nil {
		return nil, nil
	}

	return s.predict(studentID, classID, nextPeriod.ID, features)
}

func (s *predictionService) PredictPeriod(studentID, classID, periodID uuid.UUID, retrospective bool) (*models.Prediction, error) {
	grades, err := s.gradeRepo.ListByStudent(studentID, classID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load student grades: %w", err)
	}
	if len(grades) == 0 {
		return nil, ErrNoHistory
	}

	targetGraded := false
	windowPeriodIDs := make([]uuid.UUID, 0, len(grades))
	for _, g := range grades {
		if g.PeriodID == periodID {
			targetGraded = true
			continue
		}
		windowPeriodIDs = append(windowPeriodIDs, g.PeriodID)
	}

	if retrospective {
		// Ретроспектива имеет смысл только когда есть с чем сравнивать
		if !targetGraded {
			return nil, ErrNoGroundTruth
		}
	} else if targetGraded {
		// Период уже оценен: реальная оценка — неизменная истина
		return nil, nil
	}

	if len(windowPeriodIDs) == 0 {
		return nil, ErrNoHistory
	}

	features, err := s.extractor.Extract(studentID, classID, windowPeriodIDs)
	if err != nil {
		return nil, err
	}
	if features == nil {
		return nil, ErrNoHistory
	}

	return s.predict(studentID, classID, periodID, features)
}

// predict вычисляет прогноз активной моделью и сохраняет его
func (s *predictionService) predict(studentID, classID, periodID uuid.UUID, features *StudentFeatures) (*models.Prediction, error) {
	model, record, err := s.activeModel(classID)
	if err != nil {
		return nil, err
	}

	predicted := clip(model.Predict(features.Vector()), 0, 100)

	// Уверенность: качество модели пополам с достаточностью данных ученика;
	// достаточность насыщается после трех оцененных периодов
	modelConfidence := record.ValidationScore * 100
	dataConfidence := clip(100*float64(features.GradesUsed)/3, 0, 100)
	confidence := (modelConfidence + dataConfidence) / 2

	prediction := &models.Prediction{
		StudentID:            studentID,
		ClassID:              classID,
		PredictedPeriodID:    periodID,
		PredictedGrade:       predicted,
		Confidence:           confidence,
		AvgPreviousGrades:    features.AvgPreviousGrades,
		AttendancePercentage: features.AttendancePercentage,
		ParticipationAverage: features.ParticipationAverage,
		ModelVersion:         record.ModelVersion,
	}

	if err := s.predictionRepo.UpsertPrediction(prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	s.logger.Info("prediction saved",
		zap.String("student_id", studentID.String()),
		zap.String("class_id", classID.String()),
		zap.String("period_id", periodID.String()),
		zap.Float64("predicted_grade", predicted),
		zap.Float64("confidence", confidence))

	if predicted < models.PassingGrade {
		s.notifyAtRisk(studentID, classID, predicted, confidence)
	}

	return prediction, nil
}

// activeModel загружает активную модель класса, обучая ее по требованию.
// Сбой обучения каскадно проваливает прогноз: об этом сообщается наверх, а не
// глотается молча.
func (s *predictionService) activeModel(classID uuid.UUID) (*forest.Forest, *models.MLModel, error) {
	record, err := s.predictionRepo.GetActiveModel(classID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record, err = s.trainer.Train(classID)
	}
	if err != nil {
		return nil, nil, err
	}

	artifact, err := s.artifacts.LoadModel(record.ModelFilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model artifact %s: %w", record.ModelFilePath, err)
	}

	model, err := forest.Decode(artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("corrupt model artifact %s: %w", record.ModelFilePath, err)
	}

	return model, record, nil
}

func (s *predictionService) RefreshStudent(studentID, classID uuid.UUID) error {
	_, err := s.PredictNextPeriod(studentID, classID)
	if errors.Is(err, ErrInsufficientTrainingData) {
		// Нормальное состояние молодого класса, не повод для тревоги в логах
		s.logger.Info("prediction refresh skipped: insufficient training data",
			zap.String("class_id", classID.String()))
		return nil
	}
	return err
}

func (s *predictionService) RefreshClassPredictions(classID uuid.UUID) (int, error) {
	students, err := s.academicRepo.GetEnrolledStudents(classID)
	if err != nil {
		return 0, fmt.Errorf("failed to load enrolled students: %w", err)
	}

	updated := 0
	for _, student := range students {
		prediction, err := s.PredictNextPeriod(student.ID, classID)
		if err != nil {
			if errors.Is(err, ErrInsufficientTrainingData) {
				return updated, err
			}
			s.logger.Warn("failed to refresh prediction",
				zap.String("student_id", student.ID.String()),
				zap.String("class_id", classID.String()),
				zap.Error(err))
			continue
		}
		if prediction != nil {
			updated++
		}
	}

	return updated, nil
}

func (s *predictionService) GenerateRetrospective(classID, periodID uuid.UUID) (int, error) {
	grades, err := s.gradeRepo.ListByClass(classID)
	if err != nil {
		return 0, fmt.Errorf("failed to load class grades: %w", err)
	}

	created := 0
	for _, g := range grades {
		if g.PeriodID != periodID {
			continue
		}
		if _, err := s.PredictPeriod(g.StudentID, classID, periodID, true); err != nil {
			if errors.Is(err, ErrInsufficientTrainingData) {
				return created, err
			}
			s.logger.Warn("failed to build retrospective prediction",
				zap.String("student_id", g.StudentID.String()),
				zap.String("period_id", periodID.String()),
				zap.Error(err))
			continue
		}
		created++
	}

	return created, nil
}

func (s *predictionService) ResolvePrediction(studentID, classID, periodID uuid.UUID, actualGrade float64) (*models.PredictionHistory, error) {
	prediction, err := s.predictionRepo.GetPrediction(studentID, classID, periodID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}

	// Период, однажды сопоставленный с реальностью, больше не прогнозируется
	exists, err := s.predictionRepo.HistoryExists(studentID, classID, periodID)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := s.predictionRepo.DeletePrediction(studentID, classID, periodID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	difference := actualGrade - prediction.PredictedGrade
	history := &models.PredictionHistory{
		StudentID:              studentID,
		ClassID:                classID,
		PeriodID:               periodID,
		PredictedGrade:         prediction.PredictedGrade,
		ActualGrade:            actualGrade,
		Difference:             difference,
		AbsoluteError:          abs(difference),
		PredictionConfidence:   prediction.Confidence,
		PredictionModelVersion: prediction.ModelVersion,
		PredictionDate:         prediction.CreatedAt,
		ActualGradeDate:        time.Now(),
	}

	if err := s.predictionRepo.CreateHistory(history); err != nil {
		return nil, fmt.Errorf("failed to create prediction history: %w", err)
	}

	if err := s.predictionRepo.DeletePrediction(studentID, classID, periodID); err != nil {
		return nil, fmt.Errorf("failed to delete resolved prediction: %w", err)
	}

	s.logger.Info("prediction resolved",
		zap.String("student_id", studentID.String()),
		zap.String("period_id", periodID.String()),
		zap.Float64("predicted", history.PredictedGrade),
		zap.Float64("actual", history.ActualGrade),
		zap.Float64("absolute_error", history.AbsoluteError))

	return history, nil
}

func (s *predictionService) AccuracyStats(classID uuid.UUID) (*AccuracyStats, error) {
	history, err := s.predictionRepo.ListHistoryByClass(classID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction history: %w", err)
	}

	stats := &AccuracyStats{Count: len(history)}
	if len(history) == 0 {
		return stats, nil
	}

	predicted := make([]float64, len(history))
	actual := make([]float64, len(history))
	for i, h := range history {
		predicted[i] = h.PredictedGrade
		actual[i] = h.ActualGrade
		stats.MeanAbsoluteError += h.AbsoluteError
		stats.MeanDifference += h.Difference
	}
	stats.MeanAbsoluteError /= float64(len(history))
	stats.MeanDifference /= float64(len(history))
	if len(history) > 1 {
		stats.Correlation = stat.Correlation(predicted, actual, nil)
	}

	return stats, nil
}

// notifyAtRisk отправляет предупреждение преподавателю; сбой уведомления не
// влияет на результат прогноза
func (s *predictionService) notifyAtRisk(studentID, classID uuid.UUID, predicted, confidence float64) {
	if s.bot == nil {
		return
	}

	student, err := s.academicRepo.GetStudent(studentID)
	if err != nil {
		return
	}
	class, err := s.academicRepo.GetClass(classID)
	if err != nil {
		return
	}

	name := student.FirstName + " " + student.LastName
	if err := s.bot.NotifyStudentAtRisk(name, class.Name, predicted, confidence); err != nil {
		s.logger.Warn("failed to send at-risk notification", zap.Error(err))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
