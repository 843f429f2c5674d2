package repository

import (
	"errors"

	"github.com/rodryv99/backend-smart-class/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionRepository интерфейс для работы с прогнозами, их историей и
// записями обученных моделей
type PredictionRepository interface {
	// Живые прогнозы
	GetPrediction(studentID, classID, periodID uuid.UUID) (*models.Prediction, error)
	UpsertPrediction(prediction *models.Prediction) error
	DeletePrediction(studentID, classID, periodID uuid.UUID) error
	ListPredictionsByClass(classID uuid.UUID) ([]models.Prediction, error)

	// История "прогноз против реальности"
	CreateHistory(history *models.PredictionHistory) error
	HistoryExists(studentID, classID, periodID uuid.UUID) (bool, error)
	ListHistoryByClass(classID uuid.UUID) ([]models.PredictionHistory, error)

	// Записи моделей
	GetActiveModel(classID uuid.UUID) (*models.MLModel, error)
	ActivateModel(model *models.MLModel) error
	ListModelsByClass(classID uuid.UUID) ([]models.MLModel, error)
}

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository создает новый репозиторий прогнозов
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) GetPrediction(studentID, classID, periodID uuid.UUID) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.
		Where("student_id = ? AND class_id = ? AND predicted_period_id = ?", studentID, classID, periodID).
		First(&prediction).Error
	return &prediction, err
}

// UpsertPrediction создает или заменяет прогноз по ключу (ученик, класс, период)
func (r *predictionRepository) UpsertPrediction(prediction *models.Prediction) error {
	var existing models.Prediction
	err := r.db.
		Where("student_id = ? AND class_id = ? AND predicted_period_id = ?",
			prediction.StudentID, prediction.ClassID, prediction.PredictedPeriodID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if prediction.ID == uuid.Nil {
			prediction.ID = uuid.New()
		}
		return r.db.Create(prediction).Error
	}
	if err != nil {
		return err
	}

	existing.PredictedGrade = prediction.PredictedGrade
	existing.Confidence = prediction.Confidence
	existing.AvgPreviousGrades = prediction.AvgPreviousGrades
	existing.AttendancePercentage = prediction.AttendancePercentage
	existing.ParticipationAverage = prediction.ParticipationAverage
	existing.ModelVersion = prediction.ModelVersion
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*prediction = existing
	return nil
}

func (r *predictionRepository) DeletePrediction(studentID, classID, periodID uuid.UUID) error {
	return r.db.
		Where("student_id = ? AND class_id = ? AND predicted_period_id = ?", studentID, classID, periodID).
		Delete(&models.Prediction{}).Error
}

func (r *predictionRepository) ListPredictionsByClass(classID uuid.UUID) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.Where("class_id = ?", classID).
		Order("created_at DESC").Find(&predictions).Error
	return predictions, err
}

func (r *predictionRepository) CreateHistory(history *models.PredictionHistory) error {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	return r.db.Create(history).Error
}

func (r *predictionRepository) HistoryExists(studentID, classID, periodID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.PredictionHistory{}).
		Where("student_id = ? AND class_id = ? AND period_id = ?", studentID, classID, periodID).
		Count(&count).Error
	return count > 0, err
}

func (r *predictionRepository) ListHistoryByClass(classID uuid.UUID) ([]models.PredictionHistory, error) {
	var history []models.PredictionHistory
	err := r.db.Where("class_id = ?", classID).
		Order("actual_grade_date DESC").Find(&history).Error
	return history, err
}

func (r *predictionRepository) GetActiveModel(classID uuid.UUID) (*models.MLModel, error) {
	var model models.MLModel
	err := r.db.
		Where("class_id = ? AND is_active = ?", classID, true).
		Order("created_at DESC").
		First(&model).Error
	return &model, err
}

// ActivateModel в одной транзакции деактивирует прежние модели класса и
// сохраняет новую активную запись
func (r *predictionRepository) ActivateModel(model *models.MLModel) error {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	model.IsActive = true

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MLModel{}).
			Where("class_id = ?", model.ClassID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
}

func (r *predictionRepository) ListModelsByClass(classID uuid.UUID) ([]models.MLModel, error) {
	var modelRecords []models.MLModel
	err := r.db.Where("class_id = ?", classID).
		Order("created_at DESC").Find(&modelRecords).Error
	return modelRecords, err
}
