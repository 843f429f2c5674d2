package handlers

import (
	"errors"
	"net/http"

	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PredictionHandler представляет обработчик прогнозов
type PredictionHandler struct {
	predictionService services.PredictionService
	predictionRepo    repository.PredictionRepository
}

// NewPredictionHandler создает новый обработчик прогнозов
func NewPredictionHandler(predictionService services.PredictionService, predictionRepo repository.PredictionRepository) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		predictionRepo:    predictionRepo,
	}
}

// TrainModel обучает модель класса по требованию
func (h *PredictionHandler) TrainModel(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	model, err := h.predictionService.Train(classID)
	if err != nil {
		c.JSON(predictionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, model)
}

// PredictStudent строит прогноз ученика на ближайший неоцененный период
func (h *PredictionHandler) PredictStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	prediction, err := h.predictionService.PredictNextPeriod(studentID, classID)
	if err != nil {
		c.JSON(predictionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if prediction == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to predict for this student"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// RefreshClass пересчитывает прогнозы всех учеников класса
func (h *PredictionHandler) RefreshClass(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	updated, err := h.predictionService.RefreshClassPredictions(classID)
	if err != nil {
		c.JSON(predictionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// GenerateRetrospective строит ретроспективные прогнозы класса на период
func (h *PredictionHandler) GenerateRetrospective(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}
	periodID, err := uuid.Parse(c.Param("period_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period ID"})
		return
	}

	created, err := h.predictionService.GenerateRetrospective(classID, periodID)
	if err != nil {
		c.JSON(predictionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// GetAccuracy возвращает сводку точности прогнозов класса
func (h *PredictionHandler) GetAccuracy(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	stats, err := h.predictionService.AccuracyStats(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetClassPredictions возвращает живые прогнозы класса
func (h *PredictionHandler) GetClassPredictions(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	predictions, err := h.predictionRepo.ListPredictionsByClass(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, predictions)
}

// GetPredictionHistory возвращает историю "прогноз против реальности" класса
func (h *PredictionHandler) GetPredictionHistory(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	history, err := h.predictionRepo.ListHistoryByClass(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetModels возвращает записи обученных моделей класса
func (h *PredictionHandler) GetModels(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	records, err := h.predictionRepo.ListModelsByClass(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// predictionErrorStatus переводит ошибки движка прогнозов в HTTP-статусы
func predictionErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInsufficientTrainingData),
		errors.Is(err, services.ErrNoGroundTruth),
		errors.Is(err, services.ErrNoHistory):
		return http.StatusConflict
	case services.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
