package handlers

import (
	"errors"
	"net/http"

	"github.com/rodryv99/backend-smart-class/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GradeHandler представляет обработчик оценок
type GradeHandler struct {
	gradeService services.GradeService
}

// NewGradeHandler создает новый обработчик оценок
func NewGradeHandler(gradeService services.GradeService) *GradeHandler {
	return &GradeHandler{
		gradeService: gradeService,
	}
}

// CreateGradeRequest представляет запрос на создание оценки
type CreateGradeRequest struct {
	StudentID      uuid.UUID `json:"student_id" binding:"required"`
	ClassID        uuid.UUID `json:"class_id" binding:"required"`
	PeriodID       uuid.UUID `json:"period_id" binding:"required"`
	Ser            float64   `json:"ser"`
	Saber          float64   `json:"saber"`
	Hacer          float64   `json:"hacer"`
	Decidir        float64   `json:"decidir"`
	Autoevaluacion float64   `json:"autoevaluacion"`
}

// UpdateGradeRequest представляет запрос на изменение компонентов оценки
type UpdateGradeRequest struct {
	Ser            float64 `json:"ser"`
	Saber          float64 `json:"saber"`
	Hacer          float64 `json:"hacer"`
	Decidir        float64 `json:"decidir"`
	Autoevaluacion float64 `json:"autoevaluacion"`
}

// CreateGrade создает оценку ученика за период
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.gradeService.CreateGrade(req.StudentID, req.ClassID, req.PeriodID, services.GradeInput{
		Ser:            req.Ser,
		Saber:          req.Saber,
		Hacer:          req.Hacer,
		Decidir:        req.Decidir,
		Autoevaluacion: req.Autoevaluacion,
	})
	if err != nil {
		c.JSON(gradeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, grade)
}

// UpdateGrade изменяет компоненты существующей оценки
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	gradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grade ID"})
		return
	}

	var req UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.gradeService.UpdateGrade(gradeID, services.GradeInput{
		Ser:            req.Ser,
		Saber:          req.Saber,
		Hacer:          req.Hacer,
		Decidir:        req.Decidir,
		Autoevaluacion: req.Autoevaluacion,
	})
	if err != nil {
		c.JSON(gradeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grade)
}

// DeleteGrade удаляет оценку
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	gradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grade ID"})
		return
	}

	if err := h.gradeService.DeleteGrade(gradeID); err != nil {
		c.JSON(gradeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Grade deleted"})
}

// GetGrade возвращает оценку по ID
func (h *GradeHandler) GetGrade(c *gin.Context) {
	gradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grade ID"})
		return
	}

	grade, err := h.gradeService.GetGrade(gradeID)
	if err != nil {
		c.JSON(gradeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grade)
}

// GetStudentGrades возвращает оценки ученика в классе по всем периодам
func (h *GradeHandler) GetStudentGrades(c *gin.Context) {
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

	grades, err := h.gradeService.ListStudentGrades(studentID, classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grades)
}

// GetClassGrades возвращает все оценки класса
func (h *GradeHandler) GetClassGrades(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	grades, err := h.gradeService.ListClassGrades(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, grades)
}

// GetFinalGrade возвращает итоговую оценку ученика за класс
func (h *GradeHandler) GetFinalGrade(c *gin.Context) {
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

	finalGrade, err := h.gradeService.GetFinalGrade(studentID, classID)
	if err != nil {
		if services.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Final grade not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, finalGrade)
}

// gradeErrorStatus переводит ошибки сервиса оценок в HTTP-статусы
func gradeErrorStatus(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSubscoreOutOfRange),
		errors.Is(err, services.ErrStudentNotEnrolled),
		errors.Is(err, services.ErrPeriodNotAssigned):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
