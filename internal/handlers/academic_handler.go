package handlers

import (
	"net/http"
	"time"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AcademicHandler представляет обработчик справочника: классы, периоды,
// ученики, посещаемость и участие
type AcademicHandler struct {
	academicRepo repository.AcademicRepository
}

// NewAcademicHandler создает новый обработчик справочника
func NewAcademicHandler(academicRepo repository.AcademicRepository) *AcademicHandler {
	return &AcademicHandler{
		academicRepo: academicRepo,
	}
}

// CreateClassRequest представляет запрос на создание класса
type CreateClassRequest struct {
	Code        string    `json:"code" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	Subject     string    `json:"subject"`
	Course      string    `json:"course"`
	Group       string    `json:"group"`
	Year        int       `json:"year" binding:"required"`
}

// CreatePeriodRequest представляет запрос на создание периода
type CreatePeriodRequest struct {
	Type      models.PeriodType `json:"period_type" binding:"required,oneof=bimestre trimestre"`
	Number    int               `json:"number" binding:"required,min=1,max=4"`
	Year      int               `json:"year" binding:"required"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
}

// CreateStudentRequest представляет запрос на создание ученика
type CreateStudentRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// CreateAttendanceRequest представляет запрос на запись посещаемости
type CreateAttendanceRequest struct {
	StudentID uuid.UUID               `json:"student_id" binding:"required"`
	PeriodID  uuid.UUID               `json:"period_id" binding:"required"`
	Date      time.Time               `json:"date" binding:"required"`
	Status    models.AttendanceStatus `json:"status" binding:"required,oneof=presente falta tardanza"`
}

// CreateParticipationRequest представляет запрос на запись участия
type CreateParticipationRequest struct {
	StudentID uuid.UUID                 `json:"student_id" binding:"required"`
	PeriodID  uuid.UUID                 `json:"period_id" binding:"required"`
	Date      time.Time                 `json:"date" binding:"required"`
	Level     models.ParticipationLevel `json:"level" binding:"required,oneof=alta media baja"`
}

// CreateClass создает класс
func (h *AcademicHandler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := &models.Class{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   req.TeacherID,
		Subject:     req.Subject,
		Course:      req.Course,
		Group:       req.Group,
		Year:        req.Year,
	}
	if err := h.academicRepo.CreateClass(class); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, class)
}

// GetClass возвращает класс по ID
func (h *AcademicHandler) GetClass(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	class, err := h.academicRepo.GetClass(classID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	c.JSON(http.StatusOK, class)
}

// CreatePeriod создает учебный период
func (h *AcademicHandler) CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period := &models.Period{
		Type:      req.Type,
		Number:    req.Number,
		Year:      req.Year,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.academicRepo.CreatePeriod(period); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, period)
}

// AssignPeriod привязывает период к классу
func (h *AcademicHandler) AssignPeriod(c *gin.Context) {
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

	if err := h.academicRepo.AddPeriodToClass(classID, periodID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Period assigned"})
}

// GetClassPeriods возвращает периоды класса в учебном порядке
func (h *AcademicHandler) GetClassPeriods(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	periods, err := h.academicRepo.GetClassPeriods(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, periods)
}

// CreateStudent создает ученика
func (h *AcademicHandler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := &models.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.academicRepo.CreateStudent(student); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, student)
}

// EnrollStudent зачисляет ученика в класс
func (h *AcademicHandler) EnrollStudent(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	if err := h.academicRepo.EnrollStudent(classID, studentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student enrolled"})
}

// GetEnrolledStudents возвращает список учеников класса
func (h *AcademicHandler) GetEnrolledStudents(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	students, err := h.academicRepo.GetEnrolledStudents(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, students)
}

// CreateAttendance записывает посещаемость ученика за день
func (h *AcademicHandler) CreateAttendance(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendance := &models.Attendance{
		ClassID:   classID,
		StudentID: req.StudentID,
		PeriodID:  req.PeriodID,
		Date:      req.Date,
		Status:    req.Status,
	}
	if err := h.academicRepo.CreateAttendance(attendance); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, attendance)
}

// CreateParticipation записывает участие ученика за день
func (h *AcademicHandler) CreateParticipation(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	var req CreateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participation := &models.Participation{
		ClassID:   classID,
		StudentID: req.StudentID,
		PeriodID:  req.PeriodID,
		Date:      req.Date,
		Level:     req.Level,
	}
	if err := h.academicRepo.CreateParticipation(participation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, participation)
}
