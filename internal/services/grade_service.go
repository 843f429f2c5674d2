package services

import (
	"errors"
	"fmt"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/pkg/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradeInput представляет компоненты оценки, приходящие снаружи
type GradeInput struct {
	Ser            float64 `json:"ser"`
	Saber          float64 `json:"saber"`
	Hacer          float64 `json:"hacer"`
	Decidir        float64 `json:"decidir"`
	Autoevaluacion float64 `json:"autoevaluacion"`
}

// GradeService интерфейс для работы с оценками и итоговыми оценками
type GradeService interface {
	CreateGrade(studentID, classID, periodID uuid.UUID, input GradeInput) (*models.Grade, error)
	UpdateGrade(id uuid.UUID, input GradeInput) (*models.Grade, error)
	DeleteGrade(id uuid.UUID) error

	GetGrade(id uuid.UUID) (*models.Grade, error)
	ListStudentGrades(studentID, classID uuid.UUID) ([]models.Grade, error)
	ListClassGrades(classID uuid.UUID) ([]models.Grade, error)

	GetFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error)
	RecalculateFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error)
}

type gradeService struct {
	gradeRepo    repository.GradeRepository
	academicRepo repository.AcademicRepository
	predictions  PredictionService
	queue        *tasks.Queue
	logger       *zap.Logger
}

// NewGradeService создает новый сервис оценок
func NewGradeService(
	gradeRepo repository.GradeRepository,
	academicRepo repository.AcademicRepository,
	predictions PredictionService,
	queue *tasks.Queue,
	logger *zap.Logger,
) GradeService {
	return &gradeService{
		gradeRepo:    gradeRepo,
		academicRepo: academicRepo,
		predictions:  predictions,
		queue:        queue,
		logger:       logger,
	}
}

// validateInput проверяет границы боливийских компонентов оценки
func validateInput(input GradeInput) error {
	bounds := []struct {
		name  string
		value float64
		max   float64
	}{
		{"ser", input.Ser, 5},
		{"saber", input.Saber, 45},
		{"hacer", input.Hacer, 40},
		{"decidir", input.Decidir, 5},
		{"autoevaluacion", input.Autoevaluacion, 5},
	}
	for _, b := range bounds {
		if b.value < 0 || b.value > b.max {
			return fmt.Errorf("%w: %s=%.2f is outside [0, %.0f]", ErrSubscoreOutOfRange, b.name, b.value, b.max)
		}
	}
	return nil
}

func (s *gradeService) CreateGrade(studentID, classID, periodID uuid.UUID, input GradeInput) (*models.Grade, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	enrolled, err := s.academicRepo.IsStudentEnrolled(classID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrStudentNotEnrolled
	}

	assigned, err := s.academicRepo.IsPeriodAssigned(classID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to check period assignment: %w", err)
	}
	if !assigned {
		return nil, ErrPeriodNotAssigned
	}

	grade := &models.Grade{
		StudentID:      studentID,
		ClassID:        classID,
		PeriodID:       periodID,
		Ser:            input.Ser,
		Saber:          input.Saber,
		Hacer:          input.Hacer,
		Decidir:        input.Decidir,
		Autoevaluacion: input.Autoevaluacion,
	}
	grade.Recalculate()

	if err := s.gradeRepo.Create(grade); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}

	s.afterGradeWrite(grade, true)
	return grade, nil
}

func (s *gradeService) UpdateGrade(id uuid.UUID, input GradeInput) (*models.Grade, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	grade, err := s.gradeRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load grade: %w", err)
	}

	grade.Ser = input.Ser
	grade.Saber = input.Saber
	grade.Hacer = input.Hacer
	grade.Decidir = input.Decidir
	grade.Autoevaluacion = input.Autoevaluacion
	grade.Recalculate()

	if err := s.gradeRepo.Update(grade); err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}

	s.afterGradeWrite(grade, false)
	return grade, nil
}

func (s *gradeService) DeleteGrade(id uuid.UUID) error {
	grade, err := s.gradeRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to load grade: %w", err)
	}

	if err := s.gradeRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}

	s.afterGradeWrite(grade, false)
	return nil
}

// afterGradeWrite выполняет побочные эффекты записи оценки: сопоставление
// прогноза с реальностью, пересчет итоговой оценки и фоновое обновление
// прогнозов. Сбой любого из них логируется, но никогда не отменяет уже
// состоявшуюся запись оценки.
func (s *gradeService) afterGradeWrite(grade *models.Grade, created bool) {
	// История "прогноз против реальности" фиксируется только при первом
	// появлении оценки периода; правки и удаления ее не трогают
	if created {
		if _, err := s.predictions.ResolvePrediction(grade.StudentID, grade.ClassID, grade.PeriodID, grade.NotaTotal); err != nil {
			s.logger.Warn("failed to resolve prediction",
				zap.String("student_id", grade.StudentID.String()),
				zap.String("period_id", grade.PeriodID.String()),
				zap.Error(err))
		}
	}

	if _, err := s.RecalculateFinalGrade(grade.StudentID, grade.ClassID); err != nil {
		s.logger.Warn("failed to recalculate final grade",
			zap.String("student_id", grade.StudentID.String()),
			zap.String("class_id", grade.ClassID.String()),
			zap.Error(err))
	}

	studentID, classID := grade.StudentID, grade.ClassID
	err := s.queue.Enqueue(tasks.Task{
		Name: "refresh_prediction",
		Run: func() error {
			return s.predictions.RefreshStudent(studentID, classID)
		},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue prediction refresh", zap.Error(err))
	}
}

func (s *gradeService) GetGrade(id uuid.UUID) (*models.Grade, error) {
	return s.gradeRepo.GetByID(id)
}

func (s *gradeService) ListStudentGrades(studentID, classID uuid.UUID) ([]models.Grade, error) {
	return s.gradeRepo.ListByStudent(studentID, classID, nil)
}

func (s *gradeService) ListClassGrades(classID uuid.UUID) ([]models.Grade, error) {
	return s.gradeRepo.ListByClass(classID)
}

func (s *gradeService) GetFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error) {
	return s.gradeRepo.GetFinalGrade(studentID, classID)
}

// RecalculateFinalGrade пересчитывает итоговую оценку как среднее итоговых нот
// всех оцененных периодов. Без единой оценки итог обнуляется, а не удаляется:
// факт "ученик остался без оценок" тоже состояние.
func (s *gradeService) RecalculateFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error) {
	grades, err := s.gradeRepo.ListByStudent(studentID, classID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load grades: %w", err)
	}

	finalGrade := &models.FinalGrade{
		StudentID:   studentID,
		ClassID:     classID,
		EstadoFinal: models.StatusFailed,
	}

	if len(grades) > 0 {
		var sum float64
		for _, g := range grades {
			sum += g.NotaTotal
		}
		finalGrade.NotaFinal = sum / float64(len(grades))
		finalGrade.PeriodsCount = len(grades)
		if finalGrade.NotaFinal >= models.PassingGrade {
			finalGrade.EstadoFinal = models.StatusApproved
		}
	}

	if err := s.gradeRepo.UpsertFinalGrade(finalGrade); err != nil {
		return nil, fmt.Errorf("failed to save final grade: %w", err)
	}

	return finalGrade, nil
}

// IsNotFound сообщает, указывает ли ошибка на отсутствие записи
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
