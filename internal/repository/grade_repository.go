package repository

import (
	"errors"

	"github.com/rodryv99/backend-smart-class/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeRepository интерфейс для работы с оценками и итоговыми оценками
type GradeRepository interface {
	Create(grade *models.Grade) error
	GetByID(id uuid.UUID) (*models.Grade, error)
	GetByKey(studentID, classID, periodID uuid.UUID) (*models.Grade, error)
	Update(grade *models.Grade) error
	Delete(id uuid.UUID) error

	// ListByStudent возвращает оценки ученика в классе, упорядоченные по
	// типу и номеру периода; пустой periodIDs означает "за все периоды"
	ListByStudent(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Grade, error)
	ListByClass(classID uuid.UUID) ([]models.Grade, error)

	// Итоговые оценки
	GetFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error)
	UpsertFinalGrade(finalGrade *models.FinalGrade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository создает новый репозиторий оценок
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(grade *models.Grade) error {
	if grade.ID == uuid.Nil {
		grade.ID = uuid.New()
	}
	return r.db.Create(grade).Error
}

func (r *gradeRepository) GetByID(id uuid.UUID) (*models.Grade, error) {
	var grade models.Grade
	err := r.db.Preload("Student").Preload("Period").
		Where("id = ?", id).First(&grade).Error
	return &grade, err
}

func (r *gradeRepository) GetByKey(studentID, classID, periodID uuid.UUID) (*models.Grade, error) {
	var grade models.Grade
	err := r.db.
		Where("student_id = ? AND class_id = ? AND period_id = ?", studentID, classID, periodID).
		First(&grade).Error
	return &grade, err
}

func (r *gradeRepository) Update(grade *models.Grade) error {
	return r.db.Save(grade).Error
}

func (r *gradeRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Grade{}, "id = ?", id).Error
}

func (r *gradeRepository) ListByStudent(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Grade, error) {
	var grades []models.Grade
	query := r.db.Preload("Period").
		Joins("JOIN periods ON periods.id = grades.period_id").
		Where("grades.student_id = ? AND grades.class_id = ?", studentID, classID)
	if len(periodIDs) > 0 {
		query = query.Where("grades.period_id IN ?", periodIDs)
	}
	err := query.Order("periods.type, periods.number").Find(&grades).Error
	return grades, err
}

func (r *gradeRepository) ListByClass(classID uuid.UUID) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.db.Preload("Period").
		Joins("JOIN periods ON periods.id = grades.period_id").
		Where("grades.class_id = ?", classID).
		Order("grades.student_id, periods.type, periods.number").
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepository) GetFinalGrade(studentID, classID uuid.UUID) (*models.FinalGrade, error) {
	var finalGrade models.FinalGrade
	err := r.db.
		Where("student_id = ? AND class_id = ?", studentID, classID).
		First(&finalGrade).Error
	return &finalGrade, err
}

// UpsertFinalGrade создает или обновляет итоговую оценку пары (ученик, класс).
// При гонке двух пересчетов побеждает последняя запись; пересчет детерминирован
// по исходным оценкам, поэтому расхождение лечится следующей записью.
func (r *gradeRepository) UpsertFinalGrade(finalGrade *models.FinalGrade) error {
	var existing models.FinalGrade
	err := r.db.
		Where("student_id = ? AND class_id = ?", finalGrade.StudentID, finalGrade.ClassID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if finalGrade.ID == uuid.Nil {
			finalGrade.ID = uuid.New()
		}
		return r.db.Create(finalGrade).Error
	}
	if err != nil {
		return err
	}

	existing.NotaFinal = finalGrade.NotaFinal
	existing.EstadoFinal = finalGrade.EstadoFinal
	existing.PeriodsCount = finalGrade.PeriodsCount
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*finalGrade = existing
	return nil
}
