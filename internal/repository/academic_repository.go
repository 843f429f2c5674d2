package repository

import (
	"github.com/rodryv99/backend-smart-class/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AcademicRepository интерфейс для работы со справочником: классы, периоды,
// ученики, посещаемость и участие
type AcademicRepository interface {
	// Классы и периоды
	CreateClass(class *models.Class) error
	GetClass(id uuid.UUID) (*models.Class, error)
	CreatePeriod(period *models.Period) error
	AddPeriodToClass(classID, periodID uuid.UUID) error
	GetClassPeriods(classID uuid.UUID) ([]models.Period, error)
	IsPeriodAssigned(classID, periodID uuid.UUID) (bool, error)

	// Ученики
	CreateStudent(student *models.Student) error
	GetStudent(id uuid.UUID) (*models.Student, error)
	EnrollStudent(classID, studentID uuid.UUID) error
	GetEnrolledStudents(classID uuid.UUID) ([]models.Student, error)
	IsStudentEnrolled(classID, studentID uuid.UUID) (bool, error)

	// Посещаемость и участие; пустой periodIDs означает "за все периоды"
	CreateAttendance(attendance *models.Attendance) error
	GetAttendance(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Attendance, error)
	CreateParticipation(participation *models.Participation) error
	GetParticipation(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Participation, error)
}

type academicRepository struct {
	db *gorm.DB
}

// NewAcademicRepository создает новый репозиторий справочника
func NewAcademicRepository(db *gorm.DB) AcademicRepository {
	return &academicRepository{db: db}
}

func (r *academicRepository) CreateClass(class *models.Class) error {
	if class.ID == uuid.Nil {
		class.ID = uuid.New()
	}
	return r.db.Create(class).Error
}

func (r *academicRepository) GetClass(id uuid.UUID) (*models.Class, error) {
	var class models.Class
	err := r.db.Where("id = ?", id).First(&class).Error
	return &class, err
}

func (r *academicRepository) CreatePeriod(period *models.Period) error {
	if period.ID == uuid.Nil {
		period.ID = uuid.New()
	}
	return r.db.Create(period).Error
}

func (r *academicRepository) AddPeriodToClass(classID, periodID uuid.UUID) error {
	return r.db.Exec(
		"INSERT INTO class_periods (class_id, period_id) VALUES (?, ?)",
		classID, periodID,
	).Error
}

// GetClassPeriods возвращает периоды класса, упорядоченные по типу и номеру
func (r *academicRepository) GetClassPeriods(classID uuid.UUID) ([]models.Period, error) {
	var periods []models.Period
	err := r.db.
		Joins("JOIN class_periods cp ON cp.period_id = periods.id").
		Where("cp.class_id = ?", classID).
		Order("periods.type, periods.number").
		Find(&periods).Error
	return periods, err
}

func (r *academicRepository) IsPeriodAssigned(classID, periodID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Table("class_periods").
		Where("class_id = ? AND period_id = ?", classID, periodID).
		Count(&count).Error
	return count > 0, err
}

func (r *academicRepository) CreateStudent(student *models.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	return r.db.Create(student).Error
}

func (r *academicRepository) GetStudent(id uuid.UUID) (*models.Student, error) {
	var student models.Student
	err := r.db.Where("id = ?", id).First(&student).Error
	return &student, err
}

func (r *academicRepository) EnrollStudent(classID, studentID uuid.UUID) error {
	return r.db.Exec(
		"INSERT INTO class_students (class_id, student_id) VALUES (?, ?)",
		classID, studentID,
	).Error
}

func (r *academicRepository) GetEnrolledStudents(classID uuid.UUID) ([]models.Student, error) {
	var students []models.Student
	err := r.db.
		Joins("JOIN class_students cs ON cs.student_id = students.id").
		Where("cs.class_id = ?", classID).
		Order("students.first_name, students.last_name").
		Find(&students).Error
	return students, err
}

func (r *academicRepository) IsStudentEnrolled(classID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Table("class_students").
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *academicRepository) CreateAttendance(attendance *models.Attendance) error {
	if attendance.ID == uuid.Nil {
		attendance.ID = uuid.New()
	}
	return r.db.Create(attendance).Error
}

func (r *academicRepository) GetAttendance(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Attendance, error) {
	var attendances []models.Attendance
	query := r.db.Where("student_id = ? AND class_id = ?", studentID, classID)
	if len(periodIDs) > 0 {
		query = query.Where("period_id IN ?", periodIDs)
	}
	err := query.Find(&attendances).Error
	return attendances, err
}

func (r *academicRepository) CreateParticipation(participation *models.Participation) error {
	if participation.ID == uuid.Nil {
		participation.ID = uuid.New()
	}
	return r.db.Create(participation).Error
}

func (r *academicRepository) GetParticipation(studentID, classID uuid.UUID, periodIDs []uuid.UUID) ([]models.Participation, error) {
	var participations []models.Participation
	query := r.db.Where("student_id = ? AND class_id = ?", studentID, classID)
	if len(periodIDs) > 0 {
		query = query.Where("period_id IN ?", periodIDs)
	}
	err := query.Find(&participations).Error
	return participations, err
}
