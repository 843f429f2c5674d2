package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeriodType определяет тип учебного периода
type PeriodType string

const (
	PeriodBimestre  PeriodType = "bimestre"
	PeriodTrimestre PeriodType = "trimestre"
)

// Period представляет учебный период (биместр или триместр)
type Period struct {
	ID        uuid.UUID  `json:"id" gorm:"type:text;primary_key"`
	Type      PeriodType `json:"period_type" gorm:"default:'bimestre';uniqueIndex:idx_period_key"`
	Number    int        `json:"number" gorm:"not null;uniqueIndex:idx_period_key"` // 1-4 для биместров, 1-3 для триместров
	Year      int        `json:"year" gorm:"not null;uniqueIndex:idx_period_key"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Student представляет профиль ученика
type Student struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Class представляет учебную клетку: преподаватель + предмет + курс + группа + год
type Class struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	TeacherID   uuid.UUID `json:"teacher_id" gorm:"type:text"`
	Subject     string    `json:"subject"`
	Course      string    `json:"course"`
	Group       string    `json:"group"`
	Year        int       `json:"year" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Связи
	Periods  []Period  `json:"periods,omitempty" gorm:"many2many:class_periods"`
	Students []Student `json:"students,omitempty" gorm:"many2many:class_students"`
}

// AttendanceStatus определяет статус посещаемости
type AttendanceStatus string

const (
	AttendancePresente AttendanceStatus = "presente"
	AttendanceFalta    AttendanceStatus = "falta"
	AttendanceTardanza AttendanceStatus = "tardanza"
)

// Attendance представляет запись посещаемости ученика за день
type Attendance struct {
	ID        uuid.UUID        `json:"id" gorm:"type:text;primary_key"`
	ClassID   uuid.UUID        `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_attendance_key"`
	StudentID uuid.UUID        `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_attendance_key"`
	PeriodID  uuid.UUID        `json:"period_id" gorm:"type:text;not null;uniqueIndex:idx_attendance_key"`
	Date      time.Time        `json:"date" gorm:"uniqueIndex:idx_attendance_key"`
	Status    AttendanceStatus `json:"status" gorm:"default:'presente'"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Present возвращает true, если ученик присутствовал (включая опоздание)
func (a *Attendance) Present() bool {
	return a.Status == AttendancePresente || a.Status == AttendanceTardanza
}

// ParticipationLevel определяет уровень участия на занятии
type ParticipationLevel string

const (
	ParticipationAlta  ParticipationLevel = "alta"
	ParticipationMedia ParticipationLevel = "media"
	ParticipationBaja  ParticipationLevel = "baja"
)

// Score переводит уровень участия в числовую шкалу: alta=3, media=2, baja=1
func (l ParticipationLevel) Score() float64 {
	switch l {
	case ParticipationAlta:
		return 3
	case ParticipationMedia:
		return 2
	default:
		return 1
	}
}

// Participation представляет запись участия ученика за день
type Participation struct {
	ID        uuid.UUID          `json:"id" gorm:"type:text;primary_key"`
	ClassID   uuid.UUID          `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_participation_key"`
	StudentID uuid.UUID          `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_participation_key"`
	PeriodID  uuid.UUID          `json:"period_id" gorm:"type:text;not null;uniqueIndex:idx_participation_key"`
	Date      time.Time          `json:"date" gorm:"uniqueIndex:idx_participation_key"`
	Level     ParticipationLevel `json:"level" gorm:"default:'media'"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
