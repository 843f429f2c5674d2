package models

import (
	"time"

	"github.com/google/uuid"
)

// GradeStatus определяет итоговый статус оценки
type GradeStatus string

const (
	StatusApproved GradeStatus = "approved"
	StatusFailed   GradeStatus = "failed"
)

// PassingGrade — порог, начиная с которого оценка считается зачтенной
const PassingGrade = 51.0

// Grade представляет оценку ученика за период.
// Содержит боливийские компоненты оценивания: Ser, Saber, Hacer, Decidir, Autoevaluación.
type Grade struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_grade_key"`
	ClassID   uuid.UUID `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_grade_key"`
	PeriodID  uuid.UUID `json:"period_id" gorm:"type:text;not null;uniqueIndex:idx_grade_key"`

	Ser            float64 `json:"ser" gorm:"default:0"`            // 0-5
	Saber          float64 `json:"saber" gorm:"default:0"`          // 0-45
	Hacer          float64 `json:"hacer" gorm:"default:0"`          // 0-40
	Decidir        float64 `json:"decidir" gorm:"default:0"`        // 0-5
	Autoevaluacion float64 `json:"autoevaluacion" gorm:"default:0"` // 0-5

	// Вычисляемые поля: всегда пересчитываются при записи, никогда не задаются снаружи
	NotaTotal float64     `json:"nota_total" gorm:"default:0"`
	Estado    GradeStatus `json:"estado" gorm:"default:'failed'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Period  *Period  `json:"period,omitempty" gorm:"foreignKey:PeriodID"`
}

// Recalculate пересчитывает итоговую ноту и статус из компонентов
func (g *Grade) Recalculate() {
	g.NotaTotal = g.Ser + g.Saber + g.Hacer + g.Decidir + g.Autoevaluacion
	if g.NotaTotal >= PassingGrade {
		g.Estado = StatusApproved
	} else {
		g.Estado = StatusFailed
	}
}

// FinalGrade представляет итоговую оценку за класс: среднее по всем периодам
type FinalGrade struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_final_grade_key"`
	ClassID   uuid.UUID `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_final_grade_key"`

	NotaFinal    float64     `json:"nota_final" gorm:"default:0"`
	EstadoFinal  GradeStatus `json:"estado_final" gorm:"default:'failed'"`
	PeriodsCount int         `json:"periods_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
