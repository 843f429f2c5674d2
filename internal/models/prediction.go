package models

import (
	"time"

	"github.com/google/uuid"
)

// Prediction представляет живой прогноз оценки на еще не оцененный период.
// На пару (ученик, класс, период) существует не больше одного прогноза.
type Prediction struct {
	ID                uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	StudentID         uuid.UUID `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_key"`
	ClassID           uuid.UUID `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_key"`
	PredictedPeriodID uuid.UUID `json:"predicted_period_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_key"`

	PredictedGrade float64 `json:"predicted_grade"` // 0-100
	Confidence     float64 `json:"confidence"`      // 0-100%

	// Признаки, на которых построен прогноз
	AvgPreviousGrades    float64 `json:"avg_previous_grades"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	ParticipationAverage float64 `json:"participation_average"`

	ModelVersion string    `json:"model_version" gorm:"size:50"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PredictionHistory представляет снимок "прогноз против реальности".
// Создается ровно один раз при появлении реальной оценки и больше не меняется.
type PredictionHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_history_key"`
	ClassID   uuid.UUID `json:"class_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_history_key"`
	PeriodID  uuid.UUID `json:"period_id" gorm:"type:text;not null;uniqueIndex:idx_prediction_history_key"`

	PredictedGrade float64 `json:"predicted_grade"`
	ActualGrade    float64 `json:"actual_grade"`
	Difference     float64 `json:"difference"`     // actual - predicted
	AbsoluteError  float64 `json:"absolute_error"` // |difference|

	PredictionConfidence   float64 `json:"prediction_confidence"`
	PredictionModelVersion string  `json:"prediction_model_version" gorm:"size:50"`

	PredictionDate  time.Time `json:"prediction_date"`
	ActualGradeDate time.Time `json:"actual_grade_date"`
}

// MLModel представляет версию обученной модели для класса.
// В любой момент активна не больше одной модели на класс.
type MLModel struct {
	ID      uuid.UUID `json:"id" gorm:"type:text;primary_key"`
	ClassID uuid.UUID `json:"class_id" gorm:"type:text;not null;index"`

	ModelVersion string `json:"model_version" gorm:"size:50"`
	Algorithm    string `json:"algorithm" gorm:"size:50;default:'RandomForest'"`

	TrainingScore     float64 `json:"training_score"`
	ValidationScore   float64 `json:"validation_score"`
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
	TrainingSamples   int     `json:"training_samples"`

	ModelFilePath string `json:"model_file_path" gorm:"size:255"`
	IsActive      bool   `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
}
