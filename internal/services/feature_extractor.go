package services

import (
	"fmt"

	"github.com/rodryv99/backend-smart-class/internal/repository"

	"github.com/google/uuid"
)

// Значения по умолчанию при полном отсутствии записей посещаемости или участия
// в окне признаков. Политика источника данных: считаем посещаемость типичной
// (85%), участие средним (2.0). Менять только осознанно — это сдвигает
// поведение модели.
const (
	defaultAttendancePercentage = 85.0
	defaultParticipationAverage = 2.0
)

// StudentFeatures представляет вектор признаков ученика внутри класса
type StudentFeatures struct {
	AvgPreviousGrades    float64 `json:"avg_previous_grades"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	ParticipationAverage float64 `json:"participation_average"`
	GradesUsed           int     `json:"grades_used"`
}

// Vector возвращает признаки в порядке, ожидаемом моделью
func (f *StudentFeatures) Vector() []float64 {
	return []float64{f.AvgPreviousGrades, f.AttendancePercentage, f.ParticipationAverage}
}

// FeatureExtractor строит вектор признаков ученика из его истории в классе
type FeatureExtractor struct {
	gradeRepo    repository.GradeRepository
	academicRepo repository.AcademicRepository
}

// NewFeatureExtractor создает новый экстрактор признаков
func NewFeatureExtractor(gradeRepo repository.GradeRepository, academicRepo repository.AcademicRepository) *FeatureExtractor {
	return &FeatureExtractor{
		gradeRepo:    gradeRepo,
		academicRepo: academicRepo,
	}
}

// Extract вычисляет признаки по заданному подмножеству периодов.
// Пустой periodIDs означает "все периоды". Возвращает (nil, nil), если у
// ученика нет ни одной оценки в окне: строить признаки не из чего, и это
// ожидаемое состояние, а не ошибка.
func (e *FeatureExtractor) Extract(studentID, classID uuid.UUID, periodIDs []uuid.UUID) (*StudentFeatures, error) {
	grades, err := e.gradeRepo.ListByStudent(studentID, classID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load grades: %w", err)
	}
	if len(grades) == 0 {
		return nil, nil
	}

	var totalSum float64
	for _, g := range grades {
		totalSum += g.NotaTotal
	}

	features := &StudentFeatures{
		AvgPreviousGrades:    totalSum / float64(len(grades)),
		AttendancePercentage: defaultAttendancePercentage,
		ParticipationAverage: defaultParticipationAverage,
		GradesUsed:           len(grades),
	}

	attendances, err := e.academicRepo.GetAttendance(studentID, classID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	if len(attendances) > 0 {
		present := 0
		for _, a := range attendances {
			if a.Present() {
				present++
			}
		}
		features.AttendancePercentage = 100 * float64(present) / float64(len(attendances))
	}

	participations, err := e.academicRepo.GetParticipation(studentID, classID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load participation: %w", err)
	}
	if len(participations) > 0 {
		var scoreSum float64
		for _, p := range participations {
			scoreSum += p.Level.Score()
		}
		features.ParticipationAverage = scoreSum / float64(len(participations))
	}

	return features, nil
}
