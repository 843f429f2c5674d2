package services

import "errors"

// Ожидаемые условия "результата нет" — это не сбои, а нормальные состояния
// (новый класс, единственная оценка и т.п.), поэтому вызывающий код сравнивает
// их через errors.Is и отвечает "прогноз пока недоступен".
var (
	// ErrInsufficientTrainingData — обучающих примеров меньше минимума
	ErrInsufficientTrainingData = errors.New("insufficient training data")
	// ErrNoGroundTruth — у целевого периода нет реальной оценки для сравнения
	ErrNoGroundTruth = errors.New("no recorded grade for target period")
	// ErrNoHistory — у ученика нет исторических оценок для построения признаков
	ErrNoHistory = errors.New("no historical grades to predict from")
)

// Нарушения целостности данных: отклоняются на границе записи
var (
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this class")
	ErrPeriodNotAssigned  = errors.New("period is not assigned to this class")
	ErrSubscoreOutOfRange = errors.New("grade component out of range")
)
