package services

import (
	"sync"
	"testing"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/pkg/tasks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newGradeService собирает сервис оценок; syntheticSamples=0 держит обучение
// в состоянии "данных недостаточно", чтобы фоновые обновления не шумели
func (f *fixture) newGradeService(predictions PredictionService, queue *tasks.Queue) GradeService {
	if predictions == nil {
		predictions = f.newPredictionService(0, 20)
	}
	return NewGradeService(f.gradeRepo, f.academicRepo, predictions, queue, zap.NewNop())
}

func TestCreateGradeComputesTotalAndStatus(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(2)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	grade, err := svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{
		Ser: 4, Saber: 30, Hacer: 25, Decidir: 4, Autoevaluacion: 3,
	})
	require.NoError(t, err)

	assert.InDelta(t, 66, grade.NotaTotal, 0.001)
	assert.Equal(t, models.StatusApproved, grade.Estado)

	failing, err := svc.CreateGrade(studentID, classID, periodIDs[1], GradeInput{
		Ser: 2, Saber: 20, Hacer: 15, Decidir: 2, Autoevaluacion: 2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 41, failing.NotaTotal, 0.001)
	assert.Equal(t, models.StatusFailed, failing.Estado)
}

func TestCreateGradeValidation(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(1)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	// Компонент за пределами шкалы
	_, err := svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{Saber: 46})
	assert.ErrorIs(t, err, ErrSubscoreOutOfRange)

	_, err = svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{Ser: -1})
	assert.ErrorIs(t, err, ErrSubscoreOutOfRange)

	// Незачисленный ученик
	outsider := &models.Student{FirstName: "Luis", LastName: "Test"}
	require.NoError(t, f.academicRepo.CreateStudent(outsider))
	_, err = svc.CreateGrade(outsider.ID, classID, periodIDs[0], GradeInput{Saber: 30})
	assert.ErrorIs(t, err, ErrStudentNotEnrolled)

	// Период чужого класса
	_, otherPeriods := f.createClassWithPeriods(1)
	_, err = svc.CreateGrade(studentID, classID, otherPeriods[0], GradeInput{Saber: 30})
	assert.ErrorIs(t, err, ErrPeriodNotAssigned)
}

func TestUpdateGradeRecalculates(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(1)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	grade, err := svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{Saber: 20, Hacer: 20})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, grade.Estado)

	updated, err := svc.UpdateGrade(grade.ID, GradeInput{Ser: 5, Saber: 40, Hacer: 35, Decidir: 5, Autoevaluacion: 5})
	require.NoError(t, err)
	assert.InDelta(t, 90, updated.NotaTotal, 0.001)
	assert.Equal(t, models.StatusApproved, updated.Estado)
}

func TestFinalGradeIsMeanOfPeriods(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(2)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	_, err := svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{Ser: 3, Saber: 27, Hacer: 24, Decidir: 3, Autoevaluacion: 3})
	require.NoError(t, err)
	_, err = svc.CreateGrade(studentID, classID, periodIDs[1], GradeInput{Ser: 4, Saber: 36, Hacer: 32, Decidir: 4, Autoevaluacion: 4})
	require.NoError(t, err)

	finalGrade, err := svc.GetFinalGrade(studentID, classID)
	require.NoError(t, err)
	assert.InDelta(t, 70, finalGrade.NotaFinal, 0.001)
	assert.Equal(t, 2, finalGrade.PeriodsCount)
	assert.Equal(t, models.StatusApproved, finalGrade.EstadoFinal)
}

func TestDeleteLastGradeZeroesFinalGrade(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(1)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	grade, err := svc.CreateGrade(studentID, classID, periodIDs[0], GradeInput{Ser: 4, Saber: 40, Hacer: 30, Decidir: 4, Autoevaluacion: 4})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGrade(grade.ID))

	finalGrade, err := svc.GetFinalGrade(studentID, classID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, finalGrade.NotaFinal)
	assert.Equal(t, 0, finalGrade.PeriodsCount)
	assert.Equal(t, models.StatusFailed, finalGrade.EstadoFinal)
}

func TestConcurrentGradeWritesSettleFinalGrade(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(4)
	studentID := f.enrollStudent(classID, "Ana")
	queue := tasks.NewQueue(2, 16, zap.NewNop())
	defer queue.Close()
	svc := f.newGradeService(nil, queue)

	// Одно соединение: sqlite сериализует записи, гонка остается на уровне
	// сервиса (чтение всех оценок + перезапись итога)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	totals := []float64{60, 80, 40, 100}
	var wg sync.WaitGroup
	errs := make([]error, len(periodIDs))
	for i, periodID := range periodIDs {
		wg.Add(1)
		go func(i int, periodID uuid.UUID) {
			defer wg.Done()
			p := totals[i] / 100
			_, errs[i] = svc.CreateGrade(studentID, classID, periodID, GradeInput{
				Ser: p * 5, Saber: p * 45, Hacer: p * 40, Decidir: p * 5, Autoevaluacion: p * 5,
			})
		}(i, periodID)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// Параллельные пересчеты одной пары: побеждает последняя запись, но все
	// пишут один и тот же детерминированный результат
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.RecalculateFinalGrade(studentID, classID)
		}()
	}
	wg.Wait()

	grades, err := f.gradeRepo.ListByStudent(studentID, classID, nil)
	require.NoError(t, err)
	require.Len(t, grades, 4)
	var sum float64
	for _, g := range grades {
		sum += g.NotaTotal
	}

	finalGrade, err := svc.GetFinalGrade(studentID, classID)
	require.NoError(t, err)
	assert.InDelta(t, sum/4, finalGrade.NotaFinal, 0.001)
	assert.InDelta(t, 70, finalGrade.NotaFinal, 0.001)
	assert.Equal(t, 4, finalGrade.PeriodsCount)
	assert.Equal(t, models.StatusApproved, finalGrade.EstadoFinal)
}

func TestCreateGradeResolvesLivePrediction(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(3)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 60)
	f.addGradeTotal(studentID, classID, periodIDs[1], 70)

	predictions := f.newPredictionService(150, 20)
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	svc := f.newGradeService(predictions, queue)

	// Живой прогноз на третий период
	prediction, err := predictions.PredictNextPeriod(studentID, classID)
	require.NoError(t, err)
	require.NotNil(t, prediction)

	// Появление реальной оценки фиксирует историю и снимает прогноз
	_, err = svc.CreateGrade(studentID, classID, periodIDs[2], GradeInput{
		Ser: 4, Saber: 35, Hacer: 30, Decidir: 3, Autoevaluacion: 3,
	})
	require.NoError(t, err)
	queue.Close()

	records, err := f.predictionRepo.ListHistoryByClass(classID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, prediction.PredictedGrade, records[0].PredictedGrade)
	assert.InDelta(t, 75, records[0].ActualGrade, 0.001)
}

func TestUpdateGradeDoesNotTouchHistory(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(3)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 60)
	f.addGradeTotal(studentID, classID, periodIDs[1], 70)

	predictions := f.newPredictionService(150, 20)
	queue := tasks.NewQueue(1, 16, zap.NewNop())
	svc := f.newGradeService(predictions, queue)

	_, err := predictions.PredictNextPeriod(studentID, classID)
	require.NoError(t, err)
	grade, err := svc.CreateGrade(studentID, classID, periodIDs[2], GradeInput{
		Ser: 4, Saber: 35, Hacer: 30, Decidir: 3, Autoevaluacion: 3,
	})
	require.NoError(t, err)

	// Правка оценки не переписывает зафиксированную историю
	_, err = svc.UpdateGrade(grade.ID, GradeInput{Ser: 5, Saber: 40, Hacer: 35, Decidir: 4, Autoevaluacion: 4})
	require.NoError(t, err)
	queue.Close()

	records, err := f.predictionRepo.ListHistoryByClass(classID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 75, records[0].ActualGrade, 0.001)
}
