package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/pkg/forest"
	"github.com/rodryv99/backend-smart-class/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB создает изолированную in-memory базу с миграциями
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Period{},
		&models.Student{},
		&models.Class{},
		&models.Attendance{},
		&models.Participation{},
		&models.Grade{},
		&models.FinalGrade{},
		&models.Prediction{},
		&models.PredictionHistory{},
		&models.MLModel{},
	))

	return db
}

// fixture связывает репозитории и часто используемые билдеры тестовых данных
type fixture struct {
	t              *testing.T
	db             *gorm.DB
	academicRepo   repository.AcademicRepository
	gradeRepo      repository.GradeRepository
	predictionRepo repository.PredictionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	return &fixture{
		t:              t,
		db:             db,
		academicRepo:   repository.NewAcademicRepository(db),
		gradeRepo:      repository.NewGradeRepository(db),
		predictionRepo: repository.NewPredictionRepository(db),
	}
}

// createClassWithPeriods создает класс с numPeriods биместрами
func (f *fixture) createClassWithPeriods(numPeriods int) (uuid.UUID, []uuid.UUID) {
	f.t.Helper()

	class := &models.Class{
		Code: "TEST-" + uuid.NewString()[:8],
		Name: "Matemáticas Test",
		Year: 2026,
	}
	require.NoError(f.t, f.academicRepo.CreateClass(class))

	periodIDs := make([]uuid.UUID, 0, numPeriods)
	for n := 1; n <= numPeriods; n++ {
		period := &models.Period{
			Type:      models.PeriodBimestre,
			Number:    n,
			Year:      2026,
			StartDate: time.Date(2026, time.Month(n*2), 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(f.t, f.academicRepo.CreatePeriod(period))
		require.NoError(f.t, f.academicRepo.AddPeriodToClass(class.ID, period.ID))
		periodIDs = append(periodIDs, period.ID)
	}

	return class.ID, periodIDs
}

// enrollStudent создает и зачисляет ученика
func (f *fixture) enrollStudent(classID uuid.UUID, name string) uuid.UUID {
	f.t.Helper()

	student := &models.Student{FirstName: name, LastName: "Test"}
	require.NoError(f.t, f.academicRepo.CreateStudent(student))
	require.NoError(f.t, f.academicRepo.EnrollStudent(classID, student.ID))
	return student.ID
}

// addGradeTotal записывает оценку с заданной итоговой нотой, распределенной
// пропорционально по компонентам
func (f *fixture) addGradeTotal(studentID, classID, periodID uuid.UUID, total float64) *models.Grade {
	f.t.Helper()

	p := total / 100
	grade := &models.Grade{
		StudentID:      studentID,
		ClassID:        classID,
		PeriodID:       periodID,
		Ser:            p * 5,
		Saber:          p * 45,
		Hacer:          p * 40,
		Decidir:        p * 5,
		Autoevaluacion: p * 5,
	}
	grade.Recalculate()
	require.NoError(f.t, f.gradeRepo.Create(grade))
	return grade
}

// newExtractor возвращает экстрактор признаков поверх фикстуры
func (f *fixture) newExtractor() *FeatureExtractor {
	return NewFeatureExtractor(f.gradeRepo, f.academicRepo)
}

// newTrainer собирает тренер с уменьшенным лесом для скорости тестов
func (f *fixture) newTrainer(syntheticSamples, minSamples int) (*ModelTrainer, *storage.Storage) {
	f.t.Helper()

	artifacts, err := storage.NewStorage(f.t.TempDir())
	require.NoError(f.t, err)

	cfg := forest.DefaultConfig()
	cfg.NumTrees = 20

	builder := NewTrainingSetBuilder(
		f.gradeRepo, f.newExtractor(), NewSyntheticDataGenerator(cfg.Seed), syntheticSamples, zap.NewNop())
	return NewModelTrainer(builder, f.predictionRepo, artifacts, cfg, minSamples, zap.NewNop()), artifacts
}

// newPredictionService собирает движок прогнозов поверх фикстуры
func (f *fixture) newPredictionService(syntheticSamples, minSamples int) PredictionService {
	f.t.Helper()

	trainer, artifacts := f.newTrainer(syntheticSamples, minSamples)
	return NewPredictionService(
		f.gradeRepo, f.academicRepo, f.predictionRepo,
		f.newExtractor(), trainer, artifacts, nil, zap.NewNop())
}
