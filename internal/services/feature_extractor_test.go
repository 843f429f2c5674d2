package services

import (
	"testing"
	"time"

	"github.com/rodryv99/backend-smart-class/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNoGradesReturnsNil(t *testing.T) {
	f := newFixture(t)
	classID, _ := f.createClassWithPeriods(2)
	studentID := f.enrollStudent(classID, "Ana")

	features, err := f.newExtractor().Extract(studentID, classID, nil)
	require.NoError(t, err)
	assert.Nil(t, features)
}

func TestExtractUsesDefaultsWithoutAttendanceAndParticipation(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(2)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 60)
	f.addGradeTotal(studentID, classID, periodIDs[1], 70)

	features, err := f.newExtractor().Extract(studentID, classID, nil)
	require.NoError(t, err)
	require.NotNil(t, features)

	assert.InDelta(t, 65, features.AvgPreviousGrades, 0.001)
	assert.Equal(t, 85.0, features.AttendancePercentage)
	assert.Equal(t, 2.0, features.ParticipationAverage)
	assert.Equal(t, 2, features.GradesUsed)
}

func TestExtractComputesAttendanceAndParticipation(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(1)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 80)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	statuses := []models.AttendanceStatus{
		models.AttendancePresente,
		models.AttendanceTardanza,
		models.AttendanceFalta,
		models.AttendanceFalta,
	}
	for i, status := range statuses {
		require.NoError(t, f.academicRepo.CreateAttendance(&models.Attendance{
			ClassID:   classID,
			StudentID: studentID,
			PeriodID:  periodIDs[0],
			Date:      day.AddDate(0, 0, i),
			Status:    status,
		}))
	}

	levels := []models.ParticipationLevel{models.ParticipationAlta, models.ParticipationBaja}
	for i, level := range levels {
		require.NoError(t, f.academicRepo.CreateParticipation(&models.Participation{
			ClassID:   classID,
			StudentID: studentID,
			PeriodID:  periodIDs[0],
			Date:      day.AddDate(0, 0, i),
			Level:     level,
		}))
	}

	features, err := f.newExtractor().Extract(studentID, classID, nil)
	require.NoError(t, err)
	require.NotNil(t, features)

	// Опоздание считается присутствием: 2 из 4
	assert.InDelta(t, 50, features.AttendancePercentage, 0.001)
	// (3 + 1) / 2
	assert.InDelta(t, 2, features.ParticipationAverage, 0.001)
}

func TestExtractHonorsPeriodWindow(t *testing.T) {
	f := newFixture(t)
	classID, periodIDs := f.createClassWithPeriods(3)
	studentID := f.enrollStudent(classID, "Ana")
	f.addGradeTotal(studentID, classID, periodIDs[0], 40)
	f.addGradeTotal(studentID, classID, periodIDs[1], 60)
	f.addGradeTotal(studentID, classID, periodIDs[2], 90)

	features, err := f.newExtractor().Extract(studentID, classID, []uuid.UUID{periodIDs[0], periodIDs[1]})
	require.NoError(t, err)
	require.NotNil(t, features)

	assert.InDelta(t, 50, features.AvgPreviousGrades, 0.001)
	assert.Equal(t, 2, features.GradesUsed)
}

func TestFeatureVectorOrder(t *testing.T) {
	features := &StudentFeatures{
		AvgPreviousGrades:    65,
		AttendancePercentage: 90,
		ParticipationAverage: 2.5,
		GradesUsed:           3,
	}
	assert.Equal(t, []float64{65, 90, 2.5}, features.Vector())
}
