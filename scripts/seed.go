package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/rodryv99/backend-smart-class/internal/models"
	"github.com/rodryv99/backend-smart-class/pkg/database"
)

func main() {
	// Подключаемся к базе данных
	db, err := database.NewDatabase("smartclass.db")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	year := time.Now().Year()

	// Создаем учебные периоды (четыре биместра)
	var periods []models.Period
	for n := 1; n <= 4; n++ {
		period := models.Period{
			ID:        uuid.New(),
			Type:      models.PeriodBimestre,
			Number:    n,
			Year:      year,
			StartDate: time.Date(year, time.Month((n-1)*2+2), 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(year, time.Month(n*2+1), 28, 0, 0, 0, 0, time.UTC),
		}
		if err := db.DB.Create(&period).Error; err != nil {
			log.Fatalf("Failed to create period: %v", err)
		}
		periods = append(periods, period)
	}

	// Создаем класс математики
	class := models.Class{
		ID:      uuid.New(),
		Code:    "MAT-2A",
		Name:    "Matemáticas 2do A",
		Subject: "Matemáticas",
		Course:  "2do",
		Group:   "A",
		Year:    year,
	}
	if err := db.DB.Create(&class).Error; err != nil {
		log.Fatalf("Failed to create class: %v", err)
	}

	for _, p := range periods {
		if err := db.DB.Exec(
			"INSERT INTO class_periods (class_id, period_id) VALUES (?, ?)",
			class.ID, p.ID,
		).Error; err != nil {
			log.Fatalf("Failed to assign period: %v", err)
		}
	}

	firstNames := []string{"Carlos", "María", "José", "Ana", "Luis", "Carmen", "Jorge", "Lucía", "Pedro", "Elena"}
	lastNames := []string{"Mamani", "Quispe", "Flores", "Condori", "Vargas", "Rojas", "Gutiérrez", "Choque", "Torrez", "Limachi"}

	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		student := models.Student{
			ID:        uuid.New(),
			FirstName: firstNames[i],
			LastName:  lastNames[i],
		}
		if err := db.DB.Create(&student).Error; err != nil {
			log.Fatalf("Failed to create student: %v", err)
		}
		if err := db.DB.Exec(
			"INSERT INTO class_students (class_id, student_id) VALUES (?, ?)",
			class.ID, student.ID,
		).Error; err != nil {
			log.Fatalf("Failed to enroll student: %v", err)
		}

		// Оценки за первые три биместра; четвертый остается для прогноза
		base := 0.4 + rng.Float64()*0.5
		for _, p := range periods[:3] {
			performance := base + rng.NormFloat64()*0.05
			if performance < 0.2 {
				performance = 0.2
			}
			if performance > 0.95 {
				performance = 0.95
			}

			grade := models.Grade{
				ID:             uuid.New(),
				StudentID:      student.ID,
				ClassID:        class.ID,
				PeriodID:       p.ID,
				Ser:            performance * 5,
				Saber:          performance * 45,
				Hacer:          performance * 40,
				Decidir:        performance * 5,
				Autoevaluacion: performance * 5,
			}
			grade.Recalculate()
			if err := db.DB.Create(&grade).Error; err != nil {
				log.Fatalf("Failed to create grade: %v", err)
			}

			// Посещаемость и участие за период
			for d := 0; d < 8; d++ {
				status := models.AttendancePresente
				if rng.Float64() > base {
					status = models.AttendanceFalta
				}
				attendance := models.Attendance{
					ID:        uuid.New(),
					ClassID:   class.ID,
					StudentID: student.ID,
					PeriodID:  p.ID,
					Date:      p.StartDate.AddDate(0, 0, d*7),
					Status:    status,
				}
				if err := db.DB.Create(&attendance).Error; err != nil {
					log.Fatalf("Failed to create attendance: %v", err)
				}

				level := models.ParticipationMedia
				switch {
				case base > 0.75:
					level = models.ParticipationAlta
				case base < 0.5:
					level = models.ParticipationBaja
				}
				participation := models.Participation{
					ID:        uuid.New(),
					ClassID:   class.ID,
					StudentID: student.ID,
					PeriodID:  p.ID,
					Date:      p.StartDate.AddDate(0, 0, d*7),
					Level:     level,
				}
				if err := db.DB.Create(&participation).Error; err != nil {
					log.Fatalf("Failed to create participation: %v", err)
				}
			}
		}
	}

	fmt.Printf("Seeded class %s with 10 students, 4 periods, grades for 3 periods\n", class.Code)
}
