package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rodryv99/backend-smart-class/internal/config"
	"github.com/rodryv99/backend-smart-class/internal/handlers"
	"github.com/rodryv99/backend-smart-class/internal/repository"
	"github.com/rodryv99/backend-smart-class/internal/services"
	"github.com/rodryv99/backend-smart-class/pkg/database"
	"github.com/rodryv99/backend-smart-class/pkg/forest"
	"github.com/rodryv99/backend-smart-class/pkg/storage"
	"github.com/rodryv99/backend-smart-class/pkg/tasks"
	"github.com/rodryv99/backend-smart-class/pkg/telegram"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Подключаемся к базе данных
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Инициализируем хранилище артефактов моделей
	artifacts, err := storage.NewStorage(cfg.ModelDir)
	if err != nil {
		logger.Fatal("failed to initialize model storage", zap.Error(err))
	}

	// Telegram бот необязателен: без токена уведомления просто отключены
	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramBotToken, cfg.TeacherChatID)
		if err != nil {
			logger.Warn("failed to initialize telegram bot, notifications disabled", zap.Error(err))
			bot = nil
		}
	}

	// Очередь фоновых обновлений прогнозов
	queue := tasks.NewQueue(cfg.PredictionWorkers, cfg.RefreshQueueSize, logger)
	defer queue.Close()

	// Создаем репозитории
	academicRepo := repository.NewAcademicRepository(db.DB)
	gradeRepo := repository.NewGradeRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)

	// Создаем сервисы
	forestConfig := forest.DefaultConfig()
	forestConfig.NumTrees = cfg.ForestTrees
	forestConfig.MaxDepth = cfg.ForestMaxDepth

	extractor := services.NewFeatureExtractor(gradeRepo, academicRepo)
	generator := services.NewSyntheticDataGenerator(forestConfig.Seed)
	builder := services.NewTrainingSetBuilder(gradeRepo, extractor, generator, cfg.SyntheticSamples, logger)
	trainer := services.NewModelTrainer(builder, predictionRepo, artifacts, forestConfig, cfg.MinTrainingSamples, logger)
	predictionService := services.NewPredictionService(
		gradeRepo, academicRepo, predictionRepo, extractor, trainer, artifacts, bot, logger)
	gradeService := services.NewGradeService(gradeRepo, academicRepo, predictionService, queue, logger)

	// Создаем обработчики
	academicHandler := handlers.NewAcademicHandler(academicRepo)
	gradeHandler := handlers.NewGradeHandler(gradeService)
	predictionHandler := handlers.NewPredictionHandler(predictionService, predictionRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.CORSMiddleware())
	router.Use(handlers.LoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API маршруты
	api := router.Group("/api")
	{
		// Справочник
		api.POST("/classes", academicHandler.CreateClass)
		api.GET("/classes/:class_id", academicHandler.GetClass)
		api.POST("/periods", academicHandler.CreatePeriod)
		api.POST("/classes/:class_id/periods/:period_id", academicHandler.AssignPeriod)
		api.GET("/classes/:class_id/periods", academicHandler.GetClassPeriods)
		api.POST("/students", academicHandler.CreateStudent)
		api.POST("/classes/:class_id/students/:student_id", academicHandler.EnrollStudent)
		api.GET("/classes/:class_id/students", academicHandler.GetEnrolledStudents)
		api.POST("/classes/:class_id/attendance", academicHandler.CreateAttendance)
		api.POST("/classes/:class_id/participation", academicHandler.CreateParticipation)

		// Оценки
		api.POST("/grades", gradeHandler.CreateGrade)
		api.GET("/grades/:id", gradeHandler.GetGrade)
		api.PUT("/grades/:id", gradeHandler.UpdateGrade)
		api.DELETE("/grades/:id", gradeHandler.DeleteGrade)
		api.GET("/classes/:class_id/grades", gradeHandler.GetClassGrades)
		api.GET("/classes/:class_id/students/:student_id/grades", gradeHandler.GetStudentGrades)
		api.GET("/classes/:class_id/students/:student_id/final-grade", gradeHandler.GetFinalGrade)

		// Прогнозы
		api.POST("/classes/:class_id/train", predictionHandler.TrainModel)
		api.GET("/classes/:class_id/students/:student_id/prediction", predictionHandler.PredictStudent)
		api.POST("/classes/:class_id/predictions/refresh", predictionHandler.RefreshClass)
		api.POST("/classes/:class_id/periods/:period_id/retrospective", predictionHandler.GenerateRetrospective)
		api.GET("/classes/:class_id/predictions", predictionHandler.GetClassPredictions)
		api.GET("/classes/:class_id/predictions/history", predictionHandler.GetPredictionHistory)
		api.GET("/classes/:class_id/predictions/accuracy", predictionHandler.GetAccuracy)
		api.GET("/classes/:class_id/models", predictionHandler.GetModels)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Мягкое завершение: даем запросам в полете и очереди задач дошуметь
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
