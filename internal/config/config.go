package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения
type Config struct {
	// Server
	Port string
	Host string

	// Database
	DBPath string

	// ML
	ModelDir           string
	SyntheticSamples   int
	MinTrainingSamples int
	ForestTrees        int
	ForestMaxDepth     int
	PredictionWorkers  int
	RefreshQueueSize   int

	// Telegram
	TelegramBotToken string
	TeacherChatID    int64

	// Misc
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnv("PORT", "10000"),
		Host:             getEnv("HOST", "0.0.0.0"),
		DBPath:           getEnv("DB_PATH", "/tmp/smartclass.db"),
		ModelDir:         getEnv("MODEL_DIR", "/tmp/ml_models"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		ShutdownTimeout:  10 * time.Second,
	}

	// Объемы данных для обучения: настройки, а не константы
	config.SyntheticSamples = getEnvInt("SYNTHETIC_SAMPLES", 150)
	config.MinTrainingSamples = getEnvInt("MIN_TRAINING_SAMPLES", 20)
	config.ForestTrees = getEnvInt("FOREST_TREES", 100)
	config.ForestMaxDepth = getEnvInt("FOREST_MAX_DEPTH", 10)
	config.PredictionWorkers = getEnvInt("PREDICTION_WORKERS", 2)
	config.RefreshQueueSize = getEnvInt("REFRESH_QUEUE_SIZE", 256)

	if chatID, err := strconv.ParseInt(getEnv("TEACHER_CHAT_ID", "0"), 10, 64); err == nil {
		config.TeacherChatID = chatID
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
