package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Storage представляет файловое хранилище артефактов моделей
type Storage struct {
	basePath string
}

// NewStorage создает новое файловое хранилище
func NewStorage(basePath string) (*Storage, error) {
	// Создаем базовую директорию
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// SaveModel сохраняет сериализованную модель для класса.
// Имя файла включает идентификатор класса и метку времени, поэтому файлы
// параллельных обучений никогда не пересекаются.
func (s *Storage) SaveModel(classID uuid.UUID, trainedAt time.Time, data []byte) (string, error) {
	fileName := fmt.Sprintf("model_%s_%s.gob", classID, trainedAt.Format("20060102_150405"))
	filePath := filepath.Join(s.basePath, fileName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write model file: %w", err)
	}

	return filePath, nil
}

// LoadModel читает сериализованную модель по пути из записи MLModel
func (s *Storage) LoadModel(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return data, nil
}

// DeleteModel удаляет файл модели
func (s *Storage) DeleteModel(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete model file: %w", err)
	}
	return nil
}

// CleanupOldModels удаляет файлы моделей старше заданного возраста.
// Активные модели ссылаются на файлы по пути, поэтому вызывать имеет смысл
// только с возрастом заметно больше интервала переобучения.
func (s *Storage) CleanupOldModels(maxAge time.Duration) error {
	return filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			return os.Remove(path)
		}
		return nil
	})
}
