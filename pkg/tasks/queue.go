// Package tasks реализует ограниченную очередь фоновых задач.
// Заменяет "отсоединенные" потоки: количество воркеров ограничено, а ошибки
// задач логируются, а не теряются.
package tasks

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task представляет единицу фоновой работы
type Task struct {
	Name string
	Run  func() error
}

// Queue представляет очередь задач с фиксированным числом воркеров
type Queue struct {
	tasks  chan Task
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewQueue создает очередь и запускает воркеров
func NewQueue(workers, size int, logger *zap.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		tasks:  make(chan Task, size),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Enqueue ставит задачу в очередь. Если очередь переполнена или закрыта,
// задача отбрасывается с ошибкой: фоновые обновления не должны блокировать
// вызывающий запрос.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("task queue is closed")
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Close останавливает прием задач и дожидается завершения воркеров
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for task := range q.tasks {
		if err := task.Run(); err != nil {
			q.logger.Warn("background task failed",
				zap.String("task", task.Name),
				zap.Error(err))
		}
	}
}
