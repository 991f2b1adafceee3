package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"pasarpush/internal/event"
)

const (
	QueueNotify = "notifications"

	TaskStockChanged = "notify:stock"
	TaskOrderCreated = "notify:order"
)

var (
	client    *asynq.Client
	inspector *asynq.Inspector
)

// InitQueue initializes the Redis connection for Asynq
func InitQueue() error {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	client = asynq.NewClient(redisOpt)
	inspector = asynq.NewInspector(redisOpt)

	// Test connection
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	// Recreate client after test
	client = asynq.NewClient(redisOpt)

	slog.Info("Successfully initialized task queue")
	return nil
}

// EnqueueStockChanged queues a stock-change mutation for async fan-out.
// The enqueue options are the caller-side retry policy; the dispatch engine
// itself never retries.
func EnqueueStockChanged(ev event.StockChanged) (string, error) {
	return enqueue(TaskStockChanged, ev)
}

// EnqueueOrderCreated queues a new-order mutation for async seller notify.
func EnqueueOrderCreated(ev event.OrderCreated) (string, error) {
	return enqueue(TaskOrderCreated, ev)
}

func enqueue(taskType string, payload any) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %v", err)
	}

	task := asynq.NewTask(taskType, payloadBytes)

	info, err := client.Enqueue(task,
		asynq.Queue(QueueNotify),
		asynq.MaxRetry(3),
		asynq.Timeout(1*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %v", err)
	}

	return info.ID, nil
}

// GetTaskStatus returns the current status of a task
func GetTaskStatus(taskID string) (*asynq.TaskInfo, error) {
	info, err := inspector.GetTaskInfo(QueueNotify, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task info: %v", err)
	}
	return info, nil
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
