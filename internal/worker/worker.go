package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"pasarpush/internal/event"
	"pasarpush/internal/notify"
	"pasarpush/internal/queue"
)

// Worker consumes store-change tasks and runs them through the notify
// pipeline fire-and-forget. Outcomes are logged and audited, never reported
// back to the mutation that triggered them.
type Worker struct {
	server *asynq.Server
	notify *notify.Service
}

func NewWorker(service *notify.Service) *Worker {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue.QueueNotify: 10,
			},
		},
	)

	return &Worker{
		server: server,
		notify: service,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(queue.TaskStockChanged, w.handleStockChanged)
	mux.HandleFunc(queue.TaskOrderCreated, w.handleOrderCreated)

	slog.Info("Starting worker",
		"tasks", []string{queue.TaskStockChanged, queue.TaskOrderCreated},
		"concurrency", 10)

	if err := w.server.Start(mux); err != nil {
		return err
	}

	slog.Info("Worker started successfully")

	<-ctx.Done()

	w.server.Stop()
	slog.Info("Worker stopped")
	return nil
}

func (w *Worker) handleStockChanged(ctx context.Context, t *asynq.Task) error {
	var ev event.StockChanged
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		slog.Error("malformed stock task payload", "error", err)
		return fmt.Errorf("malformed stock task payload: %v: %w", err, asynq.SkipRetry)
	}

	if ev.Unchanged() {
		slog.Info("stock unchanged, skipping", "product_id", ev.ProductID)
		return nil
	}

	outcome, err := w.notify.Notify(ctx, ev)
	if err != nil {
		return w.reportFailure("stock notification failed", "product_id", ev.ProductID, err)
	}

	slog.Info("stock notification dispatched",
		"product_id", ev.ProductID,
		"attempted", outcome.Attempted,
		"delivered", outcome.Delivered,
		"failed", len(outcome.FailedTokens))
	return nil
}

func (w *Worker) handleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var ev event.OrderCreated
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		slog.Error("malformed order task payload", "error", err)
		return fmt.Errorf("malformed order task payload: %v: %w", err, asynq.SkipRetry)
	}

	outcome, err := w.notify.Notify(ctx, ev)
	if err != nil {
		return w.reportFailure("order notification failed", "order_id", ev.OrderID, err)
	}

	slog.Info("order notification dispatched",
		"order_id", ev.OrderID,
		"seller_id", ev.SellerID,
		"attempted", outcome.Attempted,
		"delivered", outcome.Delivered,
		"failed", len(outcome.FailedTokens))
	return nil
}

// reportFailure decides whether asynq retries the task. Malformed events are
// dropped; store-read failures are retried up to the enqueue-time MaxRetry.
func (w *Worker) reportFailure(msg, idKey, id string, err error) error {
	slog.Error(msg, idKey, id, "error", err)
	if errors.Is(err, event.ErrInvalidArgument) {
		return fmt.Errorf("%s: %v: %w", msg, err, asynq.SkipRetry)
	}
	return err
}
