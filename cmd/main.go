package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"pasarpush/internal/config"
	"pasarpush/internal/db"
	"pasarpush/internal/dispatch"
	"pasarpush/internal/migrations"
	"pasarpush/internal/notification"
	"pasarpush/internal/notify"
	"pasarpush/internal/queue"
	"pasarpush/internal/resolve"
	"pasarpush/internal/routes"
	"pasarpush/internal/security"
	"pasarpush/internal/tokens"
	"pasarpush/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found", "error", err)
	}

	if err := config.InitFirebase(); err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	db.InitDB()
	if err := migrations.Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := queue.InitQueue(); err != nil {
		log.Fatalf("Failed to initialize task queue: %v", err)
	}

	if err := notification.InitStore(); err != nil {
		log.Fatalf("Failed to initialize notification store: %v", err)
	}

	fb := config.GetFirebaseClient()
	engine := dispatch.NewEngine(fb.Messaging, envInt("FCM_BATCH_SIZE", dispatch.DefaultBatchSize), envDuration("SEND_TIMEOUT", 10*time.Second))
	notify.Init(notify.NewService(
		resolve.NewResolver(fb.Firestore),
		tokens.NewStore(fb.Firestore),
		engine,
		notification.GetStore(),
		db.RecordDelivery,
	))

	security.InitSecurity()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.NewWorker(notify.GetService())
	go func() {
		if err := w.Start(ctx); err != nil {
			slog.Error("worker stopped", "error", err)
		}
	}()

	e := echo.New()
	api := e.Group("/api/v1")
	routes.SetupRoutes(api)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
		if err := queue.Close(); err != nil {
			slog.Error("failed to close task queue", "error", err)
		}
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
		if err := config.CloseFirebaseConnection(); err != nil {
			slog.Error("failed to close Firebase connection", "error", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func envInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
