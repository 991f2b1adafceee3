//go:build mage

package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
)

// MigrateUp runs all pending migrations
func MigrateUp() error {
	if err := loadEnv(); err != nil {
		return err
	}

	dbURL := getDBURL()
	cmd := exec.Command("migrate", "-path", "internal/migrations/migrations", "-database", dbURL, "up")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// MigrateDown rolls back the last migration
func MigrateDown() error {
	if err := loadEnv(); err != nil {
		return err
	}

	dbURL := getDBURL()
	cmd := exec.Command("migrate", "-path", "internal/migrations/migrations", "-database", dbURL, "down", "1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// MigrateCreate creates new migration files
func MigrateCreate(name string) error {
	cmd := exec.Command("migrate", "create", "-ext", "sql", "-dir", "internal/migrations/migrations", "-seq", name)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func loadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return nil
}

func getDBURL() string {
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	name := envOr("DB_NAME", "pasarpush")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
