// Package main loads a vehicles JSON file into the catalog store.
//
// Usage:
//
//	seed -file data/vehicles.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/DriveMatchAI/drivematch-mvp/engine/catalog"
	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
)

func main() {
	godotenv.Load()

	file := flag.String("file", "data/vehicles.json", "path to vehicles JSON file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall seeding timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(*file, *timeout, logger); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(file string, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	vehicles, err := loadVehicles(file)
	if err != nil {
		return err
	}
	logger.Info("loaded vehicles", "file", file, "count", len(vehicles))

	url := envOr("NEO4J_URL", "neo4j://localhost:7687")
	driver, err := neo4j.NewDriverWithContext(url,
		neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	store := catalog.NewStore(driver)
	inserted, skipped, err := store.Seed(ctx, vehicles)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("seeding complete", "inserted", inserted, "skipped", skipped)
	return nil
}

// loadVehicles accepts either a bare JSON array or {"vehicles": [...]}.
func loadVehicles(file string) ([]domain.Vehicle, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var list []domain.Vehicle
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Vehicles []domain.Vehicle `json:"vehicles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return wrapped.Vehicles, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
