// Package main implements the DriveMatch API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/DriveMatchAI/drivematch-mvp/engine/advisor"
	"github.com/DriveMatchAI/drivematch-mvp/engine/catalog"
	"github.com/DriveMatchAI/drivematch-mvp/engine/similar"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/metrics"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port           string
	CatalogBackend string // "neo4j" or "memory"
	Neo4jURL       string
	Neo4jUser      string
	Neo4jPass      string
	NATSURL        string // empty disables analytics events
	CORSOrigin     string
	RateRPS        float64
	RateBurst      int
}

func loadConfig() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		CatalogBackend: envOr("CATALOG_BACKEND", "neo4j"),
		Neo4jURL:       envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:      envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:      envOr("NEO4J_PASS", "password"),
		NATSURL:        os.Getenv("NATS_URL"),
		CORSOrigin:     envOr("CORS_ORIGIN", "*"),
		RateRPS:        envFloatOr("RATE_LIMIT_RPS", 50),
		RateBurst:      envIntOr("RATE_LIMIT_BURST", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Vehicle catalog ---
	var store vehicleCatalog
	switch cfg.CatalogBackend {
	case "memory":
		logger.Warn("using in-memory catalog; data is not persisted")
		store = catalog.NewMemory()
	default:
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		store = catalog.NewStore(driver)
	}

	// --- Analytics events (optional) ---
	var events *analytics
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
		events = newAnalytics(nc, logger)
		logger.Info("analytics events enabled", "url", cfg.NATSURL)
	}

	// --- Engine services ---
	advisorSvc := advisor.New(store, logger)
	similarSvc := similar.New(store, logger)

	// --- HTTP server ---
	reg := metrics.New()
	handler := mid.Chain(newAPI(store, advisorSvc, similarSvc, events, reg, logger),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("drivematch-api"),
		mid.RateLimit(cfg.RateRPS, cfg.RateBurst),
		observe(reg),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "backend", cfg.CatalogBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// observe records per-request latency into the registry.
func observe(reg *metrics.Registry) mid.Middleware {
	hist := reg.Histogram("http_request_duration_seconds", "Request latency.", nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			hist.Since(start)
		})
	}
}
