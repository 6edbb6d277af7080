package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/creds"
	"github.com/k-ivanov/bgx/internal/flow"
	"github.com/k-ivanov/bgx/internal/services/sentry"
	"github.com/k-ivanov/bgx/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Remote API client
	apiURL := os.Getenv("BGX_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000/api"
	}
	api := bgx.NewClient(apiURL)

	// 2. Credential store
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	store := creds.NewRedisStore(redisClient)

	// 3. Services
	sentrySvc := sentry.New()
	defer sentrySvc.Close()

	flows := flow.NewRegistry(api)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			flows.Sweep()
		}
	}()

	// 4. App and server
	activateDelay := 3 * time.Second
	if secs, err := strconv.Atoi(os.Getenv("ACTIVATE_REDIRECT_DELAY")); err == nil && secs > 0 {
		activateDelay = time.Duration(secs) * time.Second
	}
	app := web.NewApp(api, store, flows, sentrySvc, activateDelay)

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 5. Graceful shutdown
	done := make(chan bool, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully, press Ctrl+C again to force")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		done <- true
	}()

	logger.Info("Starting server", "addr", srv.Addr, "api", apiURL)
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("Graceful shutdown complete")
	return nil
}
