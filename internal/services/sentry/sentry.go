// Package sentry wraps error reporting. When SENTRY_DSN is unset the
// service is a no-op, so handlers can report unconditionally.
package sentry

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

type Service struct {
	initialized bool
}

func New() *Service {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		slog.Info("SENTRY_DSN not set, error reporting disabled")
		return &Service{}
	}

	environment := os.Getenv("SENTRY_ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		slog.Error("sentry initialization failed", "error", err)
		return &Service{}
	}

	return &Service{initialized: true}
}

func (s *Service) CaptureException(err error) {
	if !s.initialized || err == nil {
		return
	}
	sentry.CaptureException(err)
}

func (s *Service) CaptureMessage(message string) {
	if !s.initialized {
		return
	}
	sentry.CaptureMessage(message)
}

// Flush waits for queued events before shutdown.
func (s *Service) Flush(timeout time.Duration) bool {
	if !s.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

func (s *Service) Close() {
	s.Flush(2 * time.Second)
}
