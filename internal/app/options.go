package app

import (
	"time"

	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/metrics"
	"github.com/thenoetrevino/sitebook/internal/session"
	"github.com/thenoetrevino/sitebook/internal/storage"
	"github.com/thenoetrevino/sitebook/internal/workdays"
	"go.uber.org/zap"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient   events.EventPublisher
	logger        *zap.Logger
	calendar      *workdays.Calendar
	metrics       *metrics.Metrics
	bucket        storage.Bucket
	session       session.Config
	maxUploadSize int64
	now           func() time.Time
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithCalendar sets the working-day calendar
func WithCalendar(cal *workdays.Calendar) Option {
	return func(cfg *appConfig) {
		cfg.calendar = cal
	}
}

// WithMetrics reports schedule outcomes and sweeps to m
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *appConfig) {
		cfg.metrics = m
	}
}

// WithBucket sets where project files are stored
func WithBucket(b storage.Bucket) Option {
	return func(cfg *appConfig) {
		cfg.bucket = b
	}
}

// WithSessionConfig overrides session.DefaultConfig
func WithSessionConfig(c session.Config) Option {
	return func(cfg *appConfig) {
		cfg.session = c
	}
}

// WithMaxUploadSize bounds file uploads in bytes
func WithMaxUploadSize(n int64) Option {
	return func(cfg *appConfig) {
		cfg.maxUploadSize = n
	}
}

// WithClock overrides time.Now for every time-dependent service
func WithClock(now func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.now = now
	}
}
