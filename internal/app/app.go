package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/sitebook/internal/blueprint"
	"github.com/thenoetrevino/sitebook/internal/config"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/metrics"
	clientservice "github.com/thenoetrevino/sitebook/internal/services/client"
	contractservice "github.com/thenoetrevino/sitebook/internal/services/contract"
	costservice "github.com/thenoetrevino/sitebook/internal/services/cost"
	inventoryservice "github.com/thenoetrevino/sitebook/internal/services/inventory"
	organizationservice "github.com/thenoetrevino/sitebook/internal/services/organization"
	projectservice "github.com/thenoetrevino/sitebook/internal/services/project"
	scheduleservice "github.com/thenoetrevino/sitebook/internal/services/schedule"
	targetservice "github.com/thenoetrevino/sitebook/internal/services/target"
	taskservice "github.com/thenoetrevino/sitebook/internal/services/task"
	teamservice "github.com/thenoetrevino/sitebook/internal/services/team"
	"github.com/thenoetrevino/sitebook/internal/session"
	"github.com/thenoetrevino/sitebook/internal/storage"
	"github.com/thenoetrevino/sitebook/internal/workdays"
	"go.uber.org/zap"
)

// ErrNoBucket is returned when no file storage was configured
var ErrNoBucket = errors.New("app: storage bucket is required")

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	store       *database.Store
	eventClient events.EventPublisher
	logger      *zap.Logger
	closers     []func() error
	now         func() time.Time

	Calendar *workdays.Calendar
	Metrics  *metrics.Metrics

	Organizations organizationservice.Service
	Clients       clientservice.Service
	Projects      projectservice.Service
	Schedule      scheduleservice.Service
	Contracts     contractservice.Service
	Costs         costservice.Service
	Inventory     inventoryservice.Service
	Tasks         taskservice.Service
	Targets       targetservice.Service
	Team          teamservice.Service
	Files         storage.Service
	Blueprints    *blueprint.Service
	Sessions      *session.Manager
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(store *database.Store, opts ...Option) (*App, error) {
	cfg := &appConfig{session: session.DefaultConfig()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.bucket == nil {
		return nil, ErrNoBucket
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.calendar == nil {
		cfg.calendar = workdays.Default()
	}

	a := &App{
		now:         time.Now,
		store:       store,
		eventClient: cfg.eventClient,
		logger:      cfg.logger,
		Calendar:    cfg.calendar,
		Metrics:     cfg.metrics,
	}

	scheduleOpts := []scheduleservice.Option{scheduleservice.WithLogger(cfg.logger.Named("schedule"))}
	clientOpts := []clientservice.Option{clientservice.WithLogger(cfg.logger.Named("client"))}
	sessionOpts := []session.Option{session.WithLogger(cfg.logger.Named("session"))}
	if cfg.metrics != nil {
		scheduleOpts = append(scheduleOpts, scheduleservice.WithRecorder(cfg.metrics))
	}
	if cfg.now != nil {
		a.now = cfg.now
		scheduleOpts = append(scheduleOpts, scheduleservice.WithClock(cfg.now))
		clientOpts = append(clientOpts, clientservice.WithClock(cfg.now))
		sessionOpts = append(sessionOpts, session.WithClock(cfg.now))
	}
	fileOpts := []storage.Option{storage.WithLogger(cfg.logger.Named("storage"))}
	if cfg.maxUploadSize > 0 {
		fileOpts = append(fileOpts, storage.WithMaxUploadSize(cfg.maxUploadSize))
	}

	ec := cfg.eventClient
	a.Organizations = organizationservice.NewService(store, ec)
	a.Clients = clientservice.NewService(store, cfg.calendar, ec, clientOpts...)
	a.Projects = projectservice.NewService(store, ec)
	a.Schedule = scheduleservice.NewService(store, cfg.calendar, ec, scheduleOpts...)
	a.Contracts = contractservice.NewService(store, ec)
	a.Costs = costservice.NewService(store, ec)
	a.Inventory = inventoryservice.NewService(store, ec)
	a.Tasks = taskservice.NewService(store, ec)
	a.Targets = targetservice.NewService(store, ec)
	a.Team = teamservice.NewService(store, ec)
	a.Files = storage.NewService(store, cfg.bucket, ec, fileOpts...)
	a.Blueprints = blueprint.NewService(a.Files)
	a.Sessions = session.NewManager(store, cfg.session, sessionOpts...)
	return a, nil
}

// Open builds the App described by cfg: it opens and migrates the database
// and the file bucket. Close releases them.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	bucket, err := storage.NewFSBucket(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithCalendar(cal),
		WithBucket(bucket),
		WithSessionConfig(cfg.SessionSettings()),
		WithMaxUploadSize(int64(cfg.Storage.MaxUploadMB) << 20),
	}
	a, err := New(database.NewStore(db), append(base, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	return a, nil
}

// Today returns the current civil date of the working-day calendar
func (a *App) Today() time.Time {
	return a.Calendar.Today(a.now())
}

// Store returns the underlying store for commands that read it directly
func (a *App) Store() *database.Store {
	return a.store
}

// DB returns the database handle
func (a *App) DB() *sql.DB {
	return a.store.DB()
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Sweep moves every organization's started signed clients to in progress and
// drops expired sessions. It returns the number of advanced clients.
func (a *App) Sweep(ctx context.Context) (int, error) {
	orgs, err := a.Organizations.List(ctx)
	if err != nil {
		return 0, err
	}

	var advanced int
	for _, org := range orgs {
		ids, err := a.Clients.AdvanceStarted(ctx, org.ID)
		if err != nil {
			return advanced, fmt.Errorf("sweep organization %d: %w", org.ID, err)
		}
		advanced += len(ids)
	}
	expired := a.Sessions.Sweep()
	if a.Metrics != nil {
		a.Metrics.ObserveAdvanced(advanced)
	}
	if advanced > 0 || expired > 0 {
		a.logger.Info("sweep finished", zap.Int("advanced", advanced), zap.Int("expired_sessions", expired))
	}
	return advanced, nil
}

// Close releases the resources opened by Open
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if a.eventClient != nil {
		errs = append(errs, a.eventClient.Close())
	}
	return errors.Join(errs...)
}
