// Package cli holds the shared plumbing of the sitebook command line:
// application bootstrap, organization context, output and exit codes.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/app"
	"github.com/thenoetrevino/sitebook/internal/config"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/logging"
	"github.com/thenoetrevino/sitebook/internal/tui/theme"
	"go.uber.org/zap"
)

type contextKey string

const appKey contextKey = "app"

// WithApp returns a context carrying a prebuilt App. Commands run under it
// use that App instead of opening the configured database.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// CLI represents the CLI application context
type CLI struct {
	App    *app.App
	Config *config.Config
	Logger *zap.Logger

	flushLogs func()
	owned     bool
}

// NewCLI loads configuration, starts logging and opens the application.
// The daemon connection is optional; without it writes are not broadcast.
// extra options are applied after the configured ones.
func NewCLI(ctx context.Context, configPath string, extra ...app.Option) (*CLI, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	theme.Init(cfg.Theme)

	logger, flush, err := logging.Init(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   cfg.Log.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var eventClient events.EventPublisher
	if client, err := events.NewClient(cfg.Daemon.Socket); err == nil {
		if err := client.Connect(ctx); err == nil {
			eventClient = client
		} else {
			daemonErr := events.ClassifyDaemonError(cfg.Daemon.Socket, err)
			logger.Debug("continuing without daemon",
				zap.String("socket", daemonErr.Socket),
				zap.Stringer("reason", daemonErr.Code),
				zap.String("hint", daemonErr.Hint()))
		}
	}

	opts := []app.Option{app.WithLogger(logger)}
	if eventClient != nil {
		opts = append(opts, app.WithEventPublisher(eventClient))
	}
	opts = append(opts, extra...)
	application, err := app.Open(ctx, cfg, opts...)
	if err != nil {
		if eventClient != nil {
			_ = eventClient.Close()
		}
		flush()
		return nil, fmt.Errorf("failed to open application: %w", err)
	}

	return &CLI{
		App:       application,
		Config:    cfg,
		Logger:    logger,
		flushLogs: flush,
		owned:     true,
	}, nil
}

// GetCLIFromContext returns a CLI for cmd. An App injected with WithApp is
// reused as is; otherwise the application named by --config is opened with opts.
func GetCLIFromContext(cmd *cobra.Command, opts ...app.Option) (*CLI, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
		cfg, err := config.Default()
		if err != nil {
			return nil, err
		}
		return &CLI{App: a, Config: cfg, Logger: a.Logger()}, nil
	}
	path, _ := cmd.Flags().GetString("config")
	return NewCLI(ctx, path, opts...)
}

// Close releases what NewCLI opened; injected apps are left to their owner
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	// App.Close also closes the event client it was given
	err := c.App.Close()
	c.flushLogs()
	return err
}
