// Package serve holds the long running sitebook commands: the HTTP API
// and the status sweep.
//
// e.g., sitebook serve, sitebook sweep
package serve

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/app"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/httpapi"
	"github.com/thenoetrevino/sitebook/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON HTTP API together with the periodic status sweep.
Prometheus metrics are exported on /metrics.

Examples:
  sitebook serve
  sitebook serve --addr=0.0.0.0:8080`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
	cmd.Flags().Duration("sweep-interval", 0, "Time between status sweeps (defaults to server.sweep_interval)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.DefaultRegisterer
	c, err := cli.GetCLIFromContext(cmd, app.WithMetrics(metrics.New(reg)))
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			c.Logger.Warn("error closing CLI", zap.Error(err))
		}
	}()

	srvCfg := &httpapi.Config{
		Addr:            c.Config.Server.Addr,
		LoginRate:       c.Config.Server.LoginRate,
		LoginBurst:      c.Config.Server.LoginBurst,
		ShutdownTimeout: c.Config.Server.ShutdownTimeout,
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		srvCfg.Addr = addr
	}
	interval := c.Config.Server.SweepInterval
	if d, _ := cmd.Flags().GetDuration("sweep-interval"); d > 0 {
		interval = d
	}
	return Run(ctx, c.App, c.Logger, srvCfg, interval)
}

// Run serves the API and sweeps every interval until ctx is cancelled
func Run(ctx context.Context, a *app.App, logger *zap.Logger, cfg *httpapi.Config, interval time.Duration) error {
	srv, err := httpapi.NewServer(a, logger, cfg)
	if err != nil {
		return err
	}
	if a.Metrics != nil {
		if err := a.Metrics.WatchSessions(a.Sessions.Active); err != nil {
			logger.Warn("session gauge not registered", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		Sweeper(gctx, a, logger, interval)
		return nil
	})
	return g.Wait()
}

// Sweeper runs App.Sweep now and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func Sweeper(ctx context.Context, a *app.App, logger *zap.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := a.Sweep(ctx); err != nil && ctx.Err() == nil {
			logger.Error("status sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Move started signed clients to in progress once",
		Long: `Run the status sweep a single time: every signed client whose project
has started becomes in progress, and expired sessions are dropped.
Useful from cron when the API is not running.`,
		RunE: handler.Global(runSweep),
	}
	handler.AddOutputFlags(cmd)
	return cmd
}

func runSweep(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	advanced, err := env.CLI.App.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"advanced": advanced}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %d client(s) moved to in progress\n", advanced)
		return err
	}}, nil
}
