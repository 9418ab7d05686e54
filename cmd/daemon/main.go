package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thenoetrevino/sitebook/internal/config"
	"github.com/thenoetrevino/sitebook/internal/daemon"
	"github.com/thenoetrevino/sitebook/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sitebook daemon: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("SITEBOOK_CONFIG"))
	if err != nil {
		return err
	}
	logger, flush, err := logging.Init(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   cfg.Log.Path,
	})
	if err != nil {
		return err
	}
	defer flush()

	server, err := daemon.NewServer(cfg.Daemon.Socket, daemon.WithLogger(logger.Named("daemon")))
	if err != nil {
		return err
	}
	logger.Info("sitebook daemon starting",
		zap.String("socket_path", cfg.Daemon.Socket),
		zap.Int("pid", os.Getpid()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if cfg.Daemon.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(server.Metrics(), collectors.NewGoCollector())
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Daemon.MetricsAddr, reg, logger)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("sitebook daemon shut down gracefully")
	return nil
}

// serveMetrics exports reg on addr until ctx is done
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("daemon metrics listening", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
