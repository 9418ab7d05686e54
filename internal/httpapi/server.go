// Package httpapi serves the sitebook REST API over echo.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thenoetrevino/sitebook/internal/app"
	"go.uber.org/zap"
)

// Server provides HTTP endpoints for sitebook
type Server struct {
	echo    *echo.Echo
	app     *app.App
	logger  *zap.Logger
	config  *Config
	limiter *loginLimiter
}

// Config holds HTTP server configuration
type Config struct {
	Addr string
	// LoginRate is sign-in attempts per second allowed per client IP
	LoginRate float64
	// LoginBurst is the number of attempts allowed at once
	LoginBurst      int
	ShutdownTimeout time.Duration
	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
}

// NewServer creates a new HTTP server over the application services
func NewServer(a *app.App, logger *zap.Logger, cfg *Config) (*Server, error) {
	if a == nil {
		return nil, errors.New("app cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = 1
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 5
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		app:     a,
		logger:  logger,
		config:  cfg,
		limiter: newLoginLimiter(cfg.LoginRate, cfg.LoginBurst),
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(middleware.BodyLimit("32M"))

	s.registerRoutes()
	return s, nil
}

// Echo exposes the underlying router
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin, s.throttleLogin)
	auth.POST("/logout", s.handleLogout, s.authenticate)
	auth.GET("/session", s.handleSession, s.authenticate)
	auth.POST("/session/reload", s.handleReload)

	api := v1.Group("", s.authenticate)
	api.GET("/organization", s.handleOrganization)
	api.GET("/organization/settings", s.handleGetSettings)
	api.PUT("/organization/settings/padding", s.handleSavePadding, requireManager)
	api.POST("/organization/settings/:image", s.handleUploadBranding, requireManager)
	api.PUT("/me/profile", s.handleUpdateProfile)

	api.GET("/clients", s.handleListClients)
	api.POST("/clients", s.handleCreateClient)
	api.GET("/clients/counts", s.handleStatusCounts)
	api.GET("/clients/:id", s.handleGetClient)
	api.PATCH("/clients/:id", s.handleUpdateClient)
	api.DELETE("/clients/:id", s.handleDeleteClient, requireManager)
	api.POST("/clients/:id/complete", s.handleCompleteClient)

	api.GET("/clients/:id/project", s.handleGetProject)
	api.PATCH("/clients/:id/project", s.handleUpdateProject)
	api.GET("/projects/scheduled", s.handleListScheduled)
	api.POST("/projects/:id/schedule/check", s.handleCheckSchedule)
	api.PUT("/projects/:id/schedule", s.handleSchedule)

	api.GET("/clients/:id/contract", s.handleGetContract)
	api.PUT("/clients/:id/contract", s.handleSaveContract)
	api.GET("/clients/:id/contract/document", s.handleContractDocument)
	api.POST("/contracts/:id/sign", s.handleSignContract)
	api.GET("/terms", s.handleListTerms)
	api.POST("/terms", s.handleAddTerm, requireManager)
	api.DELETE("/terms/:id", s.handleDeleteTerm, requireManager)

	api.GET("/clients/:id/costs", s.handleListCosts)
	api.POST("/clients/:id/costs", s.handleAddCost)
	api.GET("/clients/:id/costs/summary", s.handleCostSummary)
	api.DELETE("/clients/:id/costs/:costID", s.handleDeleteCost)

	api.GET("/clients/:id/targets", s.handleListTargets)
	api.POST("/clients/:id/targets", s.handleAddTarget)
	api.POST("/clients/:id/targets/:targetID/toggle", s.handleToggleTarget)
	api.DELETE("/clients/:id/targets/:targetID", s.handleDeleteTarget)

	api.GET("/clients/:id/files", s.handleListFiles)
	api.POST("/clients/:id/files", s.handleUploadFile)
	api.GET("/clients/:id/files/:fileID", s.handleDownloadFile)
	api.DELETE("/clients/:id/files/:fileID", s.handleDeleteFile)
	api.GET("/clients/:id/files/:fileID/drawing", s.handleGetDrawing)
	api.PUT("/clients/:id/files/:fileID/drawing", s.handleSaveDrawing)
	api.GET("/clients/:id/files/:fileID/render", s.handleRenderDrawing)

	api.GET("/inventory", s.handleListItems)
	api.POST("/inventory", s.handleCreateItem)
	api.GET("/inventory/low-stock", s.handleLowStock)
	api.PATCH("/inventory/:id", s.handleUpdateItem)
	api.DELETE("/inventory/:id", s.handleDeleteItem)
	api.POST("/inventory/:id/adjust", s.handleAdjustStock)

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.POST("/tasks/:id/toggle", s.handleToggleTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)

	api.GET("/team", s.handleListMembers)
	api.PUT("/team/:id/role", s.handleSetRole, requireManager)
	api.PUT("/team/:id/color", s.handleSetColor)
	api.DELETE("/team/:id", s.handleRemoveMember, requireManager)
	api.GET("/invites", s.handleListInvites, requireManager)
	api.POST("/invites", s.handleInvite, requireManager)
	api.DELETE("/invites/:id", s.handleRevokeInvite, requireManager)
}

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.app.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "database unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	go s.pruneLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
		errCh <- s.echo.Start(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.prune()
		}
	}
}
