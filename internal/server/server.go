package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/bootstrap"
	"github.com/yigit/alumnidesk/internal/config"
	"github.com/yigit/alumnidesk/internal/pkg/helpers"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	router  *gin.Engine
	deps    *bootstrap.Dependencies
	logger  zerolog.Logger
	http    *http.Server
	stopHub context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()
	infra, err := bootstrap.OpenInfrastructure(ctx, cfg, bootstrap.NewMetrics(), lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, infra, lgr)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go deps.Hub.Run(hubCtx)

	return &Server{
		config:  cfg,
		router:  router,
		deps:    deps,
		logger:  lgr,
		stopHub: stopHub,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:        ":" + s.config.Server.Port,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// exports and inline commits can take a while
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown stops accepting requests, cancels running jobs and closes every
// backend.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := helpers.ParseDuration(s.config.Server.ShutdownTimeout, 15*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			errs = append(errs, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.stopHub != nil {
		s.stopHub()
	}

	s.logger.Info().Msg("Closing backends...")
	if err := s.deps.Infrastructure.Close(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Backend shutdown error")
		errs = append(errs, err)
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(errs...)
}
