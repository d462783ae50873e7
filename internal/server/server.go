package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"linksdash/internal/config"
	"linksdash/internal/diag"
	"linksdash/internal/httpx"
	"linksdash/internal/links"
	"linksdash/internal/users"
)

// Handlers bundles the HTTP handlers mounted on the router.
type Handlers struct {
	Links *links.Handler
	Users *users.Handler
	Diag  *diag.Handler
}

// Server represents the HTTP server with all dependencies.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	handlers Handlers
	server   *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, handlers Handlers) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	// Listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	// Listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			// Force close if graceful shutdown fails
			if closeErr := s.server.Close(); closeErr != nil {
				return fmt.Errorf("failed to close server: %w", closeErr)
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		s.logger.Info("server stopped gracefully")
		return nil
	}
}

// setupRoutes configures all HTTP routes with the middleware chain applied.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.Recovery(s.logger)) // outermost: catch panics
	r.Use(httpx.RequestID)
	r.Use(httpx.Logger(s.logger))
	r.Use(httpx.CORS)

	r.Get("/", s.handlers.Diag.Root)
	r.Get("/test", s.handlers.Diag.Test)

	r.Route("/links", func(r chi.Router) {
		r.Post("/", s.handlers.Links.CreateLink)
		r.Get("/", s.handlers.Links.ListLinks)
		r.Post("/{id}/click", s.handlers.Links.IncrementClick)
		r.Put("/{id}", s.handlers.Links.UpdateLink)
		r.Delete("/{id}", s.handlers.Links.DeleteLink)
	})
	r.Get("/labels", s.handlers.Links.ListLabels)

	r.Post("/users", s.handlers.Users.CreateUser)
	r.Get("/users", s.handlers.Users.ListUsers)

	return r
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
