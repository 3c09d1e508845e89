// ABOUTME: HTTP server wiring routes, dependencies, and graceful shutdown
// ABOUTME: Mutation endpoints route through the access gateway middleware

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/typicallhavok/task-manager/internal/auth"
	"github.com/typicallhavok/task-manager/internal/config"
	"github.com/typicallhavok/task-manager/internal/directory"
	"github.com/typicallhavok/task-manager/internal/store"
	"github.com/typicallhavok/task-manager/internal/tasks"
)

// shutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM
const shutdownTimeout = 10 * time.Second

// Server is the HTTP surface of the task manager
type Server struct {
	cfg       *config.Config
	store     store.Store
	directory *directory.Directory
	registry  *tasks.Registry
	tokens    *auth.JWTService
	gateway   *Gateway
	logger    *slog.Logger

	httpServer *http.Server
}

// New wires a Server from configuration and an opened store
func New(cfg *config.Config, st store.Store) *Server {
	dir := directory.New(st)
	tokens := auth.NewJWTService([]byte(cfg.Auth.JWTSecret))

	s := &Server{
		cfg:       cfg,
		store:     st,
		directory: dir,
		registry:  tasks.NewRegistry(st),
		tokens:    tokens,
		gateway:   NewGateway(tokens, dir),
		logger:    slog.Default().With("component", "server"),
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: s.routes(),
	}

	return s
}

// routes builds the request mux. All mutation endpoints route through
// the gateway middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /validateCreds", s.handleValidateCreds)
	mux.HandleFunc("GET /protected", s.handleProtected)
	mux.HandleFunc("POST /api/register", s.handleRegister)

	mux.HandleFunc("POST /api/users/addTask", s.gateway.Require(store.RoleUser, s.handleUserAddTask))
	mux.HandleFunc("POST /api/admins/addTask", s.gateway.Require(store.RoleAdmin, s.handleAdminAddTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.requireDeclaredRole(s.handleDeleteTask))
	mux.HandleFunc("PUT /api/users/updateTask/{id}", s.requireDeclaredRole(s.handleUpdateTask))

	mux.HandleFunc("GET /api/tasks/summary", s.handleTaskSummary)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return mux
}

// requireDeclaredRole gates a handler using the caller's role header to
// pick the namespace, defaulting to users
func (s *Server) requireDeclaredRole(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.gateway.Require(requestRole(r), next).ServeHTTP(w, r)
	}
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

// Handler exposes the route mux for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
