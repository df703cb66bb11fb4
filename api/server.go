package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/session"
)

// Engine is the part of the queue engine exposed over HTTP.
type Engine interface {
	Policy() *quota.Policy
	Sessions() *session.Manager
	Cancel(userID int64) (int, bool)
}

type Options struct {
	Port       int
	Token      string
	TrustedIPs []string
	Engine     Engine
	Directory  quota.Directory
	Started    time.Time
}

type server struct {
	opts Options
}

func NewRouter(logger *log.Logger, opts Options) http.Handler {
	s := &server{opts: opts}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(loggingMiddleware(logger))

	r.Get("/health", handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(opts.Token, opts.TrustedIPs))
		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/users/{id}/quota", s.handleUserQuota)
		r.Delete("/api/v1/users/{id}/queue", s.handleCancelQueue)
	})
	return r
}

// Serve runs the API until ctx is done.
func Serve(ctx context.Context, opts Options) error {
	logger := log.FromContext(ctx).WithPrefix("api")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      NewRouter(logger, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting API server on port %d", opts.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	logger.Info("API server stopped")
	return nil
}
