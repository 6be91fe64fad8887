package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amkim/familyalbum/internal/api/handlers"
	"github.com/amkim/familyalbum/internal/api/middleware"
	"github.com/amkim/familyalbum/internal/config"
	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	pipeline *ingest.Pipeline
	store    *store.BoltStore
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, pipeline *ingest.Pipeline, st *store.BoltStore, logger *logrus.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		store:    st,
		logger:   logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  5 * time.Minute, // large video uploads
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.pipeline, cfg.DatabaseFile, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	uploadHandler := handlers.NewUploadHandler(s.pipeline, cfg.MaxUploadMB, s.logger)
	mux.HandleFunc("/api/upload", uploadHandler.ServeHTTP)
	mux.HandleFunc("/api/upload/progress", uploadHandler.ServeProgress)

	libraryHandler := handlers.NewLibraryHandler(s.pipeline, s.logger)
	mux.HandleFunc("/api/library", libraryHandler.ServeHTTP)

	mediaHandler := handlers.NewMediaHandler(s.pipeline, s.store, s.logger)
	mux.HandleFunc("/api/media/", mediaHandler.ServeHTTP)

	archiveHandler := handlers.NewArchiveHandler(s.pipeline, s.store, s.logger)
	mux.HandleFunc("/api/archive", archiveHandler.ServeHTTP)

	profileHandler := handlers.NewProfileHandler(s.store, s.logger)
	mux.HandleFunc("/api/profiles/", profileHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server. In-flight uploads are
// given time to finish so the store is not left with partial batches.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
