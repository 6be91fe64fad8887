package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/sirupsen/logrus"
)

// MediaHandler serves and deletes individual media items
type MediaHandler struct {
	pipeline *ingest.Pipeline
	store    *store.BoltStore
	logger   *logrus.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(pipeline *ingest.Pipeline, st *store.BoltStore, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{pipeline: pipeline, store: st, logger: logger}
}

// ServeHTTP handles GET and DELETE on /api/media/{key}
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/media/")
	if key == "" {
		http.Error(w, "Missing media key", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.serveContent(w, r, key)
	case http.MethodDelete:
		h.deleteItem(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MediaHandler) serveContent(w http.ResponseWriter, r *http.Request, key string) {
	item, ok := h.pipeline.Item(key)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	content, err := h.store.Content(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.WithError(err).WithField("key", key).Error("Failed to read media content")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", item.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", item.DisplayName))
	if _, err := w.Write(content); err != nil {
		h.logger.WithError(err).WithField("key", key).Debug("Client aborted media download")
	}
}

func (h *MediaHandler) deleteItem(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.pipeline.Remove(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.WithError(err).WithField("key", key).Error("Failed to delete media item")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
