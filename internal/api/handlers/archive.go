package handlers

import (
	"archive/zip"
	"fmt"
	"net/http"
	"time"

	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/sirupsen/logrus"
)

// ArchiveHandler streams a zip of selected media items
type ArchiveHandler struct {
	pipeline *ingest.Pipeline
	store    *store.BoltStore
	logger   *logrus.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(pipeline *ingest.Pipeline, st *store.BoltStore, logger *logrus.Logger) *ArchiveHandler {
	return &ArchiveHandler{pipeline: pipeline, store: st, logger: logger}
}

// ServeHTTP handles GET /api/archive?key=...&key=... and streams the
// selection as a zip named after the download date.
func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keys := r.URL.Query()["key"]
	if len(keys) == 0 {
		http.Error(w, "No keys selected", http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("album-%s.zip", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	zw := zip.NewWriter(w)
	defer zw.Close()

	seen := make(map[string]int)
	for _, key := range keys {
		item, ok := h.pipeline.Item(key)
		if !ok {
			h.logger.WithField("key", key).Warn("Skipping unknown key in archive request")
			continue
		}
		content, err := h.store.Content(r.Context(), key)
		if err != nil {
			h.logger.WithError(err).WithField("key", key).Warn("Skipping unreadable item in archive request")
			continue
		}

		name := item.DisplayName
		// Two uploads may share a display name; disambiguate inside the zip
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[item.DisplayName]++

		entry, err := zw.Create(name)
		if err != nil {
			h.logger.WithError(err).Error("Failed to create zip entry")
			return
		}
		if _, err := entry.Write(content); err != nil {
			h.logger.WithError(err).Debug("Client aborted archive download")
			return
		}
	}
}
