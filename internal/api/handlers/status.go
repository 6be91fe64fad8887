package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	pipeline     *ingest.Pipeline
	databaseFile string
	startedAt    time.Time
	logger       *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(pipeline *ingest.Pipeline, databaseFile string, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		pipeline:     pipeline,
		databaseFile: databaseFile,
		startedAt:    time.Now(),
		logger:       logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalItems    int    `json:"total_items"`
	Images        int    `json:"images"`
	Videos        int    `json:"videos"`
	DatabaseFile  string `json:"database_file"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items := h.pipeline.Items()
	response := StatusResponse{
		TotalItems:    len(items),
		DatabaseFile:  h.databaseFile,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}
	for _, item := range items {
		switch item.Kind {
		case models.KindImage:
			response.Images++
		case models.KindVideo:
			response.Videos++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode status response")
	}
}
