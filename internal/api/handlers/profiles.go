package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/amkim/familyalbum/internal/models"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/sirupsen/logrus"
)

// ProfileHandler manages the family member avatar slots
type ProfileHandler struct {
	store  *store.BoltStore
	logger *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(st *store.BoltStore, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{store: st, logger: logger}
}

// ServeHTTP handles GET and PUT on /api/profiles/{id}
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 || id >= models.ProfileSlots {
		http.Error(w, "Unknown profile slot", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.serveImage(w, r, id)
	case http.MethodPut, http.MethodPost:
		h.saveImage(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) serveImage(w http.ResponseWriter, r *http.Request, id int) {
	image, contentType, err := h.store.ProfileImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.WithError(err).WithField("profile", id).Error("Failed to read profile image")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(image); err != nil {
		h.logger.WithError(err).Debug("Client aborted profile download")
	}
}

func (h *ProfileHandler) saveImage(w http.ResponseWriter, r *http.Request, id int) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image part", http.StatusBadRequest)
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "Profile slots only accept images", http.StatusBadRequest)
		return
	}

	profile := &models.Profile{ID: id, ContentType: contentType}
	if err := h.store.SaveProfile(r.Context(), profile, image); err != nil {
		h.logger.WithError(err).WithField("profile", id).Error("Failed to save profile image")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.logger.WithField("profile", id).Info("Profile image updated")
	w.WriteHeader(http.StatusNoContent)
}
