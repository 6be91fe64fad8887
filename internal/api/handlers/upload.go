package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
)

// UploadHandler handles multipart batch uploads
type UploadHandler struct {
	pipeline *ingest.Pipeline
	maxBytes int64
	logger   *logrus.Logger

	mu       sync.Mutex
	active   bool
	progress ingest.Progress
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(pipeline *ingest.Pipeline, maxUploadMB int, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		pipeline: pipeline,
		maxBytes: int64(maxUploadMB) << 20,
		logger:   logger,
	}
}

// uploadResponse is the batch report returned to the client
type uploadResponse struct {
	Added        []*models.MediaItem `json:"added"`
	AddedCount   int                 `json:"addedCount"`
	SkippedCount int                 `json:"skippedCount"`
	Failures     []uploadFailure     `json:"failures"`
}

type uploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/upload. Files are sent as "files" parts;
// an optional parallel "lastModified" field carries the source file's
// modification time in epoch milliseconds, the way a browser File
// object exposes it.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.logger.WithError(err).Warn("Rejected upload request")
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "No files in request", http.StatusBadRequest)
		return
	}
	modified := r.MultipartForm.Value["lastModified"]

	files := make([]ingest.File, 0, len(headers))
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(content)
		}

		files = append(files, ingest.File{
			Name:         fh.Filename,
			Size:         int64(len(content)),
			LastModified: lastModifiedAt(modified, i, fh.Header.Get("Last-Modified")),
			ContentType:  contentType,
			Content:      content,
		})
	}

	h.begin(len(files))
	report, err := h.pipeline.Ingest(r.Context(), files, h.observe)
	h.end()
	if err != nil {
		h.logger.WithError(err).Error("Batch ingest failed")
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	added := report.Added
	if added == nil {
		added = []*models.MediaItem{}
	}
	response := uploadResponse{
		Added:        added,
		AddedCount:   report.AddedCount(),
		SkippedCount: report.Skipped,
		Failures:     make([]uploadFailure, 0, len(report.Failures)),
	}
	for _, failure := range report.Failures {
		response.Failures = append(response.Failures, uploadFailure{
			Name:  failure.Name,
			Error: failure.Err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode upload response")
	}
}

// ServeProgress handles GET /api/upload/progress for a live progress bar.
func (h *UploadHandler) ServeProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	response := struct {
		Active bool `json:"active"`
		ingest.Progress
	}{Active: h.active, Progress: h.progress}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode progress response")
	}
}

// observe is the pipeline's progress callback.
func (h *UploadHandler) observe(p ingest.Progress) {
	h.mu.Lock()
	h.progress = p
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"processed": p.Processed,
		"total":     p.Total,
		"file":      p.Current,
	}).Debug("Upload progress")
}

func (h *UploadHandler) begin(total int) {
	h.mu.Lock()
	h.active = true
	h.progress = ingest.Progress{Total: total}
	h.mu.Unlock()
}

// end keeps the final counts around so a poll just after completion
// still sees processed == total.
func (h *UploadHandler) end() {
	h.mu.Lock()
	h.active = false
	h.mu.Unlock()
}

// lastModifiedAt picks the source modification time for the i-th file:
// the parallel form field (epoch millis) first, then the part's
// Last-Modified header, then the time of receipt.
func lastModifiedAt(values []string, i int, header string) time.Time {
	if i < len(values) {
		if ms, err := strconv.ParseInt(values[i], 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
	}
	if header != "" {
		if t, err := http.ParseTime(header); err == nil {
			return t
		}
	}
	return time.Now()
}
