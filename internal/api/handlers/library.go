package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/amkim/familyalbum/internal/index"
	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
)

// monthLabels maps time.Month to the labels the album UI renders.
var monthLabels = [12]string{
	"1월", "2월", "3월", "4월", "5월", "6월",
	"7월", "8월", "9월", "10월", "11월", "12월",
}

// LibraryHandler serves the year/month-grouped media library
type LibraryHandler struct {
	pipeline *ingest.Pipeline
	logger   *logrus.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(pipeline *ingest.Pipeline, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{pipeline: pipeline, logger: logger}
}

type libraryMonth struct {
	Month int                 `json:"month"`
	Label string              `json:"label"`
	Items []*models.MediaItem `json:"items"`
}

type libraryYear struct {
	Year   int            `json:"year"`
	Months []libraryMonth `json:"months"`
}

type libraryResponse struct {
	TotalItems int           `json:"totalItems"`
	Years      []libraryYear `json:"years"`
}

// ServeHTTP handles GET /api/library?year=&month=&kind=&search=.
// Filters are optional; kind is "image" or "video", search matches
// display names case-insensitively.
func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := models.MediaKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != models.KindImage && kind != models.KindVideo {
		http.Error(w, "Unknown kind", http.StatusBadRequest)
		return
	}

	items := index.FilterKind(h.pipeline.Items(), kind)
	items = index.FilterName(items, r.URL.Query().Get("search"))
	idx := index.Build(items)

	yearFilter, hasYear := queryInt(r, "year")
	monthFilter, hasMonth := queryInt(r, "month")
	if hasMonth && (monthFilter < 1 || monthFilter > 12) {
		http.Error(w, "Month out of range", http.StatusBadRequest)
		return
	}

	response := libraryResponse{TotalItems: len(items), Years: []libraryYear{}}
	for _, year := range idx.Years() {
		if hasYear && year != yearFilter {
			continue
		}
		ly := libraryYear{Year: year}
		for _, month := range idx.Months(year) {
			if hasMonth && int(month) != monthFilter {
				continue
			}
			ly.Months = append(ly.Months, libraryMonth{
				Month: int(month),
				Label: monthLabels[month-1],
				Items: idx.Bucket(year, month),
			})
		}
		if len(ly.Months) > 0 {
			response.Years = append(response.Years, ly)
		}
	}

	// A filtered (year, month) with no items still answers with an empty
	// bucket rather than an error.
	if hasYear && hasMonth && len(response.Years) == 0 {
		response.Years = append(response.Years, libraryYear{
			Year: yearFilter,
			Months: []libraryMonth{{
				Month: monthFilter,
				Label: monthLabels[monthFilter-1],
				Items: idx.Bucket(yearFilter, time.Month(monthFilter)),
			}},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode library response")
	}
}

func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
