// Package ingest implements the upload pipeline: deduplication by
// signature key, capture-date resolution, persistence and progress
// reporting for batches of uploaded files.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amkim/familyalbum/internal/exifdate"
	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
)

// PhotoStore is the persistence backend the pipeline writes to.
type PhotoStore interface {
	LoadAll(ctx context.Context) ([]*models.MediaItem, error)
	Put(ctx context.Context, item *models.MediaItem, content []byte) error
	Remove(ctx context.Context, key string) error
}

// File is one uploaded file handle as delivered by the upload surface.
type File struct {
	Name         string
	Size         int64
	LastModified time.Time
	ContentType  string
	Content      []byte
}

// Progress is a snapshot reported to the progress observer after every
// file finishes, whether it was added, skipped or failed.
type Progress struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Current   string `json:"current,omitempty"` // name of the file that just finished
	Skipped   int    `json:"skipped"`
}

// ProgressFunc observes batch progress. Invocations are serialized and
// Processed is monotonic, ending at Total.
type ProgressFunc func(Progress)

// Failure records one file whose persistence failed.
type Failure struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// Report summarizes one ingested batch.
type Report struct {
	Added    []*models.MediaItem `json:"added"`
	Skipped  int                 `json:"skippedCount"`
	Failures []Failure           `json:"failures"`
}

// AddedCount returns the number of newly persisted items.
func (r *Report) AddedCount() int {
	return len(r.Added)
}

// Pipeline owns the in-memory media collection and the set of known
// signature keys. All mutation goes through this one instance; batches
// are serialized, matching the upload surface which disables the upload
// control while a batch runs.
type Pipeline struct {
	store   PhotoStore
	workers int
	logger  *logrus.Logger

	mu        sync.Mutex
	knownKeys map[string]struct{}
	items     []*models.MediaItem

	batchMu sync.Mutex
}

// NewPipeline creates a pipeline with the given worker-pool size.
func NewPipeline(store PhotoStore, workers int, logger *logrus.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		store:     store,
		workers:   workers,
		logger:    logger,
		knownKeys: make(map[string]struct{}),
	}
}

// Load seeds the collection and the known-key set from the store. A store
// failure surfaces as an error so the caller can retry instead of showing
// an empty album as "no photos yet".
func (p *Pipeline) Load(ctx context.Context) error {
	items, err := p.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load media library: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = items
	p.knownKeys = make(map[string]struct{}, len(items))
	for _, item := range items {
		p.knownKeys[item.Key] = struct{}{}
	}
	sortByCapturedAt(p.items)

	p.logger.WithField("count", len(items)).Info("Media library loaded")
	return nil
}

type job struct {
	file File
	key  string
}

type batchState struct {
	total     int
	processed int
	skipped   int
	progress  ProgressFunc
}

// notify must be called with p.mu held so progress stays monotonic.
func (s *batchState) notify(name string) {
	s.processed++
	if s.progress != nil {
		s.progress(Progress{
			Processed: s.processed,
			Total:     s.total,
			Current:   name,
			Skipped:   s.skipped,
		})
	}
}

// Ingest processes one batch of files: duplicates are skipped, surviving
// files get a capture date, are persisted and merged into the collection.
// One file's persistence failure never aborts the batch; its key
// reservation is rolled back so a later batch can retry it.
func (p *Pipeline) Ingest(ctx context.Context, files []File, progress ProgressFunc) (*Report, error) {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()

	report := &Report{}
	state := &batchState{total: len(files), progress: progress}

	// Deduplicate synchronously in iteration order before any
	// asynchronous work, so the first occurrence of a key wins within
	// the batch as well as against previously known items.
	var queue []job
	for _, f := range files {
		key := models.SignatureKey(f.Name, f.Size, f.LastModified)

		p.mu.Lock()
		if _, dup := p.knownKeys[key]; dup {
			state.skipped++
			state.notify(f.Name)
			p.mu.Unlock()
			p.logger.WithFields(logrus.Fields{
				"file": f.Name,
				"key":  key,
			}).Debug("Skipping duplicate upload")
			continue
		}
		p.knownKeys[key] = struct{}{}
		p.mu.Unlock()

		queue = append(queue, job{file: f, key: key})
	}

	workers := p.workers
	if workers > len(queue) {
		workers = len(queue)
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				p.process(ctx, j, report, state)
			}
		}()
	}
	for _, j := range queue {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	p.mu.Lock()
	sortByCapturedAt(p.items)
	report.Skipped = state.skipped
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"added":   report.AddedCount(),
		"skipped": report.Skipped,
		"failed":  len(report.Failures),
	}).Info("Batch ingested")

	return report, nil
}

// process handles one surviving file: resolve date, persist, record
// the outcome.
func (p *Pipeline) process(ctx context.Context, j job, report *Report, state *batchState) {
	capturedAt := exifdate.Resolve(j.file.ContentType, j.file.Content, j.file.LastModified)

	item := &models.MediaItem{
		Key:          j.key,
		DisplayName:  j.file.Name,
		Kind:         models.KindFromContentType(j.file.ContentType),
		ContentType:  j.file.ContentType,
		Size:         j.file.Size,
		LastModified: j.file.LastModified,
		CapturedAt:   capturedAt,
		CreatedAt:    time.Now(),
	}

	err := p.store.Put(ctx, item, j.file.Content)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		// Roll back the key reservation so a retry in a later batch
		// is not treated as a duplicate.
		delete(p.knownKeys, j.key)
		report.Failures = append(report.Failures, Failure{Name: j.file.Name, Err: err})
		p.logger.WithError(err).WithField("file", j.file.Name).Error("Failed to persist media item")
	} else {
		p.items = append(p.items, item)
		report.Added = append(report.Added, item)
	}
	state.notify(j.file.Name)
}

// Items returns a snapshot of the collection, newest first.
func (p *Pipeline) Items() []*models.MediaItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*models.MediaItem, len(p.items))
	copy(out, p.items)
	return out
}

// Item looks up one item by signature key.
func (p *Pipeline) Item(key string) (*models.MediaItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range p.items {
		if item.Key == key {
			return item, true
		}
	}
	return nil, false
}

// Remove deletes an item from the store and drops it from the collection
// and the known-key set.
func (p *Pipeline) Remove(ctx context.Context, key string) error {
	if err := p.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("failed to remove media item: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.knownKeys, key)
	for i, item := range p.items {
		if item.Key == key {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	return nil
}

// sortByCapturedAt orders items newest first, with the key as tiebreaker
// for a stable display order.
func sortByCapturedAt(items []*models.MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CapturedAt.Equal(items[j].CapturedAt) {
			return items[i].Key < items[j].Key
		}
		return items[i].CapturedAt.After(items[j].CapturedAt)
	})
}
