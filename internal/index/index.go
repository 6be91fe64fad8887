// Package index groups media items into year/month buckets for display.
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/amkim/familyalbum/internal/models"
)

// Index is a two-level grouping of media items by calendar year and
// month of their capture time, in local time. Rebuilt from scratch
// whenever the collection changes.
type Index map[int]map[time.Month][]*models.MediaItem

// Build groups items into (year, month) buckets. Every item lands in
// exactly one bucket. Buckets are ordered newest first, matching the
// flat collection so index-based navigation stays consistent with the
// grid the user sees.
func Build(items []*models.MediaItem) Index {
	idx := make(Index)
	for _, item := range items {
		year := item.CapturedAt.Year()
		month := item.CapturedAt.Month()

		months := idx[year]
		if months == nil {
			months = make(map[time.Month][]*models.MediaItem)
			idx[year] = months
		}
		months[month] = append(months[month], item)
	}

	for _, months := range idx {
		for _, bucket := range months {
			sort.SliceStable(bucket, func(i, j int) bool {
				if bucket[i].CapturedAt.Equal(bucket[j].CapturedAt) {
					return bucket[i].Key < bucket[j].Key
				}
				return bucket[i].CapturedAt.After(bucket[j].CapturedAt)
			})
		}
	}
	return idx
}

// Bucket returns the items for a (year, month) pair. A pair with no
// items yields an empty slice, never nil.
func (ix Index) Bucket(year int, month time.Month) []*models.MediaItem {
	if bucket := ix[year][month]; bucket != nil {
		return bucket
	}
	return []*models.MediaItem{}
}

// Years lists the years present in the index, newest first.
func (ix Index) Years() []int {
	years := make([]int, 0, len(ix))
	for y := range ix {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Months lists the months present for a year, newest first.
func (ix Index) Months(year int) []time.Month {
	months := make([]time.Month, 0, len(ix[year]))
	for m := range ix[year] {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })
	return months
}

// FilterName returns the items whose display name contains the term,
// case-insensitively, preserving order. An empty term means no
// filtering.
func FilterName(items []*models.MediaItem, term string) []*models.MediaItem {
	if term == "" {
		return items
	}
	term = strings.ToLower(term)
	out := make([]*models.MediaItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.DisplayName), term) {
			out = append(out, item)
		}
	}
	return out
}

// FilterKind returns the items matching the given kind, preserving
// order. An empty kind means no filtering.
func FilterKind(items []*models.MediaItem, kind models.MediaKind) []*models.MediaItem {
	if kind == "" {
		return items
	}
	out := make([]*models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}
