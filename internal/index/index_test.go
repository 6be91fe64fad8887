package index

import (
	"testing"
	"time"

	"github.com/amkim/familyalbum/internal/models"
)

func item(key string, kind models.MediaKind, capturedAt time.Time) *models.MediaItem {
	return &models.MediaItem{
		Key:         key,
		DisplayName: key,
		Kind:        kind,
		CapturedAt:  capturedAt,
	}
}

func TestBuildGroupingCompleteness(t *testing.T) {
	items := []*models.MediaItem{
		item("a", models.KindImage, time.Date(2022, time.January, 1, 10, 0, 0, 0, time.Local)),
		item("b", models.KindImage, time.Date(2022, time.January, 20, 10, 0, 0, 0, time.Local)),
		item("c", models.KindVideo, time.Date(2022, time.June, 15, 10, 0, 0, 0, time.Local)),
		item("d", models.KindImage, time.Date(2019, time.December, 31, 23, 59, 0, 0, time.Local)),
	}

	idx := Build(items)

	// Every item appears in exactly one bucket and the union of buckets
	// equals the input set.
	seen := make(map[string]int)
	for year, months := range idx {
		for month, bucket := range months {
			for _, it := range bucket {
				seen[it.Key]++
				if it.CapturedAt.Year() != year || it.CapturedAt.Month() != month {
					t.Errorf("item %s in bucket (%d, %s) but captured at %v", it.Key, year, month, it.CapturedAt)
				}
			}
		}
	}
	if len(seen) != len(items) {
		t.Fatalf("index contains %d distinct items, want %d", len(seen), len(items))
	}
	for key, n := range seen {
		if n != 1 {
			t.Errorf("item %s appears in %d buckets, want 1", key, n)
		}
	}
}

func TestBucketEmptyQuery(t *testing.T) {
	idx := Build([]*models.MediaItem{
		item("a", models.KindImage, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.Local)),
	})

	got := idx.Bucket(2022, time.March)
	if got == nil {
		t.Fatal("empty month bucket must be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("bucket for empty month has %d items", len(got))
	}

	got = idx.Bucket(1999, time.January)
	if got == nil || len(got) != 0 {
		t.Errorf("bucket for absent year = %v, want empty slice", got)
	}
}

func TestBucketOrderNewestFirst(t *testing.T) {
	items := []*models.MediaItem{
		item("early", models.KindImage, time.Date(2022, time.May, 1, 8, 0, 0, 0, time.Local)),
		item("late", models.KindImage, time.Date(2022, time.May, 30, 8, 0, 0, 0, time.Local)),
		item("mid", models.KindImage, time.Date(2022, time.May, 15, 8, 0, 0, 0, time.Local)),
	}

	bucket := Build(items).Bucket(2022, time.May)
	want := []string{"late", "mid", "early"}
	for i, key := range want {
		if bucket[i].Key != key {
			t.Errorf("bucket[%d] = %s, want %s", i, bucket[i].Key, key)
		}
	}
}

func TestYearsAndMonthsNewestFirst(t *testing.T) {
	idx := Build([]*models.MediaItem{
		item("a", models.KindImage, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.Local)),
		item("b", models.KindImage, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.Local)),
		item("c", models.KindImage, time.Date(2022, time.November, 1, 0, 0, 0, 0, time.Local)),
	})

	years := idx.Years()
	if len(years) != 2 || years[0] != 2022 || years[1] != 2020 {
		t.Errorf("Years() = %v, want [2022 2020]", years)
	}

	months := idx.Months(2022)
	if len(months) != 2 || months[0] != time.November || months[1] != time.January {
		t.Errorf("Months(2022) = %v, want [November January]", months)
	}
}

func TestFilterNameMatchesSubstringCaseInsensitively(t *testing.T) {
	items := []*models.MediaItem{
		{Key: "1", DisplayName: "IMG_Beach_001.jpg", Kind: models.KindImage},
		{Key: "2", DisplayName: "birthday.mp4", Kind: models.KindVideo},
		{Key: "3", DisplayName: "beach-sunset.jpg", Kind: models.KindImage},
	}

	got := FilterName(items, "BEACH")
	if len(got) != 2 || got[0].Key != "1" || got[1].Key != "3" {
		t.Errorf("FilterName(BEACH) = %v, want items 1 and 3 in order", got)
	}

	if got := FilterName(items, "snow"); len(got) != 0 {
		t.Errorf("FilterName(snow) = %v, want no matches", got)
	}

	if got := FilterName(items, ""); len(got) != 3 {
		t.Errorf("empty term returned %d items, want all 3", len(got))
	}
}

func TestFilterKindPreservesOrder(t *testing.T) {
	items := []*models.MediaItem{
		item("v1", models.KindVideo, time.Date(2022, time.May, 3, 0, 0, 0, 0, time.Local)),
		item("i1", models.KindImage, time.Date(2022, time.May, 2, 0, 0, 0, 0, time.Local)),
		item("v2", models.KindVideo, time.Date(2022, time.May, 1, 0, 0, 0, 0, time.Local)),
	}

	videos := FilterKind(items, models.KindVideo)
	if len(videos) != 2 || videos[0].Key != "v1" || videos[1].Key != "v2" {
		t.Errorf("FilterKind video = %v", videos)
	}

	all := FilterKind(items, "")
	if len(all) != 3 {
		t.Errorf("empty kind filter returned %d items, want all 3", len(all))
	}
}
