package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testItem(key string) *models.MediaItem {
	return &models.MediaItem{
		Key:          key,
		DisplayName:  key + ".jpg",
		Kind:         models.KindImage,
		ContentType:  "image/jpeg",
		Size:         3,
		LastModified: time.Date(2022, time.April, 4, 4, 0, 0, 0, time.Local),
		CapturedAt:   time.Date(2022, time.April, 1, 12, 0, 0, 0, time.Local),
		CreatedAt:    time.Now(),
	}
}

func TestPutLoadAllRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testItem("k1"), []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, testItem("k2"), []byte("two")); err != nil {
		t.Fatalf("put: %v", err)
	}

	items, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("loaded %d items, want 2", len(items))
	}

	content, err := s.Content(ctx, "k2")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !bytes.Equal(content, []byte("two")) {
		t.Errorf("content = %q, want %q", content, "two")
	}
}

func TestPutIsIdempotentUnderKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testItem("k1"), []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, testItem("k1"), []byte("second")); err != nil {
		t.Fatalf("re-put: %v", err)
	}

	items, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("re-put duplicated the record: %d items", len(items))
	}

	content, err := s.Content(ctx, "k1")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !bytes.Equal(content, []byte("second")) {
		t.Errorf("content = %q, want overwrite %q", content, "second")
	}
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testItem("k1"), []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Remove(ctx, "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := s.Content(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("content after remove: err = %v, want ErrNotFound", err)
	}
	items, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("loaded %d items after remove, want 0", len(items))
	}

	if err := s.Remove(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove missing: err = %v, want ErrNotFound", err)
	}
}

func TestSweepOrphans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testItem("kept"), []byte("kept")); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Simulate a crash between bucket writes: a blob with no record
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobBucket).Put([]byte("orphan"), []byte("stale"))
	})
	if err != nil {
		t.Fatalf("inject orphan: %v", err)
	}

	swept, err := s.SweepOrphans(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept %d blobs, want 1", swept)
	}

	if _, err := s.Content(ctx, "orphan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphan still readable after sweep: err = %v", err)
	}
	if _, err := s.Content(ctx, "kept"); err != nil {
		t.Errorf("sweep deleted a live blob: %v", err)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profile := &models.Profile{ID: 2, ContentType: "image/png"}
	if err := s.SaveProfile(ctx, profile, []byte("avatar")); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	image, contentType, err := s.ProfileImage(ctx, 2)
	if err != nil {
		t.Fatalf("profile image: %v", err)
	}
	if !bytes.Equal(image, []byte("avatar")) || contentType != "image/png" {
		t.Errorf("profile image = %q (%s), want avatar/image/png", image, contentType)
	}

	profiles, err := s.Profiles(ctx)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != 2 {
		t.Errorf("profiles = %+v, want one slot with ID 2", profiles)
	}

	if _, _, err := s.ProfileImage(ctx, 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing profile: err = %v, want ErrNotFound", err)
	}
}
