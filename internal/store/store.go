// Package store persists media metadata and content in a single
// bolthold/bbolt database file. Item records live in bolthold; raw
// content lives in a plain bbolt bucket keyed by signature key.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amkim/familyalbum/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

var (
	blobBucket    = []byte("blobs")
	profileBucket = []byte("profile_images")
)

// ErrNotFound is returned when a key has no stored entry.
var ErrNotFound = errors.New("store: not found")

// BoltStore is the embedded persistence backend.
type BoltStore struct {
	store  *bolthold.Store
	logger *logrus.Logger
}

// Open opens (or creates) the database file and its blob buckets.
func Open(path string, logger *logrus.Logger) (*BoltStore, error) {
	s, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = s.Bolt().Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(blobBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(profileBucket)
		return err
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create blob buckets: %w", err)
	}

	return &BoltStore{store: s, logger: logger}, nil
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	return s.store.Close()
}

// LoadAll returns every persisted media item.
func (s *BoltStore) LoadAll(ctx context.Context) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	if err := s.store.Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to load media items: %w", err)
	}
	return items, nil
}

// Put persists one item and its content in a single transaction.
// Idempotent under key: re-putting an existing key overwrites both the
// record and the blob.
func (s *BoltStore) Put(ctx context.Context, item *models.MediaItem, content []byte) error {
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := s.store.TxUpsert(tx, item.Key, item); err != nil {
			return err
		}
		return tx.Bucket(blobBucket).Put([]byte(item.Key), content)
	})
	if err != nil {
		return fmt.Errorf("failed to persist %q: %w", item.Key, err)
	}
	return nil
}

// Content returns the stored bytes for a key.
func (s *BoltStore) Content(ctx context.Context, key string) ([]byte, error) {
	var content []byte
	err := s.store.Bolt().View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(blobBucket).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		// bbolt invalidates the slice once the transaction ends
		content = make([]byte, len(raw))
		copy(content, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Remove deletes one item's record and content by key.
func (s *BoltStore) Remove(ctx context.Context, key string) error {
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := s.store.TxDelete(tx, key, &models.MediaItem{}); err != nil {
			if errors.Is(err, bolthold.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Bucket(blobBucket).Delete([]byte(key))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// SweepOrphans deletes content blobs that have no metadata record, e.g.
// left behind by a crash between bucket writes. Returns the number of
// blobs deleted.
func (s *BoltStore) SweepOrphans(ctx context.Context) (int, error) {
	swept := 0
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var orphans [][]byte
		c := tx.Bucket(blobBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			var item models.MediaItem
			err := s.store.TxGet(tx, string(k), &item)
			if errors.Is(err, bolthold.ErrNotFound) {
				orphan := make([]byte, len(k))
				copy(orphan, k)
				orphans = append(orphans, orphan)
				continue
			}
			if err != nil {
				return err
			}
		}
		for _, k := range orphans {
			if err := tx.Bucket(blobBucket).Delete(k); err != nil {
				return err
			}
			s.logger.WithField("key", string(k)).Warn("Deleted orphaned blob")
		}
		swept = len(orphans)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep orphaned blobs: %w", err)
	}
	return swept, nil
}

// SaveProfile stores a profile slot's record and image.
func (s *BoltStore) SaveProfile(ctx context.Context, profile *models.Profile, image []byte) error {
	profile.UpdatedAt = time.Now()
	err := s.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := s.store.TxUpsert(tx, profile.ID, profile); err != nil {
			return err
		}
		return tx.Bucket(profileBucket).Put(profileKey(profile.ID), image)
	})
	if err != nil {
		return fmt.Errorf("failed to save profile %d: %w", profile.ID, err)
	}
	return nil
}

// Profiles returns all stored profile slots.
func (s *BoltStore) Profiles(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := s.store.Find(&profiles, nil); err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return profiles, nil
}

// ProfileImage returns the stored image bytes and content type for a slot.
func (s *BoltStore) ProfileImage(ctx context.Context, id int) ([]byte, string, error) {
	var profile models.Profile
	if err := s.store.Get(id, &profile); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to load profile %d: %w", id, err)
	}

	var image []byte
	err := s.store.Bolt().View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(profileBucket).Get(profileKey(id))
		if raw == nil {
			return ErrNotFound
		}
		image = make([]byte, len(raw))
		copy(image, raw)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return image, profile.ContentType, nil
}

func profileKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}
