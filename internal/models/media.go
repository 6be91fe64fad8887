package models

import (
	"fmt"
	"time"
)

// MediaItem represents one ingested photo or video in the album.
// The signature key doubles as the storage primary key.
type MediaItem struct {
	Key         string    `boltholdKey:"Key" json:"key"`
	DisplayName string    `json:"displayName"` // original file name, also used for downloads
	Kind        MediaKind `boltholdIndex:"Kind" json:"kind"`
	ContentType string    `json:"contentType"`

	// Source file attributes the signature key is derived from
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`

	// CapturedAt is the resolved capture moment, preferring EXIF metadata
	// over the file's modification time. Always populated, local time.
	CapturedAt time.Time `json:"capturedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// SignatureKey computes the stable identity key for an uploaded file:
// name, byte size and last-modified time (epoch millis) joined with "-".
// Content is deliberately not hashed; re-selecting the same file from the
// same device yields the same key without reading large video files.
// Two distinct files that happen to share all three attributes collide
// and the second upload is skipped. That is an accepted tradeoff.
func SignatureKey(name string, size int64, lastModified time.Time) string {
	return fmt.Sprintf("%s-%d-%d", name, size, lastModified.UnixMilli())
}
