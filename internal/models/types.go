package models

import "strings"

// MediaKind represents the kind of media item (photo or video)
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// KindFromContentType derives the media kind from a declared MIME type.
// The upload surface only ever accepts images and videos, so everything
// that is not image/* is treated as a video.
func KindFromContentType(contentType string) MediaKind {
	if strings.HasPrefix(contentType, "image/") {
		return KindImage
	}
	return KindVideo
}
