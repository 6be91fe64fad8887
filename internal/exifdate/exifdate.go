// Package exifdate resolves the capture timestamp of an uploaded file,
// preferring embedded EXIF metadata over the file's modification time.
package exifdate

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Resolve derives the capture time for an uploaded file. For image/*
// content it reads the EXIF DateTimeOriginal tag; everything else
// (videos included) uses the file's last-modified time directly.
// All failure paths fall back to lastModified, never an error.
func Resolve(contentType string, content []byte, lastModified time.Time) time.Time {
	if !strings.HasPrefix(contentType, "image/") {
		return lastModified
	}

	x, err := exif.Decode(bytes.NewReader(content))
	if err != nil {
		return lastModified
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return lastModified
	}

	raw, err := tag.StringVal()
	if err != nil {
		return lastModified
	}

	if t, ok := parseDateTime(raw); ok {
		return t
	}
	return lastModified
}

// parseDateTime parses an EXIF DateTimeOriginal value as local wall-clock
// time. A date with no time component resolves to midnight.
func parseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006:01:02 15:04:05",
		"2006:01:02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
