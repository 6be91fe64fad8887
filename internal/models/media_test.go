package models

import (
	"testing"
	"time"
)

func TestSignatureKey(t *testing.T) {
	lastModified := time.UnixMilli(1655280000000)

	got := SignatureKey("IMG_0001.jpg", 2048, lastModified)
	want := "IMG_0001.jpg-2048-1655280000000"
	if got != want {
		t.Errorf("SignatureKey = %q, want %q", got, want)
	}

	// Same inputs, same key
	if again := SignatureKey("IMG_0001.jpg", 2048, lastModified); again != got {
		t.Errorf("SignatureKey not deterministic: %q vs %q", again, got)
	}

	// Any differing attribute changes the key
	if SignatureKey("IMG_0002.jpg", 2048, lastModified) == got {
		t.Error("different name should change the key")
	}
	if SignatureKey("IMG_0001.jpg", 2049, lastModified) == got {
		t.Error("different size should change the key")
	}
	if SignatureKey("IMG_0001.jpg", 2048, lastModified.Add(time.Millisecond)) == got {
		t.Error("different mtime should change the key")
	}
}

func TestKindFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        MediaKind
	}{
		{"image/jpeg", KindImage},
		{"image/png", KindImage},
		{"image/heic", KindImage},
		{"video/mp4", KindVideo},
		{"video/quicktime", KindVideo},
		{"application/octet-stream", KindVideo},
	}

	for _, tt := range tests {
		if got := KindFromContentType(tt.contentType); got != tt.want {
			t.Errorf("KindFromContentType(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
