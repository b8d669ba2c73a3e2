package storage

import (
	"strings"
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	key := ObjectKey("proj-1", "screenshot.png", now)
	if !strings.HasPrefix(key, "proj-1/") {
		t.Errorf("key %q not scoped under project prefix", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("key %q lost the extension", key)
	}

	// Same inputs must still yield distinct keys.
	if other := ObjectKey("proj-1", "screenshot.png", now); other == key {
		t.Errorf("two keys for identical inputs collide: %q", key)
	}
}

func TestObjectKeyNoExtension(t *testing.T) {
	key := ObjectKey("proj-1", "README", time.Now())
	if strings.Contains(key, ".") {
		t.Errorf("key %q gained a spurious extension", key)
	}
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		endpoint string
		bucket   string
		want     string
	}{
		{
			"plain",
			"http://blobs.local/tp/proj-1/123-abcd.png",
			"http://blobs.local", "tp",
			"proj-1/123-abcd.png",
		},
		{
			"endpoint with trailing slash",
			"http://blobs.local/tp/proj-1/123-abcd.png",
			"http://blobs.local/", "tp",
			"proj-1/123-abcd.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromURL(tt.url, tt.endpoint, tt.bucket); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
