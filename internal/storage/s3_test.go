package storage

import (
	"strings"
	"testing"
)

func TestObjectKeyKeepsFolderAndExtension(t *testing.T) {
	key := ObjectKey("videos", "My Clip.MP4")

	if !strings.HasPrefix(key, "videos/") {
		t.Fatalf("expected videos/ prefix, got %q", key)
	}
	if !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("expected lowercased extension, got %q", key)
	}
	if strings.Contains(key, "My Clip") {
		t.Fatalf("original basename must not leak into key, got %q", key)
	}
}

func TestObjectKeyUnique(t *testing.T) {
	a := ObjectKey("thumbnails", "same.png")
	b := ObjectKey("thumbnails", "same.png")
	if a == b {
		t.Fatalf("expected distinct keys, both were %q", a)
	}
}

func TestObjectKeyNoFolder(t *testing.T) {
	key := ObjectKey("", "avatar.jpg")
	if strings.Contains(key, "/") {
		t.Fatalf("expected bare key without folder, got %q", key)
	}
}
