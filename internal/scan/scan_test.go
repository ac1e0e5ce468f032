package scan

import (
	"os"
	"path/filepath"
	"testing"

	"photorestore/internal/asset"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func relPaths(entries []Entry) []string {
	rels := make([]string, len(entries))
	for i, entry := range entries {
		rels[i] = filepath.ToSlash(entry.Rel)
	}
	return rels
}

func TestWalkFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zebra.jpg")
	writeFile(t, root, "album/clip.mov")
	writeFile(t, root, "album/photo.HEIC")
	writeFile(t, root, "notes.txt")
	writeFile(t, root, ".DS_Store")
	writeFile(t, root, "._zebra.jpg")
	writeFile(t, root, ".thumbnails/cached.jpg")

	result, err := Walk(root, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{"album/clip.mov", "album/photo.HEIC", "zebra.jpg"}
	got := relPaths(result.Entries)
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}

	if result.Entries[0].Kind != asset.KindVideo || result.Entries[1].Kind != asset.KindImage {
		t.Fatalf("kinds wrong: %+v", result.Entries)
	}
	if result.Entries[0].Size != int64(len("album/clip.mov")) {
		t.Fatalf("size not captured: %+v", result.Entries[0])
	}
}

func TestWalkPreferHEIC(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "IMG_0001.HEIC")
	writeFile(t, root, "IMG_0001.JPG")
	writeFile(t, root, "IMG_0001.MOV")
	writeFile(t, root, "IMG_0002.JPG")

	result, err := Walk(root, Options{PreferHEIC: true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	got := relPaths(result.Entries)
	want := []string{"IMG_0001.HEIC", "IMG_0001.MOV", "IMG_0002.JPG"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}
	if result.SkippedJPEGs != 1 {
		t.Fatalf("skipped = %d, want 1", result.SkippedJPEGs)
	}
}

func TestWalkWithoutPreferenceKeepsBoth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "IMG_0001.HEIC")
	writeFile(t, root, "IMG_0001.JPG")

	result, err := Walk(root, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(result.Entries) != 2 || result.SkippedJPEGs != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "absent"), Options{}); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestPaths(t *testing.T) {
	entries := []Entry{{Path: "/a/1.jpg"}, {Path: "/a/2.mov"}}
	got := Paths(entries)
	if len(got) != 2 || got[0] != "/a/1.jpg" || got[1] != "/a/2.mov" {
		t.Fatalf("Paths = %v", got)
	}
}
