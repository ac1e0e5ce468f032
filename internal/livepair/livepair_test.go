package livepair

import (
	"testing"
	"time"

	"photorestore/internal/asset"
)

func recordAt(path string, kind asset.Kind, captured *time.Time) asset.Record {
	return asset.Record{
		Path:        path,
		Kind:        kind,
		ContentHash: "hash-" + path,
		CapturedAt:  captured,
	}
}

func tsPtr(t time.Time) *time.Time { return &t }

func TestResolvePairsStillWithAdjacentClip(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("lib/IMG_0001.HEIC", asset.KindImage, tsPtr(base)),
		recordAt("lib/IMG_0001.MOV", asset.KindVideo, tsPtr(base.Add(time.Second))),
	}

	units := Resolve(records, Options{})
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	unit := units[0]
	if !unit.IsLivePhoto() {
		t.Fatal("pair not detected as live photo")
	}
	if unit.Primary.Path != "lib/IMG_0001.HEIC" || unit.Companion.Path != "lib/IMG_0001.MOV" {
		t.Fatalf("wrong members: %s", unit)
	}
}

func TestResolveDifferentStemsStaySingletons(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("IMG_0001.HEIC", asset.KindImage, tsPtr(base)),
		recordAt("IMG_0002.MOV", asset.KindVideo, tsPtr(base)),
	}

	units := Resolve(records, Options{})
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	for _, unit := range units {
		if unit.IsLivePhoto() {
			t.Fatalf("unexpected live photo: %s", unit)
		}
	}
}

func TestResolveRejectsDistantCaptureTimes(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("IMG_0003.JPG", asset.KindImage, tsPtr(base)),
		recordAt("IMG_0003.MOV", asset.KindVideo, tsPtr(base.Add(2*time.Minute))),
	}

	units := Resolve(records, Options{})
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
}

func TestResolvePairsICloudDownloadNaming(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("export/IMG_0006.HEIC", asset.KindImage, tsPtr(base)),
		recordAt("export/IMG_0006_3.MOV", asset.KindVideo, tsPtr(base)),
	}

	units := Resolve(records, Options{})
	if len(units) != 1 || !units[0].IsLivePhoto() {
		t.Fatalf("iCloud-style pair not formed: %d units", len(units))
	}
}

func TestResolveMissingTimestampStillPairs(t *testing.T) {
	records := []asset.Record{
		recordAt("IMG_0004.HEIC", asset.KindImage, tsPtr(time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC))),
		recordAt("IMG_0004.MOV", asset.KindVideo, nil),
	}

	units := Resolve(records, Options{})
	if len(units) != 1 || !units[0].IsLivePhoto() {
		t.Fatalf("pair with missing clip timestamp not formed: %d units", len(units))
	}
}

func TestResolveAmbiguousGroupUnderPairs(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("a/IMG_0005.HEIC", asset.KindImage, tsPtr(base)),
		recordAt("b/IMG_0005.JPG", asset.KindImage, tsPtr(base)),
		recordAt("a/IMG_0005.MOV", asset.KindVideo, tsPtr(base)),
	}

	units := Resolve(records, Options{})
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3 singletons", len(units))
	}
	for _, unit := range units {
		if unit.IsLivePhoto() {
			t.Fatalf("ambiguous group paired: %s", unit)
		}
	}
}

func TestResolvePreservesInputOrder(t *testing.T) {
	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []asset.Record{
		recordAt("IMG_0010.JPG", asset.KindImage, tsPtr(base)),
		recordAt("IMG_0011.MOV", asset.KindVideo, tsPtr(base)),
		recordAt("IMG_0012.JPG", asset.KindImage, tsPtr(base)),
	}

	units := Resolve(records, Options{})
	if len(units) != 3 {
		t.Fatalf("got %d units", len(units))
	}
	wantOrder := []string{"IMG_0010.JPG", "IMG_0011.MOV", "IMG_0012.JPG"}
	for i, want := range wantOrder {
		if units[i].Primary.Path != want {
			t.Fatalf("unit %d = %s, want %s", i, units[i].Primary.Path, want)
		}
	}
}

func TestNormalizeStem(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photos/IMG_0001.HEIC", "IMG_0001"},
		{"photos/img_0001.mov", "IMG_0001"},
		{"IMG_0002_HEVC.MOV", "IMG_0002"},
		{"IMG_0003 (1).JPG", "IMG_0003"},
		{"IMG_0006_3.MOV", "IMG_0006"},
		// Decomposed and precomposed spellings of the same name.
		{"Café.jpg", "CAFÉ"},
		{"Café.jpg", "CAFÉ"},
	}
	for _, tc := range cases {
		if got := normalizeStem(tc.path); got != tc.want {
			t.Fatalf("normalizeStem(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
