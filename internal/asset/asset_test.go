package asset

import "testing"

func TestPerceptualHashDistance(t *testing.T) {
	a := PerceptualHash(0b1010)
	b := PerceptualHash(0b0110)

	if got := a.Distance(a); got != 0 {
		t.Fatalf("distance to self = %d, want 0", got)
	}
	if got, mirrored := a.Distance(b), b.Distance(a); got != mirrored {
		t.Fatalf("distance not symmetric: %d vs %d", got, mirrored)
	}
	if got := a.Distance(b); got != 2 {
		t.Fatalf("distance = %d, want 2", got)
	}
	if got := PerceptualHash(0).Distance(PerceptualHash(^uint64(0))); got != MaxHashDistance {
		t.Fatalf("all-bits distance = %d, want %d", got, MaxHashDistance)
	}
}

func TestKindForPath(t *testing.T) {
	cases := []struct {
		path string
		kind Kind
		ok   bool
	}{
		{"IMG_0001.HEIC", KindImage, true},
		{"holiday/IMG_0002.jpg", KindImage, true},
		{"clip.MOV", KindVideo, true},
		{"movie.mp4", KindVideo, true},
		{"notes.txt", "", false},
		{"archive.zip", "", false},
		{"noext", "", false},
	}
	for _, tc := range cases {
		kind, ok := KindForPath(tc.path)
		if ok != tc.ok || kind != tc.kind {
			t.Fatalf("KindForPath(%q) = (%q, %v), want (%q, %v)", tc.path, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestIsHEICPath(t *testing.T) {
	if !IsHEICPath("a/IMG_1.HEIC") || !IsHEICPath("b.heif") {
		t.Fatal("expected HEIC/HEIF paths to be detected")
	}
	if IsHEICPath("a.jpg") {
		t.Fatal("jpg misdetected as HEIC")
	}
}

func TestUnitPaths(t *testing.T) {
	still := Record{Path: "/lib/IMG_0001.HEIC", Kind: KindImage}
	clip := Record{Path: "/lib/IMG_0001.MOV", Kind: KindVideo}

	single := Unit{Primary: still}
	if single.IsLivePhoto() {
		t.Fatal("singleton reported as live photo")
	}
	if got := single.Paths(); len(got) != 1 || got[0] != still.Path {
		t.Fatalf("singleton paths = %v", got)
	}

	live := Unit{Primary: still, Companion: &clip}
	if !live.IsLivePhoto() {
		t.Fatal("pair not reported as live photo")
	}
	if got := live.Paths(); len(got) != 2 || got[1] != clip.Path {
		t.Fatalf("pair paths = %v", got)
	}
	if got := live.String(); got != "IMG_0001.HEIC + IMG_0001.MOV" {
		t.Fatalf("String() = %q", got)
	}
}
