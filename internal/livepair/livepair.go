package livepair

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"photorestore/internal/asset"
)

// DefaultTolerance is the widest capture-time gap still accepted between a
// still and its companion clip. Live Photo components are written within a
// second or two of each other.
const DefaultTolerance = 3 * time.Second

// Options tunes pairing behavior. The zero value uses DefaultTolerance.
type Options struct {
	Tolerance time.Duration
}

// copyCounter matches the " (1)" style suffix some exporters append when a
// name collides.
var copyCounter = regexp.MustCompile(`\s\(\d+\)$`)

// normalizeStem reduces a file name to the stem used for pair grouping.
// macOS writes decomposed Unicode file names, so the stem is NFC-normalized
// before comparing; case and known export suffixes are ignored.
func normalizeStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = norm.NFC.String(stem)
	stem = strings.ToUpper(stem)
	stem = copyCounter.ReplaceAllString(stem, "")
	stem = strings.TrimSuffix(stem, "_HEVC")
	// iCloud web downloads name the motion component IMG_xxxx_3.MOV.
	stem = strings.TrimSuffix(stem, "_3")
	return stem
}

// Resolve partitions records into logical units. A still image and a video
// sharing a normalized stem become one Live Photo unit when their capture
// times are within the tolerance (a missing capture time on either side
// does not block the pair). Every other record becomes a singleton, and
// ambiguous stems, two stills or two clips sharing a name, stay singletons
// entirely. Resolve never fails and preserves input order: each unit is
// emitted at its primary record's position.
func Resolve(records []asset.Record, opts Options) []asset.Unit {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	type group struct {
		images []int
		videos []int
	}
	groups := make(map[string]*group)
	for i, rec := range records {
		stem := normalizeStem(rec.Path)
		g := groups[stem]
		if g == nil {
			g = &group{}
			groups[stem] = g
		}
		switch rec.Kind {
		case asset.KindImage:
			g.images = append(g.images, i)
		case asset.KindVideo:
			g.videos = append(g.videos, i)
		}
	}

	// companionOf maps image index to paired video index.
	companionOf := make(map[int]int)
	consumed := make(map[int]struct{})
	for _, g := range groups {
		if len(g.images) != 1 || len(g.videos) != 1 {
			continue
		}
		imgIdx, vidIdx := g.images[0], g.videos[0]
		if !captureTimesCompatible(records[imgIdx], records[vidIdx], tolerance) {
			continue
		}
		companionOf[imgIdx] = vidIdx
		consumed[vidIdx] = struct{}{}
	}

	units := make([]asset.Unit, 0, len(records))
	for i := range records {
		if _, taken := consumed[i]; taken {
			continue
		}
		unit := asset.Unit{Primary: records[i]}
		if vidIdx, ok := companionOf[i]; ok {
			companion := records[vidIdx]
			unit.Companion = &companion
		}
		units = append(units, unit)
	}
	return units
}

func captureTimesCompatible(image, video asset.Record, tolerance time.Duration) bool {
	if image.CapturedAt == nil || video.CapturedAt == nil {
		return true
	}
	gap := image.CapturedAt.Sub(*video.CapturedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap <= tolerance
}
