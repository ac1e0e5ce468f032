package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"

	"photorestore/internal/asset"
)

// captureTagOrder lists the exiftool date tags tried for a capture time,
// most specific first. MediaCreateDate covers QuickTime containers.
var captureTagOrder = []string{
	"DateTimeOriginal",
	"CreateDate",
	"MediaCreateDate",
	"CreationDate",
}

// Exiftool probes metadata through a long-lived exiftool subprocess. The
// subprocess protocol is stateful, so calls are serialized.
type Exiftool struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExiftool starts the exiftool subprocess. Numeric output is requested
// so dimensions and durations parse without locale formatting.
func NewExiftool() (*Exiftool, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &Exiftool{et: et}, nil
}

// Close terminates the subprocess.
func (e *Exiftool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.et.Close()
}

// Probe extracts dimensions, capture time, and duration for path.
func (e *Exiftool) Probe(ctx context.Context, path string) (Metadata, error) {
	select {
	case <-ctx.Done():
		return Metadata{}, ctx.Err()
	default:
	}

	e.mu.Lock()
	metas := e.et.ExtractMetadata(path)
	e.mu.Unlock()

	if len(metas) == 0 {
		return Metadata{}, fmt.Errorf("exiftool: no metadata for %s", path)
	}
	fm := metas[0]
	if fm.Err != nil {
		return Metadata{}, fmt.Errorf("exiftool: %w", fm.Err)
	}

	var meta Metadata

	width, werr := fm.GetInt("ImageWidth")
	height, herr := fm.GetInt("ImageHeight")
	if werr == nil && herr == nil && width > 0 && height > 0 {
		meta.Pixels = &asset.Dimensions{Width: int(width), Height: int(height)}
	}

	for _, tag := range captureTagOrder {
		value, err := fm.GetString(tag)
		if err != nil {
			continue
		}
		if ts, ok := parseExifDate(value); ok {
			meta.CapturedAt = &ts
			break
		}
	}

	if seconds, err := fm.GetFloat("Duration"); err == nil && seconds > 0 {
		d := time.Duration(seconds * float64(time.Second))
		meta.Duration = &d
	}
	return meta, nil
}

// parseExifDate handles the "2006:01:02 15:04:05" family of exif date
// strings, with optional subseconds and timezone offsets.
func parseExifDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasPrefix(trimmed, "0000") {
		return time.Time{}, false
	}
	layouts := []string{
		"2006:01:02 15:04:05-07:00",
		"2006:01:02 15:04:05Z07:00",
		"2006:01:02 15:04:05.999999999-07:00",
		"2006:01:02 15:04:05.999999999",
		"2006:01:02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return ts, true
		}
	}
	// Some writers append extra fields; retry on the leading portion.
	if len(trimmed) > 19 {
		if ts, err := time.ParseInLocation("2006:01:02 15:04:05", trimmed[:19], time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
