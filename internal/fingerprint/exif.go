package fingerprint

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifCaptureTime extracts the capture timestamp embedded in JPEG or TIFF
// bytes. It prefers DateTimeOriginal and falls back to DateTime; absence of
// either is not an error, just a false return.
func exifCaptureTime(data []byte) (time.Time, bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}, false
	}
	ts, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
