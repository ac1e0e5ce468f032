package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/logging"
)

// FFprobe inspects video containers by executing ffprobe and decoding its
// JSON output.
type FFprobe struct {
	binary string
	logger *slog.Logger
}

// NewFFprobe builds a prober that shells out to the named binary, or plain
// "ffprobe" from PATH when empty.
func NewFFprobe(binary string, logger *slog.Logger) *FFprobe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ffprobe"),
	}
}

// Available reports whether the configured binary resolves.
func (f *FFprobe) Available() bool {
	_, err := exec.LookPath(f.binary)
	return err == nil
}

type ffprobeStream struct {
	CodecType string            `json:"codec_type"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Duration  string            `json:"duration"`
	Tags      map[string]string `json:"tags"`
}

type ffprobeFormat struct {
	Duration string            `json:"duration"`
	Tags     map[string]string `json:"tags"`
}

type ffprobeResult struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// Probe executes ffprobe against path and extracts the video signature:
// first video stream dimensions, container duration, and creation time.
func (f *FFprobe) Probe(ctx context.Context, path string) (Metadata, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Metadata{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Metadata{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return metadataFromResult(result), nil
}

func metadataFromResult(result ffprobeResult) Metadata {
	var meta Metadata

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Width > 0 && stream.Height > 0 {
			meta.Pixels = &asset.Dimensions{Width: stream.Width, Height: stream.Height}
		}
		if meta.Duration == nil {
			if d, ok := parseSeconds(stream.Duration); ok {
				meta.Duration = &d
			}
		}
		break
	}

	if d, ok := parseSeconds(result.Format.Duration); ok {
		meta.Duration = &d
	}

	if ts, ok := creationTimeFromTags(result.Format.Tags); ok {
		meta.CapturedAt = &ts
	} else {
		for _, stream := range result.Streams {
			if ts, ok := creationTimeFromTags(stream.Tags); ok {
				meta.CapturedAt = &ts
				break
			}
		}
	}
	return meta
}

func parseSeconds(value string) (time.Duration, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// creationTimeFromTags reads the container creation timestamp. QuickTime
// writes com.apple.quicktime.creationdate with a zone offset; most other
// muxers write creation_time in UTC.
func creationTimeFromTags(tags map[string]string) (time.Time, bool) {
	if len(tags) == 0 {
		return time.Time{}, false
	}
	for _, key := range []string{"com.apple.quicktime.creationdate", "creation_time"} {
		value, ok := tags[key]
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		layouts := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05.000000Z",
			"2006-01-02T15:04:05-0700",
			"2006-01-02 15:04:05",
		}
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, trimmed); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
