package probe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/logging"
)

// ErrUnavailable reports that no probe backend is installed for a request.
var ErrUnavailable = errors.New("probe: no backend available")

// Metadata is the capture signature a backend recovered from one file.
// Fields stay nil when the source material does not carry them.
type Metadata struct {
	CapturedAt *time.Time
	Pixels     *asset.Dimensions
	Duration   *time.Duration
}

// Suite routes probe requests to the available backends: ffprobe for video
// containers, exiftool for stills and as a video fallback.
type Suite struct {
	ffprobe *FFprobe
	exif    *Exiftool
	logger  *slog.Logger
}

// NewSuite detects the installed backends. Neither backend is required;
// callers see degraded metadata rather than errors when both are missing.
func NewSuite(logger *slog.Logger, ffprobeBinary string) *Suite {
	suite := &Suite{logger: logging.NewComponentLogger(logger, "probe")}

	if ff := NewFFprobe(ffprobeBinary, logger); ff.Available() {
		suite.ffprobe = ff
	} else {
		suite.logger.Info("ffprobe not found, video metadata limited")
	}

	exif, err := NewExiftool()
	if err != nil {
		suite.logger.Info("exiftool not found, HEIC metadata limited", logging.Error(err))
	} else {
		suite.exif = exif
	}
	return suite
}

// Probe extracts metadata for path according to its media kind.
func (s *Suite) Probe(ctx context.Context, path string, kind asset.Kind) (Metadata, error) {
	if kind == asset.KindVideo && s.ffprobe != nil {
		meta, err := s.ffprobe.Probe(ctx, path)
		if err == nil {
			return meta, nil
		}
		if s.exif == nil {
			return Metadata{}, err
		}
		s.logger.Debug("ffprobe failed, falling back to exiftool",
			logging.String("path", path), logging.Error(err))
	}
	if s.exif != nil {
		return s.exif.Probe(ctx, path)
	}
	return Metadata{}, ErrUnavailable
}

// Close releases backend subprocesses.
func (s *Suite) Close() {
	if s.exif != nil {
		if err := s.exif.Close(); err != nil {
			s.logger.Debug("exiftool shutdown", logging.Error(err))
		}
	}
}
