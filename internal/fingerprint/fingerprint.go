package fingerprint

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"photorestore/internal/asset"
	"photorestore/internal/logging"
	"photorestore/internal/probe"
)

// MetadataProber supplies capture metadata for files the standard image
// decoders cannot open, HEIC stills and video containers in particular.
type MetadataProber interface {
	Probe(ctx context.Context, path string, kind asset.Kind) (probe.Metadata, error)
}

// Cache persists fingerprints across runs. A lookup hit must only be
// returned when path, size, and modification time all still match.
type Cache interface {
	Lookup(ctx context.Context, path string, size int64, modTime time.Time) (asset.Record, bool)
	Store(ctx context.Context, record asset.Record, modTime time.Time) error
}

// Service fingerprints media files into asset records.
type Service struct {
	algo   Algorithm
	prober MetadataProber
	cache  Cache
	logger *slog.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithProber attaches an external metadata prober.
func WithProber(p MetadataProber) Option {
	return func(s *Service) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithCache attaches a fingerprint cache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewService constructs a fingerprint service using the given content-hash
// algorithm.
func NewService(algo Algorithm, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		algo:   algo,
		logger: logging.NewComponentLogger(logger, "fingerprint"),
	}
	if svc.algo == "" {
		svc.algo = SHA256
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Algorithm reports the content-hash algorithm the service computes.
func (s *Service) Algorithm() Algorithm {
	return s.algo
}

// File fingerprints the file at path. The returned record always carries a
// content hash; optional signature fields are filled best effort and decode
// or probe problems surface as record warnings, not errors. Errors are
// reserved for files that cannot be read at all.
func (s *Service) File(ctx context.Context, path string) (asset.Record, error) {
	select {
	case <-ctx.Done():
		return asset.Record{}, ctx.Err()
	default:
	}

	kind, ok := asset.KindForPath(path)
	if !ok {
		return asset.Record{}, fmt.Errorf("unsupported media extension: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return asset.Record{}, fmt.Errorf("stat file: %w", err)
	}

	if s.cache != nil {
		if rec, hit := s.cache.Lookup(ctx, path, info.Size(), info.ModTime()); hit {
			return rec, nil
		}
	}

	var rec asset.Record
	if kind == asset.KindImage && !asset.IsHEICPath(path) {
		rec, err = s.stillRecord(path, info)
	} else {
		rec, err = s.probedRecord(ctx, path, info, kind)
	}
	if err != nil {
		return asset.Record{}, err
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, rec, info.ModTime()); err != nil {
			s.logger.Debug("fingerprint cache store failed",
				logging.String("path", path), logging.Error(err))
		}
	}
	return rec, nil
}

// stillRecord handles images the standard decoders understand. The whole
// file is read once and shared by the content hash, the raster decode, and
// the EXIF scan.
func (s *Service) stillRecord(path string, info fs.FileInfo) (asset.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return asset.Record{}, fmt.Errorf("read file: %w", err)
	}

	rec := asset.Record{
		Path:        path,
		Kind:        asset.KindImage,
		Size:        info.Size(),
		ContentHash: hashBytes(s.algo, data),
	}

	if img, err := decodeImage(data); err != nil {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("image decode failed: %v", err))
	} else {
		bounds := img.Bounds()
		rec.Pixels = &asset.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}
		if ph, err := perceptualHash(img); err != nil {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("perceptual hash failed: %v", err))
		} else {
			rec.Perceptual = &ph
		}
	}

	if ts, ok := exifCaptureTime(data); ok {
		rec.CapturedAt = &ts
	} else {
		mod := info.ModTime()
		rec.CapturedAt = &mod
	}
	return rec, nil
}

// probedRecord handles videos and HEIC stills: the content hash is streamed
// and signature metadata comes from the external prober when one is
// configured.
func (s *Service) probedRecord(ctx context.Context, path string, info fs.FileInfo, kind asset.Kind) (asset.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return asset.Record{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	digest, err := hashReader(s.algo, file)
	if err != nil {
		return asset.Record{}, err
	}

	rec := asset.Record{
		Path:        path,
		Kind:        kind,
		Size:        info.Size(),
		ContentHash: digest,
	}
	if kind == asset.KindImage {
		// HEIC rasters stay undecoded, so no perceptual hash.
		rec.Warnings = append(rec.Warnings, "perceptual hash unavailable: HEIC decode unsupported")
	}

	if s.prober == nil {
		rec.Warnings = append(rec.Warnings, "no metadata prober configured")
	} else if meta, err := s.prober.Probe(ctx, path, kind); err != nil {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("metadata probe failed: %v", err))
	} else {
		rec.Pixels = meta.Pixels
		rec.CapturedAt = meta.CapturedAt
		rec.Duration = meta.Duration
	}

	if rec.CapturedAt == nil {
		mod := info.ModTime()
		rec.CapturedAt = &mod
	}
	return rec, nil
}
