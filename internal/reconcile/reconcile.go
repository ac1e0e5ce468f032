package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"photorestore/internal/config"
	"photorestore/internal/fingerprint"
	"photorestore/internal/hashcache"
	"photorestore/internal/livepair"
	"photorestore/internal/logging"
	"photorestore/internal/match"
	"photorestore/internal/probe"
	"photorestore/internal/report"
	"photorestore/internal/scan"
	"photorestore/internal/stage"
)

// lockName is the advisory lock guarding a staging tree against
// concurrent runs.
const lockName = ".photorestore.lock"

// Options carries the per-run switches that are not durable configuration.
type Options struct {
	// DryRun analyses and reports but stages nothing.
	DryRun bool
}

// Outcome bundles what a run produced for the caller to present.
type Outcome struct {
	Report       *report.Report
	ReportPath   string
	Staged       stage.Result
	CacheStats   hashcache.Stats
	SkippedJPEGs int
}

// Run executes one reconciliation pass over the configured roots. The
// configuration must already be normalized and validated; Run only checks
// the run arguments the config layer leaves open, the library roots.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if cfg == nil {
		return nil, errors.New("reconcile requires configuration")
	}
	log := logging.NewComponentLogger(logger, "reconcile")

	if err := checkRoot("amazon", cfg.Paths.AmazonDir); err != nil {
		return nil, err
	}
	if err := checkRoot("icloud", cfg.Paths.ICloudDir); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	if cfg.Staging.Enabled {
		lock := flock.New(filepath.Join(cfg.Paths.StagingDir, lockName))
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire staging lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another run is staging into %s", cfg.Paths.StagingDir)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				log.Warn("failed to release staging lock", logging.Error(err))
			}
		}()
	}

	algo, err := fingerprint.ParseAlgorithm(cfg.Fingerprint.HashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("fingerprint.hash_algorithm: %w", err)
	}

	var cache *hashcache.Cache
	if cfg.Cache.Enabled {
		cache, err = hashcache.Open(cfg.CacheDBPath(), algo, logger)
		if err != nil {
			// The cache only saves time; a broken one must not block a run.
			log.Warn("fingerprint cache unavailable, continuing without",
				logging.String("path", cfg.CacheDBPath()), logging.Error(err))
			cache = nil
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					log.Debug("cache close", logging.Error(err))
				}
			}()
		}
	}

	suite := probe.NewSuite(logger, cfg.FFprobeBinary())
	defer suite.Close()

	fpOpts := []fingerprint.Option{fingerprint.WithProber(suite)}
	if cache != nil {
		fpOpts = append(fpOpts, fingerprint.WithCache(cache))
	}
	svc := fingerprint.NewService(algo, logger, fpOpts...)

	amazonScan, err := scan.Walk(cfg.Paths.AmazonDir, scan.Options{PreferHEIC: cfg.Scan.PreferHEIC})
	if err != nil {
		return nil, err
	}
	icloudScan, err := scan.Walk(cfg.Paths.ICloudDir, scan.Options{})
	if err != nil {
		return nil, err
	}
	log.Info("scan complete",
		logging.Int("amazon_files", len(amazonScan.Entries)),
		logging.Int("icloud_files", len(icloudScan.Entries)),
		logging.Int("skipped_jpeg_twins", amazonScan.SkippedJPEGs))

	amazonRecords, amazonFailures, err := svc.Batch(ctx, scan.Paths(amazonScan.Entries), cfg.Fingerprint.Workers)
	if err != nil {
		return nil, err
	}
	icloudRecords, icloudFailures, err := svc.Batch(ctx, scan.Paths(icloudScan.Entries), cfg.Fingerprint.Workers)
	if err != nil {
		return nil, err
	}
	var cacheStats hashcache.Stats
	if cache != nil {
		cacheStats = cache.Stats()
		log.Debug("fingerprint cache",
			logging.Int64("hits", cacheStats.Hits),
			logging.Int64("misses", cacheStats.Misses))
	}

	pairOpts := cfg.LivePairOptions()
	amazonUnits := livepair.Resolve(amazonRecords, pairOpts)
	icloudUnits := livepair.Resolve(icloudRecords, pairOpts)
	log.Info("live photo pairing complete",
		logging.Int("amazon_units", len(amazonUnits)),
		logging.Int("icloud_units", len(icloudUnits)))

	matchOpts := cfg.MatchOptions()
	classifications, err := match.Classify(ctx, amazonUnits, icloudUnits, matchOpts)
	if err != nil {
		return nil, err
	}

	rep := report.New(cfg.Paths.AmazonDir, cfg.Paths.ICloudDir, report.Options{
		HashAlgorithm:       string(algo),
		PerceptualThreshold: matchOpts.PerceptualThreshold,
		ReviewThreshold:     matchOpts.ReviewThreshold,
		TimestampTolerance:  matchOpts.TimestampTolerance.String(),
		SizeTolerance:       matchOpts.SizeTolerance,
		DurationTolerance:   matchOpts.DurationTolerance.String(),
		Workers:             cfg.Fingerprint.Workers,
		StageUncertain:      cfg.Staging.Enabled && cfg.Staging.IncludeUncertain,
		DryRun:              opts.DryRun,
	})
	rep.AddResults(classifications)
	for _, failure := range amazonFailures {
		rep.AddFailure(failure.Path, failure.Err)
	}
	for _, failure := range icloudFailures {
		rep.AddFailure(failure.Path, failure.Err)
	}

	outcome := &Outcome{
		Report:       rep,
		ReportPath:   cfg.ReportPath(),
		CacheStats:   cacheStats,
		SkippedJPEGs: amazonScan.SkippedJPEGs,
	}
	if err := rep.Write(outcome.ReportPath); err != nil {
		return nil, err
	}
	log.Info("report written", logging.String("path", outcome.ReportPath))

	if cfg.Staging.Enabled {
		exporter, err := stage.New(stage.Options{
			StagingRoot:      cfg.Paths.StagingDir,
			AmazonRoot:       cfg.Paths.AmazonDir,
			IncludeUncertain: cfg.Staging.IncludeUncertain,
			DryRun:           opts.DryRun,
			RunID:            rep.RunID,
		}, logger)
		if err != nil {
			return nil, err
		}
		staged, err := exporter.Export(ctx, classifications)
		if err != nil {
			return nil, err
		}
		outcome.Staged = staged
	}

	log.Info("reconciliation complete",
		logging.Int("units", rep.Summary.Units),
		logging.Int("matched", rep.Summary.Matched),
		logging.Int("missing", rep.Summary.Missing),
		logging.Int("uncertain", rep.Summary.Uncertain))
	return outcome, nil
}

func checkRoot(name, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%s directory not configured", name)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%s directory: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s directory: %s is not a directory", name, dir)
	}
	return nil
}
