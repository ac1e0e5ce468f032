package config

import (
	"errors"
	"fmt"

	"photorestore/internal/asset"
	"photorestore/internal/fingerprint"
)

// Validate ensures the configuration is usable. The library roots are run
// arguments and may legitimately stay empty here; the run command checks
// them after flag overrides are applied.
func (c *Config) Validate() error {
	if err := c.validateMatch(); err != nil {
		return err
	}
	if err := c.validateFingerprint(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatch() error {
	if c.Match.PerceptualThreshold < 0 {
		return errors.New("match.perceptual_threshold must be >= 0")
	}
	if c.Match.PerceptualThreshold > asset.MaxHashDistance {
		return fmt.Errorf("match.perceptual_threshold must be <= %d", asset.MaxHashDistance)
	}
	if c.Match.ReviewThreshold < 0 {
		return errors.New("match.review_threshold must be >= 0")
	}
	if c.Match.ReviewThreshold > 0 && c.Match.ReviewThreshold < c.Match.PerceptualThreshold {
		return errors.New("match.review_threshold must not be below match.perceptual_threshold")
	}
	if c.Match.TimestampToleranceSeconds < 0 {
		return errors.New("match.timestamp_tolerance_seconds must be >= 0")
	}
	if c.Match.SizeTolerance < 0 || c.Match.SizeTolerance >= 1 {
		return errors.New("match.size_tolerance must be in [0,1)")
	}
	if c.Match.DurationToleranceSeconds < 0 {
		return errors.New("match.duration_tolerance_seconds must be >= 0")
	}
	if c.Match.LivePairToleranceSeconds < 0 {
		return errors.New("match.live_pair_tolerance_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateFingerprint() error {
	if _, err := fingerprint.ParseAlgorithm(c.Fingerprint.HashAlgorithm); err != nil {
		return fmt.Errorf("fingerprint.hash_algorithm: %w", err)
	}
	return nil
}
