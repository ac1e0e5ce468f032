package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"photorestore/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test.
// The Amazon and iCloud roots are created empty; staging, report, and
// cache directories are left for EnsureDirectories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AmazonDir = filepath.Join(base, "amazon")
	cfg.Paths.ICloudDir = filepath.Join(base, "icloud")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Cache.Dir = filepath.Join(base, "cache")

	for _, dir := range []string{cfg.Paths.AmazonDir, cfg.Paths.ICloudDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithoutStaging disables the staging export on the test config.
func WithoutStaging() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Staging.Enabled = false
	}
}

// WithoutCache disables the fingerprint cache on the test config.
func WithoutCache() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
