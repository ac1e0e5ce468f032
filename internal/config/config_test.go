package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"photorestore/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "photorestore", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	wantReports := filepath.Join(tempHome, ".local", "share", "photorestore", "reports")
	if cfg.Paths.ReportDir != wantReports {
		t.Fatalf("unexpected report dir: got %q want %q", cfg.Paths.ReportDir, wantReports)
	}
	wantCache := filepath.Join(tempHome, ".cache", "photorestore")
	if cfg.Cache.Dir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Cache.Dir, wantCache)
	}
	if cfg.Paths.AmazonDir != "" || cfg.Paths.ICloudDir != "" {
		t.Fatalf("expected library roots to stay empty, got %q and %q", cfg.Paths.AmazonDir, cfg.Paths.ICloudDir)
	}
	if cfg.Match.PerceptualThreshold != 5 || cfg.Match.ReviewThreshold != 10 {
		t.Fatalf("unexpected perceptual thresholds: %d/%d", cfg.Match.PerceptualThreshold, cfg.Match.ReviewThreshold)
	}
	if cfg.Match.TimestampToleranceSeconds != 60 {
		t.Fatalf("unexpected timestamp tolerance: %d", cfg.Match.TimestampToleranceSeconds)
	}
	if cfg.Match.SizeTolerance != 0.05 {
		t.Fatalf("unexpected size tolerance: %v", cfg.Match.SizeTolerance)
	}
	if cfg.Match.LivePairToleranceSeconds != 3 {
		t.Fatalf("unexpected live pair tolerance: %d", cfg.Match.LivePairToleranceSeconds)
	}
	if cfg.Fingerprint.HashAlgorithm != "sha256" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Fingerprint.HashAlgorithm)
	}
	if !cfg.Scan.PreferHEIC {
		t.Fatal("expected HEIC preference on by default")
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected cache enabled by default")
	}
	if !cfg.Staging.Enabled || !cfg.Staging.IncludeUncertain {
		t.Fatal("expected staging with uncertain copies by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if got := cfg.CacheDBPath(); got != filepath.Join(wantCache, "fingerprints.db") {
		t.Fatalf("unexpected cache db path: %q", got)
	}
	if got := cfg.ReportPath(); got != filepath.Join(wantReports, "report.json") {
		t.Fatalf("unexpected report path: %q", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.ReportDir, cfg.Cache.Dir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	configPath := filepath.Join(t.TempDir(), "photorestore.toml")

	type payload struct {
		Paths struct {
			AmazonDir string `toml:"amazon_dir"`
			ICloudDir string `toml:"icloud_dir"`
		} `toml:"paths"`
		Match struct {
			PerceptualThreshold int `toml:"perceptual_threshold"`
			ReviewThreshold     int `toml:"review_threshold"`
		} `toml:"match"`
		Fingerprint struct {
			HashAlgorithm string `toml:"hash_algorithm"`
		} `toml:"fingerprint"`
		Staging struct {
			Enabled bool `toml:"enabled"`
		} `toml:"staging"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.AmazonDir = "~/amazon-photos"
	custom.Paths.ICloudDir = "~/icloud-export"
	custom.Match.PerceptualThreshold = 2
	custom.Match.ReviewThreshold = 6
	custom.Fingerprint.HashAlgorithm = " BLAKE3 "
	custom.Staging.Enabled = false
	custom.Logging.Format = "weird"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.AmazonDir != filepath.Join(tempHome, "amazon-photos") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.AmazonDir)
	}
	if cfg.Paths.ICloudDir != filepath.Join(tempHome, "icloud-export") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.ICloudDir)
	}
	if cfg.Match.PerceptualThreshold != 2 || cfg.Match.ReviewThreshold != 6 {
		t.Fatalf("expected thresholds from file, got %d/%d", cfg.Match.PerceptualThreshold, cfg.Match.ReviewThreshold)
	}
	if cfg.Fingerprint.HashAlgorithm != "blake3" {
		t.Fatalf("expected normalized algorithm, got %q", cfg.Fingerprint.HashAlgorithm)
	}
	if cfg.Staging.Enabled {
		t.Fatal("expected staging disabled from file")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown log format coerced to console, got %q", cfg.Logging.Format)
	}
	if cfg.Match.TimestampToleranceSeconds != 60 {
		t.Fatalf("expected untouched keys to keep defaults, got %d", cfg.Match.TimestampToleranceSeconds)
	}
}

func TestOptionConversions(t *testing.T) {
	cfg := config.Default()
	cfg.Match.PerceptualThreshold = 4
	cfg.Match.TimestampToleranceSeconds = 90
	cfg.Match.LivePairToleranceSeconds = 5

	opts := cfg.MatchOptions()
	if opts.PerceptualThreshold != 4 {
		t.Fatalf("unexpected perceptual threshold: %d", opts.PerceptualThreshold)
	}
	if opts.TimestampTolerance != 90*time.Second {
		t.Fatalf("unexpected timestamp tolerance: %v", opts.TimestampTolerance)
	}
	if opts.DurationTolerance != time.Second {
		t.Fatalf("unexpected duration tolerance: %v", opts.DurationTolerance)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("converted options should validate: %v", err)
	}

	pair := cfg.LivePairOptions()
	if pair.Tolerance != 5*time.Second {
		t.Fatalf("unexpected pairing tolerance: %v", pair.Tolerance)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "perceptual_threshold") {
		t.Fatalf("sample config missing match keys: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Match.PerceptualThreshold != 5 {
		t.Fatalf("sample thresholds should match defaults, got %d", cfg.Match.PerceptualThreshold)
	}
	if cfg.Fingerprint.HashAlgorithm != "sha256" {
		t.Fatalf("sample algorithm should match defaults, got %q", cfg.Fingerprint.HashAlgorithm)
	}

	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.StagingDir, "photorestore") {
			t.Fatalf("expected staging dir to contain photorestore, got %q", cfg.Paths.StagingDir)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Match.PerceptualThreshold = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative perceptual threshold")
	}

	cfg = config.Default()
	cfg.Match.PerceptualThreshold = 65
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above hash width")
	}

	cfg = config.Default()
	cfg.Match.ReviewThreshold = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when review threshold below perceptual threshold")
	}

	cfg = config.Default()
	cfg.Match.SizeTolerance = 1.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for size tolerance outside [0,1)")
	}

	cfg = config.Default()
	cfg.Match.LivePairToleranceSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative pairing tolerance")
	}

	cfg = config.Default()
	cfg.Fingerprint.HashAlgorithm = "md5"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported hash algorithm")
	}
}
