package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"photorestore/internal/livepair"
	"photorestore/internal/match"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the library roots and output directories.
type Paths struct {
	AmazonDir  string `toml:"amazon_dir"`
	ICloudDir  string `toml:"icloud_dir"`
	StagingDir string `toml:"staging_dir"`
	ReportDir  string `toml:"report_dir"`
}

// Match contains the classification thresholds and tolerances.
type Match struct {
	PerceptualThreshold       int     `toml:"perceptual_threshold"`
	ReviewThreshold           int     `toml:"review_threshold"`
	TimestampToleranceSeconds int     `toml:"timestamp_tolerance_seconds"`
	SizeTolerance             float64 `toml:"size_tolerance"`
	DurationToleranceSeconds  int     `toml:"duration_tolerance_seconds"`
	LivePairToleranceSeconds  int     `toml:"live_pair_tolerance_seconds"`
}

// Fingerprint contains hashing configuration.
type Fingerprint struct {
	HashAlgorithm string `toml:"hash_algorithm"`
	Workers       int    `toml:"workers"`
}

// Scan contains directory walk configuration.
type Scan struct {
	// PreferHEIC drops a JPEG when the Amazon side also holds a HEIC of
	// the same stem, so device exports are not reported as missing twice.
	PreferHEIC bool `toml:"prefer_heic"`
}

// Cache contains configuration for the fingerprint cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // Default: ~/.cache/photorestore
}

// Staging contains configuration for copying recoverable files out.
type Staging struct {
	Enabled          bool `toml:"enabled"`
	IncludeUncertain bool `toml:"include_uncertain"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photorestore.
//
// Configuration sections by subsystem:
//   - Paths: library roots, staging and report directories
//   - Match: thresholds and tolerances for the match tiers
//   - Fingerprint: content-hash algorithm and worker count
//   - Scan: directory walk behavior
//   - Cache: fingerprint cache location and toggle
//   - Staging: recovery copy behavior
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Match       Match       `toml:"match"`
	Fingerprint Fingerprint `toml:"fingerprint"`
	Scan        Scan        `toml:"scan"`
	Cache       Cache       `toml:"cache"`
	Staging     Staging     `toml:"staging"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photorestore/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file is not an error;
// defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/photorestore/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photorestore.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directories a run writes into. The
// library roots are deliberately left alone; a missing root is a user error
// the run surfaces, not something to silently create.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.ReportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Dir) != "" {
		if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Cache.Dir, err)
		}
	}
	return nil
}

// MatchOptions converts the [match] section into engine options.
func (c *Config) MatchOptions() match.Options {
	return match.Options{
		PerceptualThreshold: c.Match.PerceptualThreshold,
		ReviewThreshold:     c.Match.ReviewThreshold,
		TimestampTolerance:  time.Duration(c.Match.TimestampToleranceSeconds) * time.Second,
		SizeTolerance:       c.Match.SizeTolerance,
		DurationTolerance:   time.Duration(c.Match.DurationToleranceSeconds) * time.Second,
	}
}

// LivePairOptions converts the [match] pairing tolerance into pairing options.
func (c *Config) LivePairOptions() livepair.Options {
	return livepair.Options{
		Tolerance: time.Duration(c.Match.LivePairToleranceSeconds) * time.Second,
	}
}

// CacheDBPath returns the fingerprint cache database location.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Cache.Dir, "fingerprints.db")
}

// FFprobeBinary returns the ffprobe executable name used for video probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// ReportPath returns the report file location. Each run overwrites it.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Paths.ReportDir, "report.json")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "photorestore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/photorestore"
	}
	return filepath.Join(home, ".cache", "photorestore")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
