package config

import (
	"time"

	"photorestore/internal/livepair"
	"photorestore/internal/match"
)

const (
	defaultStagingDir    = "~/.local/share/photorestore/staging"
	defaultReportDir     = "~/.local/share/photorestore/reports"
	defaultHashAlgorithm = "sha256"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults. The match
// numbers come straight from the engine packages so the file, flag, and
// engine defaults cannot drift apart.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			ReportDir:  defaultReportDir,
		},
		Match: Match{
			PerceptualThreshold:       match.DefaultPerceptualThreshold,
			ReviewThreshold:           match.DefaultReviewThreshold,
			TimestampToleranceSeconds: int(match.DefaultTimestampTolerance / time.Second),
			SizeTolerance:             match.DefaultSizeTolerance,
			DurationToleranceSeconds:  int(match.DefaultDurationTolerance / time.Second),
			LivePairToleranceSeconds:  int(livepair.DefaultTolerance / time.Second),
		},
		Fingerprint: Fingerprint{
			HashAlgorithm: defaultHashAlgorithm,
		},
		Scan: Scan{
			PreferHEIC: true,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir(),
		},
		Staging: Staging{
			Enabled:          true,
			IncludeUncertain: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
