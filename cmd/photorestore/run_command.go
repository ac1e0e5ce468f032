package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"photorestore/internal/config"
	"photorestore/internal/logging"
	"photorestore/internal/reconcile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		amazonDir           string
		icloudDir           string
		stagingDir          string
		reportDir           string
		perceptualThreshold int
		workers             int
		dryRun              bool
		noStaging           bool
		includeUncertain    bool
		verbose             bool
		jsonOut             bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare the Amazon library against the iCloud export",
		Long: `Scans both library roots, fingerprints every media file, pairs Live
Photos, and classifies each Amazon unit as matched, missing, or
uncertain. Missing originals are staged for recovery and a JSON report
is written for later review.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if err := overridePath(&cfg.Paths.AmazonDir, amazonDir); err != nil {
				return err
			}
			if err := overridePath(&cfg.Paths.ICloudDir, icloudDir); err != nil {
				return err
			}
			if err := overridePath(&cfg.Paths.StagingDir, stagingDir); err != nil {
				return err
			}
			if err := overridePath(&cfg.Paths.ReportDir, reportDir); err != nil {
				return err
			}
			if cmd.Flags().Changed("perceptual-threshold") {
				cfg.Match.PerceptualThreshold = perceptualThreshold
				// Keep the review band from collapsing below the match threshold.
				if cfg.Match.ReviewThreshold < perceptualThreshold {
					cfg.Match.ReviewThreshold = perceptualThreshold
				}
			}
			if cmd.Flags().Changed("workers") {
				cfg.Fingerprint.Workers = workers
			}
			if noStaging {
				cfg.Staging.Enabled = false
			}
			if cmd.Flags().Changed("include-uncertain") {
				cfg.Staging.IncludeUncertain = includeUncertain
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			outcome, err := reconcile.Run(cmd.Context(), cfg, reconcile.Options{DryRun: dryRun}, logger)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, outcome.Report)
			}
			renderRunOutcome(cmd.OutOrStdout(), cfg, outcome, dryRun)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&amazonDir, "amazon", "a", "", "Amazon library root (overrides config)")
	flags.StringVarP(&icloudDir, "icloud", "i", "", "iCloud export root (overrides config)")
	flags.StringVar(&stagingDir, "staging", "", "Staging directory for recovered originals")
	flags.StringVar(&reportDir, "report-dir", "", "Directory receiving the JSON report")
	flags.IntVar(&perceptualThreshold, "perceptual-threshold", 0, "Hamming distance threshold for perceptual matches")
	flags.IntVar(&workers, "workers", 0, "Fingerprint worker count (0 uses all CPUs)")
	flags.BoolVar(&dryRun, "dry-run", false, "Plan staging without copying files")
	flags.BoolVar(&noStaging, "no-staging", false, "Skip staging missing originals")
	flags.BoolVar(&includeUncertain, "include-uncertain", true, "Also stage uncertain units for review")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&jsonOut, "json", false, "Emit the full report as JSON on stdout")

	return cmd
}

func overridePath(target *string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	expanded, err := config.ExpandPath(trimmed)
	if err != nil {
		return err
	}
	*target = expanded
	return nil
}

func renderRunOutcome(w io.Writer, cfg *config.Config, outcome *reconcile.Outcome, dryRun bool) {
	colorize := shouldColorize(w)
	fmt.Fprintln(w, outcome.Report.RenderSummary())

	s := outcome.Report.Summary
	switch {
	case s.Missing == 0 && s.Uncertain == 0:
		fmt.Fprintln(w, renderStatusLine("Verdict", statusOK, "every Amazon unit is present in the iCloud export", colorize))
	case s.Missing > 0:
		fmt.Fprintln(w, renderStatusLine("Verdict", statusWarn, fmt.Sprintf("%d missing, %d uncertain", s.Missing, s.Uncertain), colorize))
	default:
		fmt.Fprintln(w, renderStatusLine("Verdict", statusInfo, fmt.Sprintf("%d units need review", s.Uncertain), colorize))
	}

	fmt.Fprintln(w, renderStatusLine("Report", statusInfo, outcome.ReportPath, colorize))

	if cfg.Staging.Enabled {
		kind := statusOK
		message := fmt.Sprintf("copied %d files to %s", len(outcome.Staged.Copied), cfg.Paths.StagingDir)
		if dryRun {
			kind = statusInfo
			message = fmt.Sprintf("dry run, would copy %d files to %s", len(outcome.Staged.Copied), cfg.Paths.StagingDir)
		}
		if failed := len(outcome.Staged.Failures); failed > 0 {
			kind = statusError
			message = fmt.Sprintf("%s (%d failed)", message, failed)
		}
		fmt.Fprintln(w, renderStatusLine("Staging", kind, message, colorize))
	}
	if outcome.SkippedJPEGs > 0 {
		fmt.Fprintln(w, renderStatusLine("Skipped", statusInfo, fmt.Sprintf("%d JPEG twins shadowed by HEIC originals", outcome.SkippedJPEGs), colorize))
	}
	if outcome.CacheStats.Hits > 0 || outcome.CacheStats.Misses > 0 {
		fmt.Fprintln(w, renderStatusLine("Cache", statusInfo, fmt.Sprintf("%d hits, %d misses", outcome.CacheStats.Hits, outcome.CacheStats.Misses), colorize))
	}
}
