package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"photorestore/internal/match"
)

// Options echoes the knobs that shaped a run so a report can be read on
// its own.
type Options struct {
	HashAlgorithm       string  `json:"hash_algorithm"`
	PerceptualThreshold int     `json:"perceptual_threshold"`
	ReviewThreshold     int     `json:"review_threshold"`
	TimestampTolerance  string  `json:"timestamp_tolerance"`
	SizeTolerance       float64 `json:"size_tolerance"`
	DurationTolerance   string  `json:"duration_tolerance"`
	Workers             int     `json:"workers"`
	StageUncertain      bool    `json:"stage_uncertain"`
	DryRun              bool    `json:"dry_run"`
}

// Summary mirrors match.Tally with stable wire names.
type Summary struct {
	Units             int `json:"units"`
	LivePhotos        int `json:"live_photo_pairs"`
	Matched           int `json:"matched"`
	Missing           int `json:"missing"`
	Uncertain         int `json:"uncertain"`
	MatchedExact      int `json:"matched_exact"`
	MatchedPerceptual int `json:"matched_perceptual"`
	MatchedMetadata   int `json:"matched_metadata"`
	Degraded          int `json:"records_with_warnings"`
}

// Entry describes one unit a recovery pass should look at.
type Entry struct {
	Paths      []string   `json:"paths"`
	Kind       string     `json:"kind"`
	LivePhoto  bool       `json:"live_photo"`
	SizeBytes  int64      `json:"size_bytes"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	Reason     string     `json:"reason"`
	Confidence float64    `json:"confidence,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Failure records a file the run could not fingerprint at all.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report is the JSON artifact of one reconciliation run. Missing and
// Uncertain keep the Amazon input order of their units.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	AmazonDir   string    `json:"amazon_dir"`
	ICloudDir   string    `json:"icloud_dir"`
	Options     Options   `json:"options"`
	Summary     Summary   `json:"summary"`
	Missing     []Entry   `json:"missing"`
	Uncertain   []Entry   `json:"uncertain"`
	Failures    []Failure `json:"fingerprint_failures,omitempty"`
}

// New starts a report for a run over the two library roots.
func New(amazonDir, icloudDir string, opts Options) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		AmazonDir:   amazonDir,
		ICloudDir:   icloudDir,
		Options:     opts,
		Missing:     []Entry{},
		Uncertain:   []Entry{},
	}
}

// AddResults folds a classification list into the report, filling the
// summary and the missing and uncertain entry lists.
func (r *Report) AddResults(classifications []match.Classification) {
	tally := match.Summarize(classifications)
	r.Summary = Summary{
		Units:             tally.Units,
		LivePhotos:        tally.LivePhotos,
		Matched:           tally.Matched,
		Missing:           tally.Missing,
		Uncertain:         tally.Uncertain,
		MatchedExact:      tally.Exact,
		MatchedPerceptual: tally.Perceptual,
		MatchedMetadata:   tally.Metadata,
		Degraded:          tally.Warnings,
	}

	for _, c := range classifications {
		switch c.Status {
		case match.StatusMissing:
			r.Missing = append(r.Missing, entryFrom(c))
		case match.StatusUncertain:
			r.Uncertain = append(r.Uncertain, entryFrom(c))
		}
	}
}

// AddFailure records a file the fingerprint pool skipped.
func (r *Report) AddFailure(path string, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	r.Failures = append(r.Failures, Failure{Path: path, Error: message})
}

// Write persists the report as indented JSON at path, creating parent
// directories as needed.
func (r *Report) Write(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary formats the run outcome as a console table.
func (r *Report) RenderSummary() string {
	s := r.Summary
	rows := [][2]string{
		{"Amazon units", strconv.Itoa(s.Units)},
		{"Live Photo pairs", strconv.Itoa(s.LivePhotos)},
		{"Matched", strconv.Itoa(s.Matched)},
		{"Matched by exact hash", strconv.Itoa(s.MatchedExact)},
		{"Matched by perceptual hash", strconv.Itoa(s.MatchedPerceptual)},
		{"Matched by metadata", strconv.Itoa(s.MatchedMetadata)},
		{"Missing", strconv.Itoa(s.Missing)},
		{"Uncertain", strconv.Itoa(s.Uncertain)},
		{"Records with warnings", strconv.Itoa(s.Degraded)},
	}
	return renderCounts("Outcome", "Count", rows)
}

func entryFrom(c match.Classification) Entry {
	unit := c.Unit
	entry := Entry{
		Paths:      unit.Paths(),
		Kind:       string(unit.Primary.Kind),
		LivePhoto:  unit.IsLivePhoto(),
		SizeBytes:  unit.Primary.Size,
		CapturedAt: unit.Primary.CapturedAt,
		Reason:     c.Reason,
		Confidence: c.Confidence,
	}
	entry.Warnings = append(entry.Warnings, unit.Primary.Warnings...)
	if unit.Companion != nil {
		entry.SizeBytes += unit.Companion.Size
		entry.Warnings = append(entry.Warnings, unit.Companion.Warnings...)
	}
	return entry
}
