package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"photorestore/internal/logging"
	"photorestore/internal/match"
)

const (
	missingDir   = "missing"
	uncertainDir = "uncertain"
	manifestName = "manifest.json"
)

// Options configures an Exporter.
type Options struct {
	// StagingRoot receives the missing/ and uncertain/ trees.
	StagingRoot string
	// AmazonRoot anchors relative destination paths. Sources outside it
	// are staged by base name.
	AmazonRoot string
	// IncludeUncertain also stages uncertain units for manual review.
	IncludeUncertain bool
	// DryRun plans destinations without touching the filesystem.
	DryRun bool
	// RunID ties the staging manifest to a report; generated when empty.
	RunID string
}

// Copy records one staged file.
type Copy struct {
	Source  string `json:"source"`
	Dest    string `json:"dest"`
	Verdict string `json:"verdict"`
}

// Failure records a file that could not be staged.
type Failure struct {
	Source string
	Err    error
}

// Result is the outcome of one export pass.
type Result struct {
	Copied   []Copy
	Failures []Failure
}

type manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	StagedFiles []Copy    `json:"staged_files"`
}

// Exporter stages the originals behind missing and uncertain verdicts.
type Exporter struct {
	root             string
	amazonRoot       string
	includeUncertain bool
	dryRun           bool
	runID            string
	logger           *slog.Logger
}

// New validates the staging destination and builds an Exporter.
func New(opts Options, logger *slog.Logger) (*Exporter, error) {
	if strings.TrimSpace(opts.StagingRoot) == "" {
		return nil, errors.New("staging root not configured")
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Exporter{
		root:             opts.StagingRoot,
		amazonRoot:       opts.AmazonRoot,
		includeUncertain: opts.IncludeUncertain,
		dryRun:           opts.DryRun,
		runID:            runID,
		logger:           logging.NewComponentLogger(logger, "stage"),
	}, nil
}

// Export copies every file behind a missing verdict, and behind an
// uncertain verdict when enabled, into the staging tree. Per-file copy
// problems are collected as failures and never abort the pass.
func (e *Exporter) Export(ctx context.Context, classifications []match.Classification) (Result, error) {
	var res Result
	taken := make(map[string]struct{})

	for _, c := range classifications {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		var subdir string
		switch {
		case c.Status == match.StatusMissing:
			subdir = missingDir
		case c.Status == match.StatusUncertain && e.includeUncertain:
			subdir = uncertainDir
		default:
			continue
		}

		for _, src := range c.Unit.Paths() {
			dest, err := e.stageFile(src, subdir, taken)
			if err != nil {
				res.Failures = append(res.Failures, Failure{Source: src, Err: err})
				e.logger.Error("stage copy failed",
					logging.String("source", src), logging.Error(err))
				continue
			}
			res.Copied = append(res.Copied, Copy{Source: src, Dest: dest, Verdict: string(c.Status)})
		}
	}

	if !e.dryRun && len(res.Copied) > 0 {
		if err := e.writeManifest(res.Copied); err != nil {
			return res, err
		}
	}

	e.logger.Info("staging finished",
		logging.Int("staged", len(res.Copied)),
		logging.Int("failed", len(res.Failures)),
		logging.Bool("dry_run", e.dryRun))
	return res, nil
}

func (e *Exporter) stageFile(src, subdir string, taken map[string]struct{}) (string, error) {
	dest := uniqueDest(filepath.Join(e.root, subdir, e.relativeTo(src)), taken)
	taken[dest] = struct{}{}

	if e.dryRun {
		e.logger.Info("dry run, would copy",
			logging.String("source", src), logging.String("dest", dest))
		return dest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	if err := copyFileVerified(src, dest); err != nil {
		return "", err
	}
	e.logger.Debug("staged file",
		logging.String("source", src), logging.String("dest", dest))
	return dest, nil
}

// relativeTo keeps the source's layout under the Amazon root; anything
// outside it falls back to the bare file name.
func (e *Exporter) relativeTo(src string) string {
	if e.amazonRoot == "" {
		return filepath.Base(src)
	}
	rel, err := filepath.Rel(e.amazonRoot, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(src)
	}
	return rel
}

func (e *Exporter) writeManifest(copies []Copy) error {
	m := manifest{
		RunID:       e.runID,
		GeneratedAt: time.Now().UTC(),
		StagedFiles: copies,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(e.root, manifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
