package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photorestore/internal/report"
	"photorestore/internal/testsupport"
)

func TestRunCommandJSONReport(t *testing.T) {
	env := setupCLITestEnv(t)

	photo := testsupport.GradientJPEG(t, 80, 60, false)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AmazonDir, "IMG_0001.JPG"), photo, time.Time{})
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AmazonDir, "clip.MOV"), []byte("clip bytes"), time.Time{})
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.ICloudDir, "photo.jpg"), photo, time.Time{})

	out, _, err := runCLI(t, []string{"run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("parse report JSON: %v\noutput: %s", err, out)
	}
	if rep.Summary.Units != 2 || rep.Summary.Matched != 1 || rep.Summary.Missing != 1 {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}

	staged := filepath.Join(env.cfg.Paths.StagingDir, "missing", "clip.MOV")
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("expected staged clip: %v", err)
	}
}

func TestRunCommandTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AmazonDir, "clip.MOV"), []byte("clip bytes"), time.Time{})

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Missing")
	requireContains(t, out, "Report:")
	requireContains(t, out, "Staging:")
}

func TestRunCommandDryRun(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AmazonDir, "clip.MOV"), []byte("clip bytes"), time.Time{})

	out, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	requireContains(t, out, "dry run")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StagingDir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run must not stage files")
	}
	if _, err := os.Stat(env.cfg.ReportPath()); err != nil {
		t.Fatalf("dry run should still write the report: %v", err)
	}
}

func TestRunCommandNoStaging(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AmazonDir, "clip.MOV"), []byte("clip bytes"), time.Time{})

	out, _, err := runCLI(t, []string{"run", "--no-staging"}, env.configPath)
	if err != nil {
		t.Fatalf("run --no-staging: %v", err)
	}
	if strings.Contains(out, "Staging:") {
		t.Fatalf("no staging line expected, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StagingDir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("staging must be skipped")
	}
}

func TestRunCommandRejectsBadThreshold(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--perceptual-threshold", "99"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "perceptual_threshold") {
		t.Fatalf("expected threshold validation error, got %v", err)
	}
}

func TestRunCommandFlagOverridesRoots(t *testing.T) {
	env := setupCLITestEnv(t)

	altAmazon := t.TempDir()
	altICloud := t.TempDir()
	photo := testsupport.GradientJPEG(t, 80, 60, false)
	testsupport.WriteFile(t, filepath.Join(altAmazon, "IMG_0001.JPG"), photo, time.Time{})
	testsupport.WriteFile(t, filepath.Join(altICloud, "photo.jpg"), photo, time.Time{})

	out, _, err := runCLI(t, []string{"run", "--amazon", altAmazon, "--icloud", altICloud, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run with overrides: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("parse report JSON: %v", err)
	}
	if rep.AmazonDir != altAmazon || rep.Summary.Matched != 1 {
		t.Fatalf("flag overrides not honored: %+v", rep)
	}
}
