package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"photorestore/internal/asset"
)

// Entry describes one discovered media file. Stat data is captured during
// the walk so fingerprinting does not need a second round of syscalls.
type Entry struct {
	Path    string
	Rel     string
	Size    int64
	ModTime time.Time
	Kind    asset.Kind
}

// Options control a walk.
type Options struct {
	// PreferHEIC drops JPEG files whose stem also exists as HEIC/HEIF.
	// Devices that export both encodings of a shot would otherwise make
	// every such photo look like a missing JPEG.
	PreferHEIC bool
}

// Result is the outcome of one walk.
type Result struct {
	Entries      []Entry
	SkippedJPEGs int
}

// Walk discovers supported media files under root, sorted by relative
// path. Dot-prefixed files and directories are skipped entirely.
func Walk(root string, opts Options) (Result, error) {
	root = filepath.Clean(root)

	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind, ok := asset.KindForPath(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Path:    path,
			Rel:     rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Kind:    kind,
		})
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })

	result := Result{Entries: entries}
	if opts.PreferHEIC {
		result.Entries, result.SkippedJPEGs = preferHEIC(entries)
	}
	return result, nil
}

// preferHEIC removes JPEG entries whose uppercased stem also appears as a
// HEIC/HEIF entry. Everything else in the stem group is kept.
func preferHEIC(entries []Entry) ([]Entry, int) {
	heicStems := make(map[string]struct{})
	for _, entry := range entries {
		if asset.IsHEICPath(entry.Path) {
			heicStems[upperStem(entry.Path)] = struct{}{}
		}
	}
	if len(heicStems) == 0 {
		return entries, 0
	}

	kept := entries[:0]
	skipped := 0
	for _, entry := range entries {
		if asset.IsJPEGPath(entry.Path) {
			if _, ok := heicStems[upperStem(entry.Path)]; ok {
				skipped++
				continue
			}
		}
		kept = append(kept, entry)
	}
	return kept, skipped
}

func upperStem(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Paths projects the entry list onto plain file paths, preserving order.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	return paths
}
