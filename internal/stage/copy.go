package stage

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// copyFileVerified streams src to dest through a temp file, rehashes the
// staged bytes against the source digest, and renames into place. The
// source modification time is carried over so capture-time fallbacks
// survive recovery.
func copyFileVerified(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, hasher), in)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close staging file: %w", err)
	}

	if written != info.Size() {
		_ = os.Remove(tmp)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := verifyDigest(tmp, hasher.Sum(nil)); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize staging file: %w", err)
	}
	_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
	return nil
}

func verifyDigest(path string, want []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopen staged copy: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash staged copy: %w", err)
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return errors.New("copy hash mismatch: staged bytes differ from source")
	}
	return nil
}

// uniqueDest returns dest or the first name_1.ext style variant that is
// neither on disk nor already claimed this run.
func uniqueDest(dest string, taken map[string]struct{}) string {
	if available(dest, taken) {
		return dest
	}
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if available(candidate, taken) {
			return candidate
		}
	}
}

func available(path string, taken map[string]struct{}) bool {
	if _, ok := taken[path]; ok {
		return false
	}
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
