package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names a registered content-hash function. All records in a run
// use the same algorithm so digests are directly comparable.
type Algorithm string

const (
	// SHA256 is the default content-hash algorithm.
	SHA256 Algorithm = "sha256"
	// BLAKE3 is a faster alternative producing 256-bit digests.
	BLAKE3 Algorithm = "blake3"
)

type hashEntry struct {
	newFunc func() hash.Hash
}

var hashRegistry = map[Algorithm]hashEntry{
	SHA256: {newFunc: sha256.New},
	BLAKE3: {newFunc: func() hash.Hash { return blake3.New() }},
}

// SupportedAlgorithms lists registered algorithm names, sorted.
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(hashRegistry))
	for algo := range hashRegistry {
		names = append(names, string(algo))
	}
	sort.Strings(names)
	return names
}

// ParseAlgorithm validates a configured algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	algo := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if algo == "" {
		return SHA256, nil
	}
	if _, ok := hashRegistry[algo]; !ok {
		return "", fmt.Errorf("content hash: unknown algorithm %q (supported: %s)",
			name, strings.Join(SupportedAlgorithms(), ", "))
	}
	return algo, nil
}

func (a Algorithm) newHash() hash.Hash {
	entry, ok := hashRegistry[a]
	if !ok {
		return sha256.New()
	}
	return entry.newFunc()
}

func hashReader(algo Algorithm, r io.Reader) (string, error) {
	h := algo.newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash contents: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashBytes(algo Algorithm, data []byte) string {
	h := algo.newHash()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
