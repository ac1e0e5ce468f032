package asset

import (
	"fmt"
	"math/bits"
	"path/filepath"
	"time"
)

// Kind classifies a media file as a still image or a video clip.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// PerceptualHash is a 64-bit visual digest of decoded image content. Two
// hashes are compared by Hamming distance; small distances mean visually
// similar pictures even when the encoded bytes differ.
type PerceptualHash uint64

// Distance returns the Hamming distance between two perceptual hashes.
func (p PerceptualHash) Distance(other PerceptualHash) int {
	return bits.OnesCount64(uint64(p ^ other))
}

func (p PerceptualHash) String() string {
	return fmt.Sprintf("%016x", uint64(p))
}

// MaxHashDistance is the largest possible Hamming distance between two
// 64-bit perceptual hashes.
const MaxHashDistance = 64

// Dimensions holds pixel width and height of a decoded frame.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Record is the fingerprint of one physical media file. ContentHash is
// always present; the remaining signature fields are best effort and stay
// nil when the source material does not provide them.
type Record struct {
	Path        string
	Kind        Kind
	Size        int64
	ContentHash string
	Perceptual  *PerceptualHash
	CapturedAt  *time.Time
	Pixels      *Dimensions
	Duration    *time.Duration
	Warnings    []string
}

// Base returns the file name component of the record path.
func (r Record) Base() string {
	return filepath.Base(r.Path)
}

// HasWarnings reports whether fingerprinting noted any non-fatal problems.
func (r Record) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Unit is the atomic item the match engine compares: a single record, or a
// Live Photo pair where Companion is the short video captured alongside the
// primary still.
type Unit struct {
	Primary   Record
	Companion *Record
}

// IsLivePhoto reports whether the unit carries a companion clip.
func (u Unit) IsLivePhoto() bool {
	return u.Companion != nil
}

// Paths lists the file paths covered by the unit, primary first.
func (u Unit) Paths() []string {
	if u.Companion == nil {
		return []string{u.Primary.Path}
	}
	return []string{u.Primary.Path, u.Companion.Path}
}

func (u Unit) String() string {
	if u.Companion == nil {
		return u.Primary.Base()
	}
	return u.Primary.Base() + " + " + u.Companion.Base()
}
