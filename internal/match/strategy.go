package match

import (
	"fmt"
	"strings"
	"time"

	"photorestore/internal/asset"
)

// tierResult is one tier's outcome. ok marks a terminal classification;
// deferred carries a review-band verdict that only applies if every later
// tier comes up empty.
type tierResult struct {
	classification Classification
	ok             bool
	deferred       *Classification
}

func terminal(c Classification) tierResult {
	return tierResult{classification: c, ok: true}
}

type tierFunc func(lib *library, unit asset.Unit, opts Options) tierResult

// tiers lists the strategies in strict priority order. The first tier that
// yields a candidate decides the unit.
var tiers = []tierFunc{exactTier, perceptualTier, metadataTier}

// exactTier matches on identical content hashes: primary against primary,
// and the companion clip against companions of other Live Photo units.
// Byte-identical copies make every candidate equivalent, so the earliest
// iCloud unit wins.
func exactTier(lib *library, unit asset.Unit, _ Options) tierResult {
	if idx, ok := lib.primaryHash[unit.Primary.ContentHash]; ok {
		matched := lib.units[idx]
		return terminal(Classification{
			Unit:       unit,
			Status:     StatusMatched,
			Strategy:   StrategyExact,
			Matched:    &matched,
			Confidence: 1.0,
			Reason:     "content hash identical",
		})
	}
	if unit.Companion != nil {
		if idx, ok := lib.companionHash[unit.Companion.ContentHash]; ok {
			matched := lib.units[idx]
			return terminal(Classification{
				Unit:       unit,
				Status:     StatusMatched,
				Strategy:   StrategyExact,
				Matched:    &matched,
				Confidence: 1.0,
				Reason:     "companion content hash identical",
			})
		}
	}
	return tierResult{}
}

// perceptualTier compares 64-bit perceptual hashes by Hamming distance.
// The minimum-distance candidate wins when it clears the threshold; the
// scan keeps the earliest unit on equal distances. Distances inside the
// review band defer an uncertain verdict instead of matching.
func perceptualTier(lib *library, unit asset.Unit, opts Options) tierResult {
	ph := unit.Primary.Perceptual
	if ph == nil {
		return tierResult{}
	}

	bestIdx := -1
	bestDist := asset.MaxHashDistance + 1
	for i, cand := range lib.units {
		cph := cand.Primary.Perceptual
		if cph == nil {
			continue
		}
		if d := ph.Distance(*cph); d < bestDist {
			bestDist, bestIdx = d, i
		}
	}
	if bestIdx < 0 {
		return tierResult{}
	}

	if bestDist <= opts.PerceptualThreshold {
		matched := lib.units[bestIdx]
		confidence := 1.0 - float64(bestDist)/float64(asset.MaxHashDistance)
		return terminal(Classification{
			Unit:       unit,
			Status:     StatusMatched,
			Strategy:   StrategyPerceptual,
			Matched:    &matched,
			Confidence: clamp01(confidence),
			Reason:     fmt.Sprintf("perceptual distance %d within threshold %d", bestDist, opts.PerceptualThreshold),
		})
	}

	if opts.ReviewThreshold > opts.PerceptualThreshold && bestDist <= opts.ReviewThreshold {
		span := asset.MaxHashDistance - opts.PerceptualThreshold
		confidence := 0.5 - float64(bestDist-opts.PerceptualThreshold)/float64(span)
		deferred := Classification{
			Unit:       unit,
			Status:     StatusUncertain,
			Strategy:   StrategyNone,
			Confidence: clamp(confidence, 0, 0.5),
			Reason: fmt.Sprintf("visually similar to %s at distance %d, above match threshold %d",
				lib.units[bestIdx].Primary.Base(), bestDist, opts.PerceptualThreshold),
		}
		return tierResult{deferred: &deferred}
	}
	return tierResult{}
}

// metadataTier matches on the capture signature. A candidate needs at
// least two of capture time, dimensions, and size present on both sides
// and agreeing; the highest agreement count wins. Equally good candidates
// go through the duration tie-break and otherwise surface as uncertain.
func metadataTier(lib *library, unit asset.Unit, opts Options) tierResult {
	a := unit.Primary

	var best []int
	bestCount := 0
	var bestFields []string
	for i, cand := range lib.units {
		if cand.Primary.Kind != a.Kind {
			continue
		}
		count, fields := metadataAgreement(a, cand.Primary, opts)
		if count < 2 {
			continue
		}
		switch {
		case count > bestCount:
			bestCount = count
			bestFields = fields
			best = best[:0]
			best = append(best, i)
		case count == bestCount:
			best = append(best, i)
		}
	}
	if len(best) == 0 {
		return tierResult{}
	}

	confidence := 0.6
	if bestCount == 3 {
		confidence = 0.9
	}
	reason := fmt.Sprintf("metadata agreement on %s", strings.Join(bestFields, ", "))

	if len(best) > 1 {
		if winner, ok := durationTieBreak(unit, lib, best, opts.DurationTolerance); ok {
			best = []int{winner}
			reason += " with duration tie-break"
		} else {
			return terminal(Classification{
				Unit:     unit,
				Status:   StatusUncertain,
				Strategy: StrategyNone,
				Reason: fmt.Sprintf("%d equally plausible candidates by %s",
					len(best), strings.Join(bestFields, ", ")),
			})
		}
	}

	matched := lib.units[best[0]]
	return terminal(Classification{
		Unit:       unit,
		Status:     StatusMatched,
		Strategy:   StrategyMetadata,
		Matched:    &matched,
		Confidence: confidence,
		Reason:     reason,
	})
}

// metadataAgreement counts signature fields present on both records and
// agreeing within the configured tolerances.
func metadataAgreement(a, b asset.Record, opts Options) (int, []string) {
	var fields []string

	if a.CapturedAt != nil && b.CapturedAt != nil {
		gap := a.CapturedAt.Sub(*b.CapturedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= opts.TimestampTolerance {
			fields = append(fields, "timestamp")
		}
	}
	if a.Pixels != nil && b.Pixels != nil && *a.Pixels == *b.Pixels {
		fields = append(fields, "dimensions")
	}
	if sizesAgree(a.Size, b.Size, opts.SizeTolerance) {
		fields = append(fields, "size")
	}
	return len(fields), fields
}

func sizesAgree(a, b int64, tolerance float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	limit := float64(max(a, b)) * tolerance
	return float64(diff) <= limit
}

// durationTieBreak filters equally plausible candidates down to the single
// one whose video duration agrees with the unit's. It only ever narrows a
// tie, never rejects the winner the metadata fields already chose.
func durationTieBreak(unit asset.Unit, lib *library, candidates []int, tolerance time.Duration) (int, bool) {
	target := unitDuration(unit)
	if target == nil {
		return 0, false
	}
	winner := -1
	for _, idx := range candidates {
		cd := unitDuration(lib.units[idx])
		if cd == nil {
			continue
		}
		gap := *target - *cd
		if gap < 0 {
			gap = -gap
		}
		if gap <= tolerance {
			if winner >= 0 {
				return 0, false
			}
			winner = idx
		}
	}
	if winner < 0 {
		return 0, false
	}
	return winner, true
}

func unitDuration(u asset.Unit) *time.Duration {
	if u.Primary.Duration != nil {
		return u.Primary.Duration
	}
	if u.Companion != nil {
		return u.Companion.Duration
	}
	return nil
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
