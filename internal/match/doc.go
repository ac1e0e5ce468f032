// Package match implements the tiered comparison engine.
//
// Classify evaluates every Amazon unit against the iCloud library in strict
// tier order, stopping at the first tier that produces a candidate:
//
//  1. Exact: corresponding content hashes are identical. Confidence 1.0.
//  2. Perceptual: the primary images' 64-bit perceptual hashes are within
//     the configured Hamming distance. Confidence scales down with
//     distance. Distances just past the threshold but inside the review
//     band produce an uncertain verdict instead, deferred until the
//     metadata tier has had its chance.
//  3. Metadata: at least two of capture time, pixel dimensions, and byte
//     size are present on both sides and agree. Three agreeing fields score
//     0.9, two score 0.6. Equally plausible candidates are reported as
//     uncertain rather than picked arbitrarily; a video duration agreement
//     may single out one candidate before that happens.
//
// A unit no tier can place is missing. The engine is a pure function of
// its inputs: absent optional fields make a tier inapplicable, never fail
// it, and all tie-breaks are deterministic (earliest iCloud unit wins) so
// repeated runs agree bit for bit. Classification of independent units is
// fanned out across a bounded worker pool; results keep Amazon input order.
package match
