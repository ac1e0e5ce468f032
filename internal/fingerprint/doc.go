// Package fingerprint turns media files into asset records.
//
// Every file receives an exact content hash computed with a registered
// cryptographic algorithm (sha256 by default, blake3 selectable). Images
// that decode additionally receive a 64-bit DCT perceptual hash and pixel
// dimensions; capture time comes from embedded EXIF data, an external
// metadata prober for formats the standard decoders cannot open (HEIC,
// video containers), or the file modification time as a last resort.
//
// Decode and probe problems never fail a file: the record keeps its
// content hash, the affected optional fields stay nil, and the problem is
// recorded as a per-file warning. Batch fans fingerprinting out across a
// bounded worker pool and preserves input order.
package fingerprint
