// Package livepair groups fingerprinted records into logical units.
//
// Apple Live Photos arrive as two files, a still image plus a short video
// sharing the same base name and captured at essentially the same instant.
// Resolve pairs them into one unit so the match engine compares moments,
// not files. Anything it cannot pair unambiguously stays a singleton:
// under-pairing is always preferred over mis-pairing.
package livepair
