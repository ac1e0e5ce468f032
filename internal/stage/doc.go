// Package stage copies the originals behind missing and uncertain
// verdicts into a staging tree for recovery. Missing units land under
// missing/ and, when enabled, uncertain units under uncertain/, both
// preserving their path relative to the Amazon root. Name conflicts get
// a numeric suffix, copies go through a verified temp file, and a
// manifest records what was staged.
package stage
