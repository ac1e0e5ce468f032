// Package asset defines the media data model shared across the pipeline.
//
// A Record describes one physical file: its exact content hash, an optional
// perceptual hash for images, and the metadata signature (capture time, pixel
// dimensions, byte size) used by the fallback matching tiers. A Unit groups
// one or two records into the logical item being compared: a lone photo or
// video, or a Live Photo pair of still image plus companion clip.
//
// Records and units are built once per run and never mutated afterwards.
package asset
