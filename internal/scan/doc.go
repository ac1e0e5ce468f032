// Package scan discovers media files under a library root.
//
// The walker keeps only supported image and video extensions, skips dot
// files (AppleDouble "._" siblings and .DS_Store would otherwise pollute
// hashing), and returns entries sorted by relative path so downstream
// processing is deterministic. An optional filter drops JPEG exports when
// a HEIC original with the same stem exists, mirroring how Apple devices
// deliver both encodings of one shot.
package scan
