// Package hashcache persists computed media fingerprints in a local
// SQLite database so unchanged files skip rehashing on later runs.
//
// Entries are keyed by path and hash algorithm and validated against
// file size and modification time. The cache is purely an accelerator:
// lookup failures degrade to misses and never fail a run, and a stale
// schema version is dropped and rebuilt rather than migrated.
package hashcache
