// Package reconcile runs one full comparison of an Amazon media root
// against an iCloud export: scan, fingerprint, Live Photo pairing,
// tiered classification, report, and staging of recoverable originals.
package reconcile
