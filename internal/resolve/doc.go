// Package resolve converts range specifications into concrete document
// ranges.
//
// A range specification describes "where" declaratively: explicit
// indices, a pair of search bounds, a search widened by character
// offsets, a search extended to an enclosing unit, or a section
// reference. Resolution is pure and deterministic over one snapshot.
// Caller-correctable failures (text not found, bad occurrence, invalid
// extension) come back as an unsuccessful Resolved carrying a diagnostic
// message, never as an error or panic.
package resolve
