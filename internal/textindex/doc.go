// Package textindex reconstructs a document's logical text from its
// fragmented runs and answers occurrence and boundary queries over it.
//
// Document text arrives split across many small text runs, interrupted by
// non-text elements, so a per-fragment substring search misses matches
// that span fragment boundaries. The index concatenates run text in
// document order while recording the source offset of every character;
// searches operate on the contiguous logical string and map spans back to
// document offsets through the recorded table. Table cell text is indexed
// at the position the cell occupies.
package textindex
