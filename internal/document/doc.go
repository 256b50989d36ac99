// Package document parses document snapshots into a flat, offset-indexed
// element model.
//
// A snapshot is the JSON form of a document: a tree of tabs, structural
// elements, paragraphs, text runs, and tables. This package flattens that
// tree into an ordered []Element where every element carries its half-open
// [start, end) character range, making positional queries (what is at
// offset N, which paragraph contains N, what text spans a range) cheap and
// uniform. Higher layers build section resolution, text search, and edit
// planning on top of this model without touching the raw JSON again.
package document
