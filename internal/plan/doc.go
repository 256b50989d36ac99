// Package plan validates, resolves, and sequences batch edit
// operations against a document snapshot.
//
// A plan moves through a fixed state machine: pending operations are
// validated eagerly, resolved against one in-memory snapshot (search
// positions, range specifications, and locations become concrete
// indices), and finally compiled into an ordered mutation request
// list. Nothing is emitted until every operation validates; the first
// failure rejects the whole batch.
//
// Position bookkeeping is the package's main job. Each operation
// reports the shift it causes (insert +len, delete -len, replace
// delta), explicit-index operations later in the batch are adjusted
// by the shifts of earlier operations that land before them, and
// search-based operations are re-resolved against a virtual text that
// reflects the pending edits, so one operation can target text another
// operation inserts.
package plan
