package plan

import (
	"fmt"
	"unicode"

	"github.com/dshills/docspan/internal/textindex"
)

type insertSpan struct {
	text  []rune
	start int // document offset range of the inserted text
	end   int
}

// virtualText layers the batch's pending edits over the snapshot's
// logical text so later operations can search for text that earlier
// operations insert. It keeps the same character-to-document-offset
// table the index uses, extended past the original document end for
// appended content.
type virtualText struct {
	runes   []rune
	offsets []int
	next    int // document offset just past the tracked text
	recent  []insertSpan
}

func newVirtualText(ix *textindex.Index) *virtualText {
	runes, offsets := ix.Mapping()
	vt := &virtualText{runes: runes, offsets: offsets, next: 1}
	if len(offsets) > 0 {
		vt.next = offsets[len(offsets)-1] + 1
	}
	return vt
}

// find resolves the nth occurrence of search as a document offset
// range. Matches inside text inserted earlier in the batch are
// preferred when the caller asks for the first occurrence, so an
// insert-then-format pair targets the new text and not an older copy.
func (vt *virtualText) find(search string, occurrence int, matchCase bool) (start, end int, err error) {
	if search == "" {
		return 0, 0, fmt.Errorf("search text cannot be empty")
	}
	if occurrence == 0 {
		// Zero selects the first match, same as one.
		occurrence = 1
	}
	pat := []rune(search)

	if occurrence == 1 {
		if s, e, ok := vt.findRecent(pat, matchCase); ok {
			return s, e, nil
		}
	}

	var hits []int
	for i := 0; i+len(pat) <= len(vt.runes); i++ {
		if runesMatch(vt.runes[i:i+len(pat)], pat, matchCase) {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return 0, 0, fmt.Errorf("Text '%s' not found in document", search)
	}

	var target int
	switch {
	case occurrence > 0:
		if occurrence > len(hits) {
			return 0, 0, fmt.Errorf("Occurrence %d of '%s' not found. Document contains %d occurrence(s).",
				occurrence, search, len(hits))
		}
		target = hits[occurrence-1]
	default:
		if -occurrence > len(hits) {
			return 0, 0, fmt.Errorf("Occurrence %d of '%s' not found. Document contains %d occurrence(s).",
				occurrence, search, len(hits))
		}
		target = hits[len(hits)+occurrence]
	}

	start = vt.offsets[target]
	end = vt.offsets[target+len(pat)-1] + 1
	return start, end, nil
}

// findRecent checks the batch's own inserts, newest first.
func (vt *virtualText) findRecent(pat []rune, matchCase bool) (int, int, bool) {
	for i := len(vt.recent) - 1; i >= 0; i-- {
		ins := vt.recent[i]
		for j := 0; j+len(pat) <= len(ins.text); j++ {
			if runesMatch(ins.text[j:j+len(pat)], pat, matchCase) {
				start := ins.start + j
				return start, start + len(pat), true
			}
		}
	}
	return 0, 0, false
}

func runesMatch(s, pat []rune, matchCase bool) bool {
	for i, p := range pat {
		if matchCase {
			if s[i] != p {
				return false
			}
		} else if unicode.ToLower(s[i]) != unicode.ToLower(p) {
			return false
		}
	}
	return true
}

// apply folds a resolved operation into the virtual state. Format
// operations leave the text untouched; table and page-break inserts
// are structural and not tracked.
func (vt *virtualText) apply(op resolvedOp) {
	switch op.typ {
	case OpInsertText:
		vt.applyInsert(op.start, op.text)
	case OpInsertList:
		vt.applyInsert(op.start, op.text+"\n")
	case OpDeleteText:
		vt.applyDelete(op.start, op.end)
	case OpReplaceText:
		vt.applyDelete(op.start, op.end)
		vt.applyInsert(op.start, op.text)
	}
}

func (vt *virtualText) applyInsert(docIndex int, text string) {
	if text == "" {
		return
	}
	ins := []rune(text)
	pos := vt.virtualPos(docIndex)

	vt.runes = append(vt.runes[:pos], append(append([]rune{}, ins...), vt.runes[pos:]...)...)

	added := make([]int, len(ins))
	for i := range added {
		added[i] = docIndex + i
	}
	tail := append([]int{}, vt.offsets[pos:]...)
	vt.offsets = append(vt.offsets[:pos], append(added, tail...)...)
	for i := pos + len(ins); i < len(vt.offsets); i++ {
		vt.offsets[i] += len(ins)
	}
	vt.next += len(ins)
	vt.recent = append(vt.recent, insertSpan{text: ins, start: docIndex, end: docIndex + len(ins)})
}

func (vt *virtualText) applyDelete(start, end int) {
	if start >= end {
		return
	}
	lo := vt.virtualPos(start)
	hi := vt.virtualPos(end)

	vt.runes = append(vt.runes[:lo], vt.runes[hi:]...)
	vt.offsets = append(vt.offsets[:lo], vt.offsets[hi:]...)
	removed := end - start
	for i := lo; i < len(vt.offsets); i++ {
		vt.offsets[i] -= removed
	}
	vt.next -= removed
}

// virtualPos maps a document offset to its position in the virtual
// text. Offsets at or past the tracked end land at the end.
func (vt *virtualText) virtualPos(docIndex int) int {
	if docIndex >= vt.next {
		return len(vt.runes)
	}
	for i, off := range vt.offsets {
		if off >= docIndex {
			return i
		}
	}
	return len(vt.runes)
}
