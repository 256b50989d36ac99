package textindex

import (
	"fmt"
	"unicode"

	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/document"
)

// Index is the logical text of one document plus the per-character table
// mapping logical positions back to document offsets.
type Index struct {
	runes   []rune
	offsets []int
}

// New builds the index from a snapshot's text runs.
func New(s *document.Snapshot) *Index {
	ix := &Index{}
	for _, run := range s.Runs() {
		pos := run.Range.Start
		for _, r := range run.Text {
			ix.runes = append(ix.runes, r)
			ix.offsets = append(ix.offsets, pos)
			pos++
		}
	}
	return ix
}

// Len returns the logical text length in characters.
func (ix *Index) Len() int {
	return len(ix.runes)
}

// Text returns the full logical text.
func (ix *Index) Text() string {
	return string(ix.runes)
}

// Mapping returns copies of the logical text and the document offset
// of each character, for callers that layer their own edits over the
// index.
func (ix *Index) Mapping() ([]rune, []int) {
	runes := make([]rune, len(ix.runes))
	copy(runes, ix.runes)
	offsets := make([]int, len(ix.offsets))
	copy(offsets, ix.offsets)
	return runes, offsets
}

// FindAll returns every match span of search in document order, as
// document offset ranges. Overlapping matches are all reported.
func (ix *Index) FindAll(search string, matchCase bool) []document.Range {
	pat := []rune(search)
	if len(pat) == 0 {
		return nil
	}
	var out []document.Range
	for i := 0; i+len(pat) <= len(ix.runes); i++ {
		if ix.matchAt(i, pat, matchCase) {
			out = append(out, document.Range{
				Start: ix.offsets[i],
				End:   ix.offsets[i+len(pat)-1] + 1,
			})
		}
	}
	return out
}

func (ix *Index) matchAt(i int, pat []rune, matchCase bool) bool {
	for j, p := range pat {
		c := ix.runes[i+j]
		if matchCase {
			if c != p {
				return false
			}
		} else if unicode.ToLower(c) != unicode.ToLower(p) {
			return false
		}
	}
	return true
}

// Count returns the number of match spans of search.
func (ix *Index) Count(search string, matchCase bool) int {
	return len(ix.FindAll(search, matchCase))
}

// Occurrence resolves the nth match of search: 1-based in document order,
// -1 selects the last. Any other negative value, or a value beyond the
// match count, is an error carrying the total found.
func (ix *Index) Occurrence(search string, n int, matchCase bool) (document.Range, error) {
	if search == "" {
		return document.Range{}, docerr.EmptySearchText()
	}
	all := ix.FindAll(search, matchCase)
	if len(all) == 0 {
		return document.Range{}, docerr.SearchTextNotFound(search, matchCase)
	}
	if n == -1 {
		return all[len(all)-1], nil
	}
	if n < 1 || n > len(all) {
		e := docerr.InvalidOccurrence(n, len(all), search)
		refs := ix.OccurrenceRefs(search, matchCase)
		if len(refs) > 5 {
			refs = refs[:5]
		}
		e.Context.Occurrences = refs
		return document.Range{}, e
	}
	return all[n-1], nil
}

// OccurrenceRefs summarizes every match span of search for error
// diagnostics.
func (ix *Index) OccurrenceRefs(search string, matchCase bool) []docerr.OccurrenceRef {
	var out []docerr.OccurrenceRef
	for i, r := range ix.FindAll(search, matchCase) {
		out = append(out, docerr.OccurrenceRef{
			Index:    i + 1,
			Position: fmt.Sprintf("characters %d-%d", r.Start, r.End),
		})
	}
	return out
}

// Extract is a range's text with surrounding context.
type Extract struct {
	Text   string `json:"text"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// TextAt returns the text covered by the document range plus up to
// contextChars of logical text on each side.
func (ix *Index) TextAt(r document.Range, contextChars int) Extract {
	lo := ix.logicalPos(r.Start)
	hi := ix.logicalPos(r.End)
	var ex Extract
	ex.Text = string(ix.runes[lo:hi])
	if contextChars > 0 {
		b := max(0, lo-contextChars)
		a := min(len(ix.runes), hi+contextChars)
		ex.Before = string(ix.runes[b:lo])
		ex.After = string(ix.runes[hi:a])
	}
	return ex
}

// logicalPos returns the first logical position whose document offset is
// at or past the given offset.
func (ix *Index) logicalPos(offset int) int {
	for i, doc := range ix.offsets {
		if doc >= offset {
			return i
		}
	}
	return len(ix.runes)
}
