package document

import "fmt"

// Range represents a half-open character range [Start, End) within a
// document. Start is inclusive, End is exclusive. An empty range has
// Start == End.
type Range struct {
	Start int `json:"start_index"`
	End   int `json:"end_index"`
}

// NewRange creates a range, normalizing so Start <= End.
func NewRange(start, end int) Range {
	if start > end {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Len returns the number of characters the range covers.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range covers no characters.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if the range is well-formed: non-negative bounds
// and Start <= End.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.Start <= r.End
}

// Contains returns true if the offset falls within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsRange returns true if other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps returns true if the two ranges share at least one character.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Intersect returns the overlapping portion of two ranges. If the ranges
// do not overlap, it returns an empty range and false.
func (r Range) Intersect(other Range) (Range, bool) {
	if !r.Overlaps(other) {
		return Range{}, false
	}
	return Range{Start: max(r.Start, other.Start), End: min(r.End, other.End)}, true
}

// Union returns the smallest range covering both ranges.
func (r Range) Union(other Range) Range {
	return Range{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// Shift returns the range moved by delta characters in both bounds.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}
