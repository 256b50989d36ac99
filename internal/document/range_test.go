package document

import "testing"

func TestNewRangeNormalizes(t *testing.T) {
	r := NewRange(10, 5)
	if r.Start != 5 || r.End != 10 {
		t.Errorf("NewRange(10, 5) = %v, want [5, 10)", r)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: 5, End: 10}
	tests := []struct {
		offset int
		want   bool
	}{
		{4, false},
		{5, true},
		{9, true},
		{10, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.offset); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		a, b Range
		want bool
	}{
		{Range{0, 5}, Range{5, 10}, false},
		{Range{0, 6}, Range{5, 10}, true},
		{Range{5, 10}, Range{0, 6}, true},
		{Range{0, 10}, Range{3, 7}, true},
		{Range{3, 3}, Range{0, 10}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRangeIntersect(t *testing.T) {
	a := Range{Start: 0, End: 8}
	b := Range{Start: 5, End: 12}
	got, ok := a.Intersect(b)
	if !ok || got.Start != 5 || got.End != 8 {
		t.Errorf("Intersect = %v, %v, want [5, 8), true", got, ok)
	}
	if _, ok := a.Intersect(Range{Start: 8, End: 12}); ok {
		t.Error("adjacent ranges should not intersect")
	}
}

func TestRangeUnionShift(t *testing.T) {
	u := Range{2, 5}.Union(Range{8, 12})
	if u.Start != 2 || u.End != 12 {
		t.Errorf("Union = %v, want [2, 12)", u)
	}
	sh := Range{2, 5}.Shift(3)
	if sh.Start != 5 || sh.End != 8 {
		t.Errorf("Shift(3) = %v, want [5, 8)", sh)
	}
}
