package section

import (
	"strings"

	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/document"
)

// Config tunes the false-heading heuristic.
type Config struct {
	// MaxHeadingLen is the longest trimmed text still considered a real
	// heading. Longer heading-styled paragraphs are treated as style
	// bleed from copied content.
	MaxHeadingLen int

	// AdjacencyWindow is how close (in characters) a heading-styled
	// paragraph may start to the end of a preceding real heading before
	// it is classified as bled style rather than a genuine heading.
	AdjacencyWindow int
}

// DefaultConfig returns the standard heuristic thresholds.
func DefaultConfig() Config {
	return Config{MaxHeadingLen: 60, AdjacencyWindow: 2}
}

// Resolver answers section and heading queries against snapshots.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver with the given heuristic configuration.
// Zero-valued fields fall back to the defaults.
func NewResolver(cfg Config) *Resolver {
	def := DefaultConfig()
	if cfg.MaxHeadingLen <= 0 {
		cfg.MaxHeadingLen = def.MaxHeadingLen
	}
	if cfg.AdjacencyWindow <= 0 {
		cfg.AdjacencyWindow = def.AdjacencyWindow
	}
	return &Resolver{cfg: cfg}
}

// Heading is a summarized heading element.
type Heading struct {
	Text  string
	Level int
	Style string
	Range document.Range
	False bool
}

// Section is a resolved span of the document owned by one heading.
type Section struct {
	// Heading is the owning heading element.
	Heading *document.Element

	Level int

	// Range covers the heading and its content.
	Range document.Range

	// ContentRange covers the content after the heading line.
	ContentRange document.Range

	// Content is the text of ContentRange.
	Content string

	// Subsections are the real headings nested inside the section, in
	// document order.
	Subsections []Heading
}

// FalseHeadings classifies each heading element as real or false,
// returning the set of false element indices. The pass is forward and a
// heading already classified false never causes a later heading to be
// classified false.
func (r *Resolver) FalseHeadings(s *document.Snapshot) map[int]bool {
	falseSet := make(map[int]bool)
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() {
			continue
		}
		text := strings.TrimSpace(el.Text)
		switch {
		case text == "":
			falseSet[i] = true
		case len([]rune(text)) > r.cfg.MaxHeadingLen:
			falseSet[i] = true
		case i > 0:
			prev := &s.Elements[i-1]
			if prev.IsHeading() && !falseSet[i-1] &&
				el.Range.Start-prev.Range.End <= r.cfg.AdjacencyWindow {
				falseSet[i] = true
			}
		}
	}
	return falseSet
}

// FindByHeading locates the first real heading whose trimmed text equals
// the given text and returns its section. The section ends at the next
// real heading at the same or a shallower level, or at the document end.
func (r *Resolver) FindByHeading(s *document.Snapshot, text string, matchCase bool) (*Section, error) {
	falseSet := r.FalseHeadings(s)
	idx := -1
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] {
			continue
		}
		if headingEq(el.Text, text, matchCase) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, docerr.HeadingNotFound(text, r.headingTexts(s, falseSet), matchCase)
	}
	return r.sectionFrom(s, idx, falseSet), nil
}

// SectionAt returns the section enclosing the offset: the section of the
// nearest real heading starting at or before the offset. ok is false when
// no real heading precedes the offset.
func (r *Resolver) SectionAt(s *document.Snapshot, offset int) (*Section, bool) {
	falseSet := r.FalseHeadings(s)
	idx := -1
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] {
			continue
		}
		if el.Range.Start > offset {
			break
		}
		idx = i
	}
	if idx < 0 {
		return nil, false
	}
	return r.sectionFrom(s, idx, falseSet), true
}

// sectionFrom builds the Section owned by the heading at element index
// idx. The false set must come from the same snapshot.
func (r *Resolver) sectionFrom(s *document.Snapshot, idx int, falseSet map[int]bool) *Section {
	target := &s.Elements[idx]
	end := s.Length()
	var subs []Heading
	for i := idx + 1; i < len(s.Elements); i++ {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] {
			continue
		}
		if el.HeadingLevel <= target.HeadingLevel {
			end = el.Range.Start
			break
		}
		subs = append(subs, Heading{
			Text:  strings.TrimSpace(el.Text),
			Level: el.HeadingLevel,
			Style: el.NamedStyle,
			Range: el.Range,
		})
	}
	contentRange := document.Range{Start: target.Range.End, End: end}
	return &Section{
		Heading:      target,
		Level:        target.HeadingLevel,
		Range:        document.Range{Start: target.Range.Start, End: end},
		ContentRange: contentRange,
		Content:      s.TextInRange(contentRange),
		Subsections:  subs,
	}
}

// InsertionPoint returns the offset for inserting content relative to a
// section: "start" is just after the heading line, "end" is the end of
// the section.
func (r *Resolver) InsertionPoint(s *document.Snapshot, heading, position string, matchCase bool) (int, error) {
	switch position {
	case "start", "end":
	default:
		return 0, docerr.InvalidSectionPosition(position)
	}
	sec, err := r.FindByHeading(s, heading, matchCase)
	if err != nil {
		return 0, err
	}
	if position == "start" {
		return sec.Heading.Range.End, nil
	}
	return sec.Range.End, nil
}

// headingTexts returns the trimmed texts of the real headings, for error
// diagnostics.
func (r *Resolver) headingTexts(s *document.Snapshot, falseSet map[int]bool) []string {
	var out []string
	for i := range s.Elements {
		el := &s.Elements[i]
		if el.IsHeading() && !falseSet[i] {
			out = append(out, strings.TrimSpace(el.Text))
		}
	}
	return out
}

func headingEq(elementText, want string, matchCase bool) bool {
	a := strings.TrimSpace(elementText)
	b := strings.TrimSpace(want)
	if matchCase {
		return a == b
	}
	return strings.EqualFold(a, b)
}
