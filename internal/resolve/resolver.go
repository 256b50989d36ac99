package resolve

import (
	"fmt"
	"strings"

	"github.com/dshills/docspan/internal/document"
	"github.com/dshills/docspan/internal/section"
	"github.com/dshills/docspan/internal/textindex"
)

// Resolved is the outcome of resolving one range specification. An
// unsuccessful resolution carries a message with enough context for the
// caller to self-correct.
type Resolved struct {
	Success      bool   `json:"success"`
	Start        int    `json:"start_index"`
	End          int    `json:"end_index"`
	Message      string `json:"message,omitempty"`
	MatchedStart string `json:"matched_start,omitempty"`
	MatchedEnd   string `json:"matched_end,omitempty"`
	ExtendType   string `json:"extend_type,omitempty"`
	SectionName  string `json:"section_name,omitempty"`
}

// Range returns the resolved document range.
func (r Resolved) Range() document.Range {
	return document.Range{Start: r.Start, End: r.End}
}

func failf(format string, args ...any) Resolved {
	return Resolved{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Resolver resolves specifications against one snapshot.
type Resolver struct {
	snap *document.Snapshot
	ix   *textindex.Index
	sec  *section.Resolver
}

// New creates a resolver over the snapshot. The index and section
// resolver must be built from the same snapshot.
func New(snap *document.Snapshot, ix *textindex.Index, sec *section.Resolver) *Resolver {
	return &Resolver{snap: snap, ix: ix, sec: sec}
}

// Resolve converts a specification into a concrete range.
func (r *Resolver) Resolve(spec Spec) Resolved {
	switch s := spec.(type) {
	case Explicit:
		return r.resolveExplicit(s)
	case Bounds:
		return r.resolveBounds(s)
	case Extend:
		return r.resolveExtend(s)
	case Offset:
		return r.resolveOffset(s)
	case SectionRef:
		return r.resolveSection(s)
	default:
		return failf("unsupported range specification %T", spec)
	}
}

func (r *Resolver) resolveExplicit(s Explicit) Resolved {
	if s.Start < 0 {
		return failf("start_index (%d) must be non-negative", s.Start)
	}
	if s.End <= s.Start {
		return failf("start_index (%d) must be less than end_index (%d)", s.Start, s.End)
	}
	if s.End > r.snap.Length() {
		return failf("end_index (%d) is beyond document length (%d)", s.End, r.snap.Length())
	}
	return Resolved{
		Success: true, Start: s.Start, End: s.End,
		Message: fmt.Sprintf("Range resolved: %d-%d", s.Start, s.End),
	}
}

// match resolves one search term's occurrence, producing a failure
// message in the caller's vocabulary ("Start text", "End text", "Text")
// when it cannot.
func (r *Resolver) match(label string, m Match, matchCase bool) (document.Range, Resolved, bool) {
	all := r.ix.FindAll(m.Search, matchCase)
	if len(all) == 0 {
		return document.Range{}, failf("%s '%s' not found in document", label, m.Search), false
	}
	occ := m.Occurrence
	if occ == 0 {
		occ = 1
	}
	if occ == -1 {
		return all[len(all)-1], Resolved{}, true
	}
	if occ < 1 || occ > len(all) {
		return document.Range{}, failf(
			"Occurrence %d of '%s' not found. Document contains %d occurrence(s).",
			occ, m.Search, len(all)), false
	}
	return all[occ-1], Resolved{}, true
}

func (r *Resolver) resolveBounds(s Bounds) Resolved {
	sm, fail, ok := r.match("Start text", s.Start, s.MatchCase)
	if !ok {
		return fail
	}
	em, fail, ok := r.match("End text", s.End, s.MatchCase)
	if !ok {
		return fail
	}
	if em.End <= sm.Start {
		return failf("Invalid range: end text '%s' (at %d) comes before or at start text '%s' (at %d)",
			s.End.Search, em.End, s.Start.Search, sm.Start)
	}
	return Resolved{
		Success: true, Start: sm.Start, End: em.End,
		Message:      fmt.Sprintf("Range resolved: %d-%d", sm.Start, em.End),
		MatchedStart: s.Start.Search,
		MatchedEnd:   s.End.Search,
	}
}

func (r *Resolver) resolveExtend(s Extend) Resolved {
	m, fail, ok := r.match("Text", s.Match, s.MatchCase)
	if !ok {
		return fail
	}

	var ext document.Range
	switch s.Mode {
	case ExtendParagraph:
		ext, ok = r.snap.ParagraphBounds(m.Start)
		if !ok {
			ext = m
		}
	case ExtendSentence:
		ext = r.ix.SentenceBounds(m.Start)
	case ExtendLine:
		ext = r.ix.LineBounds(m.Start)
	case ExtendSection:
		if sec, found := r.sec.SectionAt(r.snap, m.Start); found {
			ext = sec.Range
		} else {
			// Match precedes every heading: the whole document body.
			ext = document.Range{Start: 1, End: r.snap.Length()}
		}
	default:
		return failf("Invalid extend value '%s'. Use: paragraph, sentence, line, or section", s.Mode)
	}

	if ext.Start > ext.End {
		return failf("Range extension error: extending to %s resulted in invalid range where start (%d) > end (%d)",
			s.Mode, ext.Start, ext.End)
	}
	if ext.Start > m.Start || ext.End < m.End {
		return failf("Range extension error: the %s boundary (%d-%d) does not contain the search result (%d-%d)",
			s.Mode, ext.Start, ext.End, m.Start, m.End)
	}
	return Resolved{
		Success: true, Start: ext.Start, End: ext.End,
		Message:      fmt.Sprintf("Range extended to %s: %d-%d", s.Mode, ext.Start, ext.End),
		MatchedStart: s.Match.Search,
		ExtendType:   s.Mode.String(),
	}
}

func (r *Resolver) resolveOffset(s Offset) Resolved {
	if s.BeforeChars < 0 {
		return failf("Invalid before_chars value (%d): must be non-negative", s.BeforeChars)
	}
	if s.AfterChars < 0 {
		return failf("Invalid after_chars value (%d): must be non-negative", s.AfterChars)
	}
	m, fail, ok := r.match("Text", s.Match, s.MatchCase)
	if !ok {
		return fail
	}

	// Index 0 is reserved; usable content starts at 1.
	docStart, docEnd := 1, r.snap.Length()
	reqStart := m.Start - s.BeforeChars
	reqEnd := m.End + s.AfterChars
	start := max(docStart, reqStart)
	end := min(docEnd, reqEnd)

	msg := fmt.Sprintf("Range with offsets: %d-%d (match at %d-%d)", start, end, m.Start, m.End)
	var notes []string
	if start > reqStart {
		notes = append(notes, fmt.Sprintf("start clamped from %d to %d", reqStart, start))
	}
	if end < reqEnd {
		notes = append(notes, fmt.Sprintf("end clamped from %d to %d", reqEnd, end))
	}
	if len(notes) > 0 {
		msg += fmt.Sprintf(" Note: %s (document bounds: %d-%d)", strings.Join(notes, ", "), docStart, docEnd)
	}
	return Resolved{
		Success: true, Start: start, End: end,
		Message:      msg,
		MatchedStart: s.Match.Search,
	}
}

func (r *Resolver) resolveSection(s SectionRef) Resolved {
	sec, err := r.sec.FindByHeading(r.snap, s.Heading, s.MatchCase)
	if err != nil {
		return failf("Section '%s' not found. %s", s.Heading, err.Error())
	}

	start, end := sec.Range.Start, sec.Range.End
	if !s.IncludeHeading {
		start = sec.ContentRange.Start
	}
	if !s.IncludeSubsections && len(sec.Subsections) > 0 {
		end = sec.Subsections[0].Range.Start
	}
	name := strings.TrimSpace(sec.Heading.Text)
	return Resolved{
		Success: true, Start: start, End: end,
		Message:      fmt.Sprintf("Section '%s' selected: %d-%d", s.Heading, start, end),
		MatchedStart: name,
		SectionName:  name,
	}
}
