package resolve

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/docerr"
)

// ExtendMode names the unit a matched span widens to.
type ExtendMode uint8

// Extension units.
const (
	ExtendParagraph ExtendMode = iota
	ExtendSentence
	ExtendLine
	ExtendSection
)

// String returns the mode's lowercase name.
func (m ExtendMode) String() string {
	switch m {
	case ExtendParagraph:
		return "paragraph"
	case ExtendSentence:
		return "sentence"
	case ExtendLine:
		return "line"
	case ExtendSection:
		return "section"
	default:
		return "unknown"
	}
}

// ParseExtendMode maps a name to its extension mode.
func ParseExtendMode(s string) (ExtendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paragraph":
		return ExtendParagraph, nil
	case "sentence":
		return ExtendSentence, nil
	case "line":
		return ExtendLine, nil
	case "section":
		return ExtendSection, nil
	default:
		return 0, docerr.InvalidParam("extend", s, []string{"paragraph", "sentence", "line", "section"})
	}
}

// Match is one search term with its occurrence selector.
type Match struct {
	Search     string
	Occurrence int // 1-based; -1 = last
}

// Spec is a sealed range specification. Exactly one concrete type
// applies to any resolution.
type Spec interface {
	spec()
}

// Explicit passes through literal indices after bounds validation.
type Explicit struct {
	Start int
	End   int
}

// Bounds spans from the start of one match to the end of another.
type Bounds struct {
	Start     Match
	End       Match
	MatchCase bool
}

// Extend widens a match to its enclosing paragraph, sentence, line, or
// section.
type Extend struct {
	Match     Match
	Mode      ExtendMode
	MatchCase bool
}

// Offset widens a match by character counts on each side, clamped to
// document bounds.
type Offset struct {
	Match       Match
	BeforeChars int
	AfterChars  int
	MatchCase   bool
}

// SectionRef selects a section by heading text.
type SectionRef struct {
	Heading            string
	IncludeHeading     bool
	IncludeSubsections bool
	MatchCase          bool
}

func (Explicit) spec()   {}
func (Bounds) spec()     {}
func (Extend) spec()     {}
func (Offset) spec()     {}
func (SectionRef) spec() {}

const specFormats = "Supported formats: " +
	"{start: {search, occurrence}, end: {search, occurrence}} | " +
	"{search, extend} | {search, before_chars/after_chars} | " +
	"{section, include_heading, include_subsections} | " +
	"{start_index, end_index}"

// ParseSpec decodes a JSON range specification into a Spec. The
// match_case flag defaults to true; occurrence selectors default to the
// first match.
func ParseSpec(raw gjson.Result) (Spec, error) {
	if !raw.IsObject() {
		return nil, docerr.New(docerr.CodeInvalidParamValue, "range specification must be an object. %s", specFormats)
	}
	matchCase := true
	if v := raw.Get("match_case"); v.Exists() {
		matchCase = v.Bool()
	}

	start, end := raw.Get("start"), raw.Get("end")
	if start.Exists() && end.Exists() {
		sm, ok := parseMatch(start)
		if !ok {
			return nil, docerr.New(docerr.CodeInvalidParamValue,
				"invalid range start specification; expected {search, occurrence}")
		}
		em, ok := parseMatch(end)
		if !ok {
			return nil, docerr.New(docerr.CodeInvalidParamValue,
				"invalid range end specification; expected {search, occurrence}")
		}
		return Bounds{Start: sm, End: em, MatchCase: matchCase}, nil
	}

	if search := raw.Get("search"); search.Exists() {
		m := Match{Search: search.String(), Occurrence: 1}
		if v := raw.Get("occurrence"); v.Exists() {
			m.Occurrence = int(v.Int())
		}
		if ext := raw.Get("extend"); ext.Exists() {
			mode, err := ParseExtendMode(ext.String())
			if err != nil {
				return nil, err
			}
			return Extend{Match: m, Mode: mode, MatchCase: matchCase}, nil
		}
		if raw.Get("before_chars").Exists() || raw.Get("after_chars").Exists() {
			return Offset{
				Match:       m,
				BeforeChars: int(raw.Get("before_chars").Int()),
				AfterChars:  int(raw.Get("after_chars").Int()),
				MatchCase:   matchCase,
			}, nil
		}
		return nil, docerr.New(docerr.CodeInvalidParamValue,
			"search-based range needs either extend or before_chars/after_chars. %s", specFormats)
	}

	if sec := raw.Get("section"); sec.Exists() {
		ref := SectionRef{
			Heading:            sec.String(),
			IncludeSubsections: true,
			MatchCase:          matchCase,
		}
		if v := raw.Get("include_heading"); v.Exists() {
			ref.IncludeHeading = v.Bool()
		}
		if v := raw.Get("include_subsections"); v.Exists() {
			ref.IncludeSubsections = v.Bool()
		}
		return ref, nil
	}

	si, ei := raw.Get("start_index"), raw.Get("end_index")
	if si.Exists() && ei.Exists() {
		return Explicit{Start: int(si.Int()), End: int(ei.Int())}, nil
	}

	return nil, docerr.New(docerr.CodeInvalidParamValue, "invalid range specification. %s", specFormats)
}

func parseMatch(v gjson.Result) (Match, bool) {
	if !v.IsObject() || !v.Get("search").Exists() {
		return Match{}, false
	}
	m := Match{Search: v.Get("search").String(), Occurrence: 1}
	if occ := v.Get("occurrence"); occ.Exists() {
		m.Occurrence = int(occ.Int())
	}
	return m, true
}
