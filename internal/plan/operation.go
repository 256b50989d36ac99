package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/resolve"
)

// Canonical operation types. Text operations always carry the _text
// suffix; short forms are accepted as aliases.
const (
	OpInsertText      = "insert_text"
	OpDeleteText      = "delete_text"
	OpReplaceText     = "replace_text"
	OpFormatText      = "format_text"
	OpInsertTable     = "insert_table"
	OpInsertList      = "insert_list"
	OpInsertPageBreak = "insert_page_break"
	OpFindReplace     = "find_replace"
)

var operationAliases = map[string]string{
	"insert":  OpInsertText,
	"delete":  OpDeleteText,
	"replace": OpReplaceText,
	"format":  OpFormatText,

	OpInsertText:      OpInsertText,
	OpDeleteText:      OpDeleteText,
	OpReplaceText:     OpReplaceText,
	OpFormatText:      OpFormatText,
	OpInsertTable:     OpInsertTable,
	OpInsertList:      OpInsertList,
	OpInsertPageBreak: OpInsertPageBreak,
	OpFindReplace:     OpFindReplace,
}

// CanonicalType maps an operation type or alias to its canonical form.
// The second return reports whether the type is recognized.
func CanonicalType(t string) (string, bool) {
	c, ok := operationAliases[t]
	return c, ok
}

func validTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range operationAliases {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Style holds the optional formatting parameters an operation may
// carry. Nil fields are untouched; a non-nil field is applied even
// when it holds the zero value (bold=false clears bold).
type Style struct {
	Bold            *bool
	Italic          *bool
	Underline       *bool
	Strikethrough   *bool
	FontSize        *int
	FontFamily      *string
	Link            *string // empty string removes an existing link
	ForegroundColor *string
	BackgroundColor *string

	// Paragraph-level styling.
	HeadingStyle *string
	Alignment    *string
	LineSpacing  *float64
}

func (s Style) hasTextStyle() bool {
	return s.Bold != nil || s.Italic != nil || s.Underline != nil ||
		s.Strikethrough != nil || s.FontSize != nil || s.FontFamily != nil ||
		s.Link != nil || s.ForegroundColor != nil || s.BackgroundColor != nil
}

func (s Style) hasParagraphStyle() bool {
	return s.HeadingStyle != nil || s.Alignment != nil || s.LineSpacing != nil
}

// IsZero reports whether no styling parameter is set.
func (s Style) IsZero() bool {
	return !s.hasTextStyle() && !s.hasParagraphStyle()
}

// Applied lists the names of the set styling parameters, in a stable
// order, for reporting.
func (s Style) Applied() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("bold", s.Bold != nil)
	add("italic", s.Italic != nil)
	add("underline", s.Underline != nil)
	add("strikethrough", s.Strikethrough != nil)
	add("font_size", s.FontSize != nil)
	add("font_family", s.FontFamily != nil)
	add("link", s.Link != nil)
	add("foreground_color", s.ForegroundColor != nil)
	add("background_color", s.BackgroundColor != nil)
	add("heading_style", s.HeadingStyle != nil)
	add("alignment", s.Alignment != nil)
	add("line_spacing", s.LineSpacing != nil)
	return out
}

// Operation is one edit in a batch. Exactly one addressing mode is
// used per operation: explicit indices, a search descriptor, a named
// location, or a range specification.
type Operation struct {
	Type string

	// Explicit addressing. Nil means the field was not supplied.
	Index      *int
	StartIndex *int
	EndIndex   *int

	// Search addressing.
	Search         string
	HasSearch      bool
	Position       string // before, after, replace
	Occurrence     int    // 1-based; -1 = last
	MatchCase      bool
	AllOccurrences bool
	Extend         string // paragraph, sentence, line

	// Location addressing: "start" or "end" of the document.
	Location string

	// Range specification addressing.
	RangeSpec resolve.Spec

	// Payload.
	Text        *string
	Rows        int
	Columns     int
	ListType    string // UNORDERED or ORDERED
	FindText    string
	ReplaceText string

	Style Style
}

func (op Operation) text() string {
	if op.Text == nil {
		return ""
	}
	return *op.Text
}

func (op Operation) addressed() bool {
	return op.Index != nil || op.StartIndex != nil || op.HasSearch ||
		op.Location != "" || op.RangeSpec != nil
}

// ParseOperations decodes a JSON array of operations.
func ParseOperations(raw gjson.Result) ([]Operation, error) {
	if !raw.IsArray() {
		return nil, docerr.New(docerr.CodeInvalidParamValue, "operations must be a JSON array")
	}
	var ops []Operation
	var err error
	raw.ForEach(func(_, v gjson.Result) bool {
		var op Operation
		op, err = parseOperation(v)
		if err != nil {
			err = fmt.Errorf("operation %d: %w", len(ops)+1, err)
			return false
		}
		ops = append(ops, op)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

func parseOperation(v gjson.Result) (Operation, error) {
	if !v.IsObject() {
		return Operation{}, docerr.New(docerr.CodeInvalidParamValue, "operation must be a JSON object")
	}
	op := Operation{
		Type:       v.Get("type").String(),
		Occurrence: 1,
		MatchCase:  true,
	}
	if n := v.Get("index"); n.Exists() {
		op.Index = intPtr(int(n.Int()))
	}
	if n := v.Get("start_index"); n.Exists() {
		op.StartIndex = intPtr(int(n.Int()))
	}
	if n := v.Get("end_index"); n.Exists() {
		op.EndIndex = intPtr(int(n.Int()))
	}
	if s := v.Get("search"); s.Exists() {
		op.Search = s.String()
		op.HasSearch = true
		op.Position = "replace"
	}
	if s := v.Get("position"); s.Exists() {
		op.Position = s.String()
	}
	if n := v.Get("occurrence"); n.Exists() {
		op.Occurrence = int(n.Int())
	}
	if b := v.Get("match_case"); b.Exists() {
		op.MatchCase = b.Bool()
	}
	op.AllOccurrences = v.Get("all_occurrences").Bool()
	op.Extend = v.Get("extend").String()
	op.Location = v.Get("location").String()

	if rs := v.Get("range_spec"); rs.Exists() {
		spec, err := resolve.ParseSpec(rs)
		if err != nil {
			return Operation{}, err
		}
		op.RangeSpec = spec
	}

	if t := v.Get("text"); t.Exists() {
		s := t.String()
		op.Text = &s
	}
	op.Rows = int(v.Get("rows").Int())
	op.Columns = int(v.Get("columns").Int())
	op.ListType = v.Get("list_type").String()
	op.FindText = v.Get("find_text").String()
	op.ReplaceText = v.Get("replace_text").String()
	op.Style = parseStyle(v)
	return op, nil
}

func parseStyle(v gjson.Result) Style {
	var st Style
	if b := v.Get("bold"); b.Exists() {
		st.Bold = boolPtr(b.Bool())
	}
	if b := v.Get("italic"); b.Exists() {
		st.Italic = boolPtr(b.Bool())
	}
	if b := v.Get("underline"); b.Exists() {
		st.Underline = boolPtr(b.Bool())
	}
	if b := v.Get("strikethrough"); b.Exists() {
		st.Strikethrough = boolPtr(b.Bool())
	}
	if n := v.Get("font_size"); n.Exists() {
		st.FontSize = intPtr(int(n.Int()))
	}
	if s := v.Get("font_family"); s.Exists() {
		st.FontFamily = strPtr(s.String())
	}
	if s := v.Get("link"); s.Exists() {
		st.Link = strPtr(s.String())
	}
	if s := v.Get("foreground_color"); s.Exists() {
		st.ForegroundColor = strPtr(s.String())
	}
	if s := v.Get("background_color"); s.Exists() {
		st.BackgroundColor = strPtr(s.String())
	}
	if s := v.Get("heading_style"); s.Exists() {
		st.HeadingStyle = strPtr(s.String())
	}
	if s := v.Get("alignment"); s.Exists() {
		st.Alignment = strPtr(s.String())
	}
	if n := v.Get("line_spacing"); n.Exists() {
		st.LineSpacing = float64Ptr(n.Float())
	}
	return st
}

// validate performs the static checks that do not need the snapshot.
// The returned error message names the missing or invalid piece and
// what a correct operation looks like.
func (op Operation) validate() error {
	if op.Type == "" {
		return fmt.Errorf("missing 'type' field. Valid types: %s. Example: {\"type\": \"insert\", \"search\": \"target text\", \"position\": \"after\", \"text\": \"new text\"}",
			strings.Join(validTypes(), ", "))
	}
	canonical, ok := CanonicalType(op.Type)
	if !ok {
		return fmt.Errorf("unsupported operation type '%s'. Valid types: %s",
			op.Type, strings.Join(validTypes(), ", "))
	}

	switch canonical {
	case OpInsertText:
		if op.Text == nil {
			return fmt.Errorf("insert operation requires 'text' field")
		}
		if !op.addressed() {
			return fmt.Errorf("insert operation requires positioning: 'index', 'search', 'location', or 'range_spec'")
		}
	case OpDeleteText, OpReplaceText, OpFormatText:
		if !op.addressed() {
			return fmt.Errorf("%s operation requires positioning: 'start_index'/'end_index', 'search', or 'range_spec'", canonical)
		}
		if op.Index != nil && op.StartIndex == nil && !op.HasSearch && op.RangeSpec == nil && op.Location == "" {
			// A bare 'index' gives a range-consuming operation no end.
			if canonical == OpFormatText {
				return docerr.FormattingRequiresRange(*op.Index, op.Style.Applied())
			}
			return docerr.MissingParam("end_index",
				fmt.Sprintf("for %s with explicit indices; use 'start_index' and 'end_index'", canonical),
				nil)
		}
		if op.StartIndex != nil && op.EndIndex == nil {
			return fmt.Errorf("%s operation requires 'end_index' with 'start_index'", canonical)
		}
		if op.StartIndex != nil && *op.EndIndex <= *op.StartIndex {
			return docerr.InvalidIndexRange(*op.StartIndex, *op.EndIndex)
		}
		if canonical == OpReplaceText && op.Text == nil {
			return fmt.Errorf("replace operation requires 'text' field")
		}
		if canonical == OpFormatText && op.Style.IsZero() {
			return fmt.Errorf("format operation requires at least one styling parameter (bold, italic, font_size, heading_style, ...)")
		}
	case OpInsertTable:
		if !op.addressed() {
			return fmt.Errorf("insert_table operation requires positioning: 'index', 'search', 'location', or 'range_spec'")
		}
		if op.Rows < 1 || op.Columns < 1 {
			return docerr.InvalidTableData(fmt.Sprintf("rows and columns must be at least 1 (got %dx%d)", op.Rows, op.Columns))
		}
	case OpInsertList:
		if !op.addressed() {
			return fmt.Errorf("insert_list operation requires positioning: 'index', 'search', 'location', or 'range_spec'")
		}
		if op.ListType == "" {
			return docerr.MissingParam("list_type", "for list insertion", []string{"UNORDERED", "ORDERED"})
		}
		switch strings.ToUpper(op.ListType) {
		case "UNORDERED", "ORDERED":
		default:
			return docerr.InvalidParam("list_type", op.ListType, []string{"UNORDERED", "ORDERED"})
		}
	case OpInsertPageBreak:
		if !op.addressed() {
			return fmt.Errorf("insert_page_break operation requires positioning: 'index', 'search', 'location', or 'range_spec'")
		}
	case OpFindReplace:
		if op.FindText == "" {
			return docerr.EmptySearchText()
		}
	}

	if op.HasSearch {
		switch op.Position {
		case "before", "after", "replace":
		default:
			return fmt.Errorf("invalid position '%s'. Use 'before', 'after', or 'replace'", op.Position)
		}
	}
	if op.Location != "" && op.Location != "start" && op.Location != "end" {
		return fmt.Errorf("invalid location '%s'. Valid values: 'start', 'end'", op.Location)
	}
	return nil
}

func intPtr(n int) *int             { return &n }
func boolPtr(b bool) *bool          { return &b }
func strPtr(s string) *string       { return &s }
func float64Ptr(f float64) *float64 { return &f }
