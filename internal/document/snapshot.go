package document

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/docerr"
)

// maxNestDepth bounds recursion over nested child tabs and nested tables
// inside table cells.
const maxNestDepth = 8

// Run is one fragment of document text together with the character range
// it occupies. Runs are collected in document order, including text inside
// table cells at the position the cell occupies.
type Run struct {
	Range Range
	Text  string
}

// ParseOptions controls snapshot parsing.
type ParseOptions struct {
	// TabID selects a document tab, searched recursively through child
	// tabs. Empty selects the first tab, or the legacy root body for
	// documents without tabs.
	TabID string
}

// Snapshot is the parsed, flat model of one document tab.
type Snapshot struct {
	ID    string
	Title string

	// Elements is the ordered structural model with strictly increasing
	// half-open ranges.
	Elements []Element

	runs   []Run
	length int
	lists  gjson.Result
}

// Stats summarizes a snapshot's structural content.
type Stats struct {
	Length     int `json:"length"`
	Paragraphs int `json:"paragraphs"`
	Headings   int `json:"headings"`
	Lists      int `json:"lists"`
	Tables     int `json:"tables"`
}

// ParseSnapshot decodes a raw document snapshot into a Snapshot. The
// element model is built in a single forward pass over the body content.
func ParseSnapshot(data []byte, opts ParseOptions) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, docerr.New(docerr.CodeAPIError, "document snapshot is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	s := &Snapshot{
		ID:    root.Get("documentId").String(),
		Title: root.Get("title").String(),
		lists: root.Get("lists"),
	}
	body, lists, err := bodyFor(root, opts.TabID)
	if err != nil {
		return nil, err
	}
	if lists.Exists() {
		s.lists = lists
	}
	content := body.Get("content")
	if !content.Exists() {
		return nil, docerr.New(docerr.CodeAPIError, "document snapshot has no body content")
	}
	s.parseContent(content)
	return s, nil
}

// bodyFor locates the body (and tab-local list definitions, if any) for
// the requested tab.
func bodyFor(root gjson.Result, tabID string) (gjson.Result, gjson.Result, error) {
	tabs := root.Get("tabs")
	if tabID != "" {
		if !tabs.Exists() {
			return gjson.Result{}, gjson.Result{}, docerr.InvalidParam("tab_id", tabID, nil)
		}
		tab, err := findTab(tabs, tabID, 0)
		if err != nil {
			return gjson.Result{}, gjson.Result{}, err
		}
		return tab.Get("documentTab.body"), tab.Get("documentTab.lists"), nil
	}
	if arr := tabs.Array(); len(arr) > 0 {
		return arr[0].Get("documentTab.body"), arr[0].Get("documentTab.lists"), nil
	}
	return root.Get("body"), gjson.Result{}, nil
}

// findTab searches tabs and their child tabs for the given id.
func findTab(tabs gjson.Result, tabID string, depth int) (gjson.Result, error) {
	if depth > maxNestDepth {
		return gjson.Result{}, docerr.New(docerr.CodeOperationFailed,
			"tab nesting exceeds maximum depth %d", maxNestDepth)
	}
	var (
		out   gjson.Result
		found bool
		rerr  error
	)
	tabs.ForEach(func(_, tab gjson.Result) bool {
		if tab.Get("tabProperties.tabId").String() == tabID {
			out, found = tab, true
			return false
		}
		if child := tab.Get("childTabs"); child.Exists() {
			t, err := findTab(child, tabID, depth+1)
			if err != nil {
				rerr = err
				return false
			}
			if t.Exists() {
				out, found = t, true
				return false
			}
		}
		return true
	})
	if rerr != nil {
		return gjson.Result{}, rerr
	}
	if !found {
		return gjson.Result{}, docerr.InvalidParam("tab_id", tabID, nil)
	}
	return out, nil
}

func rangeOf(v gjson.Result) Range {
	return Range{Start: int(v.Get("startIndex").Int()), End: int(v.Get("endIndex").Int())}
}

func (s *Snapshot) parseContent(content gjson.Result) {
	var cur *Element // open list fold
	flush := func() {
		if cur != nil {
			s.Elements = append(s.Elements, *cur)
			cur = nil
		}
	}

	content.ForEach(func(_, se gjson.Result) bool {
		r := rangeOf(se)
		if r.End > s.length {
			s.length = r.End
		}
		switch {
		case se.Get("sectionBreak").Exists():
			flush()
			s.Elements = append(s.Elements, Element{Kind: KindSectionBreak, Range: r, HeadingLevel: -1})

		case se.Get("tableOfContents").Exists():
			flush()
			var b strings.Builder
			se.Get("tableOfContents.content").ForEach(func(_, inner gjson.Result) bool {
				if p := inner.Get("paragraph"); p.Exists() {
					b.WriteString(s.paragraphText(p))
				}
				return true
			})
			s.Elements = append(s.Elements, Element{Kind: KindTableOfContents, Range: r, Text: b.String(), HeadingLevel: -1})

		case se.Get("table").Exists():
			flush()
			s.Elements = append(s.Elements, s.parseTable(se.Get("table"), r, 0))

		case se.Get("paragraph").Exists():
			p := se.Get("paragraph")
			text := s.paragraphText(p)
			style := p.Get("paragraphStyle.namedStyleType").String()
			if style == "" {
				style = "NORMAL_TEXT"
			}

			if b := p.Get("bullet"); b.Exists() {
				listID := b.Get("listId").String()
				item := ListItem{Range: r, Text: text, NestingLevel: int(b.Get("nestingLevel").Int())}
				if cur != nil && cur.List.ID == listID {
					cur.List.Items = append(cur.List.Items, item)
					cur.Range.End = r.End
					cur.Text += text
					return true
				}
				flush()
				cur = &Element{
					Kind: KindList, Range: r, Text: text, HeadingLevel: -1,
					List: &ListInfo{ID: listID, Kind: s.listKind(listID, item.NestingLevel), Items: []ListItem{item}},
				}
				return true
			}

			flush()
			if lvl := HeadingLevelFor(style); lvl >= 0 {
				s.Elements = append(s.Elements, Element{Kind: KindHeading, Range: r, Text: text, NamedStyle: style, HeadingLevel: lvl})
			} else if strings.TrimSpace(text) != "" {
				s.Elements = append(s.Elements, Element{Kind: KindParagraph, Range: r, Text: text, NamedStyle: style, HeadingLevel: -1})
			}
		}
		return true
	})
	flush()
}

// paragraphText collects the paragraph's text runs into the snapshot's
// run list and returns the joined text.
func (s *Snapshot) paragraphText(p gjson.Result) string {
	var b strings.Builder
	p.Get("elements").ForEach(func(_, pe gjson.Result) bool {
		tr := pe.Get("textRun")
		if !tr.Exists() {
			return true
		}
		text := tr.Get("content").String()
		if text == "" {
			return true
		}
		s.runs = append(s.runs, Run{Range: rangeOf(pe), Text: text})
		b.WriteString(text)
		return true
	})
	return b.String()
}

func (s *Snapshot) parseTable(t gjson.Result, r Range, depth int) Element {
	info := &TableInfo{Rows: int(t.Get("rows").Int()), Columns: int(t.Get("columns").Int())}
	rowIdx := 0
	t.Get("tableRows").ForEach(func(_, row gjson.Result) bool {
		colIdx := 0
		row.Get("tableCells").ForEach(func(_, cell gjson.Result) bool {
			cr := rangeOf(cell)
			c := Cell{
				Row: rowIdx, Column: colIdx, Range: cr,
				InsertionIndex: cr.Start + 1,
				RowSpan:        1, ColumnSpan: 1,
			}
			if v := cell.Get("tableCellStyle.rowSpan"); v.Exists() {
				c.RowSpan = int(v.Int())
			}
			if v := cell.Get("tableCellStyle.columnSpan"); v.Exists() {
				c.ColumnSpan = int(v.Int())
			}
			var b strings.Builder
			firstRun := -1
			s.cellContent(cell.Get("content"), depth+1, &b, &firstRun)
			if firstRun >= 0 {
				c.InsertionIndex = firstRun
			}
			c.Text = b.String()
			info.Cells = append(info.Cells, c)
			colIdx++
			return true
		})
		rowIdx++
		return true
	})

	var b strings.Builder
	for i := range info.Cells {
		b.WriteString(info.Cells[i].Text)
	}
	return Element{Kind: KindTable, Range: r, Text: b.String(), HeadingLevel: -1, Table: info}
}

// cellContent walks a table cell's structural elements, collecting text
// runs and the start of the first run. Nested tables are followed up to
// the depth cap.
func (s *Snapshot) cellContent(content gjson.Result, depth int, b *strings.Builder, firstRun *int) {
	if depth > maxNestDepth {
		return
	}
	content.ForEach(func(_, se gjson.Result) bool {
		if p := se.Get("paragraph"); p.Exists() {
			p.Get("elements").ForEach(func(_, pe gjson.Result) bool {
				tr := pe.Get("textRun")
				if !tr.Exists() {
					return true
				}
				text := tr.Get("content").String()
				if text == "" {
					return true
				}
				pr := rangeOf(pe)
				s.runs = append(s.runs, Run{Range: pr, Text: text})
				b.WriteString(text)
				if *firstRun < 0 {
					*firstRun = pr.Start
				}
				return true
			})
			return true
		}
		if t := se.Get("table"); t.Exists() {
			t.Get("tableRows").ForEach(func(_, row gjson.Result) bool {
				row.Get("tableCells").ForEach(func(_, cell gjson.Result) bool {
					s.cellContent(cell.Get("content"), depth+1, b, firstRun)
					return true
				})
				return true
			})
		}
		return true
	})
}

// listKind resolves whether a list id denotes a numbered or bulleted
// list from the document's list definitions, at the item's nesting
// level. List ids may contain dots, which must be escaped in the lookup
// path.
func (s *Snapshot) listKind(listID string, nestingLevel int) ListKind {
	path := strings.ReplaceAll(listID, ".", `\.`)
	glyph := s.lists.Get(fmt.Sprintf("%s.listProperties.nestingLevels.%d.glyphType", path, nestingLevel)).String()
	if glyph != "" && glyph != "GLYPH_TYPE_UNSPECIFIED" {
		return ListNumbered
	}
	return ListBullet
}

// Length returns the document end index: one past the last character.
func (s *Snapshot) Length() int {
	return s.length
}

// Runs returns the document's text fragments in document order.
func (s *Snapshot) Runs() []Run {
	return s.runs
}

// Headings returns the title and heading elements in document order.
func (s *Snapshot) Headings() []*Element {
	var out []*Element
	for i := range s.Elements {
		if s.Elements[i].IsHeading() {
			out = append(out, &s.Elements[i])
		}
	}
	return out
}

// Tables returns the table elements in document order.
func (s *Snapshot) Tables() []*Element {
	var out []*Element
	for i := range s.Elements {
		if s.Elements[i].Kind == KindTable {
			out = append(out, &s.Elements[i])
		}
	}
	return out
}

// ElementAt returns the element whose range contains the offset.
func (s *Snapshot) ElementAt(offset int) (*Element, bool) {
	for i := range s.Elements {
		if s.Elements[i].Range.Contains(offset) {
			return &s.Elements[i], true
		}
	}
	return nil, false
}

// StyleAt returns the named paragraph style at the offset, defaulting to
// NORMAL_TEXT when the offset falls outside any styled paragraph.
func (s *Snapshot) StyleAt(offset int) string {
	el, ok := s.ElementAt(offset)
	if !ok {
		return "NORMAL_TEXT"
	}
	switch el.Kind {
	case KindHeading, KindParagraph:
		return el.NamedStyle
	default:
		return "NORMAL_TEXT"
	}
}

// ParagraphBounds returns the range of the paragraph-like unit containing
// the offset: the paragraph or heading itself, the list item for list
// elements, and the cell for offsets inside a table.
func (s *Snapshot) ParagraphBounds(offset int) (Range, bool) {
	el, ok := s.ElementAt(offset)
	if !ok {
		return Range{}, false
	}
	switch el.Kind {
	case KindParagraph, KindHeading:
		return el.Range, true
	case KindList:
		for _, item := range el.List.Items {
			if item.Range.Contains(offset) {
				return item.Range, true
			}
		}
		return el.Range, true
	case KindTable:
		for i := range el.Table.Cells {
			if el.Table.Cells[i].Range.Contains(offset) {
				return el.Table.Cells[i].Range, true
			}
		}
		return el.Range, true
	default:
		return el.Range, true
	}
}

// TextInRange returns the document text covered by the range, assembled
// from the overlapping portions of each text run.
func (s *Snapshot) TextInRange(r Range) string {
	var b strings.Builder
	for _, run := range s.runs {
		ov, ok := run.Range.Intersect(r)
		if !ok {
			continue
		}
		runes := []rune(run.Text)
		lo := ov.Start - run.Range.Start
		hi := ov.End - run.Range.Start
		if lo < 0 {
			lo = 0
		}
		if hi > len(runes) {
			hi = len(runes)
		}
		if lo < hi {
			b.WriteString(string(runes[lo:hi]))
		}
	}
	return b.String()
}

// Stats returns summary counts for the snapshot.
func (s *Snapshot) Stats() Stats {
	st := Stats{Length: s.length}
	for i := range s.Elements {
		switch s.Elements[i].Kind {
		case KindParagraph:
			st.Paragraphs++
		case KindHeading:
			st.Headings++
		case KindList:
			st.Lists++
		case KindTable:
			st.Tables++
		}
	}
	return st
}
