// Package doctest builds document snapshot JSON for tests. The builder
// tracks the running character index so fixtures stay consistent with the
// half-open ranges the parser expects: each paragraph's text should end
// with a newline, table and cell boundaries each occupy one index.
package doctest

import (
	"fmt"
	"strings"
)

// Builder accumulates structural elements and emits snapshot JSON.
type Builder struct {
	idx     int
	content []string
	lists   []string
}

// New returns an empty builder positioned at index 0.
func New() *Builder {
	return &Builder{}
}

// Index returns the current write position.
func (b *Builder) Index() int {
	return b.idx
}

// SectionBreak appends a section break occupying one index.
func (b *Builder) SectionBreak() *Builder {
	start := b.idx
	b.idx++
	b.content = append(b.content,
		fmt.Sprintf(`{"startIndex":%d,"endIndex":%d,"sectionBreak":{}}`, start, b.idx))
	return b
}

// Paragraph appends a NORMAL_TEXT paragraph with a single text run.
func (b *Builder) Paragraph(text string) *Builder {
	return b.Runs("NORMAL_TEXT", text)
}

// Styled appends a paragraph with the given named style and one text run.
func (b *Builder) Styled(style, text string) *Builder {
	return b.Runs(style, text)
}

// Heading appends a heading paragraph. Level 0 is TITLE, 1-6 map to
// HEADING_1 through HEADING_6.
func (b *Builder) Heading(level int, text string) *Builder {
	style := "TITLE"
	if level > 0 {
		style = fmt.Sprintf("HEADING_%d", level)
	}
	return b.Runs(style, text)
}

// Runs appends a paragraph whose text is split across multiple text runs.
func (b *Builder) Runs(style string, runs ...string) *Builder {
	start := b.idx
	var elems []string
	for _, r := range runs {
		rs := b.idx
		b.idx += len([]rune(r))
		elems = append(elems,
			fmt.Sprintf(`{"startIndex":%d,"endIndex":%d,"textRun":{"content":%q}}`, rs, b.idx, r))
	}
	b.content = append(b.content, fmt.Sprintf(
		`{"startIndex":%d,"endIndex":%d,"paragraph":{"paragraphStyle":{"namedStyleType":%q},"elements":[%s]}}`,
		start, b.idx, style, strings.Join(elems, ",")))
	return b
}

// ListItem appends a bulleted paragraph belonging to the given list.
func (b *Builder) ListItem(listID string, nesting int, text string) *Builder {
	start := b.idx
	rs := b.idx
	b.idx += len([]rune(text))
	b.content = append(b.content, fmt.Sprintf(
		`{"startIndex":%d,"endIndex":%d,"paragraph":{"bullet":{"listId":%q,"nestingLevel":%d},"paragraphStyle":{"namedStyleType":"NORMAL_TEXT"},"elements":[{"startIndex":%d,"endIndex":%d,"textRun":{"content":%q}}]}}`,
		start, b.idx, listID, nesting, rs, b.idx, text))
	return b
}

// NumberedList registers a list id as numbered (DECIMAL glyphs). Lists
// without a registration parse as bulleted.
func (b *Builder) NumberedList(listID string) *Builder {
	b.lists = append(b.lists,
		fmt.Sprintf(`%q:{"listProperties":{"nestingLevels":[{"glyphType":"DECIMAL"}]}}`, listID))
	return b
}

// Table appends a table. Each cell boundary occupies one index, followed
// by the cell's paragraph text; the table itself opens and closes with
// one index each.
func (b *Builder) Table(cells [][]string) *Builder {
	start := b.idx
	b.idx++ // table open
	var rowsJSON []string
	for _, row := range cells {
		rowStart := b.idx
		var cellsJSON []string
		for _, text := range row {
			cellStart := b.idx
			b.idx++ // cell open
			ps := b.idx
			b.idx += len([]rune(text))
			cellsJSON = append(cellsJSON, fmt.Sprintf(
				`{"startIndex":%d,"endIndex":%d,"content":[{"startIndex":%d,"endIndex":%d,"paragraph":{"paragraphStyle":{"namedStyleType":"NORMAL_TEXT"},"elements":[{"startIndex":%d,"endIndex":%d,"textRun":{"content":%q}}]}}]}`,
				cellStart, b.idx, ps, b.idx, ps, b.idx, text))
		}
		rowsJSON = append(rowsJSON,
			fmt.Sprintf(`{"startIndex":%d,"endIndex":%d,"tableCells":[%s]}`, rowStart, b.idx, strings.Join(cellsJSON, ",")))
	}
	b.idx++ // table close
	cols := 0
	if len(cells) > 0 {
		cols = len(cells[0])
	}
	b.content = append(b.content, fmt.Sprintf(
		`{"startIndex":%d,"endIndex":%d,"table":{"rows":%d,"columns":%d,"tableRows":[%s]}}`,
		start, b.idx, len(cells), cols, strings.Join(rowsJSON, ",")))
	return b
}

// Build emits the snapshot JSON with a default title.
func (b *Builder) Build() []byte {
	return b.BuildTitled("Test Document")
}

// BuildTitled emits the snapshot JSON with the given title.
func (b *Builder) BuildTitled(title string) []byte {
	return []byte(fmt.Sprintf(
		`{"documentId":"doc-1","title":%q,"lists":{%s},"body":{"content":[%s]}}`,
		title, strings.Join(b.lists, ","), strings.Join(b.content, ",")))
}
