package document

// Kind identifies the structural type of a document element.
type Kind uint8

// Structural element kinds.
const (
	KindParagraph Kind = iota
	KindHeading
	KindList
	KindTable
	KindSectionBreak
	KindTableOfContents
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindSectionBreak:
		return "section_break"
	case KindTableOfContents:
		return "table_of_contents"
	default:
		return "unknown"
	}
}

// ListKind distinguishes bulleted from numbered lists.
type ListKind uint8

// List kinds.
const (
	ListBullet ListKind = iota
	ListNumbered
)

// String returns a human-readable name for the list kind.
func (k ListKind) String() string {
	if k == ListNumbered {
		return "numbered"
	}
	return "bullet"
}

// ListItem is one entry of a folded list element.
type ListItem struct {
	Range        Range
	Text         string
	NestingLevel int
}

// ListInfo describes a folded run of consecutive list items sharing one
// list id.
type ListInfo struct {
	ID    string
	Kind  ListKind
	Items []ListItem
}

// Cell is a single table cell with its content range and insertion point.
type Cell struct {
	Row    int
	Column int
	Range  Range
	Text   string

	// InsertionIndex is where new text should be inserted to land inside
	// the cell: the start of its first text run, or one past the cell
	// start when the cell is empty.
	InsertionIndex int

	RowSpan    int
	ColumnSpan int
}

// TableInfo describes a table element's geometry and cells.
type TableInfo struct {
	Rows    int
	Columns int
	Cells   []Cell // row-major order
}

// CellAt returns the cell at the given row and column, or nil when the
// coordinates fall outside the table.
func (t *TableInfo) CellAt(row, col int) *Cell {
	for i := range t.Cells {
		if t.Cells[i].Row == row && t.Cells[i].Column == col {
			return &t.Cells[i]
		}
	}
	return nil
}

// Element is one entry in the flat structural model. Every element carries
// its half-open character range. Consecutive paragraphs belonging to the
// same list are folded into a single KindList element; plain paragraphs
// with blank text are dropped from the model (their text runs still feed
// the text index), while headings are kept even when empty so false
// headings can be classified.
type Element struct {
	Kind  Kind
	Range Range
	Text  string

	// NamedStyle is the paragraph's named style type, e.g. NORMAL_TEXT,
	// TITLE, or HEADING_1. Empty for non-paragraph elements.
	NamedStyle string

	// HeadingLevel is 0 for a title, 1-6 for heading levels, and -1 for
	// anything that is not a heading.
	HeadingLevel int

	List  *ListInfo  // KindList only
	Table *TableInfo // KindTable only
}

// IsHeading returns true if the element is a title or heading.
func (e *Element) IsHeading() bool {
	return e.Kind == KindHeading
}

// HeadingLevelFor maps a named style type to its heading level: 0 for
// TITLE, 1-6 for HEADING_1 through HEADING_6, and -1 for everything else.
func HeadingLevelFor(namedStyle string) int {
	switch namedStyle {
	case "TITLE":
		return 0
	case "HEADING_1":
		return 1
	case "HEADING_2":
		return 2
	case "HEADING_3":
		return 3
	case "HEADING_4":
		return 4
	case "HEADING_5":
		return 5
	case "HEADING_6":
		return 6
	default:
		return -1
	}
}

// IsHeadingStyle returns true if the named style denotes a title or
// heading.
func IsHeadingStyle(namedStyle string) bool {
	return HeadingLevelFor(namedStyle) >= 0
}
