package section

import (
	"sort"
	"strings"

	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/document"
)

// Ancestor is one enclosing heading of a document position.
type Ancestor struct {
	Text  string
	Level int
	Range document.Range
}

// Ancestors returns the headings whose sections enclose the offset, from
// shallowest to deepest level. Every heading element participates here;
// false-heading classification does not apply to ancestry.
func (r *Resolver) Ancestors(s *document.Snapshot, offset int) []Ancestor {
	var out []Ancestor
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || el.Range.Start > offset {
			continue
		}
		end := s.Length()
		for j := i + 1; j < len(s.Elements); j++ {
			next := &s.Elements[j]
			if next.IsHeading() && next.HeadingLevel <= el.HeadingLevel {
				end = next.Range.Start
				break
			}
		}
		if offset < end {
			out = append(out, Ancestor{
				Text:  strings.TrimSpace(el.Text),
				Level: el.HeadingLevel,
				Range: el.Range,
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Level < out[b].Level })
	return out
}

// Siblings describes a heading's neighbors at its own level.
type Siblings struct {
	Target *document.Element
	Level  int
	Prev   *document.Element
	Next   *document.Element

	// Position is the target's 1-based position among the Count headings
	// at its level.
	Position int
	Count    int
}

// FindSiblings locates the heading (the last real heading matching wins)
// and returns its previous and next real headings at the same level.
func (r *Resolver) FindSiblings(s *document.Snapshot, heading string, matchCase bool) (*Siblings, error) {
	falseSet := r.FalseHeadings(s)
	target := -1
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] {
			continue
		}
		if headingEq(el.Text, heading, matchCase) {
			target = i
		}
	}
	if target < 0 {
		return nil, docerr.HeadingNotFound(heading, r.headingTexts(s, falseSet), matchCase)
	}

	level := s.Elements[target].HeadingLevel
	sib := &Siblings{Target: &s.Elements[target], Level: level}
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] || el.HeadingLevel != level {
			continue
		}
		sib.Count++
		switch {
		case i < target:
			sib.Prev = el
		case i == target:
			sib.Position = sib.Count
		case sib.Next == nil:
			sib.Next = el
		}
	}
	return sib, nil
}

// OutlineNode is one heading in the hierarchical outline.
type OutlineNode struct {
	Text     string
	Level    int
	Range    document.Range
	Children []*OutlineNode
}

// Outline builds the hierarchical heading tree from the real headings, in
// document order. A heading nests under the nearest preceding heading of
// a shallower level.
func (r *Resolver) Outline(s *document.Snapshot) []*OutlineNode {
	falseSet := r.FalseHeadings(s)
	var roots []*OutlineNode
	var stack []*OutlineNode
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() || falseSet[i] {
			continue
		}
		node := &OutlineNode{
			Text:  strings.TrimSpace(el.Text),
			Level: el.HeadingLevel,
			Range: el.Range,
		}
		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// AllHeadings returns every heading element, including false ones, with
// their classification.
func (r *Resolver) AllHeadings(s *document.Snapshot) []Heading {
	falseSet := r.FalseHeadings(s)
	var out []Heading
	for i := range s.Elements {
		el := &s.Elements[i]
		if !el.IsHeading() {
			continue
		}
		out = append(out, Heading{
			Text:  strings.TrimSpace(el.Text),
			Level: el.HeadingLevel,
			Style: el.NamedStyle,
			Range: el.Range,
			False: falseSet[i],
		})
	}
	return out
}

// elementTypeAliases maps the accepted element type names to kinds.
var elementTypeAliases = map[string]document.Kind{
	"paragraph":         document.KindParagraph,
	"paragraphs":        document.KindParagraph,
	"text":              document.KindParagraph,
	"heading":           document.KindHeading,
	"headings":          document.KindHeading,
	"title":             document.KindHeading,
	"list":              document.KindList,
	"lists":             document.KindList,
	"bullet":            document.KindList,
	"table":             document.KindTable,
	"tables":            document.KindTable,
	"section_break":     document.KindSectionBreak,
	"sectionbreak":      document.KindSectionBreak,
	"toc":               document.KindTableOfContents,
	"table_of_contents": document.KindTableOfContents,
}

// ElementsByType returns the elements matching a type name. Names are
// case-insensitive and common aliases are accepted.
func ElementsByType(s *document.Snapshot, typeName string) ([]*document.Element, error) {
	kind, ok := elementTypeAliases[strings.ToLower(strings.TrimSpace(typeName))]
	if !ok {
		valid := make([]string, 0, len(elementTypeAliases))
		for name := range elementTypeAliases {
			valid = append(valid, name)
		}
		sort.Strings(valid)
		return nil, docerr.InvalidParam("element_type", typeName, valid)
	}
	var out []*document.Element
	for i := range s.Elements {
		if s.Elements[i].Kind == kind {
			out = append(out, &s.Elements[i])
		}
	}
	return out, nil
}
