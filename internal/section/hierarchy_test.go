package section

import (
	"strings"
	"testing"

	"github.com/dshills/docspan/internal/docerr"
)

func TestAncestors(t *testing.T) {
	s := parse(t, structured())
	r := NewResolver(Config{})

	anc := r.Ancestors(s, 60) // inside "Goal body."
	if len(anc) != 3 {
		t.Fatalf("got %d ancestors, want 3: %+v", len(anc), anc)
	}
	want := []struct {
		text  string
		level int
	}{
		{"Doc Title", 0},
		{"Overview", 1},
		{"Goals", 2},
	}
	for i, w := range want {
		if anc[i].Text != w.text || anc[i].Level != w.level {
			t.Errorf("ancestor %d = %+v, want %q level %d", i, anc[i], w.text, w.level)
		}
	}

	if anc := r.Ancestors(s, 15); len(anc) != 1 || anc[0].Text != "Doc Title" {
		t.Errorf("preamble ancestors = %+v, want title only", anc)
	}
}

func TestFindSiblings(t *testing.T) {
	s := parse(t, structured())
	r := NewResolver(Config{})

	sib, err := r.FindSiblings(s, "Goals", true)
	if err != nil {
		t.Fatalf("FindSiblings: %v", err)
	}
	if sib.Level != 2 || sib.Count != 2 || sib.Position != 1 {
		t.Errorf("siblings = level %d, position %d/%d, want level 2, 1/2",
			sib.Level, sib.Position, sib.Count)
	}
	if sib.Prev != nil {
		t.Errorf("Prev = %+v, want nil", sib.Prev)
	}
	if sib.Next == nil || strings.TrimSpace(sib.Next.Text) != "Scope" {
		t.Errorf("Next = %+v, want Scope", sib.Next)
	}

	sib, err = r.FindSiblings(s, "Scope", true)
	if err != nil {
		t.Fatalf("FindSiblings: %v", err)
	}
	if sib.Position != 2 || sib.Prev == nil || strings.TrimSpace(sib.Prev.Text) != "Goals" || sib.Next != nil {
		t.Errorf("Scope siblings = %+v", sib)
	}

	if _, err := r.FindSiblings(s, "Nope", true); docerr.CodeOf(err) != docerr.CodeHeadingNotFound {
		t.Errorf("missing heading = %v", err)
	}
}

func TestOutline(t *testing.T) {
	s := parse(t, structured())
	r := NewResolver(Config{})

	roots := r.Outline(s)
	if len(roots) != 1 || roots[0].Text != "Doc Title" {
		t.Fatalf("roots = %+v, want single title root", roots)
	}
	title := roots[0]
	if len(title.Children) != 2 {
		t.Fatalf("title children = %d, want 2", len(title.Children))
	}
	overview := title.Children[0]
	if overview.Text != "Overview" || len(overview.Children) != 2 {
		t.Fatalf("overview node = %+v", overview)
	}
	if overview.Children[0].Text != "Goals" || overview.Children[1].Text != "Scope" {
		t.Errorf("overview children = %+v", overview.Children)
	}
	if title.Children[1].Text != "Details" || len(title.Children[1].Children) != 0 {
		t.Errorf("details node = %+v", title.Children[1])
	}
}

func TestOutlineSkipsFalseHeadings(t *testing.T) {
	s := parse(t, falseHeadingDoc())
	r := NewResolver(Config{})

	roots := r.Outline(s)
	var texts []string
	for _, n := range roots {
		texts = append(texts, n.Text)
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	if len(roots) != 3 {
		t.Fatalf("roots = %v, want %v", texts, want)
	}
	for i, w := range want {
		if roots[i].Text != w {
			t.Errorf("root %d = %q, want %q", i, roots[i].Text, w)
		}
	}
}

func TestElementsByType(t *testing.T) {
	s := parse(t, structured())

	heads, err := ElementsByType(s, "headings")
	if err != nil {
		t.Fatalf("ElementsByType: %v", err)
	}
	if len(heads) != 5 {
		t.Errorf("headings = %d, want 5", len(heads))
	}

	paras, err := ElementsByType(s, "Paragraph")
	if err != nil {
		t.Fatalf("ElementsByType: %v", err)
	}
	if len(paras) != 5 {
		t.Errorf("paragraphs = %d, want 5", len(paras))
	}

	_, err = ElementsByType(s, "image")
	if docerr.CodeOf(err) != docerr.CodeInvalidParamValue {
		t.Errorf("unknown type = %v", err)
	}
}
