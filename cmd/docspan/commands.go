package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dshills/docspan/internal/app"
	"github.com/dshills/docspan/internal/document"
	"github.com/dshills/docspan/internal/plan"
	"github.com/dshills/docspan/internal/section"
)

type headingOut struct {
	Text  string         `json:"text"`
	Level int            `json:"level"`
	Style string         `json:"style"`
	Range document.Range `json:"range"`
	False bool           `json:"false_heading,omitempty"`
}

type outlineOut struct {
	Text     string         `json:"text"`
	Level    int            `json:"level"`
	Range    document.Range `json:"range"`
	Children []outlineOut   `json:"children,omitempty"`
}

type inspectOut struct {
	Title    string         `json:"title"`
	Stats    document.Stats `json:"stats"`
	Headings []headingOut   `json:"headings"`
	Outline  []outlineOut   `json:"outline"`
}

type sectionOut struct {
	Heading      string         `json:"heading"`
	Level        int            `json:"level"`
	Range        document.Range `json:"range"`
	ContentRange document.Range `json:"content_range"`
	Content      string         `json:"content"`
}

type cellOut struct {
	Row            int            `json:"row"`
	Column         int            `json:"column"`
	Range          document.Range `json:"range"`
	Text           string         `json:"text"`
	InsertionIndex int            `json:"insertion_index"`
}

type tableOut struct {
	TableIndex int            `json:"table_index"`
	Dimensions string         `json:"dimensions"`
	Range      document.Range `json:"range"`
	Cells      []cellOut      `json:"cells"`
}

type planOut struct {
	PlanID   string            `json:"plan_id"`
	State    string            `json:"state"`
	Result   plan.BatchResult  `json:"result"`
	Requests []json.RawMessage `json:"requests,omitempty"`
}

func emit(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode output: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func cmdInspect(eng *app.Engine, opts options) int {
	sess, err := openSession(eng, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out := inspectOut{
		Title:    sess.Snapshot().Title,
		Stats:    sess.Stats(),
		Headings: []headingOut{},
		Outline:  outlineNodes(sess.Outline()),
	}
	for _, h := range sess.Headings() {
		out.Headings = append(out.Headings, headingOut{
			Text:  h.Text,
			Level: h.Level,
			Style: h.Style,
			Range: h.Range,
			False: h.False,
		})
	}
	return emit(out)
}

func outlineNodes(nodes []*section.OutlineNode) []outlineOut {
	var out []outlineOut
	for _, n := range nodes {
		out = append(out, outlineOut{
			Text:     n.Text,
			Level:    n.Level,
			Range:    n.Range,
			Children: outlineNodes(n.Children),
		})
	}
	return out
}

func cmdSection(eng *app.Engine, opts options, heading string) int {
	sess, err := openSession(eng, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sec, err := sess.Section(heading, opts.MatchCase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return emit(sectionOut{
		Heading:      heading,
		Level:        sec.Level,
		Range:        sec.Range,
		ContentRange: sec.ContentRange,
		Content:      sec.Content,
	})
}

func cmdTable(eng *app.Engine, opts options, arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: table index must be a number, got %q\n", arg)
		return 2
	}

	sess, err := openSession(eng, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	el, err := sess.Table(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out := tableOut{
		TableIndex: n,
		Dimensions: fmt.Sprintf("%dx%d", el.Table.Rows, el.Table.Columns),
		Range:      el.Range,
		Cells:      []cellOut{},
	}
	for _, c := range el.Table.Cells {
		out.Cells = append(out.Cells, cellOut{
			Row:            c.Row,
			Column:         c.Column,
			Range:          c.Range,
			Text:           c.Text,
			InsertionIndex: c.InsertionIndex,
		})
	}
	return emit(out)
}

func cmdResolve(eng *app.Engine, opts options, specPath string) int {
	sess, err := openSession(eng, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	raw, err := os.ReadFile(specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: read range spec: %v\n", err)
		return 1
	}
	r, err := sess.ResolveJSON(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if rc := emit(r); rc != 0 {
		return rc
	}
	if !r.Success {
		return 1
	}
	return 0
}

func cmdPlan(eng *app.Engine, opts options, opsPath string) int {
	sess, err := openSession(eng, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return planOnce(sess, opts, opsPath)
}

func planOnce(sess *app.Session, opts options, opsPath string) int {
	raw, err := os.ReadFile(opsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: read operations: %v\n", err)
		return 1
	}
	p, err := sess.PlanJSON(raw, opts.Preview)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	out := planOut{
		PlanID: p.ID,
		State:  p.State.String(),
		Result: p.Result,
	}
	for _, req := range p.Requests {
		out.Requests = append(out.Requests, json.RawMessage(req))
	}
	if rc := emit(out); rc != 0 {
		return rc
	}
	if !p.Result.Success {
		return 1
	}
	return 0
}
