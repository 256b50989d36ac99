package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/document"
	"github.com/dshills/docspan/internal/resolve"
	"github.com/dshills/docspan/internal/textindex"
)

// State tracks a plan through its lifecycle.
type State uint8

const (
	StatePending State = iota
	StateValidating
	StateRejected
	StateResolving
	StateDispatching
	StateDone
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateResolving:
		return "resolving"
	case StateDispatching:
		return "dispatching"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Options tunes planning behavior.
type Options struct {
	// AutoAdjust shifts explicit-index operations by the cumulative
	// effect of earlier operations in the batch.
	AutoAdjust bool
	// Preview resolves and reports without building requests.
	Preview bool
	// ContextChars is how much surrounding text preview extracts carry.
	ContextChars int
}

// DefaultOptions enables position auto-adjustment with a modest
// preview context.
func DefaultOptions() Options {
	return Options{AutoAdjust: true, ContextChars: 40}
}

// Planner plans batches against one snapshot.
type Planner struct {
	snap *document.Snapshot
	ix   *textindex.Index
	res  *resolve.Resolver
	opts Options
}

// NewPlanner creates a planner. The index and resolver must be built
// from the same snapshot.
func NewPlanner(snap *document.Snapshot, ix *textindex.Index, res *resolve.Resolver, opts Options) *Planner {
	return &Planner{snap: snap, ix: ix, res: res, opts: opts}
}

// resolvedOp is an operation reduced to concrete indices, ready for
// request building.
type resolvedOp struct {
	typ   string
	start int
	end   int
	text  string

	rows, columns     int
	numbered          bool
	find, replaceWith string
	matchCase         bool

	style Style

	// replaceAtZero marks a replacement whose range starts at the
	// reserved offset: the request order becomes insert-then-delete.
	replaceAtZero bool
	// neutralize applies NORMAL_TEXT over the whole inserted span
	// because the insertion point follows a heading and no paragraph
	// style was requested.
	neutralize bool
}

// Plan is one planned batch: its identifier, final state, the ordered
// mutation requests (empty when rejected or previewing), and the
// per-operation results.
type Plan struct {
	ID       string
	State    State
	Requests []string
	Result   BatchResult
}

// Plan validates and resolves the batch. It never dispatches; the
// returned request list is what the boundary collaborator sends as one
// atomic call.
func (pl *Planner) Plan(ops []Operation) *Plan {
	p := &Plan{ID: uuid.NewString(), State: StatePending}

	if len(ops) == 0 {
		p.State = StateRejected
		p.Result = BatchResult{Success: false, Message: "No operations provided"}
		return p
	}

	p.State = StateValidating
	for i, op := range ops {
		if err := op.validate(); err != nil {
			p.State = StateRejected
			p.Result = BatchResult{
				Success:         false,
				TotalOperations: len(ops),
				Results: []OperationResult{{
					Index:       i,
					Type:        op.Type,
					Success:     false,
					Description: "Invalid operation",
					Error:       err.Error(),
				}},
				Message: fmt.Sprintf("Operation %d: %s", i+1, err.Error()),
			}
			return p
		}
	}

	expanded := pl.expandAllOccurrences(ops)

	p.State = StateResolving
	resolved, results, ok := pl.resolveOps(expanded)

	if !ok {
		failed := 0
		for _, r := range results {
			if !r.Success {
				failed++
			}
		}
		p.State = StateRejected
		p.Result = BatchResult{
			Success:         false,
			TotalOperations: len(ops),
			Results:         results,
			Message:         fmt.Sprintf("Failed to resolve %d operation(s)", failed),
		}
		return p
	}

	totalShift := 0
	for _, r := range results {
		totalShift += r.PositionShift
	}

	summary := fmt.Sprintf("%d operation(s)", len(ops))
	if len(expanded) != len(ops) {
		summary = fmt.Sprintf("%d operation(s) (%d after all_occurrences expansion)", len(ops), len(expanded))
	}

	if pl.opts.Preview {
		pl.attachPreviews(resolved, results)
		p.State = StateDone
		p.Result = BatchResult{
			Success:            true,
			TotalOperations:    len(ops),
			Results:            results,
			TotalPositionShift: totalShift,
			Message:            "Would execute " + summary,
			Preview:            true,
			WouldModify:        len(results) > 0,
		}
		return p
	}

	p.State = StateDispatching
	reqs, err := buildRequests(resolved)
	if err != nil {
		p.State = StateRejected
		p.Result = BatchResult{
			Success:         false,
			TotalOperations: len(ops),
			Results:         results,
			Message:         fmt.Sprintf("Failed to build requests: %s", err.Error()),
		}
		return p
	}

	p.State = StateDone
	p.Requests = reqs
	p.Result = BatchResult{
		Success:             true,
		OperationsCompleted: len(expanded),
		TotalOperations:     len(ops),
		Results:             results,
		TotalPositionShift:  totalShift,
		Message:             "Planned " + summary,
	}
	return p
}

// expandAllOccurrences splits search operations flagged all_occurrences
// into one explicit-index operation per match, in reverse document
// order so earlier expanded edits do not disturb later ones. An
// operation with no matches is kept as-is and fails resolution with
// the usual not-found message.
func (pl *Planner) expandAllOccurrences(ops []Operation) []Operation {
	var out []Operation
	for _, op := range ops {
		canonical, _ := CanonicalType(op.Type)
		if !op.HasSearch || !op.AllOccurrences {
			out = append(out, op)
			continue
		}
		switch canonical {
		case OpInsertText, OpDeleteText, OpReplaceText, OpFormatText:
		default:
			out = append(out, op)
			continue
		}
		matches := pl.ix.FindAll(op.Search, op.MatchCase)
		if len(matches) == 0 {
			out = append(out, op)
			continue
		}
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			c := op
			c.Type = canonical
			c.HasSearch = false
			c.Search = ""
			c.AllOccurrences = false
			c.Occurrence = 1
			switch canonical {
			case OpInsertText:
				idx := m.Start
				if op.Position == "after" {
					idx = m.End
				}
				c.Index = intPtr(idx)
			default:
				c.StartIndex = intPtr(m.Start)
				c.EndIndex = intPtr(m.End)
				c.Index = nil
			}
			out = append(out, c)
		}
	}
	return out
}

// appliedShift is the bookkeeping for one resolved operation: how much
// it shifts later content and where that shift begins.
type appliedShift struct {
	shift int
	at    int
}

// resolveOps turns every operation into a resolvedOp with concrete
// indices. Search and range operations resolve against the virtual
// text reflecting pending edits; explicit-index operations are
// adjusted by the shifts of earlier operations that land at or before
// their declared position. The bool reports whether every operation
// resolved.
func (pl *Planner) resolveOps(ops []Operation) ([]resolvedOp, []OperationResult, bool) {
	var (
		resolved   []resolvedOp
		results    []OperationResult
		applied    []appliedShift
		cumulative int
		effLen     = pl.snap.Length()
		allOK      = true
	)
	vt := newVirtualText(pl.ix)

	fail := func(i int, op Operation, desc, msg string) {
		allOK = false
		results = append(results, OperationResult{
			Index: i, Type: op.Type, Success: false,
			Description: desc, Error: msg,
		})
	}

	for i, op := range ops {
		canonical, _ := CanonicalType(op.Type)
		ro := resolvedOp{
			typ:         canonical,
			text:        op.text(),
			rows:        op.Rows,
			columns:     op.Columns,
			find:        op.FindText,
			replaceWith: op.ReplaceText,
			matchCase:   op.MatchCase,
			style:       op.Style,
		}
		if canonical == OpInsertList {
			if ro.text == "" {
				ro.text = "List item"
			}
			ro.numbered = strings.EqualFold(op.ListType, "ORDERED")
		}
		var resolvedIndex *int

		switch {
		case op.RangeSpec != nil:
			res := pl.res.Resolve(op.RangeSpec)
			if !res.Success {
				fail(i, op, "Range resolution failed", res.Message)
				continue
			}
			start, end := res.Start, res.End
			if pl.opts.AutoAdjust {
				start += cumulative
				end += cumulative
			}
			ro.start, ro.end = start, end
			if insertKind(canonical) {
				ro.end = 0
			}
			resolvedIndex = intPtr(start)

		case op.Location != "":
			idx := 1
			if op.Location == "end" {
				if n := pl.snap.Length(); n > 1 {
					idx = n - 1
				}
			}
			if pl.opts.AutoAdjust {
				idx += cumulative
			}
			ro.start = idx
			if canonical == OpFormatText {
				// A bare location gives format no width; cover the
				// payload text when present.
				ro.end = idx + len([]rune(op.text()))
			}
			resolvedIndex = intPtr(idx)

		case op.HasSearch:
			start, end, err := vt.find(op.Search, op.Occurrence, op.MatchCase)
			if err != nil {
				fail(i, op, fmt.Sprintf("Search failed for '%s'", op.Search), err.Error())
				continue
			}
			if op.Extend != "" {
				var eerr error
				start, end, eerr = pl.extendBoundary(op, start)
				if eerr != nil {
					fail(i, op, fmt.Sprintf("Invalid extend value: '%s'", op.Extend), eerr.Error())
					continue
				}
			}
			switch op.Position {
			case "before":
				end = start
			case "after":
				start = end
			}
			ro.start = start
			if !insertKind(canonical) {
				ro.end = end
			}
			resolvedIndex = intPtr(ro.start)

		default:
			// Explicit indices.
			declStart := 0
			if op.Index != nil {
				declStart = *op.Index
			} else if op.StartIndex != nil {
				declStart = *op.StartIndex
			}
			adjust := 0
			if pl.opts.AutoAdjust {
				for _, a := range applied {
					if a.at <= declStart {
						adjust += a.shift
					}
				}
			}
			if op.Index != nil {
				ro.start = *op.Index + adjust
			}
			if op.StartIndex != nil {
				ro.start = *op.StartIndex + adjust
			}
			if op.EndIndex != nil {
				ro.end = *op.EndIndex + adjust
			}
			name := "index"
			if op.StartIndex != nil {
				name = "start_index"
			}
			if ro.start > effLen {
				fail(i, op, "Index out of bounds", docerr.IndexOutOfBounds(name, ro.start, effLen).Error())
				continue
			}
			if ro.end > effLen {
				fail(i, op, "Index out of bounds", docerr.IndexOutOfBounds("end_index", ro.end, effLen).Error())
				continue
			}
		}

		pl.applyReservedOffset(&ro)
		pl.applyHeadingContainment(op, &ro)

		shift, affected := shiftFor(ro)
		results = append(results, OperationResult{
			Index:         i,
			Type:          op.Type,
			Success:       true,
			Description:   describe(ro),
			PositionShift: shift,
			AffectedRange: &affected,
			ResolvedIndex: resolvedIndex,
		})
		resolved = append(resolved, ro)
		if pl.opts.AutoAdjust {
			cumulative += shift
		}
		effLen += shift
		applied = append(applied, appliedShift{shift: shift, at: affected.Start})
		vt.apply(ro)
	}

	return resolved, results, allOK
}

// extendBoundary widens a search hit to its paragraph, sentence, or
// line. Section extension is only available through range specs.
func (pl *Planner) extendBoundary(op Operation, at int) (int, int, error) {
	var r document.Range
	switch strings.ToLower(op.Extend) {
	case "paragraph":
		var ok bool
		r, ok = pl.snap.ParagraphBounds(at)
		if !ok {
			r = document.Range{Start: at, End: at}
		}
	case "sentence":
		r = pl.ix.SentenceBounds(at)
	case "line":
		r = pl.ix.LineBounds(at)
	default:
		return 0, 0, fmt.Errorf("Invalid extend value: '%s'. Valid values: 'paragraph', 'sentence', 'line'", op.Extend)
	}
	return r.Start, r.End, nil
}

// applyReservedOffset remaps operations that touch the reserved
// leading offset. Offset 0 is the document's opening section break
// and can never be inserted at or deleted through.
func (pl *Planner) applyReservedOffset(ro *resolvedOp) {
	switch ro.typ {
	case OpInsertText, OpInsertTable, OpInsertList, OpInsertPageBreak:
		if ro.start == 0 {
			ro.start = 1
		}
	case OpDeleteText, OpFormatText:
		if ro.start == 0 {
			ro.start = 1
		}
		if ro.typ == OpFormatText && ro.end <= ro.start {
			ro.end = ro.start + 1
		}
	case OpReplaceText:
		if ro.start == 0 {
			ro.start = 1
			ro.replaceAtZero = true
		}
	}
}

// applyHeadingContainment decides the paragraph-style requests an
// insertion needs. Text inserted directly after a heading inherits
// the heading's paragraph style; without an explicit style request
// the whole inserted span is reset to NORMAL_TEXT.
func (pl *Planner) applyHeadingContainment(op Operation, ro *resolvedOp) {
	if ro.typ != OpInsertText && ro.typ != OpReplaceText {
		return
	}
	if op.Style.HeadingStyle != nil {
		return
	}
	if document.IsHeadingStyle(pl.snap.StyleAt(ro.start - 1)) {
		ro.neutralize = true
	}
}

// shiftFor computes the position shift an operation causes and the
// range it affects.
func shiftFor(ro resolvedOp) (int, AffectedRange) {
	switch ro.typ {
	case OpInsertText:
		n := len([]rune(ro.text))
		return n, AffectedRange{Start: ro.start, End: ro.start + n}
	case OpDeleteText:
		return -(ro.end - ro.start), AffectedRange{Start: ro.start, End: ro.start}
	case OpReplaceText:
		n := len([]rune(ro.text))
		return n - (ro.end - ro.start), AffectedRange{Start: ro.start, End: ro.start + n}
	case OpInsertList:
		// The list text plus its terminating newline.
		n := len([]rune(ro.text)) + 1
		return n, AffectedRange{Start: ro.start, End: ro.start + n}
	case OpInsertPageBreak:
		return 1, AffectedRange{Start: ro.start, End: ro.start + 1}
	case OpInsertTable:
		// Structural; the true shift depends on document context.
		return 0, AffectedRange{Start: ro.start, End: ro.start}
	default:
		return 0, AffectedRange{Start: ro.start, End: ro.end}
	}
}

func describe(ro resolvedOp) string {
	switch ro.typ {
	case OpInsertText:
		return fmt.Sprintf("insert '%s' at %d", clip(ro.text, 20), ro.start)
	case OpDeleteText:
		return fmt.Sprintf("delete %d-%d", ro.start, ro.end)
	case OpReplaceText:
		return fmt.Sprintf("replace %d-%d with '%s'", ro.start, ro.end, clip(ro.text, 20))
	case OpFormatText:
		styles := ro.style.Applied()
		if len(styles) == 0 {
			return fmt.Sprintf("format %d-%d (none)", ro.start, ro.end)
		}
		return fmt.Sprintf("format %d-%d (%s)", ro.start, ro.end, strings.Join(styles, ", "))
	case OpInsertTable:
		return fmt.Sprintf("insert %dx%d table at %d", ro.rows, ro.columns, ro.start)
	case OpInsertList:
		return fmt.Sprintf("insert %s list at %d", listKindName(ro.numbered), ro.start)
	case OpInsertPageBreak:
		return fmt.Sprintf("insert page break at %d", ro.start)
	case OpFindReplace:
		return fmt.Sprintf("find '%s' replace with '%s'", ro.find, ro.replaceWith)
	default:
		return ro.typ + " operation"
	}
}

// insertKind reports whether the operation inserts new content rather
// than consuming an existing range.
func insertKind(typ string) bool {
	switch typ {
	case OpInsertText, OpInsertTable, OpInsertList, OpInsertPageBreak:
		return true
	}
	return false
}

func listKindName(numbered bool) string {
	if numbered {
		return "ordered"
	}
	return "unordered"
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// attachPreviews fills the preview fields of each successful result
// with the current content at the affected range.
func (pl *Planner) attachPreviews(resolved []resolvedOp, results []OperationResult) {
	ri := 0
	for i := range results {
		if !results[i].Success {
			continue
		}
		ro := resolved[ri]
		ri++
		if ro.typ == OpDeleteText || ro.typ == OpReplaceText || ro.typ == OpFormatText {
			ex := pl.ix.TextAt(document.Range{Start: ro.start, End: ro.end}, pl.opts.ContextChars)
			results[i].CurrentContent = ex.Text
			results[i].ContextBefore = ex.Before
			results[i].ContextAfter = ex.After
		}
	}
}

// buildRequests compiles resolved operations into the ordered request
// list.
func buildRequests(resolved []resolvedOp) ([]string, error) {
	var reqs []string
	for _, ro := range resolved {
		switch ro.typ {
		case OpInsertText:
			reqs = append(reqs, insertTextRequest(ro.start, ro.text))
			reqs = append(reqs, insertStyleRequests(ro.start, ro)...)

		case OpDeleteText:
			reqs = append(reqs, deleteRangeRequest(ro.start, ro.end))

		case OpReplaceText:
			newLen := len([]rune(ro.text))
			if ro.replaceAtZero {
				// Insert first, then delete the old text shifted by
				// the inserted length; deleting through offset 0 is
				// forbidden.
				reqs = append(reqs, insertTextRequest(ro.start, ro.text))
				reqs = append(reqs, deleteRangeRequest(ro.start+newLen, ro.end+newLen))
			} else {
				reqs = append(reqs, deleteRangeRequest(ro.start, ro.end))
				reqs = append(reqs, insertTextRequest(ro.start, ro.text))
			}
			reqs = append(reqs, insertStyleRequests(ro.start, ro)...)

		case OpFormatText:
			ts, err := textStyleRequest(ro.start, ro.end, ro.style)
			if err != nil {
				return nil, err
			}
			if ts != "" {
				reqs = append(reqs, ts)
			}
			ps, err := paragraphStyleRequest(ro.start, ro.end, ro.style)
			if err != nil {
				return nil, err
			}
			if ps != "" {
				reqs = append(reqs, ps)
			}

		case OpInsertTable:
			reqs = append(reqs, insertTableRequest(ro.start, ro.rows, ro.columns))

		case OpInsertList:
			// Insert the item text first, then make its paragraph a
			// list; the bullet range excludes the trailing newline.
			reqs = append(reqs, insertTextRequest(ro.start, ro.text+"\n"))
			reqs = append(reqs, bulletListRequest(ro.start, ro.start+len([]rune(ro.text)), ro.numbered))

		case OpInsertPageBreak:
			reqs = append(reqs, insertPageBreakRequest(ro.start))

		case OpFindReplace:
			reqs = append(reqs, replaceAllTextRequest(ro.find, ro.replaceWith, ro.matchCase))
		}
	}
	return reqs, nil
}

// insertStyleRequests builds the follow-up styling for inserted text:
// text-level styles over the span, an explicit heading style over the
// first line only, or a NORMAL_TEXT reset over the whole span when the
// insertion point followed a heading.
func insertStyleRequests(start int, ro resolvedOp) []string {
	runes := []rune(ro.text)
	end := start + len(runes)
	var reqs []string

	if ts, err := textStyleRequest(start, end, ro.style); err == nil && ts != "" {
		reqs = append(reqs, ts)
	}

	switch {
	case ro.style.HeadingStyle != nil:
		// An explicit heading style covers the first line only; the
		// rest of a multi-line insertion stays NORMAL_TEXT.
		firstLine := end
		for i, r := range runes {
			if r == '\n' {
				firstLine = start + i + 1
				break
			}
		}
		reqs = append(reqs, namedStyleRequest(start, firstLine, strings.ToUpper(*ro.style.HeadingStyle)))
		if firstLine < end {
			reqs = append(reqs, namedStyleRequest(firstLine, end, "NORMAL_TEXT"))
		}
	case ro.neutralize:
		reqs = append(reqs, namedStyleRequest(start, end, "NORMAL_TEXT"))
	}
	return reqs
}
