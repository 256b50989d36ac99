package plan

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/document"
	"github.com/dshills/docspan/internal/document/doctest"
	"github.com/dshills/docspan/internal/resolve"
	"github.com/dshills/docspan/internal/section"
	"github.com/dshills/docspan/internal/textindex"
)

// Fixture layout:
//
//	[0,1)   section break
//	[1,10)  "Overview\n"  HEADING_1
//	[10,28) "Alpha beta gamma.\n"
//	[28,36) "Details\n"   HEADING_1
//	[36,59) "TODO one and TODO two.\n"
func fixtureJSON() []byte {
	return doctest.New().
		SectionBreak().
		Heading(1, "Overview\n").
		Paragraph("Alpha beta gamma.\n").
		Heading(1, "Details\n").
		Paragraph("TODO one and TODO two.\n").
		Build()
}

func newPlanner(t *testing.T, opts Options) *Planner {
	t.Helper()
	snap, err := document.ParseSnapshot(fixtureJSON(), document.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	ix := textindex.New(snap)
	res := resolve.New(snap, ix, section.NewResolver(section.DefaultConfig()))
	return NewPlanner(snap, ix, res, opts)
}

func mustOps(t *testing.T, js string) []Operation {
	t.Helper()
	ops, err := ParseOperations(gjson.Parse(js))
	if err != nil {
		t.Fatalf("ParseOperations: %v", err)
	}
	return ops
}

func TestPlanExplicitOperations(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "index": 15, "text": "NEW "},
		{"type": "delete", "start_index": 28, "end_index": 36}
	]`))

	if p.State != StateDone {
		t.Fatalf("state = %v, want done", p.State)
	}
	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	if p.Result.TotalPositionShift != 4-8 {
		t.Errorf("total shift = %d, want -4", p.Result.TotalPositionShift)
	}

	// The delete's indices land after the insert at 15, so they are
	// adjusted by its +4 shift.
	del := gjson.Parse(p.Requests[1])
	if got := del.Get("deleteContentRange.range.startIndex").Int(); got != 32 {
		t.Errorf("delete start = %d, want 32", got)
	}
	if got := del.Get("deleteContentRange.range.endIndex").Int(); got != 40 {
		t.Errorf("delete end = %d, want 40", got)
	}
}

func TestPlanAdjustmentIsPositionAware(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "index": 40, "text": "ABC"},
		{"type": "delete", "start_index": 10, "end_index": 20}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	// The delete targets a range before the insert's position, so the
	// insert's +3 shift must not move it.
	del := gjson.Parse(p.Requests[1])
	if got := del.Get("deleteContentRange.range.startIndex").Int(); got != 10 {
		t.Errorf("delete start = %d, want 10 (unadjusted)", got)
	}
	if p.Result.TotalPositionShift != 3-10 {
		t.Errorf("total shift = %d, want -7", p.Result.TotalPositionShift)
	}
}

func TestPlanChainedSearch(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "search": "gamma", "position": "after", "text": " [OP1]"},
		{"type": "insert", "search": "[OP1]", "position": "after", "text": " [OP2]"}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	// "gamma" ends at 26; the second insert finds the text the first
	// one added and lands right after it.
	first := gjson.Parse(p.Requests[0])
	if got := first.Get("insertText.location.index").Int(); got != 26 {
		t.Errorf("first insert at %d, want 26", got)
	}
	second := gjson.Parse(p.Requests[1])
	if got := second.Get("insertText.location.index").Int(); got != 32 {
		t.Errorf("second insert at %d, want 32", got)
	}
}

func TestPlanSearchReplace(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "replace", "search": "beta", "position": "replace", "text": "BETA2"}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	if len(p.Requests) != 2 {
		t.Fatalf("requests = %d, want delete+insert", len(p.Requests))
	}
	del := gjson.Parse(p.Requests[0])
	if del.Get("deleteContentRange.range.startIndex").Int() != 16 ||
		del.Get("deleteContentRange.range.endIndex").Int() != 20 {
		t.Errorf("delete range = %s", p.Requests[0])
	}
	ins := gjson.Parse(p.Requests[1])
	if ins.Get("insertText.location.index").Int() != 16 {
		t.Errorf("insert at %d, want 16", ins.Get("insertText.location.index").Int())
	}
	if got := p.Result.Results[0].PositionShift; got != 1 {
		t.Errorf("shift = %d, want +1", got)
	}
}

func TestPlanAllOccurrencesReverseOrder(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "replace", "search": "TODO", "all_occurrences": true, "text": "DONE!"}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	if p.Result.OperationsCompleted != 2 {
		t.Errorf("operations completed = %d, want 2 after expansion", p.Result.OperationsCompleted)
	}
	if p.Result.TotalOperations != 1 {
		t.Errorf("total operations = %d, want 1", p.Result.TotalOperations)
	}
	// Expanded in reverse document order: the occurrence at 49 is
	// edited before the one at 36, so neither needs adjustment.
	first := gjson.Parse(p.Requests[0])
	if got := first.Get("deleteContentRange.range.startIndex").Int(); got != 49 {
		t.Errorf("first delete at %d, want 49", got)
	}
	third := gjson.Parse(p.Requests[2])
	if got := third.Get("deleteContentRange.range.startIndex").Int(); got != 36 {
		t.Errorf("second delete at %d, want 36", got)
	}
	if p.Result.TotalPositionShift != 2 {
		t.Errorf("total shift = %d, want +2", p.Result.TotalPositionShift)
	}
}

func TestPlanReservedOffsetInsert(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[{"type": "insert", "index": 0, "text": "X"}]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	ins := gjson.Parse(p.Requests[0])
	if got := ins.Get("insertText.location.index").Int(); got != 1 {
		t.Errorf("insert at %d, want remapped to 1", got)
	}
}

func TestPlanReservedOffsetReplace(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "replace", "start_index": 0, "end_index": 10, "text": "Intro\n"}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	// Deleting through offset 0 is forbidden: insert the new text at
	// 1 first, then delete the old text shifted by the inserted
	// length.
	ins := gjson.Parse(p.Requests[0])
	if !ins.Get("insertText").Exists() {
		t.Fatalf("first request should insert, got %s", p.Requests[0])
	}
	if got := ins.Get("insertText.location.index").Int(); got != 1 {
		t.Errorf("insert at %d, want 1", got)
	}
	del := gjson.Parse(p.Requests[1])
	if del.Get("deleteContentRange.range.startIndex").Int() != 7 ||
		del.Get("deleteContentRange.range.endIndex").Int() != 16 {
		t.Errorf("shifted delete range = %s", p.Requests[1])
	}
}

func TestPlanHeadingNeutralization(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	// Index 10 immediately follows the "Overview" heading; without an
	// explicit style the whole inserted span is reset to NORMAL_TEXT.
	p := pl.Plan(mustOps(t, `[{"type": "insert", "index": 10, "text": "one\ntwo\n"}]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	if len(p.Requests) != 2 {
		t.Fatalf("requests = %d, want insert + style reset", len(p.Requests))
	}
	ps := gjson.Parse(p.Requests[1])
	if got := ps.Get("updateParagraphStyle.paragraphStyle.namedStyleType").String(); got != "NORMAL_TEXT" {
		t.Errorf("style = %q, want NORMAL_TEXT", got)
	}
	if ps.Get("updateParagraphStyle.range.startIndex").Int() != 10 ||
		ps.Get("updateParagraphStyle.range.endIndex").Int() != 18 {
		t.Errorf("reset covers %s, want the whole span 10-18", p.Requests[1])
	}
}

func TestPlanExplicitHeadingStyleFirstLineOnly(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "index": 28, "text": "New Section\nBody text\n", "heading_style": "HEADING_2"}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	// insert + heading over the first line + NORMAL_TEXT over the rest.
	if len(p.Requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(p.Requests))
	}
	head := gjson.Parse(p.Requests[1])
	if got := head.Get("updateParagraphStyle.paragraphStyle.namedStyleType").String(); got != "HEADING_2" {
		t.Errorf("first-line style = %q", got)
	}
	if head.Get("updateParagraphStyle.range.startIndex").Int() != 28 ||
		head.Get("updateParagraphStyle.range.endIndex").Int() != 40 {
		t.Errorf("heading covers %s, want first line 28-40", p.Requests[1])
	}
	rest := gjson.Parse(p.Requests[2])
	if got := rest.Get("updateParagraphStyle.paragraphStyle.namedStyleType").String(); got != "NORMAL_TEXT" {
		t.Errorf("rest style = %q", got)
	}
	if rest.Get("updateParagraphStyle.range.startIndex").Int() != 40 ||
		rest.Get("updateParagraphStyle.range.endIndex").Int() != 50 {
		t.Errorf("rest covers %s, want 40-50", p.Requests[2])
	}
}

func TestPlanRangeSpecOperation(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "delete", "range_spec": {"search": "beta", "extend": "paragraph"}}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	del := gjson.Parse(p.Requests[0])
	if del.Get("deleteContentRange.range.startIndex").Int() != 10 ||
		del.Get("deleteContentRange.range.endIndex").Int() != 28 {
		t.Errorf("delete range = %s, want the containing paragraph 10-28", p.Requests[0])
	}
}

func TestPlanLocationEnd(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[{"type": "insert", "location": "end", "text": "fin\n"}]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	ins := gjson.Parse(p.Requests[0])
	if got := ins.Get("insertText.location.index").Int(); got != 58 {
		t.Errorf("insert at %d, want 58 (length-1)", got)
	}
}

func TestPlanRejectsInvalidOperation(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "index": 5, "text": "ok"},
		{"type": "shout", "index": 5}
	]`))

	if p.State != StateRejected {
		t.Fatalf("state = %v, want rejected", p.State)
	}
	if p.Result.Success || len(p.Requests) != 0 {
		t.Errorf("rejected batch must emit no requests")
	}
	if !strings.Contains(p.Result.Message, "shout") {
		t.Errorf("message %q should name the bad type", p.Result.Message)
	}
}

func TestPlanRejectsFailedSearch(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert", "index": 5, "text": "ok"},
		{"type": "delete", "search": "missing text"}
	]`))

	if p.State != StateRejected {
		t.Fatalf("state = %v, want rejected", p.State)
	}
	if len(p.Requests) != 0 {
		t.Errorf("no requests should be built when resolution fails")
	}
	var failed *OperationResult
	for i := range p.Result.Results {
		if !p.Result.Results[i].Success {
			failed = &p.Result.Results[i]
		}
	}
	if failed == nil || !strings.Contains(failed.Error, "not found") {
		t.Errorf("expected a not-found failure, got %+v", failed)
	}
}

func TestPlanEmptyBatch(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(nil)
	if p.State != StateRejected || p.Result.Success {
		t.Errorf("empty batch should be rejected")
	}
}

func TestPlanPreview(t *testing.T) {
	opts := DefaultOptions()
	opts.Preview = true
	pl := newPlanner(t, opts)
	p := pl.Plan(mustOps(t, `[
		{"type": "delete", "start_index": 10, "end_index": 28}
	]`))

	if p.State != StateDone {
		t.Fatalf("state = %v, want done", p.State)
	}
	if !p.Result.Preview || !p.Result.WouldModify {
		t.Errorf("preview flags not set: %+v", p.Result)
	}
	if len(p.Requests) != 0 {
		t.Errorf("preview must not build requests")
	}
	if p.Result.OperationsCompleted != 0 {
		t.Errorf("preview completes nothing, got %d", p.Result.OperationsCompleted)
	}
	r := p.Result.Results[0]
	if r.CurrentContent != "Alpha beta gamma.\n" {
		t.Errorf("current content = %q", r.CurrentContent)
	}
	if r.ContextBefore == "" || r.ContextAfter == "" {
		t.Errorf("context missing: before=%q after=%q", r.ContextBefore, r.ContextAfter)
	}
	if !strings.HasPrefix(p.Result.Message, "Would execute") {
		t.Errorf("message = %q", p.Result.Message)
	}
}

func TestPlanFindReplace(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "find_replace", "find_text": "gamma", "replace_text": "delta", "match_case": true}
	]`))

	if !p.Result.Success {
		t.Fatalf("plan failed: %s", p.Result.Message)
	}
	req := gjson.Parse(p.Requests[0])
	if req.Get("replaceAllText.containsText.text").String() != "gamma" ||
		req.Get("replaceAllText.replaceText").String() != "delta" ||
		!req.Get("replaceAllText.containsText.matchCase").Bool() {
		t.Errorf("request = %s", p.Requests[0])
	}
}

func TestPlanIDAndState(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	a := pl.Plan(mustOps(t, `[{"type": "insert", "index": 5, "text": "x"}]`))
	b := pl.Plan(mustOps(t, `[{"type": "insert", "index": 5, "text": "x"}]`))
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("plan IDs must be unique: %q vs %q", a.ID, b.ID)
	}
	if got := StateRejected.String(); got != "rejected" {
		t.Errorf("State.String() = %q", got)
	}
}

func TestModifyInsert(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	res, reqs := pl.Modify(mustOps(t, `[{"type": "insert", "index": 20, "text": "five5"}]`)[0])

	if !res.Success {
		t.Fatalf("modify failed: %s", res.Message)
	}
	if res.Operation != "insert" {
		t.Errorf("operation = %q", res.Operation)
	}
	if res.PositionShift != 5 {
		t.Errorf("shift = %d, want 5", res.PositionShift)
	}
	if res.InsertedLength == nil || *res.InsertedLength != 5 {
		t.Errorf("inserted_length = %v", res.InsertedLength)
	}
	if res.AffectedRange != (AffectedRange{Start: 20, End: 25}) {
		t.Errorf("affected range = %+v", res.AffectedRange)
	}
	if len(reqs) != 1 {
		t.Errorf("requests = %d", len(reqs))
	}
	if res.LegacyMessage == "" {
		t.Errorf("legacy message missing")
	}
}

func TestModifyReplaceWithRangeSpec(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	res, _ := pl.Modify(mustOps(t, `[
		{"type": "replace", "range_spec": {"search": "beta", "extend": "sentence"}, "text": "Rewritten.\n"}
	]`)[0])

	if !res.Success {
		t.Fatalf("modify failed: %s", res.Message)
	}
	if res.Operation != "replace" {
		t.Errorf("operation = %q", res.Operation)
	}
	if res.ResolvedRange == nil || !res.ResolvedRange.Success {
		t.Fatalf("resolved_range missing: %+v", res.ResolvedRange)
	}
	if res.ResolvedRange.ExtendType != "sentence" {
		t.Errorf("extend_type = %q", res.ResolvedRange.ExtendType)
	}
	if res.OriginalLength == nil || res.NewLength == nil {
		t.Errorf("length fields missing")
	}
}

func TestModifyFailure(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	res, reqs := pl.Modify(mustOps(t, `[{"type": "delete", "search": "nope"}]`)[0])
	if res.Success || len(reqs) != 0 {
		t.Errorf("expected failure, got %+v", res)
	}
	if !strings.Contains(res.Message, "not found") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestRequestsJSON(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[{"type": "insert", "index": 5, "text": "x"}]`))
	payload := gjson.Parse(p.RequestsJSON())
	if !payload.Get("requests").IsArray() {
		t.Fatalf("payload = %s", p.RequestsJSON())
	}
	if n := len(payload.Get("requests").Array()); n != len(p.Requests) {
		t.Errorf("payload carries %d requests, want %d", n, len(p.Requests))
	}
}

func TestPlanSearchOccurrenceZero(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "replace", "search": "TODO", "occurrence": 0, "text": "DONE!"}
	]`))

	if p.State != StateDone {
		t.Fatalf("state = %v, want done: %s", p.State, p.Result.Message)
	}
	// Zero selects the first match, same as one.
	del := gjson.Parse(p.Requests[0])
	if got := del.Get("deleteContentRange.range.startIndex").Int(); got != 36 {
		t.Errorf("delete at %d, want the first TODO at 36", got)
	}
	if got := p.Result.Results[0].AffectedRange.Start; got != 36 {
		t.Errorf("affected start = %d, want 36", got)
	}
}

func TestPlanRejectsBareIndexDelete(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[{"type": "delete", "index": 50}]`))

	if p.State != StateRejected {
		t.Fatalf("state = %v, want rejected", p.State)
	}
	if len(p.Requests) != 0 {
		t.Errorf("rejected batch must emit no requests, got %v", p.Requests)
	}
	if !strings.Contains(p.Result.Message, "end_index") {
		t.Errorf("message = %q, should ask for end_index", p.Result.Message)
	}
}

func TestPlanRejectsOutOfBoundsIndex(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "delete", "start_index": 10, "end_index": 500}
	]`))

	if p.State != StateRejected {
		t.Fatalf("state = %v, want rejected", p.State)
	}
	if len(p.Requests) != 0 {
		t.Errorf("no requests should be built, got %v", p.Requests)
	}
	var failed *OperationResult
	for i := range p.Result.Results {
		if !p.Result.Results[i].Success {
			failed = &p.Result.Results[i]
		}
	}
	if failed == nil || !strings.Contains(failed.Error, "beyond document length 59") {
		t.Errorf("expected an out-of-bounds failure, got %+v", failed)
	}
}

func TestPlanInsertListUnordered(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert_list", "index": 15, "list_type": "UNORDERED", "text": "Item A"}
	]`))

	if p.State != StateDone {
		t.Fatalf("state = %v, want done: %s", p.State, p.Result.Message)
	}
	if len(p.Requests) != 2 {
		t.Fatalf("requests = %d, want insert + bullets", len(p.Requests))
	}
	ins := gjson.Parse(p.Requests[0])
	if ins.Get("insertText.location.index").Int() != 15 ||
		ins.Get("insertText.text").String() != "Item A\n" {
		t.Errorf("insert request = %s", p.Requests[0])
	}
	// The bullet range excludes the trailing newline.
	bul := gjson.Parse(p.Requests[1])
	if bul.Get("createParagraphBullets.range.startIndex").Int() != 15 ||
		bul.Get("createParagraphBullets.range.endIndex").Int() != 21 {
		t.Errorf("bullet range = %s", p.Requests[1])
	}
	if got := bul.Get("createParagraphBullets.bulletPreset").String(); got != "BULLET_DISC_CIRCLE_SQUARE" {
		t.Errorf("preset = %q, want BULLET_DISC_CIRCLE_SQUARE", got)
	}
	if got := p.Result.Results[0].PositionShift; got != 7 {
		t.Errorf("shift = %d, want 7 (text plus newline)", got)
	}
}

func TestPlanInsertListOrderedDefaultText(t *testing.T) {
	pl := newPlanner(t, DefaultOptions())
	p := pl.Plan(mustOps(t, `[
		{"type": "insert_list", "index": 28, "list_type": "ORDERED"}
	]`))

	if p.State != StateDone {
		t.Fatalf("state = %v, want done: %s", p.State, p.Result.Message)
	}
	ins := gjson.Parse(p.Requests[0])
	if got := ins.Get("insertText.text").String(); got != "List item\n" {
		t.Errorf("default text = %q, want %q", got, "List item\n")
	}
	bul := gjson.Parse(p.Requests[1])
	if got := bul.Get("createParagraphBullets.bulletPreset").String(); got != "NUMBERED_DECIMAL_ALPHA_ROMAN" {
		t.Errorf("preset = %q, want NUMBERED_DECIMAL_ALPHA_ROMAN", got)
	}
}
