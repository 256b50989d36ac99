package plan

import (
	"fmt"
	"strings"

	"github.com/dshills/docspan/internal/resolve"
)

// AffectedRange is the document span an operation touches.
type AffectedRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// OperationResult reports one operation within a batch.
type OperationResult struct {
	Index         int            `json:"index"`
	Type          string         `json:"type"`
	Success       bool           `json:"success"`
	Description   string         `json:"description"`
	PositionShift int            `json:"position_shift"`
	AffectedRange *AffectedRange `json:"affected_range,omitempty"`
	ResolvedIndex *int           `json:"resolved_index,omitempty"`
	Error         string         `json:"error,omitempty"`

	// Preview-only fields: the content currently at the affected
	// range and its surroundings.
	CurrentContent string `json:"current_content,omitempty"`
	ContextBefore  string `json:"context_before,omitempty"`
	ContextAfter   string `json:"context_after,omitempty"`
}

// BatchResult is the complete outcome of planning a batch.
type BatchResult struct {
	Success             bool              `json:"success"`
	OperationsCompleted int               `json:"operations_completed"`
	TotalOperations     int               `json:"total_operations"`
	Results             []OperationResult `json:"results"`
	TotalPositionShift  int               `json:"total_position_shift"`
	Message             string            `json:"message"`
	Preview             bool              `json:"preview,omitempty"`
	WouldModify         bool              `json:"would_modify,omitempty"`
}

// ModifyResult reports a single modification with the position shift
// it causes, so a caller can make follow-up edits without re-reading
// the document.
type ModifyResult struct {
	Success        bool              `json:"success"`
	Operation      string            `json:"operation"`
	PositionShift  int               `json:"position_shift"`
	AffectedRange  AffectedRange     `json:"affected_range"`
	Message        string            `json:"message"`
	InsertedLength *int              `json:"inserted_length,omitempty"`
	OriginalLength *int              `json:"original_length,omitempty"`
	NewLength      *int              `json:"new_length,omitempty"`
	DeletedLength  *int              `json:"deleted_length,omitempty"`
	StylesApplied  []string          `json:"styles_applied,omitempty"`
	ResolvedRange  *resolve.Resolved `json:"resolved_range,omitempty"`
	LegacyMessage  string            `json:"legacy_message"`
}

// shortOperation maps a canonical type to the four reporting names.
func shortOperation(canonical string) string {
	switch canonical {
	case OpDeleteText:
		return "delete"
	case OpReplaceText, OpFindReplace:
		return "replace"
	case OpFormatText:
		return "format"
	default:
		return "insert"
	}
}

// Modify plans one operation and reports it in the single-operation
// result shape. The returned requests are the operation's share of a
// batch dispatch.
func (pl *Planner) Modify(op Operation) (ModifyResult, []string) {
	canonical, _ := CanonicalType(op.Type)
	p := pl.Plan([]Operation{op})

	if !p.Result.Success {
		msg := p.Result.Message
		if len(p.Result.Results) > 0 && p.Result.Results[0].Error != "" {
			msg = p.Result.Results[0].Error
		}
		return ModifyResult{
			Success:       false,
			Operation:     shortOperation(canonical),
			Message:       msg,
			LegacyMessage: msg,
		}, nil
	}

	r := p.Result.Results[0]
	out := ModifyResult{
		Success:       true,
		Operation:     shortOperation(canonical),
		PositionShift: r.PositionShift,
		LegacyMessage: "Successfully updated document: " + r.Description,
	}
	if r.AffectedRange != nil {
		out.AffectedRange = *r.AffectedRange
	}

	start, end := out.AffectedRange.Start, out.AffectedRange.End
	textLen := len([]rune(op.text()))
	switch canonical {
	case OpInsertText:
		out.InsertedLength = intPtr(textLen)
		out.Message = fmt.Sprintf("Inserted %d characters at index %d", textLen, start)
	case OpDeleteText:
		deleted := -r.PositionShift
		out.DeletedLength = intPtr(deleted)
		out.Message = fmt.Sprintf("Deleted %d characters from index %d to %d", deleted, start, start+deleted)
	case OpReplaceText:
		original := textLen - r.PositionShift
		out.OriginalLength = intPtr(original)
		out.NewLength = intPtr(textLen)
		out.Message = fmt.Sprintf("Replaced %d characters with %d characters at index %d", original, textLen, start)
	case OpFormatText:
		styles := op.Style.Applied()
		out.StylesApplied = styles
		out.Message = fmt.Sprintf("Applied %s to %d characters at index %d-%d",
			strings.Join(styles, ", "), end-start, start, end)
	default:
		out.Message = r.Description
	}

	if op.RangeSpec != nil {
		res := pl.res.Resolve(op.RangeSpec)
		out.ResolvedRange = &res
	}
	return out, p.Requests
}

// RequestsJSON renders the plan's requests as one batch payload:
// {"requests": [...]}.
func (p *Plan) RequestsJSON() string {
	return `{"requests":[` + strings.Join(p.Requests, ",") + `]}`
}
