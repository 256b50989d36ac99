package docerr

import (
	"fmt"
	"strings"
)

// IndexOutOfBounds reports an index beyond the document length.
func IndexOutOfBounds(name string, value, docLength int) *Error {
	return &Error{
		Code:       CodeIndexOutOfBounds,
		Message:    fmt.Sprintf("%s %d is beyond document length %d", name, value, docLength),
		Reason:     fmt.Sprintf("the document has %d characters (indices 0-%d); %d is outside this range", docLength, docLength-1, value),
		Suggestion: fmt.Sprintf("use indices between 1 and %d", docLength-1),
		Context: &Context{
			DocumentLength: docLength,
			Received:       map[string]any{name: value},
		},
	}
}

// InvalidIndexRange reports a range whose start is not before its end.
func InvalidIndexRange(start, end int) *Error {
	return &Error{
		Code:       CodeInvalidIndexRange,
		Message:    fmt.Sprintf("start_index (%d) must be less than end_index (%d)", start, end),
		Reason:     "the start of a range must come before its end",
		Suggestion: "swap the values or correct the range specification",
		Context: &Context{
			Received: map[string]any{"start_index": start, "end_index": end},
			Expected: map[string]any{"start_index": min(start, end), "end_index": max(start, end)},
		},
	}
}

// EmptySearchText reports an empty search string.
func EmptySearchText() *Error {
	return &Error{
		Code:       CodeEmptySearchText,
		Message:    "search text cannot be empty",
		Reason:     "an empty search string would match nothing",
		Suggestion: "provide a non-empty search string to locate text in the document",
	}
}

// SearchTextNotFound reports a search string with zero matches.
func SearchTextNotFound(search string, matchCase bool) *Error {
	e := &Error{
		Code:    CodeSearchTextNotFound,
		Message: fmt.Sprintf("text %q not found in document", search),
		Context: &Context{Received: map[string]any{"search": search, "match_case": matchCase}},
	}
	if matchCase {
		e.Suggestion = "check the exact spelling and casing, or retry with match_case=false"
	} else {
		e.Suggestion = "check the spelling; the text may not exist in this document"
	}
	return e
}

// InvalidOccurrence reports an occurrence selector beyond the match count.
func InvalidOccurrence(occurrence, totalFound int, search string) *Error {
	return &Error{
		Code:       CodeInvalidOccurrence,
		Message:    fmt.Sprintf("occurrence %d of %q not found; document contains %d occurrence(s)", occurrence, search, totalFound),
		Reason:     "occurrences are 1-based in document order; -1 selects the last",
		Suggestion: fmt.Sprintf("use an occurrence between 1 and %d, or -1 for the last", totalFound),
		Context: &Context{
			TotalFound: totalFound,
			Received:   map[string]any{"occurrence": occurrence, "search": search},
		},
	}
}

// HeadingNotFound reports a heading lookup miss, listing what exists.
func HeadingNotFound(heading string, available []string, matchCase bool) *Error {
	const maxListed = 10
	listed := available
	truncated := false
	if len(listed) > maxListed {
		listed = listed[:maxListed]
		truncated = true
	}
	msg := fmt.Sprintf("heading %q not found", heading)
	if len(listed) > 0 {
		msg += fmt.Sprintf("; available headings: %s", strings.Join(listed, ", "))
		if truncated {
			msg += ", ..."
		}
	}
	e := &Error{
		Code:    CodeHeadingNotFound,
		Message: msg,
		Context: &Context{
			AvailableHeadings: listed,
			Received:          map[string]any{"heading": heading, "match_case": matchCase},
		},
	}
	if matchCase {
		e.Suggestion = "check the heading text exactly, or retry with match_case=false"
	} else {
		e.Suggestion = "check the heading text against the available headings"
	}
	return e
}

// InvalidSectionPosition reports an unknown section insertion position.
func InvalidSectionPosition(position string) *Error {
	return &Error{
		Code:       CodeInvalidSectionPosition,
		Message:    fmt.Sprintf("invalid section position %q", position),
		Suggestion: "use \"start\" (after the heading) or \"end\" (end of the section)",
		Context:    &Context{Received: map[string]any{"position": position}},
	}
}

// FormattingRequiresRange reports formatting without an end index.
func FormattingRequiresRange(start int, params []string) *Error {
	return &Error{
		Code:       CodeFormattingRequiresRange,
		Message:    "end_index is required when applying formatting without inserting text",
		Reason:     "formatting modifies existing characters and needs to know which range to cover",
		Suggestion: "provide both start_index and end_index, or insert text so the range can be computed",
		Context: &Context{
			Received: map[string]any{"start_index": start, "formatting": params},
		},
	}
}

// MissingParam reports an absent required parameter.
func MissingParam(name, context string, valid []string) *Error {
	e := &Error{
		Code:    CodeMissingRequiredParam,
		Message: fmt.Sprintf("missing required parameter %q %s", name, context),
		Context: &Context{Received: map[string]any{name: nil}},
	}
	if len(valid) > 0 {
		e.Suggestion = "valid values: " + strings.Join(valid, "; ")
	}
	return e
}

// InvalidParam reports a parameter with an unacceptable value.
func InvalidParam(name string, received any, valid []string) *Error {
	e := &Error{
		Code:    CodeInvalidParamValue,
		Message: fmt.Sprintf("invalid value for %q: %v", name, received),
		Context: &Context{Received: map[string]any{name: received}},
	}
	if len(valid) > 0 {
		e.Suggestion = "valid values: " + strings.Join(valid, ", ")
	}
	return e
}

// TableNotFound reports a table index past the table count.
func TableNotFound(tableIndex, total int) *Error {
	return &Error{
		Code:       CodeTableNotFound,
		Message:    fmt.Sprintf("table %d not found; document has %d table(s)", tableIndex, total),
		Suggestion: fmt.Sprintf("use a table index between 0 and %d", total-1),
		Context:    &Context{Received: map[string]any{"table_index": tableIndex}, TotalFound: total},
	}
}

// InvalidTableData reports unusable table dimensions or cell data.
func InvalidTableData(reason string) *Error {
	return &Error{
		Code:       CodeInvalidTableData,
		Message:    "invalid table data: " + reason,
		Suggestion: "provide positive row and column counts",
	}
}
