package docerr

import (
	"encoding/json"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Error codes for document operations.
const (
	CodeDocumentNotFound        Code = "DOCUMENT_NOT_FOUND"
	CodeIndexOutOfBounds        Code = "INDEX_OUT_OF_BOUNDS"
	CodeInvalidIndexRange       Code = "INVALID_INDEX_RANGE"
	CodeInvalidIndexType        Code = "INVALID_INDEX_TYPE"
	CodeFormattingRequiresRange Code = "FORMATTING_REQUIRES_RANGE"
	CodeEmptySearchText         Code = "EMPTY_SEARCH_TEXT"
	CodeSearchTextNotFound      Code = "SEARCH_TEXT_NOT_FOUND"
	CodeAmbiguousSearch         Code = "AMBIGUOUS_SEARCH"
	CodeInvalidOccurrence       Code = "INVALID_OCCURRENCE"
	CodeHeadingNotFound         Code = "HEADING_NOT_FOUND"
	CodeInvalidSectionPosition  Code = "INVALID_SECTION_POSITION"
	CodeTableNotFound           Code = "TABLE_NOT_FOUND"
	CodeInvalidTableData        Code = "INVALID_TABLE_DATA"
	CodeMissingRequiredParam    Code = "MISSING_REQUIRED_PARAM"
	CodeInvalidParamValue       Code = "INVALID_PARAM_VALUE"
	CodeConflictingParams       Code = "CONFLICTING_PARAMS"
	CodeOperationFailed         Code = "OPERATION_FAILED"
	CodeAPIError                Code = "API_ERROR"
)

// OccurrenceRef identifies a single match when reporting ambiguous searches.
type OccurrenceRef struct {
	Index    int    `json:"index"`
	Position string `json:"position"`
}

// Context carries structured diagnostic context so an automated caller can
// self-correct without re-reading the document.
type Context struct {
	Received          map[string]any  `json:"received,omitempty"`
	Expected          map[string]any  `json:"expected,omitempty"`
	DocumentLength    int             `json:"document_length,omitempty"`
	AvailableHeadings []string        `json:"available_headings,omitempty"`
	Occurrences       []OccurrenceRef `json:"occurrences,omitempty"`
	TotalFound        int             `json:"total_found,omitempty"`
}

// Error is a structured, caller-correctable failure.
type Error struct {
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Reason     string            `json:"reason,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Example    map[string]string `json:"example,omitempty"`
	Context    *Context          `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a *Error with the same code, so callers can
// match with errors.Is against a code-only template.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// JSON renders the error as indented JSON for tool-facing output.
func (e *Error) JSON() string {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":true,"code":%q,"message":%q}`, e.Code, e.Message)
	}
	return string(b)
}

// New creates an error with just a code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code, or "" if err is not a *Error.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
