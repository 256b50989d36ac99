// Package docerr defines the structured error taxonomy shared by the
// position and range-resolution engine. Every caller-correctable failure
// (bad index, missing heading, ambiguous search) is expressed as an *Error
// carrying a machine-readable code plus enough context for an automated
// caller to retry with corrected parameters.
package docerr
