package domain

import (
	"fmt"
	"strings"
)

// Error codes surfaced by the API layer.
const (
	ErrInvalidInput      = "INVALID_INPUT"
	ErrValidation        = "VALIDATION_ERROR"
	ErrDefinition        = "DEFINITION_ERROR"
	ErrInstrumentMissing = "INSTRUMENT_NOT_FOUND"
	ErrInternalServer    = "INTERNAL_SERVER_ERROR"
)

// DefinitionError reports an incorrectly authored instrument definition:
// overlapping cutoffs, a rule referencing an unknown item, a result outside
// its declared range. These are content-author bugs, detected at catalog
// load where possible, and always propagate as hard failures; the engine
// never converts them into a plausible-looking score.
type DefinitionError struct {
	InstrumentID string
	Problems     []string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("instrument %q definition invalid: %s",
		e.InstrumentID, strings.Join(e.Problems, "; "))
}

// NewDefinitionError builds a single-problem definition error.
func NewDefinitionError(instrumentID, format string, args ...any) *DefinitionError {
	return &DefinitionError{
		InstrumentID: instrumentID,
		Problems:     []string{fmt.Sprintf(format, args...)},
	}
}

// ValidationIssue describes one offending answer. Issues are collected
// exhaustively in a single pass, never fail-fast, so a caller can highlight
// every problem at once.
type ValidationIssue struct {
	Item    string   `json:"item"`
	Message string   `json:"message"`
	Value   *float64 `json:"value,omitempty"`
}

// Error implements the error interface.
func (e *ValidationIssue) Error() string {
	return fmt.Sprintf("item %q: %s", e.Item, e.Message)
}

// ValidationResult is the outcome of validating an answer set against an
// instrument. Errors block scoring; warnings never do and always accompany
// a successful score.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ErrorMessages flattens the fatal issues for logging.
func (r *ValidationResult) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i := range r.Errors {
		msgs[i] = r.Errors[i].Error()
	}
	return msgs
}
