package errors

import (
	"encoding/json"
	"errors"
)

// Location pinpoints a fault in a translation unit: a filename and a
// global source-order token index (§3's "global source order index"),
// rather than a line/column, since that is what astview.Token carries.
type Location struct {
	Filename    string `json:"filename,omitempty"`
	SourceIndex int    `json:"source_index,omitempty"`
}

// Report is the canonical structured error type for loopkernel.
// All error builders should return *Report, which can be wrapped as ReportError.
type Report struct {
	Schema  string         `json:"schema"`             // Always "loopkernel.error/v1"
	Code    string         `json:"code"`               // Error code (AST001, MIN001, etc.)
	Phase   string         `json:"phase"`              // Phase: "astview", "loopminer", "freeuse", "preamble", "kernel", "config"
	Message string         `json:"message"`            // Human-readable message
	At      *Location      `json:"at,omitempty"`       // Source location (optional)
	Data    map[string]any `json:"data,omitempty"`     // Structured data
}

// ReportError wraps a Report as an error.
// This allows structured reports to survive errors.As() unwrapping.
type ReportError struct {
	Rep *Report
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport attempts to extract a Report from an error chain.
// Returns the Report and true if found, nil and false otherwise.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as a ReportError.
// Call sites should return errors.WrapReport(report) to preserve structure.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic field order via struct tags).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error

	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}

	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New creates a Report for the given phase/code/message.
func New(phase, code, message string) *Report {
	return &Report{
		Schema:  "loopkernel.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Data:    map[string]any{},
	}
}

// NewGeneric creates a generic error report wrapping a Go error.
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  "loopkernel.error/v1",
		Code:    "RUNTIME",
		Phase:   phase,
		Message: err.Error(),
		Data:    map[string]any{},
	}
}
