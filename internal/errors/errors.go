// Package errors defines the stable error taxonomy for archscope.
// Every failure mode carries a machine-readable code so callers and
// scripts can react without parsing messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ScanFailed indicates a source file with unbalanced or unterminated
	// delimiters; fatal to that file only, extraction continues
	ScanFailed ErrorCode = "SCAN_FAILED"
	// DuplicateType indicates a qualified type name declared in more
	// than one file under the analyzed root
	DuplicateType ErrorCode = "DUPLICATE_TYPE"
	// GraphInvalid indicates graph building was attempted on a snapshot
	// carrying a duplicate-name violation
	GraphInvalid ErrorCode = "GRAPH_INVALID"
	// DiffIncompatible indicates a snapshot directory that cannot be
	// parsed back by the snapshot store
	DiffIncompatible ErrorCode = "DIFF_INCOMPATIBLE"
	// RenderMarkup indicates generated diagram markup failed its own
	// consistency lint; an internal error if graph invariants hold
	RenderMarkup ErrorCode = "RENDER_MARKUP"
	// RenderBackendMissing indicates the external mermaid renderer
	// (mmdc) is not installed
	RenderBackendMissing ErrorCode = "RENDER_BACKEND_MISSING"
	// SnapshotMissing indicates a snapshot directory does not exist
	SnapshotMissing ErrorCode = "SNAPSHOT_MISSING"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool,omitempty"`
}

// ArchError represents an archscope error with code, message, and suggestions
type ArchError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new ArchError
func New(code ErrorCode, message string, cause error) *ArchError {
	return &ArchError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *ArchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ArchError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ArchError) WithDetails(details interface{}) *ArchError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error chain, or InternalError
// if the chain carries no ArchError.
func CodeOf(err error) ErrorCode {
	var archErr *ArchError
	if errors.As(err, &archErr) {
		return archErr.Code
	}
	return InternalError
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var archErr *ArchError
	if errors.As(err, &archErr) {
		return archErr.Code == code
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	RenderBackendMissing: {
		{
			Type:        InstallTool,
			Command:     "npm install -g @mermaid-js/mermaid-cli",
			Safe:        true,
			Description: "Install the mermaid CLI used to render diagrams",
			Tool:        "mmdc",
		},
	},
	SnapshotMissing: {
		{
			Type:        RunCommand,
			Command:     "archscope architecture <dir>",
			Safe:        true,
			Description: "Extract an architecture snapshot first",
		},
	},
	DiffIncompatible: {
		{
			Type:        RunCommand,
			Command:     "archscope architecture <dir>",
			Safe:        true,
			Description: "Regenerate the snapshot with the current archscope version",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
