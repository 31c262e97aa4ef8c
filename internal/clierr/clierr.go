// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for script consumption.
package clierr

import (
	"fmt"
	"strconv"
)

// Error code constants — uppercase, underscore-separated, stable across minor versions.
const (
	TaskNotFound     = "TASK_NOT_FOUND"
	ClientNotFound   = "CLIENT_NOT_FOUND"
	IndustryNotFound = "INDUSTRY_NOT_FOUND"
	StateNotFound    = "STATE_NOT_FOUND"
	GenerationFailed = "GENERATION_FAILED"
	GenerationBusy   = "GENERATION_BUSY"
	ImportFailed     = "IMPORT_FAILED"
	AgentOffline     = "AGENT_OFFLINE"
	InvalidInput     = "INVALID_INPUT"
	InvalidPriority  = "INVALID_PRIORITY"
	InvalidSection   = "INVALID_SECTION"
	InvalidProfile   = "INVALID_PROFILE"
	ConfirmationReq  = "CONFIRMATION_REQUIRED"
	InternalError    = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// SilentError signals an exit code without additional output.
// Used where results were already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
