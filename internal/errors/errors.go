// Package errors holds the failures vu1 reports to the user. Commands
// return an *Error and the root command prints it once before exiting,
// so callers never log and return the same failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Failure areas. The code picks the exit path and lets tests assert on
// the kind of failure without matching text.
const (
	ErrConfig = "CONFIG" // vu1.yaml, flags, environment
	ErrServer = "SERVER" // VU1 server unreachable or rejected the key
	ErrDial   = "DIAL"   // server dials missing or not matched to a role
	ErrLock   = "LOCK"   // monitor pid record
	ErrExec   = "EXEC"   // spawning or signalling the monitor
	ErrImage  = "IMAGE"  // face image validation or upload
)

// Error is what vu1 prints on failure: the headline, then the cause and
// a suggested next step, each indented under it.
//
//	✗ VU1 server not reachable
//
//	  dial tcp 127.0.0.1:5340: connect: connection refused
//
//	  Start VU1 Server or set server.url in vu1.yaml
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New returns an Error with no cause.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap attaches a headline to err. Most unclassified failures in vu1 come
// from the server round trip, so the code is ErrServer.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrServer,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode attaches a headline, code and suggestion to err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if e.Cause != nil {
		writeIndented(&b, e.Cause.Error())
	}
	if e.Suggestion != "" {
		writeIndented(&b, e.Suggestion)
	}

	return b.String()
}

// writeIndented keeps multi-line text, like a server response body, under
// the headline.
func writeIndented(b *strings.Builder, text string) {
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(b, "  %s\n", line)
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is, or wraps, an Error with code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var vuErr *Error
	if errors.As(err, &vuErr) {
		return vuErr.Code == code
	}
	return false
}

// ExitError carries a process exit status out of a command without
// printing anything further. The message has already been logged.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given status.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the status from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
