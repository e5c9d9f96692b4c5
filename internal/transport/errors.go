package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrServerUnreachable matches any *UnreachableError via errors.Is.
var ErrServerUnreachable = errors.New("server unreachable")

// UnreachableError reports a connection-level failure. It is never retried.
type UnreachableError struct {
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Cause)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrServerUnreachable) match.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}

// StatusError reports a non-2xx response. It is surfaced unchanged.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.Code, body)
}

// Class is how the policy treats a failed attempt.
type Class int

const (
	ClassOther Class = iota
	ClassUnreachable
	ClassTimeout
	ClassStatus
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case ClassUnreachable:
		return "unreachable"
	case ClassTimeout:
		return "timeout"
	case ClassStatus:
		return "status"
	default:
		return "other"
	}
}

// Classify sorts an attempt's error. Connection refusal and unreachable
// networks are checked before timeouts, so a refused dial is never retried.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ClassStatus
	}

	if errors.Is(err, ErrServerUnreachable) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTDOWN) {
		return ClassUnreachable
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	// Name resolution failures and other dial errors mean we never reached
	// the server.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ClassUnreachable
	}

	// Fall back to message matching for errors that lost their type.
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no route to host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "host is down") {
		return ClassUnreachable
	}
	if strings.Contains(errStr, "i/o timeout") {
		return ClassTimeout
	}

	return ClassOther
}
