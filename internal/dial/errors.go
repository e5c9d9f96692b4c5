package dial

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialsReturned means the server's listing was empty.
	ErrNoDialsReturned = errors.New("no dials returned from VU1 server")

	// ErrNoKnownDials means the server had dials but none matched a
	// configured role name.
	ErrNoKnownDials = errors.New("no known dials found")

	// ErrDialNotImplemented matches any *NotImplementedError via errors.Is.
	ErrDialNotImplemented = errors.New("dial not implemented")
)

// NotImplementedError is returned when an operation targets a role that
// has no dial in the registry.
type NotImplementedError struct {
	Role Role
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s dial is not set up", e.Role)
}

// Is lets errors.Is(err, ErrDialNotImplemented) match.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrDialNotImplemented
}
