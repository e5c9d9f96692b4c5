// Package transport runs remote calls under a bounded retry policy.
//
// A Policy wraps exactly one call. Failures are classified in order:
// refused or unreachable connections fail at once as *UnreachableError,
// timeouts are retried up to MaxRetries times with RetryInterval between
// attempts, and non-2xx responses (*StatusError) are returned untouched.
package transport

import (
	"context"
	"fmt"
	"time"
)

// Policy is the retry configuration applied to every remote call.
type Policy struct {
	// MaxRetries is the number of extra attempts after a timeout.
	MaxRetries int

	// RetryInterval is the pause between timed out attempts.
	RetryInterval time.Duration

	// OnRetry, if set, is called before each retry with the attempt number
	// that just failed (starting at 1).
	OnRetry func(attempt int, err error)
}

// Op is one remote call. It must honour ctx.
type Op func(ctx context.Context) error

// sleep pauses for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Validate rejects negative settings.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries can't be negative (got %d)", p.MaxRetries)
	}
	if p.RetryInterval < 0 {
		return fmt.Errorf("retry interval can't be negative (got %v)", p.RetryInterval)
	}
	return nil
}

// Do runs op, retrying timeouts. With MaxRetries = N a call that always
// times out runs N+1 times and the last timeout error is returned.
func (p Policy) Do(ctx context.Context, op Op) error {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		// The caller gave up; don't dress that up as a server failure.
		if ctx.Err() != nil {
			return err
		}

		switch Classify(err) {
		case ClassUnreachable:
			if _, ok := err.(*UnreachableError); ok {
				return err
			}
			return &UnreachableError{Cause: err}
		case ClassTimeout:
			if attempt > retries {
				return err
			}
			if p.OnRetry != nil {
				p.OnRetry(attempt, err)
			}
			if sleepErr := sleep(ctx, p.RetryInterval); sleepErr != nil {
				return err
			}
		default:
			return err
		}
	}
}
