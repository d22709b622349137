package core

import (
	"errors"
	"fmt"
	"time"
)

// The engine distinguishes three error categories. Not-found and staleness
// are handled internally (not-found is the success condition for absence
// waits, staleness triggers locator-based relocation); timeouts are the only
// category with caller-configurable behavior. Everything else propagates to
// the caller unmodified.
var (
	// ErrNoSuchElement reports that a locator query matched nothing. An
	// out-of-range index on a multi-match query is normalized to this same
	// failure, not a distinct error.
	ErrNoSuchElement = errors.New("no such element")

	// ErrStaleElement reports a handle whose underlying UI node has been
	// destroyed or replaced since it was obtained.
	ErrStaleElement = errors.New("stale element reference")

	// ErrNoCache signals that no cached handle is available and the element
	// must be relocated. Engine-internal; never surfaced to callers.
	ErrNoCache = errors.New("no cache available")

	// ErrNoSession reports an element operation on a page without a session.
	ErrNoSession = errors.New("no driver session")
)

// IsNotFound reports whether err means the query matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

// IsStale reports whether err means the handle's UI node is gone.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleElement)
}

// IsReferenceError reports whether err invalidates a cached handle:
// either staleness or a missing cache slot. Both recover by relocation.
func IsReferenceError(err error) bool {
	return errors.Is(err, ErrStaleElement) || errors.Is(err, ErrNoCache)
}

// TimeoutError reports that a wait predicate never succeeded within budget.
type TimeoutError struct {
	State   string        // target state, e.g. "visible" or "invisible or absent"
	Timeout time.Duration // the budget that elapsed
	Remark  string        // element identity for the message
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting %v for element %s to be %q",
		e.Timeout, e.Remark, e.State)
}

// IsTimeout reports whether err is a wait timeout.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}
