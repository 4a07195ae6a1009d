package schemas

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed set of failure categories the automation core
// distinguishes. Call sites switch on the kind rather than on an open
// exception hierarchy, so every category is handled explicitly.
type ErrorKind string

const (
	// KindSession: the browser session could not be started or died.
	// Fatal to the whole run.
	KindSession ErrorKind = "session"
	// KindNotFound: an element did not appear within the wait timeout.
	// Retryable; becomes a failed record once retries are exhausted.
	KindNotFound ErrorKind = "not_found"
	// KindInteractionBlocked: the element exists but a simulated click
	// was rejected (covered, stale, not interactable). Triggers the
	// script-click fallback.
	KindInteractionBlocked ErrorKind = "interaction_blocked"
	// KindUnknownTask: no routine is registered for the requested
	// (module, task) pair. A configuration error, fatal to the run.
	KindUnknownTask ErrorKind = "unknown_task"
	// KindUnhandled: a routine failed in a way it did not classify.
	// Converted to a failed record, never propagated past the record.
	KindUnhandled ErrorKind = "unhandled"
)

// Error is the one error type crossing package boundaries in the core.
type Error struct {
	Kind ErrorKind `json:"kind"`
	Msg  string    `json:"message"`
	// Locator is set for element-level failures.
	Locator *Locator `json:"locator,omitempty"`
	// Elapsed is how long the failing wait ran, for not-found errors.
	Elapsed time.Duration `json:"elapsed,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.Locator != nil {
		msg += fmt.Sprintf(" (locator %s)", e.Locator)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes errors.Is(err, &Error{Kind: ...}) match on kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the ErrorKind from an error chain. Unclassified
// errors report KindUnhandled; nil reports the empty kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnhandled
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func NewSessionError(msg string, cause error) *Error {
	return &Error{Kind: KindSession, Msg: msg, cause: cause}
}

func NewNotFoundError(loc Locator, elapsed time.Duration, cause error) *Error {
	return &Error{Kind: KindNotFound, Msg: "element not found", Locator: &loc, Elapsed: elapsed, cause: cause}
}

func NewInteractionBlockedError(loc Locator, cause error) *Error {
	return &Error{Kind: KindInteractionBlocked, Msg: "interaction blocked", Locator: &loc, cause: cause}
}

func NewUnknownTaskError(moduleKey, taskKey string) *Error {
	return &Error{Kind: KindUnknownTask, Msg: fmt.Sprintf("no routine registered for module %q task %q", moduleKey, taskKey)}
}

func NewUnhandledError(msg string, cause error) *Error {
	return &Error{Kind: KindUnhandled, Msg: msg, cause: cause}
}
