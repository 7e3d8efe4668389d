package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure.
type Kind int

const (
	// KindUnreachable marks transport-level failures (dial, timeout, bad payload).
	KindUnreachable Kind = iota
	// KindRemote marks failures reported by the service itself.
	KindRemote
)

// Error is the failure type returned by every Client operation.
type Error struct {
	Kind    Kind
	Op      string // "search", "download" or "health"
	Message string // remote message, when the service provided one
	Err     error  // underlying transport error, when any
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRemote && e.Message != "":
		return fmt.Sprintf("catalog %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("catalog %s failed", e.Op)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns a stable identifier consumed by structured log summaries.
func (e *Error) Code() string {
	if e.Kind == KindRemote {
		return "CATALOG_REMOTE"
	}
	return "CATALOG_UNREACHABLE"
}

// IsUnreachable reports whether err is a transport-level catalog failure.
func IsUnreachable(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindUnreachable
}

// IsRemote reports whether err is a failure the service reported itself.
func IsRemote(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindRemote
}

// ErrEmptyKeyword rejects searches with a blank keyword before any network call.
var ErrEmptyKeyword = errors.New("catalog: empty search keyword")
