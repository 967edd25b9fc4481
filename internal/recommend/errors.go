// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by collaborator stores when a referenced record
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies engine failures for callers.
type ErrorKind int

const (
	// KindUnknown is never produced by the engine; KindOf returns it for
	// errors that did not originate here.
	KindUnknown ErrorKind = iota
	// KindInvalidRequest means the request is missing a required identifier
	// or names an unsupported mode.
	KindInvalidRequest
	// KindNotFound means the referenced source event does not exist.
	KindNotFound
	// KindServiceUnavailable means a required collaborator failed or the
	// request ran out of time.
	KindServiceUnavailable
)

// String returns the kind name used in logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindServiceUnavailable:
		return "service_unavailable"
	default:
		return "unknown"
	}
}

// Error is the error type returned by Engine.Recommend.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

func invalidRequest(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidRequest, Op: op, Err: fmt.Errorf(format, args...)}
}

// classify converts a collaborator error into an engine error. Absence maps
// to NotFound; deadlines, cancellation and every other failure map to
// ServiceUnavailable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Kind: KindServiceUnavailable, Op: op, Err: fmt.Errorf("request timed out: %w", err)}
	default:
		return &Error{Kind: KindServiceUnavailable, Op: op, Err: err}
	}
}

// unavailable wraps err as ServiceUnavailable even when it is ErrNotFound.
// Used for collaborator calls whose absence result is not load-bearing.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Kind: KindServiceUnavailable, Op: op, Err: err}
}
