// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"errors"
	"fmt"
)

// Kind classifies a registry failure. Each kind maps to one user-visible
// message category.
type Kind int

const (
	// KindInternal is an unexpected storage or programming failure. Its
	// detail is logged, never shown.
	KindInternal Kind = iota
	// KindValidation is bad input: unit out of range, malformed id.
	KindValidation
	// KindPermission is an actor below the tier an operation needs.
	KindPermission
	// KindNotFound is a missing pending request, link or operator.
	KindNotFound
	// KindConflict is a uniqueness violation or an exclusivity clash.
	KindConflict
	// KindState is a transition on a request that is no longer pending.
	KindState
)

// String returns the kind's message-category key.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state"
	default:
		return "internal"
	}
}

// Error is the only error type the engine returns. MessageID and Args
// describe the failure for localized rendering; Err carries the cause for
// logs and errors.Is.
type Error struct {
	Kind      Kind
	Op        string
	MessageID string
	Args      map[string]any
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.MessageID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind whose Op and MessageID are
// either empty or equal, so the Err* sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return (t.Op == "" || t.Op == e.Op) && (t.MessageID == "" || t.MessageID == e.MessageID)
}

// Sentinels for errors.Is checks by kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrState      = &Error{Kind: KindState}
	ErrInternal   = &Error{Kind: KindInternal}
)

// KindOf returns the kind of err, or KindInternal for errors that did not
// come from the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an engine error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func newError(kind Kind, op, messageID string, args map[string]any) *Error {
	return &Error{Kind: kind, Op: op, MessageID: messageID, Args: args}
}

func validationError(op, messageID string, args map[string]any) *Error {
	return newError(KindValidation, op, messageID, args)
}

func permissionError(op string, need Tier) *Error {
	return newError(KindPermission, op, "error.permission", map[string]any{"Tier": need})
}

func notFoundError(op, messageID string, args map[string]any) *Error {
	return newError(KindNotFound, op, messageID, args)
}

func conflictError(op, messageID string, args map[string]any) *Error {
	return newError(KindConflict, op, messageID, args)
}

func stateError(op, messageID string, args map[string]any) *Error {
	return newError(KindState, op, messageID, args)
}

// internalError wraps an unexpected failure. The cause stays available to
// errors.Is but is never part of the rendered message.
func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, MessageID: "error.internal", Err: err}
}
