// Package dialogerr defines the typed error kinds shared by every layer of
// the storage engine: library code returns structured errors with enough
// context for a caller (CLI, server, UI) to render or retry. Most library
// packages do not log at all; branch writes a logrus audit trail of
// commits, resets, advances and merged pulls, blockstore logs a debug line
// when Flush writes its pending delta, and internal/metrics logs a metrics
// server that stops with an error.
package dialogerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way a caller needs to branch on it:
// retry, surface to the user, or treat as a fatal corruption.
type Kind int

const (
	// Unknown is the zero value; it should never be constructed directly.
	Unknown Kind = iota
	// NotFound marks a missing entity, branch, remote site, or object key.
	NotFound
	// CorruptBlock marks decoded bytes that violate the block encoding.
	CorruptBlock
	// InvalidKey marks a malformed composite or part key.
	InvalidKey
	// InvalidValue marks a malformed or out-of-range value payload.
	InvalidValue
	// InvalidReference marks a dangling or malformed content hash reference.
	InvalidReference
	// CasConflict marks a failed compare-and-swap precondition.
	CasConflict
	// Unauthorized marks a capability that was never granted.
	Unauthorized
	// AuthorizationFailed marks a capability chain that failed to validate.
	AuthorizationFailed
	// MissingKeyMaterial marks an authority that cannot produce raw key bytes.
	MissingKeyMaterial
	// IoError marks a backend or network failure.
	IoError
	// RemoteConnectionError marks network-unreachable/DNS/TLS failures.
	RemoteConnectionError
	// InvalidState marks an internal invariant violation.
	InvalidState
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case CorruptBlock:
		return "CorruptBlock"
	case InvalidKey:
		return "InvalidKey"
	case InvalidValue:
		return "InvalidValue"
	case InvalidReference:
		return "InvalidReference"
	case CasConflict:
		return "CasConflict"
	case Unauthorized:
		return "Unauthorized"
	case AuthorizationFailed:
		return "AuthorizationFailed"
	case MissingKeyMaterial:
		return "MissingKeyMaterial"
	case IoError:
		return "IoError"
	case RemoteConnectionError:
		return "RemoteConnectionError"
	case InvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

// Error is the structured error returned at every core API boundary.
type Error struct {
	Kind    Kind
	Op      string // operation name, e.g. "ResolveBranch", "UpdateRevision"
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, dialogerr.NotFound-shaped-sentinel) work by kind:
// callers compare with Is(err, dialogerr.NotFound) rather than a sentinel
// value, since a single Kind maps to many possible messages/ops.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if te.Kind == Unknown {
		return false
	}
	return e.Kind == te.Kind
}

// New constructs a fresh *Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches an operation name and kind to an existing error. If err is
// already a *Error, its kind is preserved unless kind is non-zero.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && kind == Unknown {
		kind = existing.Kind
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// OfKind returns a sentinel comparable with errors.Is for the given kind.
// Useful for table-driven tests: errors.Is(err, dialogerr.OfKind(dialogerr.NotFound)).
func OfKind(kind Kind) error {
	return &Error{Kind: kind}
}

// ExitCode maps a Kind to the operational CLI exit codes from spec.md §6.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !errors.As(err, &e) {
		return 5
	}
	switch e.Kind {
	case NotFound:
		return 1
	case CasConflict:
		return 2
	case Unauthorized, AuthorizationFailed, MissingKeyMaterial:
		return 3
	case IoError, RemoteConnectionError:
		return 4
	default:
		return 5
	}
}
