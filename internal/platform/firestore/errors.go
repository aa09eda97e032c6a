package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies a failed Firestore call for the service layer.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindConflict
	KindUnavailable
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error carries the store operation and its classification. It satisfies repositories.RepositoryError.
type Error struct {
	Op   string
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *Error) IsNotFound() bool    { return e != nil && e.Kind == KindNotFound }
func (e *Error) IsConflict() bool    { return e != nil && e.Kind == KindConflict }
func (e *Error) IsUnavailable() bool { return e != nil && e.Kind == KindUnavailable }

// IsInvalid reports a request Firestore refused outright, such as a missing index or an empty document id.
func (e *Error) IsInvalid() bool { return e != nil && e.Kind == KindInvalid }

// errInvalidRequest marks failures raised locally before any RPC is made.
var errInvalidRequest = errors.New("firestore: invalid request")

func classify(err error) ErrorKind {
	if errors.Is(err, errInvalidRequest) {
		return KindInvalid
	}
	switch status.Code(err) {
	case codes.NotFound:
		return KindNotFound
	case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted, codes.OutOfRange:
		return KindConflict
	case codes.InvalidArgument:
		return KindInvalid
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.DeadlineExceeded,
		codes.PermissionDenied, codes.Unauthenticated:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// WrapError tags err with op and a kind. Cancellation and deadline errors are returned as the plain context errors.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return context.DeadlineExceeded
	}

	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op == "" {
			existing.Op = op
		}
		return existing
	}
	return &Error{Op: op, Kind: classify(err), err: err}
}
