package rpcpb

import (
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel domain errors, one per spec §7 failure kind. Handlers wrap these
// with call-specific context via github.com/pkg/errors; callers compare
// against the sentinel with errors.Is (or, across the wire, by status code
// via FromStatus below).
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAlreadyExists   = errors.New("already exists")
	ErrOutOfRange      = errors.New("out of range")
	ErrUnavailable     = errors.New("unavailable")
	ErrInternal        = errors.New("internal")
)

// causer is satisfied by github.com/pkg/errors' wrapped error values,
// letting ToStatus see through Wrap/Wrapf to the sentinel underneath.
type causer interface {
	Cause() error
}

// ToStatus maps err to the gRPC status carrying spec §7's matching code, so
// a wrapped domain error can cross the wire and be reconstituted by
// FromStatus on the other side.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	cause := err
	for {
		c, ok := cause.(causer)
		if !ok {
			break
		}
		cause = c.Cause()
	}

	switch cause {
	case ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case ErrUnauthenticated:
		return status.Error(codes.Unauthenticated, err.Error())
	case ErrAlreadyExists:
		return status.Error(codes.AlreadyExists, err.Error())
	case ErrOutOfRange:
		return status.Error(codes.OutOfRange, err.Error())
	case ErrUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	case ErrInternal:
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// FromStatus inverts ToStatus on the client side, turning a gRPC status
// back into one of the sentinel domain errors (with the original message
// preserved) so callers can keep comparing against rpcpb.ErrNotFound etc.
// regardless of whether the failure happened locally or across the wire.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.Unauthenticated:
		sentinel = ErrUnauthenticated
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.OutOfRange:
		sentinel = ErrOutOfRange
	case codes.Unavailable:
		sentinel = ErrUnavailable
	case codes.Internal:
		sentinel = ErrInternal
	case codes.OK:
		return nil
	default:
		return err
	}
	return errors.Wrap(sentinel, st.Message())
}
