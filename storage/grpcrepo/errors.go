package grpcrepo

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/entropool/entropool/storage"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.AlreadyExists:
		return storage.ErrAlreadyExists
	case codes.FailedPrecondition:
		// Server uses FailedPrecondition both for already-consumed records
		// and for its own misconfiguration; only the former maps.
		if st.Message() == storage.ErrAlreadyConsumed.Error() {
			return storage.ErrAlreadyConsumed
		}
		return err
	case codes.InvalidArgument:
		return storage.ErrInvalidRecord
	default:
		// Best-effort: if the server sent a known storage error message, preserve it.
		switch st.Message() {
		case storage.ErrNotFound.Error():
			return storage.ErrNotFound
		case storage.ErrAlreadyExists.Error():
			return storage.ErrAlreadyExists
		case storage.ErrAlreadyConsumed.Error():
			return storage.ErrAlreadyConsumed
		case storage.ErrInvalidRecord.Error():
			return storage.ErrInvalidRecord
		default:
			return err
		}
	}
}
