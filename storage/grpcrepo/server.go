package grpcrepo

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/entropool/entropool/storage"
)

// Server exposes a storage.Repository over the PoolRepository gRPC service.
type Server struct {
	UnimplementedRepositoryServer
	Repo storage.Repository
}

func (s *Server) Create(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if s == nil || s.Repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing repository")
	}
	// Decode validates the envelope; the repository re-validates on Create.
	rec, err := storage.DecodeRecord(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return nil, mapErr(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing repository")
	}
	rec, err := s.Repo.Get(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	enc, err := storage.EncodeRecord(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, "record envelope encoding failed")
	}
	return wrapperspb.Bytes(enc), nil
}

func (s *Server) MarkConsumed(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if s == nil || s.Repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing repository")
	}
	var req consumeRequest
	if err := wireDecMode.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed consume request")
	}
	if req.ID == "" || req.At.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "consume request requires id and timestamp")
	}
	if err := s.Repo.MarkConsumed(ctx, req.ID, req.At); err != nil {
		return nil, mapErr(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) List(ctx context.Context, in *wrapperspb.BoolValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing repository")
	}
	recs, err := s.Repo.List(ctx, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	enc, err := storage.EncodeRecordList(recs)
	if err != nil {
		return nil, status.Error(codes.Internal, "listing encoding failed")
	}
	return wrapperspb.Bytes(enc), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case storage.IsNotFound(err):
		return status.Error(codes.NotFound, storage.ErrNotFound.Error())
	case storage.IsAlreadyExists(err):
		return status.Error(codes.AlreadyExists, storage.ErrAlreadyExists.Error())
	case storage.IsAlreadyConsumed(err):
		return status.Error(codes.FailedPrecondition, storage.ErrAlreadyConsumed.Error())
	case storage.IsInvalidRecord(err):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
