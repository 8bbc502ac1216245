package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/anonid/internal/common"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidProof):
		return status.Error(codes.PermissionDenied, "proof of work rejected")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username already registered")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func decode(in *structpb.Struct, msg any) error {
	if err := pb.Decode(in, msg); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(msg any) (*structpb.Struct, error) {
	out, err := pb.Encode(msg)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func toMessage(r *models.Registration) pb.Registration {
	return pb.Registration{
		ID:             r.ID,
		Username:       r.Username,
		AuthAddress:    r.AuthAddress,
		Digest:         r.Digest,
		Nonce:          r.Nonce,
		BaseDifficulty: r.BaseDifficulty,
		Difficulty:     r.Difficulty,
		Algorithm:      r.Algorithm,
		CreatedAt:      r.CreatedAt,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return encode(pb.PingResponse{Status: "OK"})
}

func (s *GRPCServer) Challenge(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.ChallengeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	c, err := s.registry.Challenge(req.Username)
	if err != nil {
		return nil, toStatus(err)
	}

	return encode(pb.ChallengeResponse{
		Username:       c.Username,
		BaseDifficulty: c.BaseDifficulty,
		Difficulty:     c.Difficulty,
		Target:         c.Target,
		Algorithm:      c.Algorithm,
	})
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.RegisterRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	result, err := s.registry.Register(ctx, req.Username, req.AuthAddress, req.Digest, req.Nonce)
	if err != nil {
		s.logger.Info(ctx, "Registration refused", "username", req.Username, "error", err.Error())
		return nil, toStatus(err)
	}

	return encode(pb.RegisterResponse{
		Registration: toMessage(result.Registration),
		Receipt:      result.Receipt,
	})
}

func (s *GRPCServer) Verify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.VerifyRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	v, err := s.registry.Verify(ctx, req.Identity, req.Digest, req.Nonce)
	if err != nil {
		return nil, toStatus(err)
	}

	return encode(pb.VerifyResponse{
		Valid:       v.Valid,
		Username:    v.Username,
		AuthAddress: v.AuthAddress,
		Difficulty:  v.Difficulty,
		Algorithm:   v.Algorithm,
	})
}

func (s *GRPCServer) Lookup(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.LookupRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	var regs []*models.Registration
	switch {
	case req.Username != "":
		r, err := s.registry.Lookup(ctx, req.Username)
		if err != nil {
			return nil, toStatus(err)
		}
		regs = []*models.Registration{r}
	case req.AuthAddress != "":
		found, err := s.registry.LookupByAuthAddress(ctx, req.AuthAddress)
		if err != nil {
			return nil, toStatus(err)
		}
		regs = found
	default:
		return nil, status.Error(codes.InvalidArgument, "username or auth_address is required")
	}

	resp := pb.LookupResponse{Registrations: make([]pb.Registration, 0, len(regs))}
	for _, r := range regs {
		resp.Registrations = append(resp.Registrations, toMessage(r))
	}
	return encode(resp)
}

func (s *GRPCServer) Whoami(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	receipt, ok := receiptFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing receipt")
	}

	r, err := s.registry.Whoami(ctx, receipt)
	if err != nil {
		return nil, toStatus(err)
	}

	return encode(pb.WhoamiResponse{Registration: toMessage(r)})
}
