package client

import (
	"context"

	pb "github.com/dmitrijs2005/anonid/internal/proto"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Challenge(ctx context.Context, username string) (*pb.ChallengeResponse, error)
	Register(ctx context.Context, req pb.RegisterRequest) (*pb.RegisterResponse, error)
	Verify(ctx context.Context, req pb.VerifyRequest) (*pb.VerifyResponse, error)
	Lookup(ctx context.Context, req pb.LookupRequest) ([]pb.Registration, error)
	Whoami(ctx context.Context) (*pb.Registration, error)
	SetReceipt(receipt string)
	Receipt() string
}
