package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/anonid/internal/common"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/sasha-s/go-deadlock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.RegistryClient

	mu      deadlock.RWMutex
	receipt string
}

func withReceipt(ctx context.Context, receipt string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.ReceiptHeaderName, receipt)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) receiptInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if r := s.Receipt(); r != "" {
		ctx = withReceipt(ctx, r)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a connection to endpointURL. The connection is
// established lazily on the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.receiptInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewRegistryClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) SetReceipt(receipt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipt = receipt
}

func (s *GRPCClient) Receipt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipt
}

type rpc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

// call encodes req, invokes fn and decodes the answer into resp.
func (s *GRPCClient) call(ctx context.Context, fn rpc, req, resp any) error {
	in, err := pb.Encode(req)
	if err != nil {
		return err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return s.mapError(err)
	}
	return pb.Decode(out, resp)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp pb.PingResponse
	if err := s.call(ctx, s.client.Ping, pb.PingRequest{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Challenge(ctx context.Context, username string) (*pb.ChallengeResponse, error) {
	var resp pb.ChallengeResponse
	if err := s.call(ctx, s.client.Challenge, pb.ChallengeRequest{Username: username}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register submits a proof. On success the returned receipt is remembered
// for later calls.
func (s *GRPCClient) Register(ctx context.Context, req pb.RegisterRequest) (*pb.RegisterResponse, error) {
	var resp pb.RegisterResponse
	if err := s.call(ctx, s.client.Register, req, &resp); err != nil {
		return nil, err
	}
	s.SetReceipt(resp.Receipt)
	return &resp, nil
}

func (s *GRPCClient) Verify(ctx context.Context, req pb.VerifyRequest) (*pb.VerifyResponse, error) {
	var resp pb.VerifyResponse
	if err := s.call(ctx, s.client.Verify, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Lookup(ctx context.Context, req pb.LookupRequest) ([]pb.Registration, error) {
	var resp pb.LookupResponse
	if err := s.call(ctx, s.client.Lookup, req, &resp); err != nil {
		return nil, err
	}
	return resp.Registrations, nil
}

func (s *GRPCClient) Whoami(ctx context.Context) (*pb.Registration, error) {
	if s.Receipt() == "" {
		return nil, ErrUnauthorized
	}
	var resp pb.WhoamiResponse
	if err := s.call(ctx, s.client.Whoami, pb.WhoamiRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Registration, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrRejected
	case codes.AlreadyExists:
		return ErrAlreadyRegistered
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
