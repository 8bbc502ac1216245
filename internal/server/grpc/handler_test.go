package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/identity"
	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/dmitrijs2005/anonid/internal/pow"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/dmitrijs2005/anonid/internal/server/config"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/anonid/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// ---- fakes ----

type fakeRegistry struct {
	challenge  *services.Challenge
	registered *services.Registered
	verified   *services.Verification
	reg        *models.Registration
	regs       []*models.Registration
	err        error

	gotNonce   uint64
	gotReceipt string
}

func (f *fakeRegistry) Challenge(username string) (*services.Challenge, error) {
	return f.challenge, f.err
}

func (f *fakeRegistry) Register(ctx context.Context, username, authAddress, digest string, nonce uint64) (*services.Registered, error) {
	f.gotNonce = nonce
	return f.registered, f.err
}

func (f *fakeRegistry) Verify(ctx context.Context, merged, digest string, nonce uint64) (*services.Verification, error) {
	f.gotNonce = nonce
	return f.verified, f.err
}

func (f *fakeRegistry) Lookup(ctx context.Context, username string) (*models.Registration, error) {
	return f.reg, f.err
}

func (f *fakeRegistry) LookupByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error) {
	return f.regs, f.err
}

func (f *fakeRegistry) Whoami(ctx context.Context, receipt string) (*models.Registration, error) {
	f.gotReceipt = receipt
	return f.reg, f.err
}

func mustEncode(t *testing.T, msg any) *structpb.Struct {
	t.Helper()
	s, err := pb.Encode(msg)
	require.NoError(t, err)
	return s
}

// ---- handler tests ----

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: empty", common.ErrorValidation), codes.InvalidArgument},
		{common.ErrInvalidProof, codes.PermissionDenied},
		{common.ErrorAlreadyExists, codes.AlreadyExists},
		{common.ErrorNotFound, codes.NotFound},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(toStatus(tt.err)), tt.err.Error())
	}
}

func TestPing(t *testing.T) {
	s := newTestServer("secret")
	out, err := s.Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "OK", out.Fields["status"].GetStringValue())
}

func TestChallenge_Handler(t *testing.T) {
	f := &fakeRegistry{challenge: &services.Challenge{Username: "alice", BaseDifficulty: 10, Difficulty: 5, Target: "00000", Algorithm: "sha256"}}
	s := NewGRPCServer("", logging.Nop{}, f, "secret")

	out, err := s.Challenge(context.Background(), mustEncode(t, pb.ChallengeRequest{Username: "alice"}))
	require.NoError(t, err)

	var resp pb.ChallengeResponse
	require.NoError(t, pb.Decode(out, &resp))
	assert.Equal(t, pb.ChallengeResponse{Username: "alice", BaseDifficulty: 10, Difficulty: 5, Target: "00000", Algorithm: "sha256"}, resp)
}

func TestRegister_Handler(t *testing.T) {
	reg := &models.Registration{ID: "id", Username: "alice", Nonce: 1 << 60}
	f := &fakeRegistry{registered: &services.Registered{Registration: reg, Receipt: "r"}}
	s := NewGRPCServer("", logging.Nop{}, f, "secret")

	out, err := s.Register(context.Background(), mustEncode(t, pb.RegisterRequest{Username: "alice", AuthAddress: "addr", Digest: "00", Nonce: 1 << 60}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60), f.gotNonce)

	var resp pb.RegisterResponse
	require.NoError(t, pb.Decode(out, &resp))
	assert.Equal(t, "r", resp.Receipt)
	assert.Equal(t, uint64(1<<60), resp.Registration.Nonce)
}

func TestRegister_HandlerErrors(t *testing.T) {
	s := NewGRPCServer("", logging.Nop{}, &fakeRegistry{err: common.ErrorAlreadyExists}, "secret")
	_, err := s.Register(context.Background(), mustEncode(t, pb.RegisterRequest{Username: "alice"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"nonce": 1.5})
	require.NoError(t, err)
	_, err = s.Register(context.Background(), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLookup_Handler(t *testing.T) {
	f := &fakeRegistry{
		reg:  &models.Registration{Username: "alice"},
		regs: []*models.Registration{{Username: "alice"}, {Username: "bob"}},
	}
	s := NewGRPCServer("", logging.Nop{}, f, "secret")

	out, err := s.Lookup(context.Background(), mustEncode(t, pb.LookupRequest{Username: "alice"}))
	require.NoError(t, err)
	var resp pb.LookupResponse
	require.NoError(t, pb.Decode(out, &resp))
	require.Len(t, resp.Registrations, 1)

	out, err = s.Lookup(context.Background(), mustEncode(t, pb.LookupRequest{AuthAddress: "addr"}))
	require.NoError(t, err)
	require.NoError(t, pb.Decode(out, &resp))
	assert.Len(t, resp.Registrations, 2)

	_, err = s.Lookup(context.Background(), mustEncode(t, pb.LookupRequest{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWhoami_HandlerNeedsReceiptInContext(t *testing.T) {
	s := newTestServer("secret")
	_, err := s.Whoami(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

// ---- end to end over bufconn ----

func startRegistry(t *testing.T) pb.RegistryClient {
	t.Helper()
	cfg := &config.Config{
		SecretKey:               "secret",
		ReceiptValidityDuration: time.Hour,
		BaseDifficulty:          4,
		Algorithm:               "sha256",
		MaxUsernameLength:       32,
	}
	svc, err := services.NewRegistrationService(nil, repomanager.NewMemoryRepositoryManager(), nil, nil, logging.Nop{}, cfg)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewGRPCServer("", logging.Nop{}, svc, cfg.SecretKey)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return pb.NewRegistryClient(conn)
}

func TestEndToEnd_RegisterAndWhoami(t *testing.T) {
	c := startRegistry(t)
	ctx := context.Background()

	out, err := c.Challenge(ctx, mustEncode(t, pb.ChallengeRequest{Username: "alice"}))
	require.NoError(t, err)
	var ch pb.ChallengeResponse
	require.NoError(t, pb.Decode(out, &ch))
	assert.Equal(t, uint(2), ch.Difficulty)

	alg, err := pow.Lookup(ch.Algorithm)
	require.NoError(t, err)
	proof, err := pow.New(identity.New("alice", "addr"), ch.BaseDifficulty, alg).Compute(ctx)
	require.NoError(t, err)

	out, err = c.Register(ctx, mustEncode(t, pb.RegisterRequest{Username: "alice", AuthAddress: "addr", Digest: proof.Digest, Nonce: proof.Nonce}))
	require.NoError(t, err)
	var reg pb.RegisterResponse
	require.NoError(t, pb.Decode(out, &reg))
	require.NotEmpty(t, reg.Receipt)

	_, err = c.Register(ctx, mustEncode(t, pb.RegisterRequest{Username: "alice", AuthAddress: "addr", Digest: proof.Digest, Nonce: proof.Nonce}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.Whoami(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	authed := metadata.AppendToOutgoingContext(ctx, common.ReceiptHeaderName, reg.Receipt)
	out, err = c.Whoami(authed, &structpb.Struct{})
	require.NoError(t, err)
	var me pb.WhoamiResponse
	require.NoError(t, pb.Decode(out, &me))
	assert.Equal(t, "alice", me.Registration.Username)
	assert.Equal(t, proof.Nonce, me.Registration.Nonce)

	out, err = c.Verify(ctx, mustEncode(t, pb.VerifyRequest{Identity: "addr:alice", Digest: proof.Digest, Nonce: proof.Nonce}))
	require.NoError(t, err)
	var v pb.VerifyResponse
	require.NoError(t, pb.Decode(out, &v))
	assert.True(t, v.Valid)

	_, err = c.Lookup(ctx, mustEncode(t, pb.LookupRequest{Username: "bob"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
