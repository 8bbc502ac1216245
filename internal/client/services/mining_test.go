package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/anonid/internal/client/client"
	"github.com/dmitrijs2005/anonid/internal/identity"
	"github.com/dmitrijs2005/anonid/internal/pow"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves a fixed challenge and checks submitted proofs with pow.
type fakeClient struct {
	client.Client

	base         uint
	algorithm    string
	challengeErr error
	registerErr  error

	submitted *pb.RegisterRequest
	receipt   string

	challengeDeadline time.Time
	registerDeadline  time.Time
}

func (f *fakeClient) Challenge(ctx context.Context, username string) (*pb.ChallengeResponse, error) {
	f.challengeDeadline, _ = ctx.Deadline()
	if f.challengeErr != nil {
		return nil, f.challengeErr
	}
	alg, err := pow.Lookup(f.algorithm)
	if err != nil {
		return nil, err
	}
	p := pow.New(identity.New(username, "x"), f.base, alg)
	return &pb.ChallengeResponse{
		Username:       username,
		BaseDifficulty: f.base,
		Difficulty:     p.Difficulty(),
		Target:         p.Target(),
		Algorithm:      alg.Name(),
	}, nil
}

func (f *fakeClient) Register(ctx context.Context, req pb.RegisterRequest) (*pb.RegisterResponse, error) {
	f.registerDeadline, _ = ctx.Deadline()
	f.submitted = &req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	ok, err := VerifyLocal(req.Username, req.AuthAddress, f.base, f.algorithm, req.Digest, req.Nonce)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, client.ErrRejected
	}
	f.receipt = "receipt-" + req.Username
	return &pb.RegisterResponse{
		Registration: pb.Registration{Username: req.Username, AuthAddress: req.AuthAddress, Digest: req.Digest, Nonce: req.Nonce},
		Receipt:      f.receipt,
	}, nil
}

func TestMine_FindsVerifiableProof(t *testing.T) {
	s := NewMiningService(nil, nil, MineOptions{Workers: 1})

	proof, err := s.Mine(context.Background(), "alice", "addr", 4, "sha256")
	require.NoError(t, err)

	assert.Equal(t, uint(2), proof.Difficulty)
	assert.Equal(t, "00", proof.Target)
	assert.Equal(t, "sha256", proof.Algorithm)
	assert.Equal(t, "addr:alice", proof.Identity())
	assert.True(t, pow.MeetsDifficulty(proof.Digest, proof.Difficulty))

	ok, err := VerifyLocal("alice", "addr", 4, "sha256", proof.Digest, proof.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMine_ParallelWithProgress(t *testing.T) {
	var attempts atomic.Uint64
	s := NewMiningService(nil, nil, MineOptions{Workers: 4, Progress: func(n uint64) { attempts.Add(n) }})

	proof, err := s.Mine(context.Background(), "al", "addr", 4, "blake2b-256")
	require.NoError(t, err)
	assert.Equal(t, uint(4), proof.Difficulty)
	assert.Equal(t, "blake2b-256", proof.Algorithm)
	assert.NotZero(t, attempts.Load())
}

func TestMine_Errors(t *testing.T) {
	s := NewMiningService(nil, nil, MineOptions{Workers: 1})
	ctx := context.Background()

	_, err := s.Mine(ctx, " ", "addr", 4, "sha256")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.Mine(ctx, "alice", "", 4, "sha256")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.Mine(ctx, "alice", "addr", 4, "md5")
	assert.ErrorIs(t, err, pow.ErrUnknownAlgorithm)

	_, err = s.Mine(ctx, "a", "addr", 100, "sha256")
	assert.ErrorIs(t, err, pow.ErrUnsatisfiable)
}

func TestMine_Timeout(t *testing.T) {
	s := NewMiningService(nil, nil, MineOptions{Workers: 2, Timeout: 30 * time.Millisecond})

	_, err := s.Mine(context.Background(), "a", "addr", 40, "sha256")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegister_MinesChallengeAndSubmits(t *testing.T) {
	fc := &fakeClient{base: 4, algorithm: "sha3-256"}
	s := NewMiningService(fc, nil, MineOptions{Workers: 2})

	resp, proof, err := s.Register(context.Background(), "alice", "addr")
	require.NoError(t, err)

	require.NotNil(t, fc.submitted)
	assert.Equal(t, proof.Nonce, fc.submitted.Nonce)
	assert.Equal(t, proof.Digest, fc.submitted.Digest)
	assert.Equal(t, "sha3-256", proof.Algorithm)
	assert.Equal(t, "receipt-alice", resp.Receipt)
	assert.Equal(t, "alice", resp.Registration.Username)
}

func TestRegister_PropagatesErrors(t *testing.T) {
	ctx := context.Background()

	fc := &fakeClient{challengeErr: client.ErrUnavailable}
	_, _, err := NewMiningService(fc, nil, MineOptions{}).Register(ctx, "alice", "addr")
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Nil(t, fc.submitted)

	fc = &fakeClient{base: 4, algorithm: "sha256", registerErr: client.ErrAlreadyRegistered}
	_, proof, err := NewMiningService(fc, nil, MineOptions{}).Register(ctx, "alice", "addr")
	assert.ErrorIs(t, err, client.ErrAlreadyRegistered)
	assert.NotNil(t, proof)

	fc = &fakeClient{base: 4, algorithm: "sha256"}
	_, _, err = NewMiningService(fc, nil, MineOptions{}).Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRegister_CanceledWhileMining(t *testing.T) {
	fc := &fakeClient{base: 40, algorithm: "sha256"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMiningService(fc, nil, MineOptions{Workers: 1}).Register(ctx, "a", "addr")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, fc.submitted)
}

func TestVerifyLocal_UnknownAlgorithm(t *testing.T) {
	_, err := VerifyLocal("alice", "addr", 4, "md5", "00", 0)
	assert.ErrorIs(t, err, pow.ErrUnknownAlgorithm)
}

func TestRegister_BoundsRoundTripsNotMining(t *testing.T) {
	fc := &fakeClient{base: 4, algorithm: "sha256"}
	s := NewMiningService(fc, nil, MineOptions{Workers: 1, RequestTimeout: time.Minute})

	start := time.Now()
	_, _, err := s.Register(context.Background(), "alice", "addr")
	require.NoError(t, err)

	assert.WithinDuration(t, start.Add(time.Minute), fc.challengeDeadline, 10*time.Second)
	assert.True(t, fc.registerDeadline.After(fc.challengeDeadline) || fc.registerDeadline.Equal(fc.challengeDeadline))
	assert.WithinDuration(t, time.Now().Add(time.Minute), fc.registerDeadline, 10*time.Second)

	fc = &fakeClient{base: 4, algorithm: "sha256"}
	_, _, err = NewMiningService(fc, nil, MineOptions{Workers: 1}).Register(context.Background(), "alice", "addr")
	require.NoError(t, err)
	assert.True(t, fc.challengeDeadline.IsZero())
	assert.True(t, fc.registerDeadline.IsZero())
}

func TestRegister_ExpiredRequestTimeoutDoesNotStopMining(t *testing.T) {
	fc := &fakeClient{base: 4, algorithm: "sha256"}
	s := NewMiningService(fc, nil, MineOptions{Workers: 1, RequestTimeout: time.Nanosecond})

	// The fake ignores ctx, so only mining could observe the expired bound.
	_, proof, err := s.Register(context.Background(), "alice", "addr")
	require.NoError(t, err)
	assert.NotNil(t, proof)
}
