package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/anonid/internal/client/client"
	"github.com/dmitrijs2005/anonid/internal/identity"
	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/dmitrijs2005/anonid/internal/pow"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
)

// ErrEmptyInput is returned when the username or the address is blank.
var ErrEmptyInput = errors.New("username and auth address are required")

// Proof is a mined (digest, nonce) pair together with the parameters it
// was mined for.
type Proof struct {
	Username       string
	AuthAddress    string
	BaseDifficulty uint
	Difficulty     uint
	Target         string
	Algorithm      string
	Digest         string
	Nonce          uint64
	Elapsed        time.Duration
}

// Identity returns the merged wire form the proof was computed over.
func (p *Proof) Identity() string {
	return identity.New(p.Username, p.AuthAddress).Merge()
}

// MineOptions tunes local mining. RequestTimeout bounds each server round
// trip of Register; Timeout bounds the mining itself.
type MineOptions struct {
	Workers        int
	Timeout        time.Duration
	RequestTimeout time.Duration
	Progress       func(attempts uint64)
}

type MiningService struct {
	client client.Client
	logger logging.Logger
	opts   MineOptions
}

func NewMiningService(c client.Client, logger logging.Logger, opts MineOptions) *MiningService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &MiningService{client: c, logger: logger.With("module", "mining_service"), opts: opts}
}

// Mine searches a proof locally for the given base difficulty and algorithm
// name. No server round trip is made.
func (s *MiningService) Mine(ctx context.Context, username, authAddress string, base uint, algorithm string) (*Proof, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(authAddress) == "" {
		return nil, ErrEmptyInput
	}

	alg, err := pow.Lookup(algorithm)
	if err != nil {
		return nil, err
	}

	p := pow.New(identity.New(username, authAddress), base, alg)
	if !p.Satisfiable() {
		return nil, fmt.Errorf("difficulty %d for %q: %w", p.Difficulty(), username, pow.ErrUnsatisfiable)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	opts := []pow.Option{pow.WithWorkers(s.opts.Workers)}
	if s.opts.Progress != nil {
		opts = append(opts, pow.WithProgress(s.opts.Progress))
	}

	s.logger.Debug(ctx, "mining started", "username", username, "difficulty", p.Difficulty(), "algorithm", alg.Name(), "workers", s.opts.Workers)

	start := time.Now()
	res, err := p.Compute(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mining: %w", err)
	}
	elapsed := time.Since(start)

	s.logger.Debug(ctx, "mining finished", "username", username, "nonce", res.Nonce, "elapsed", elapsed)

	return &Proof{
		Username:       username,
		AuthAddress:    authAddress,
		BaseDifficulty: base,
		Difficulty:     p.Difficulty(),
		Target:         p.Target(),
		Algorithm:      alg.Name(),
		Digest:         res.Digest,
		Nonce:          res.Nonce,
		Elapsed:        elapsed,
	}, nil
}

// Register asks the server for the challenge of username, mines it and
// submits the proof. The client keeps the returned receipt.
func (s *MiningService) Register(ctx context.Context, username, authAddress string) (*pb.RegisterResponse, *Proof, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(authAddress) == "" {
		return nil, nil, ErrEmptyInput
	}

	rctx, cancel := s.requestContext(ctx)
	ch, err := s.client.Challenge(rctx, username)
	cancel()
	if err != nil {
		return nil, nil, fmt.Errorf("challenge: %w", err)
	}

	proof, err := s.Mine(ctx, username, authAddress, ch.BaseDifficulty, ch.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	if proof.Difficulty != ch.Difficulty {
		s.logger.Warn(ctx, "difficulty differs from challenge", "local", proof.Difficulty, "server", ch.Difficulty)
	}

	rctx, cancel = s.requestContext(ctx)
	defer cancel()

	resp, err := s.client.Register(rctx, pb.RegisterRequest{
		Username:    username,
		AuthAddress: authAddress,
		Digest:      proof.Digest,
		Nonce:       proof.Nonce,
	})
	if err != nil {
		return nil, proof, fmt.Errorf("register: %w", err)
	}

	return resp, proof, nil
}

func (s *MiningService) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// VerifyLocal checks a proof without contacting the server.
func VerifyLocal(username, authAddress string, base uint, algorithm, digest string, nonce uint64) (bool, error) {
	alg, err := pow.Lookup(algorithm)
	if err != nil {
		return false, err
	}
	return pow.New(identity.New(username, authAddress), base, alg).Verify(digest, nonce), nil
}
