// Package pow implements the proof of work that gates identity registration.
//
// A proof is a nonce such that Algorithm.Calculate(record.Merge(), nonce)
// starts with a number of zero hex digits derived from a base difficulty and
// the username's length (see AdjustDifficulty). Finding it is brute force;
// checking it costs one hash.
package pow

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/anonid/internal/identity"
	"golang.org/x/sync/errgroup"
)

// Result is a mined (digest, nonce) pair.
type Result struct {
	Digest string
	Nonce  uint64
}

// ProofOfWork binds an identity record to a base difficulty and a hash
// algorithm. It keeps no state between calls: the adjusted difficulty and the
// target are recomputed every time, so Compute and Verify always agree.
type ProofOfWork struct {
	record         identity.Record
	baseDifficulty uint
	algorithm      Algorithm
}

// New returns a ProofOfWork for record. A nil algorithm selects SHA256.
func New(record identity.Record, baseDifficulty uint, algorithm Algorithm) *ProofOfWork {
	if algorithm == nil {
		algorithm = SHA256
	}
	return &ProofOfWork{record: record, baseDifficulty: baseDifficulty, algorithm: algorithm}
}

func (p *ProofOfWork) Record() identity.Record { return p.record }

func (p *ProofOfWork) BaseDifficulty() uint { return p.baseDifficulty }

func (p *ProofOfWork) Algorithm() Algorithm { return p.algorithm }

// Difficulty is the number of leading zero hex digits this record requires.
func (p *ProofOfWork) Difficulty() uint {
	return AdjustDifficulty(p.record.UsernameLength(), p.baseDifficulty)
}

// Target is the zero prefix every valid digest starts with.
func (p *ProofOfWork) Target() string {
	return Target(p.Difficulty())
}

// Satisfiable reports whether any digest of the algorithm can meet the target.
func (p *ProofOfWork) Satisfiable() bool {
	return p.Difficulty() <= uint(p.algorithm.DigestHexLen())
}

// Compute searches for a nonce meeting the target.
//
// With a single worker (the default) nonces are tried from 0 upwards, so the
// smallest qualifying nonce is returned. With WithWorkers(n), worker i tries
// i, i+n, i+2n, ... and the first hit from any worker wins; that nonce is
// valid but not necessarily the smallest.
//
// The search stops early when ctx is done, returning ctx.Err(). A target that
// no digest can meet yields ErrUnsatisfiable without searching.
func (p *ProofOfWork) Compute(ctx context.Context, opts ...Option) (Result, error) {
	o := newOptions(opts)

	difficulty := p.Difficulty()
	if !p.Satisfiable() {
		return Result{}, fmt.Errorf("%w: %d > %d", ErrUnsatisfiable, difficulty, p.algorithm.DigestHexLen())
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	merged := p.record.Merge()
	if difficulty == 0 {
		return Result{Digest: p.algorithm.Calculate(merged, 0), Nonce: 0}, nil
	}

	if o.workers <= 1 {
		return p.search(ctx, merged, difficulty, 0, 1, o)
	}
	return p.searchParallel(ctx, merged, difficulty, o)
}

// Verify recomputes the digest for nonce and accepts it only when it meets the
// target and equals the supplied digest. A mismatch is an ordinary false.
func (p *ProofOfWork) Verify(digest string, nonce uint64) bool {
	candidate := p.algorithm.Calculate(p.record.Merge(), nonce)
	if !MeetsDifficulty(candidate, p.Difficulty()) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

func (p *ProofOfWork) search(ctx context.Context, merged string, difficulty uint, start, step uint64, o *options) (Result, error) {
	var attempts uint64
	for nonce := start; ; {
		digest := p.algorithm.Calculate(merged, nonce)
		attempts++
		if MeetsDifficulty(digest, difficulty) {
			o.report(attempts)
			return Result{Digest: digest, Nonce: nonce}, nil
		}

		if attempts == o.checkInterval {
			o.report(attempts)
			attempts = 0
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		next := nonce + step
		if next < nonce {
			o.report(attempts)
			return Result{}, ErrNonceSpaceExhausted
		}
		nonce = next
	}
}

func (p *ProofOfWork) searchParallel(ctx context.Context, merged string, difficulty uint, o *options) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	found := make(chan Result, 1)
	step := uint64(o.workers)

	for i := 0; i < o.workers; i++ {
		start := uint64(i)
		g.Go(func() error {
			r, err := p.search(gctx, merged, difficulty, start, step, o)
			if err != nil {
				return err
			}
			select {
			case found <- r:
				cancel()
			default:
			}
			return nil
		})
	}

	err := g.Wait()
	select {
	case r := <-found:
		return r, nil
	default:
	}
	if err != nil {
		return Result{}, err
	}
	return Result{}, ErrNonceSpaceExhausted
}
