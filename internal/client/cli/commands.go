package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/anonid/internal/client/services"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
)

// Mine mines a proof offline with the configured base difficulty and
// algorithm.
func (a *App) Mine(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}
	authAddress, err := a.argOrPrompt(args, 1, "Enter auth address")
	if err != nil {
		return err
	}

	miner, stop := a.miningService()
	proof, err := miner.Mine(ctx, username, authAddress, a.config.BaseDifficulty, a.config.Algorithm)
	stop()
	if err != nil {
		return err
	}

	a.printProof(proof)
	return nil
}

// Register mines the server's challenge for username and submits it. The
// receipt is kept for whoami.
func (a *App) Register(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}
	authAddress, err := a.argOrPrompt(args, 1, "Enter auth address")
	if err != nil {
		return err
	}

	miner, stop := a.miningService()
	resp, proof, err := miner.Register(ctx, username, authAddress)
	stop()
	if err != nil {
		return err
	}

	a.printProof(proof)
	a.printRegistration(resp.Registration)
	a.setUserName(resp.Registration.Username)
	fmt.Fprintln(a.out, "Registered!")
	return nil
}

// Verify asks the registry to check a proof for a merged identity.
func (a *App) Verify(ctx context.Context, args []string) error {
	merged, err := a.argOrPrompt(args, 0, "Enter identity (auth_address:username)")
	if err != nil {
		return err
	}
	digest, err := a.argOrPrompt(args, 1, "Enter digest")
	if err != nil {
		return err
	}
	rawNonce, err := a.argOrPrompt(args, 2, "Enter nonce")
	if err != nil {
		return err
	}
	nonce, err := strconv.ParseUint(rawNonce, 10, 64)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.client.Verify(ctx, pb.VerifyRequest{Identity: merged, Digest: digest, Nonce: nonce})
	if err != nil {
		return err
	}

	if resp.Valid {
		fmt.Fprintf(a.out, "valid: %s owns %s (difficulty %d, %s)\n", resp.AuthAddress, resp.Username, resp.Difficulty, resp.Algorithm)
	} else {
		fmt.Fprintf(a.out, "invalid proof (difficulty %d, %s)\n", resp.Difficulty, resp.Algorithm)
	}
	return nil
}

// Lookup prints registrations by username, or by auth address with -a.
func (a *App) Lookup(ctx context.Context, args []string) error {
	var req pb.LookupRequest
	if len(args) > 0 && args[0] == "-a" {
		addr, err := a.argOrPrompt(args, 1, "Enter auth address")
		if err != nil {
			return err
		}
		req.AuthAddress = addr
	} else {
		username, err := a.argOrPrompt(args, 0, "Enter username")
		if err != nil {
			return err
		}
		req.Username = username
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	regs, err := a.client.Lookup(ctx, req)
	if err != nil {
		return err
	}
	for _, r := range regs {
		a.printRegistration(r)
	}
	return nil
}

// Whoami resolves the receipt kept from the last registration.
func (a *App) Whoami(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	r, err := a.client.Whoami(ctx)
	if err != nil {
		return err
	}
	a.printRegistration(*r)
	return nil
}

func (a *App) printProof(p *services.Proof) {
	fmt.Fprintf(a.out, "identity:   %s\n", p.Identity())
	fmt.Fprintf(a.out, "difficulty: %d (base %d, target %q, %s)\n", p.Difficulty, p.BaseDifficulty, p.Target, p.Algorithm)
	fmt.Fprintf(a.out, "digest:     %s\n", p.Digest)
	fmt.Fprintf(a.out, "nonce:      %d\n", p.Nonce)
	fmt.Fprintf(a.out, "elapsed:    %s\n", p.Elapsed.Round(time.Millisecond))
}

func (a *App) printRegistration(r pb.Registration) {
	fmt.Fprintf(a.out, "%s  %s  %s  nonce=%d  difficulty=%d  %s  %s\n",
		r.ID, r.Username, r.AuthAddress, r.Nonce, r.Difficulty, r.Algorithm, r.CreatedAt.Format(time.RFC3339))
}
