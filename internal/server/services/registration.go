// Package services contains the registry's business logic. RegistrationService
// checks identity proofs, records accepted usernames and issues receipts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/dbx"
	"github.com/dmitrijs2005/anonid/internal/identity"
	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/dmitrijs2005/anonid/internal/pow"
	"github.com/dmitrijs2005/anonid/internal/server/archive"
	"github.com/dmitrijs2005/anonid/internal/server/auth"
	"github.com/dmitrijs2005/anonid/internal/server/config"
	"github.com/dmitrijs2005/anonid/internal/server/metrics"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Challenge tells a client what proof a username needs.
type Challenge struct {
	Username       string
	BaseDifficulty uint
	Difficulty     uint
	Target         string
	Algorithm      string
}

// Registered is the outcome of a successful Register.
type Registered struct {
	Registration *models.Registration
	Receipt      string
}

// Verification is the outcome of a stand-alone proof check.
type Verification struct {
	Valid       bool
	Username    string
	AuthAddress string
	Difficulty  uint
	Algorithm   string
}

// RegistrationService checks proofs against the server's base difficulty
// and algorithm. db may be nil when the repository manager keeps its data
// in memory.
type RegistrationService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	archive           archive.Archive
	metrics           *metrics.Metrics
	logger            logging.Logger
	algorithm         pow.Algorithm
	baseDifficulty    uint
	maxUsernameLength uint
	secretKey         []byte
	receiptValidity   time.Duration
}

// NewRegistrationService builds the service from server config. It fails
// when the configured algorithm is unknown.
func NewRegistrationService(db *sql.DB, m repomanager.RepositoryManager, a archive.Archive,
	met *metrics.Metrics, logger logging.Logger, cfg *config.Config) (*RegistrationService, error) {
	alg, err := pow.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = archive.Nop{}
	}
	if met == nil {
		met = metrics.New()
	}
	return &RegistrationService{
		db:                db,
		repomanager:       m,
		archive:           a,
		metrics:           met,
		logger:            logger.With("module", "registration_service"),
		algorithm:         alg,
		baseDifficulty:    cfg.BaseDifficulty,
		maxUsernameLength: cfg.MaxUsernameLength,
		secretKey:         []byte(cfg.SecretKey),
		receiptValidity:   cfg.ReceiptValidityDuration,
	}, nil
}

// Init loads the registered usernames gauge from storage.
func (s *RegistrationService) Init(ctx context.Context) error {
	n, err := s.repomanager.Registrations(s.db).Count(ctx)
	if err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	s.metrics.SetRegistered(n)
	return nil
}

// Challenge returns the work required to register username. The address is
// not needed: difficulty depends only on the username length.
func (s *RegistrationService) Challenge(username string) (*Challenge, error) {
	if err := ValidateUsername(username, s.maxUsernameLength); err != nil {
		return nil, err
	}
	p := pow.New(identity.New(username, ""), s.baseDifficulty, s.algorithm)
	return &Challenge{
		Username:       username,
		BaseDifficulty: s.baseDifficulty,
		Difficulty:     p.Difficulty(),
		Target:         p.Target(),
		Algorithm:      s.algorithm.Name(),
	}, nil
}

// Register verifies the proof (digest, nonce) for username bound to
// authAddress and records it. A taken username yields
// common.ErrorAlreadyExists and a failed proof common.ErrInvalidProof.
func (s *RegistrationService) Register(ctx context.Context, username, authAddress, digest string, nonce uint64) (*Registered, error) {
	alg := s.algorithm.Name()

	if err := ValidateUsername(username, s.maxUsernameLength); err != nil {
		s.metrics.Registration(alg, metrics.OutcomeInvalid)
		return nil, err
	}
	if err := ValidateAuthAddress(authAddress); err != nil {
		s.metrics.Registration(alg, metrics.OutcomeInvalid)
		return nil, err
	}

	p := pow.New(identity.New(username, authAddress), s.baseDifficulty, s.algorithm)
	if !p.Verify(digest, nonce) {
		s.metrics.Registration(alg, metrics.OutcomeRejected)
		s.logger.Info(ctx, "proof rejected", "username", username, "difficulty", p.Difficulty())
		return nil, common.ErrInvalidProof
	}

	reg := &models.Registration{
		ID:             uuid.NewString(),
		Username:       username,
		AuthAddress:    authAddress,
		Digest:         digest,
		Nonce:          nonce,
		BaseDifficulty: s.baseDifficulty,
		Difficulty:     p.Difficulty(),
		Algorithm:      alg,
	}

	var total int64
	err := s.withTx(ctx, func(ctx context.Context, repo registrations.Repository) error {
		created, err := repo.Create(ctx, reg)
		if err != nil {
			return err
		}
		reg = created
		total, err = repo.Count(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.metrics.Registration(alg, metrics.OutcomeDuplicate)
			return nil, common.ErrorAlreadyExists
		}
		s.metrics.Registration(alg, metrics.OutcomeError)
		s.logger.Error(ctx, "storing registration failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	s.metrics.Registration(alg, metrics.OutcomeAccepted)
	s.metrics.Accepted(reg.Difficulty)
	s.metrics.SetRegistered(total)

	if err := s.archive.Publish(ctx, reg); err != nil {
		s.logger.Warn(ctx, "archiving registration failed", "username", username, "error", err)
	}

	receipt, err := auth.IssueReceipt(auth.Receipt{
		RegistrationID: reg.ID,
		Username:       reg.Username,
		AuthAddress:    reg.AuthAddress,
		Difficulty:     reg.Difficulty,
		Algorithm:      reg.Algorithm,
	}, s.secretKey, s.receiptValidity)
	if err != nil {
		s.logger.Error(ctx, "issuing receipt failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "registration accepted", "username", username, "difficulty", reg.Difficulty, "nonce", reg.Nonce)
	return &Registered{Registration: reg, Receipt: receipt}, nil
}

// Verify checks a proof for a merged identity string
// ("{authAddress}:{username}") without touching the registry.
func (s *RegistrationService) Verify(ctx context.Context, merged, digest string, nonce uint64) (*Verification, error) {
	rec, ok := identity.Parse(merged)
	if !ok {
		s.metrics.Verification(metrics.OutcomeInvalid)
		return nil, validationError("identity %q has no %q separator", merged, identity.Separator)
	}

	p := pow.New(rec, s.baseDifficulty, s.algorithm)
	v := &Verification{
		Valid:       p.Verify(digest, nonce),
		Username:    rec.Username(),
		AuthAddress: rec.AuthAddress(),
		Difficulty:  p.Difficulty(),
		Algorithm:   s.algorithm.Name(),
	}
	if v.Valid {
		s.metrics.Verification(metrics.OutcomeAccepted)
	} else {
		s.metrics.Verification(metrics.OutcomeRejected)
	}
	s.logger.Debug(ctx, "proof verified", "username", v.Username, "valid", v.Valid)
	return v, nil
}

// Lookup returns the registration that holds username.
func (s *RegistrationService) Lookup(ctx context.Context, username string) (*models.Registration, error) {
	return s.repomanager.Registrations(s.db).GetByUsername(ctx, username)
}

// LookupByAuthAddress returns every username bound to authAddress.
func (s *RegistrationService) LookupByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error) {
	return s.repomanager.Registrations(s.db).GetByAuthAddress(ctx, authAddress)
}

// Whoami resolves a receipt to the registration it was issued for. Invalid
// or expired receipts, and receipts for names no longer held, yield
// common.ErrorUnauthorized.
func (s *RegistrationService) Whoami(ctx context.Context, receipt string) (*models.Registration, error) {
	claims, err := auth.ParseReceipt(receipt, s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	reg, err := s.Lookup(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if reg.ID != claims.RegistrationID {
		return nil, common.ErrorUnauthorized
	}
	return reg, nil
}

func (s *RegistrationService) withTx(ctx context.Context, fn func(ctx context.Context, repo registrations.Repository) error) error {
	if s.db == nil {
		return fn(ctx, s.repomanager.Registrations(nil))
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repomanager.Registrations(tx))
	})
}
