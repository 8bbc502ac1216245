package registrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/dbx"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts reg. The nonce is stored as its decimal text so the full
// uint64 range survives the round trip.
func (r *PostgresRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	query :=
		`INSERT INTO registrations (id, username, auth_address, digest, nonce, base_difficulty, difficulty, algorithm)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		reg.ID, reg.Username, reg.AuthAddress, reg.Digest, strconv.FormatUint(reg.Nonce, 10),
		int64(reg.BaseDifficulty), int64(reg.Difficulty), reg.Algorithm).Scan(&reg.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Registration, error) {
	query :=
		`SELECT id, username, auth_address, digest, nonce, base_difficulty, difficulty, algorithm, created_at
		 FROM registrations
		 WHERE username = $1
		 `

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

// GetByAuthAddress lists every username bound to authAddress, oldest first.
func (r *PostgresRepository) GetByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error) {
	query :=
		`SELECT id, username, auth_address, digest, nonce, base_difficulty, difficulty, algorithm, created_at
		 FROM registrations
		 WHERE auth_address = $1
		 ORDER BY created_at, username
		 `

	rows, err := r.db.QueryContext(ctx, query, authAddress)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(result) == 0 {
		return nil, common.ErrorNotFound
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(s scanner) (*models.Registration, error) {
	var (
		reg                    models.Registration
		nonce                  string
		baseDifficulty, target int64
	)
	err := s.Scan(&reg.ID, &reg.Username, &reg.AuthAddress, &reg.Digest, &nonce,
		&baseDifficulty, &target, &reg.Algorithm, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}

	reg.Nonce, err = strconv.ParseUint(nonce, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt nonce %q: %w", nonce, err)
	}
	reg.BaseDifficulty = uint(baseDifficulty)
	reg.Difficulty = uint(target)
	return &reg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation
}
