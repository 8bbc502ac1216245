// Package registrations stores accepted identity proofs.
package registrations

import (
	"context"

	"github.com/dmitrijs2005/anonid/internal/server/models"
)

// Repository persists registrations. Create returns common.ErrorAlreadyExists
// when the username is taken; the getters return common.ErrorNotFound when
// nothing matches.
type Repository interface {
	Create(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	GetByUsername(ctx context.Context, username string) (*models.Registration, error)
	GetByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error)
	Count(ctx context.Context) (int64, error)
}
