// Package archive publishes accepted registrations to object storage so the
// proofs can be audited outside the registry database.
package archive

import (
	"context"

	"github.com/dmitrijs2005/anonid/internal/server/models"
)

// Archive stores a copy of an accepted registration.
type Archive interface {
	Publish(ctx context.Context, reg *models.Registration) error
}

// Nop discards everything. It is used when archiving is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, *models.Registration) error { return nil }
