package registrations

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"github.com/sasha-s/go-deadlock"
)

// MemoryRepository keeps registrations in process memory. It is used when
// the server runs without a database and is safe for concurrent use.
type MemoryRepository struct {
	mu         deadlock.RWMutex
	byUsername map[string]*models.Registration
	byAddress  map[string][]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byUsername: make(map[string]*models.Registration),
		byAddress:  make(map[string][]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[reg.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}

	reg.CreatedAt = r.now().UTC()
	stored := *reg
	r.byUsername[reg.Username] = &stored
	r.byAddress[reg.AuthAddress] = append(r.byAddress[reg.AuthAddress], reg.Username)

	return reg, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *reg
	return &out, nil
}

func (r *MemoryRepository) GetByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byAddress[authAddress]
	if len(names) == 0 {
		return nil, common.ErrorNotFound
	}

	result := make([]*models.Registration, 0, len(names))
	for _, name := range names {
		reg := *r.byUsername[name]
		result = append(result, &reg)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Username < result[j].Username
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byUsername)), nil
}
