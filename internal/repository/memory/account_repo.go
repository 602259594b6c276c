// Package memory holds the in-process stores. Each store guards its
// collection with one RWMutex and hands out copies, so readers always see
// a complete snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

type AccountRepo struct {
	mu         sync.RWMutex
	accounts   map[uuid.UUID]domain.Account
	byUsername map[string]uuid.UUID
	// following[a] = sellers a follows, keyed by seller id
	following map[uuid.UUID]domain.IDSet
	followers map[uuid.UUID]domain.IDSet
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		accounts:   make(map[uuid.UUID]domain.Account),
		byUsername: make(map[string]uuid.UUID),
		following:  make(map[uuid.UUID]domain.IDSet),
		followers:  make(map[uuid.UUID]domain.IDSet),
	}
}

func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := repository.FoldUsername(account.Username)
	if _, taken := r.byUsername[key]; taken {
		return repository.ErrConflict
	}
	if _, exists := r.accounts[account.ID]; exists {
		return repository.ErrConflict
	}

	stored := account.Clone()
	stored.FollowingSellerIDs = nil
	stored.FollowerSellerIDs = nil
	r.accounts[account.ID] = stored
	r.byUsername[key] = account.ID
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hydrate(id), nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[repository.FoldUsername(username)]
	if !ok {
		return nil, nil
	}
	return r.hydrate(id), nil
}

func (r *AccountRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, acc := range r.accounts {
		if acc.Seller.ID == sellerID {
			return r.hydrate(id), nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) Update(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.accounts[account.ID]
	if !ok {
		return repository.ErrNotFound
	}

	oldKey := repository.FoldUsername(current.Username)
	newKey := repository.FoldUsername(account.Username)
	if oldKey != newKey {
		if _, taken := r.byUsername[newKey]; taken {
			return repository.ErrConflict
		}
		delete(r.byUsername, oldKey)
		r.byUsername[newKey] = account.ID
	}

	stored := account.Clone()
	stored.FollowingSellerIDs = nil
	stored.FollowerSellerIDs = nil
	r.accounts[account.ID] = stored
	return nil
}

func (r *AccountRepo) AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.following[followerID] == nil {
		r.following[followerID] = domain.NewIDSet()
	}
	if r.followers[followeeID] == nil {
		r.followers[followeeID] = domain.NewIDSet()
	}
	r.following[followerID].Add(followeeID)
	r.followers[followeeID].Add(followerID)
	return nil
}

func (r *AccountRepo) RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.following[followerID].Remove(followeeID)
	r.followers[followeeID].Remove(followerID)
	return nil
}

// hydrate must be called with r.mu held.
func (r *AccountRepo) hydrate(id uuid.UUID) *domain.Account {
	acc, ok := r.accounts[id]
	if !ok {
		return nil
	}
	out := acc.Clone()
	out.FollowingSellerIDs = r.following[acc.Seller.ID].Clone()
	out.FollowerSellerIDs = r.followers[acc.Seller.ID].Clone()
	return &out
}
