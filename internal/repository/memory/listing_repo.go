package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

type ListingRepo struct {
	mu       sync.RWMutex
	listings map[uuid.UUID]domain.Listing
}

func NewListingRepo() *ListingRepo {
	return &ListingRepo{listings: make(map[uuid.UUID]domain.Listing)}
}

func (r *ListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.ID]; exists {
		return repository.ErrConflict
	}
	r.listings[listing.ID] = listing.Clone()
	return nil
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	out := l.Clone()
	return &out, nil
}

// List returns listings newest first.
func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, l.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Title < out[j].Title
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ListingRepo) ToggleFavorite(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	l.IsFavorite = !l.IsFavorite
	r.listings[id] = l
	out := l.Clone()
	return &out, nil
}

func (r *ListingRepo) ReplaceAll(ctx context.Context, listings []domain.Listing) error {
	next := make(map[uuid.UUID]domain.Listing, len(listings))
	for _, l := range listings {
		next[l.ID] = l.Clone()
	}

	r.mu.Lock()
	r.listings = next
	r.mu.Unlock()
	return nil
}
