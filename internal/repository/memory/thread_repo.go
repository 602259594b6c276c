package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

type pairKey struct {
	owner, seller uuid.UUID
}

type ThreadRepo struct {
	mu      sync.RWMutex
	threads map[uuid.UUID]*domain.MessageThread
	byPair  map[pairKey]uuid.UUID
}

func NewThreadRepo() *ThreadRepo {
	return &ThreadRepo{
		threads: make(map[uuid.UUID]*domain.MessageThread),
		byPair:  make(map[pairKey]uuid.UUID),
	}
}

func (r *ThreadRepo) Create(ctx context.Context, thread *domain.MessageThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{thread.OwnerID, thread.Seller.ID}
	if _, exists := r.byPair[key]; exists {
		return repository.ErrConflict
	}
	stored := thread.Clone()
	r.threads[thread.ID] = &stored
	r.byPair[key] = thread.ID
	return nil
}

func (r *ThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.threads[id]
	if !ok {
		return nil, nil
	}
	out := t.Clone()
	return &out, nil
}

func (r *ThreadRepo) GetByCounterparty(ctx context.Context, ownerID, sellerID uuid.UUID) (*domain.MessageThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{ownerID, sellerID}]
	if !ok {
		return nil, nil
	}
	out := r.threads[id].Clone()
	return &out, nil
}

// ListByOwner returns the owner's threads, most recently active first.
func (r *ThreadRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.MessageThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.MessageThread
	for _, t := range r.threads {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return activity(out[i].LastSentAt(), out[i].CreatedAt).After(activity(out[j].LastSentAt(), out[j].CreatedAt))
	})
	return out, nil
}

func (r *ThreadRepo) AppendMessage(ctx context.Context, threadID uuid.UUID, msg domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.threads[threadID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if last := t.LastSentAt(); msg.SentAt.Before(last) {
		msg.SentAt = last
	}
	msg.ThreadID = threadID
	t.Messages = append(t.Messages, msg)
	return &msg, nil
}
