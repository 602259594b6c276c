package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

type TripRepo struct {
	mu      sync.RWMutex
	trips   map[uuid.UUID]domain.GroupTrip
	threads map[uuid.UUID]*domain.GroupTripThread // keyed by trip id
}

func NewTripRepo() *TripRepo {
	return &TripRepo{
		trips:   make(map[uuid.UUID]domain.GroupTrip),
		threads: make(map[uuid.UUID]*domain.GroupTripThread),
	}
}

func (r *TripRepo) Create(ctx context.Context, trip *domain.GroupTrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trips[trip.ID]; exists {
		return repository.ErrConflict
	}
	r.trips[trip.ID] = trip.Clone()
	return nil
}

func (r *TripRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, nil
	}
	out := t.Clone()
	return &out, nil
}

// List returns trips ordered by start date.
func (r *TripRepo) List(ctx context.Context) ([]domain.GroupTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.GroupTrip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].Title < out[j].Title
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (r *TripRepo) Update(ctx context.Context, id uuid.UUID, fn func(trip *domain.GroupTrip) error) (*domain.GroupTrip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// fn works on a copy so a failed update leaves the stored trip intact
	working := t.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	r.trips[id] = working.Clone()
	return &working, nil
}

func (r *TripRepo) GetOrCreateThread(ctx context.Context, tripID uuid.UUID, newThread func() domain.GroupTripThread) (*domain.GroupTripThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[tripID]; !ok {
		return nil, repository.ErrNotFound
	}
	th, ok := r.threads[tripID]
	if !ok {
		created := newThread()
		created.TripID = tripID
		th = &created
		r.threads[tripID] = th
	}
	out := th.Clone()
	return &out, nil
}

func (r *TripRepo) GetThread(ctx context.Context, tripID uuid.UUID) (*domain.GroupTripThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	th, ok := r.threads[tripID]
	if !ok {
		return nil, nil
	}
	out := th.Clone()
	return &out, nil
}

func (r *TripRepo) AppendThreadMessage(ctx context.Context, tripID uuid.UUID, msg domain.GroupTripMessage) (*domain.GroupTripMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	th, ok := r.threads[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if last := th.LastSentAt(); msg.SentAt.Before(last) {
		msg.SentAt = last
	}
	msg.TripID = tripID
	th.Messages = append(th.Messages, msg)
	return &msg, nil
}
