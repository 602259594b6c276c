package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

type viewerKey struct {
	viewer, user uuid.UUID
}

type ProfileRepo struct {
	mu       sync.RWMutex
	profiles map[viewerKey]domain.UserProfile
	chats    map[viewerKey]*domain.UserChatThread
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{
		profiles: make(map[viewerKey]domain.UserProfile),
		chats:    make(map[viewerKey]*domain.UserChatThread),
	}
}

// List returns the viewer's profiles sorted by display name.
func (r *ProfileRepo) List(ctx context.Context, viewerID uuid.UUID) ([]domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.UserProfile
	for k, p := range r.profiles {
		if k.viewer == viewerID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

func (r *ProfileRepo) Get(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[viewerKey{viewerID, userID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepo) Put(ctx context.Context, viewerID uuid.UUID, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewerKey{viewerID, profile.ID}
	r.profiles[key] = profile
	if th, ok := r.chats[key]; ok {
		th.User = profile
	}
	return nil
}

func (r *ProfileRepo) GetChat(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	th, ok := r.chats[viewerKey{viewerID, userID}]
	if !ok {
		return nil, nil
	}
	out := th.Clone()
	return &out, nil
}

func (r *ProfileRepo) ListChats(ctx context.Context, viewerID uuid.UUID) ([]domain.UserChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.UserChatThread
	for k, th := range r.chats {
		if k.viewer == viewerID {
			out = append(out, th.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return activity(out[i].LastSentAt(), out[i].CreatedAt).After(activity(out[j].LastSentAt(), out[j].CreatedAt))
	})
	return out, nil
}

func (r *ProfileRepo) PutChat(ctx context.Context, thread *domain.UserChatThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewerKey{thread.ViewerID, thread.User.ID}
	if _, exists := r.chats[key]; exists {
		return repository.ErrConflict
	}
	stored := thread.Clone()
	r.chats[key] = &stored
	return nil
}

func (r *ProfileRepo) DeleteChat(ctx context.Context, viewerID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.chats, viewerKey{viewerID, userID})
	return nil
}

func (r *ProfileRepo) AppendChatMessage(ctx context.Context, viewerID, userID uuid.UUID, msg domain.UserChatMessage) (*domain.UserChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	th, ok := r.chats[viewerKey{viewerID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if last := th.LastSentAt(); msg.SentAt.Before(last) {
		msg.SentAt = last
	}
	th.Messages = append(th.Messages, msg)
	return &msg, nil
}
