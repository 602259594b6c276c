package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

// GreetingText seeds a social chat when a follow becomes mutual.
const GreetingText = "Hey! Thanks for following back. Want to ride together sometime?"

// SocialService keeps each viewer's picture of other riders and the chats
// that exist while a follow is mutual.
type SocialService struct {
	profileRepo repository.ProfileRepository
	notifier    Notifier
	now         func() time.Time

	mu sync.Mutex
}

func NewSocialService(profileRepo repository.ProfileRepository) *SocialService {
	return &SocialService{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

func (s *SocialService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *SocialService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SocialService) Profiles(ctx context.Context, viewerID uuid.UUID) ([]domain.UserProfile, error) {
	profiles, err := s.profileRepo.List(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	return profiles, nil
}

func (s *SocialService) Profile(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserProfile, error) {
	p, err := s.profileRepo.Get(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// AddProfile stores a rider for the viewer and reconciles the chat with
// the follow flags it carries.
func (s *SocialService) AddProfile(ctx context.Context, viewerID uuid.UUID, profile domain.UserProfile) (*domain.UserProfile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.DisplayName = strings.TrimSpace(profile.DisplayName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profileRepo.Put(ctx, viewerID, profile); err != nil {
		return nil, fmt.Errorf("storing profile: %w", err)
	}
	if err := s.reconcile(ctx, viewerID, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ToggleFollow flips the viewer's follow of userID. Losing the mutual
// follow deletes the chat and its history.
func (s *SocialService) ToggleFollow(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserProfile, error) {
	return s.mutate(ctx, viewerID, userID, func(p *domain.UserProfile) {
		p.IsFollowing = !p.IsFollowing
	})
}

// SetFollowsMe records the counterparty's side of the follow.
func (s *SocialService) SetFollowsMe(ctx context.Context, viewerID, userID uuid.UUID, follows bool) (*domain.UserProfile, error) {
	return s.mutate(ctx, viewerID, userID, func(p *domain.UserProfile) {
		p.IsFollowingMe = follows
	})
}

func (s *SocialService) ChatThreads(ctx context.Context, viewerID uuid.UUID) ([]domain.UserChatThread, error) {
	threads, err := s.profileRepo.ListChats(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if threads == nil {
		threads = []domain.UserChatThread{}
	}
	return threads, nil
}

// ChatThread returns (nil, nil) when no chat exists with userID.
func (s *SocialService) ChatThread(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserChatThread, error) {
	return s.profileRepo.GetChat(ctx, viewerID, userID)
}

func (s *SocialService) SendChatMessage(ctx context.Context, viewerID, userID uuid.UUID, text string) (*domain.UserChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.profileRepo.AppendChatMessage(ctx, viewerID, userID, domain.UserChatMessage{
		ID:       uuid.New(),
		SenderID: viewerID,
		Text:     text,
		SentAt:   s.now(),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChatUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("appending chat message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyUserChatMessage(viewerID, userID, msg)
	}
	return msg, nil
}

func (s *SocialService) mutate(ctx context.Context, viewerID, userID uuid.UUID, fn func(p *domain.UserProfile)) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.profileRepo.Get(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	fn(p)
	if err := s.profileRepo.Put(ctx, viewerID, *p); err != nil {
		return nil, fmt.Errorf("storing profile: %w", err)
	}
	if err := s.reconcile(ctx, viewerID, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// reconcile makes the chat exist exactly when the profile can chat.
// Callers hold s.mu.
func (s *SocialService) reconcile(ctx context.Context, viewerID uuid.UUID, p domain.UserProfile) error {
	existing, err := s.profileRepo.GetChat(ctx, viewerID, p.ID)
	if err != nil {
		return err
	}

	switch {
	case p.CanChat() && existing == nil:
		now := s.now()
		thread := &domain.UserChatThread{
			ID:       uuid.New(),
			ViewerID: viewerID,
			User:     p,
			Messages: []domain.UserChatMessage{{
				ID:       uuid.New(),
				SenderID: p.ID,
				Text:     GreetingText,
				SentAt:   now,
			}},
			CreatedAt: now,
		}
		if err := s.profileRepo.PutChat(ctx, thread); err != nil {
			return fmt.Errorf("opening chat: %w", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyUserChatOpened(thread)
		}

	case !p.CanChat() && existing != nil:
		if err := s.profileRepo.DeleteChat(ctx, viewerID, p.ID); err != nil {
			return fmt.Errorf("closing chat: %w", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyUserChatClosed(viewerID, p.ID)
		}
	}
	return nil
}
