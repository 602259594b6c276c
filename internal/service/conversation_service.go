package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
)

var (
	ErrThreadNotFound  = errors.New("thread not found")
	ErrChatUnavailable = errors.New("chat requires a mutual follow")
	ErrListingNotFound = errors.New("listing not found")
	ErrCannotChatSelf  = errors.New("cannot start a conversation with yourself")
)

// ConversationService manages direct and listing threads between an
// account and a counterparty seller.
type ConversationService struct {
	threadRepo  repository.ThreadRepository
	accountRepo repository.AccountRepository
	listingRepo repository.ListingRepository
	notifier    Notifier
	now         func() time.Time

	// serializes lookup-or-create so a pair never gets two threads
	mu sync.Mutex
}

func NewConversationService(
	threadRepo repository.ThreadRepository,
	accountRepo repository.AccountRepository,
	listingRepo repository.ListingRepository,
) *ConversationService {
	return &ConversationService{
		threadRepo:  threadRepo,
		accountRepo: accountRepo,
		listingRepo: listingRepo,
		now:         time.Now,
	}
}

func (s *ConversationService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *ConversationService) SetClock(now func() time.Time) {
	s.now = now
}

// OpenThreadInput names the counterparty and, optionally, the listing the
// conversation is about.
type OpenThreadInput struct {
	SellerID  uuid.UUID  `json:"seller_id"`
	ListingID *uuid.UUID `json:"listing_id,omitempty"`
}

// ThreadForSeller returns the thread with the counterparty, creating it
// when the chat gate reports Available. When chat is not available and no
// thread exists it returns (nil, nil).
func (s *ConversationService) ThreadForSeller(ctx context.Context, accountID uuid.UUID, input OpenThreadInput) (*domain.MessageThread, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Seller.ID == input.SellerID {
		return nil, ErrCannotChatSelf
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.threadRepo.GetByCounterparty(ctx, accountID, input.SellerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if authz.ChatStatus(*account, input.SellerID) != authz.Available {
		return nil, nil
	}

	counterparty, listing, err := s.resolveCounterparty(ctx, account.Seller.ID, input)
	if err != nil {
		return nil, err
	}

	thread := &domain.MessageThread{
		ID:        uuid.New(),
		OwnerID:   accountID,
		Seller:    counterparty,
		Listing:   listing,
		Messages:  []domain.Message{},
		CreatedAt: s.now(),
	}
	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return thread, nil
}

// ChatStatus exposes the gate for one counterparty.
func (s *ConversationService) ChatStatus(ctx context.Context, accountID, sellerID uuid.UUID) (authz.Status, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return authz.AwaitingMutualFollow, err
	}
	return authz.ChatStatus(*account, sellerID), nil
}

func (s *ConversationService) ListThreads(ctx context.Context, accountID uuid.UUID) ([]domain.MessageThread, error) {
	threads, err := s.threadRepo.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if threads == nil {
		threads = []domain.MessageThread{}
	}
	return threads, nil
}

func (s *ConversationService) GetThread(ctx context.Context, accountID, threadID uuid.UUID) (*domain.MessageThread, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil || thread.OwnerID != accountID {
		return nil, ErrThreadNotFound
	}
	return thread, nil
}

// SendMessage appends text to the caller's thread. Blank text is ignored
// and yields (nil, nil). The mutual follow must still hold at send time.
func (s *ConversationService) SendMessage(ctx context.Context, accountID, threadID uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	thread, err := s.GetThread(ctx, accountID, threadID)
	if err != nil {
		return nil, err
	}
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if authz.ChatStatus(*account, thread.Seller.ID) != authz.Available {
		return nil, ErrChatUnavailable
	}

	msg, err := s.threadRepo.AppendMessage(ctx, threadID, domain.Message{
		ID:       uuid.New(),
		SenderID: account.Seller.ID,
		Role:     senderRole(thread, account.Seller.ID),
		Text:     text,
		SentAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyThreadMessage(thread, msg)
	}

	return msg, nil
}

func (s *ConversationService) account(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// senderRole is RoleSeller when the sender is selling the thread's listing.
func senderRole(thread *domain.MessageThread, senderID uuid.UUID) domain.SenderRole {
	if thread.Listing != nil && thread.Listing.Seller.ID == senderID {
		return domain.RoleSeller
	}
	return domain.RoleBuyer
}

// resolveCounterparty prefers the listing's seller snapshot, then a local
// account, then a bare identity. The listing is attached when either side
// of the thread is selling it.
func (s *ConversationService) resolveCounterparty(ctx context.Context, ownerSellerID uuid.UUID, input OpenThreadInput) (domain.Seller, *domain.Listing, error) {
	var attached *domain.Listing
	if input.ListingID != nil {
		listing, err := s.listingRepo.GetByID(ctx, *input.ListingID)
		if err != nil {
			return domain.Seller{}, nil, err
		}
		if listing == nil {
			return domain.Seller{}, nil, ErrListingNotFound
		}
		switch listing.Seller.ID {
		case input.SellerID:
			return listing.Seller, listing, nil
		case ownerSellerID:
			attached = listing
		}
	}

	other, err := s.accountRepo.GetBySellerID(ctx, input.SellerID)
	if err != nil {
		return domain.Seller{}, nil, err
	}
	if other != nil {
		return other.Seller, attached, nil
	}
	return domain.Seller{ID: input.SellerID}, attached, nil
}
