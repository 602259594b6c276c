package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/repository"
)

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrAccountNotFound  = errors.New("account not found")
)

// FollowService edits the seller follow graph that gates direct chat.
type FollowService struct {
	accountRepo repository.AccountRepository
}

func NewFollowService(accountRepo repository.AccountRepository) *FollowService {
	return &FollowService{accountRepo: accountRepo}
}

// Follow adds an edge from the account's seller to sellerID. Following an
// already followed seller changes nothing.
func (s *FollowService) Follow(ctx context.Context, accountID, sellerID uuid.UUID) (authz.Status, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return authz.AwaitingMutualFollow, err
	}
	if account == nil {
		return authz.AwaitingMutualFollow, ErrAccountNotFound
	}
	if account.Seller.ID == sellerID {
		return authz.AwaitingMutualFollow, ErrCannotFollowSelf
	}

	if err := s.accountRepo.AddFollow(ctx, account.Seller.ID, sellerID); err != nil {
		return authz.AwaitingMutualFollow, fmt.Errorf("adding follow: %w", err)
	}
	return s.Status(ctx, accountID, sellerID)
}

// Unfollow removes the edge. Unfollowing someone not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, accountID, sellerID uuid.UUID) (authz.Status, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return authz.AwaitingMutualFollow, err
	}
	if account == nil {
		return authz.AwaitingMutualFollow, ErrAccountNotFound
	}

	if account.Follows(sellerID) {
		if err := s.accountRepo.RemoveFollow(ctx, account.Seller.ID, sellerID); err != nil {
			return authz.AwaitingMutualFollow, fmt.Errorf("removing follow: %w", err)
		}
	}
	return s.Status(ctx, accountID, sellerID)
}

// Status re-evaluates the chat gate against the current graph.
func (s *FollowService) Status(ctx context.Context, accountID, sellerID uuid.UUID) (authz.Status, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return authz.AwaitingMutualFollow, err
	}
	if account == nil {
		return authz.AwaitingMutualFollow, ErrAccountNotFound
	}
	return authz.ChatStatus(*account, sellerID), nil
}
