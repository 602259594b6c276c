package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository/memory"
)

type conversationFixture struct {
	accounts *memory.AccountRepo
	listings *memory.ListingRepo
	follows  *FollowService
	convo    *ConversationService
	notifier *fakeNotifier
	clock    *stepClock
	alice    *domain.Account
	bob      *domain.Account
}

func newConversationFixture(t *testing.T) *conversationFixture {
	f := &conversationFixture{
		accounts: memory.NewAccountRepo(),
		listings: memory.NewListingRepo(),
		notifier: &fakeNotifier{},
		clock:    newStepClock(),
	}
	f.follows = NewFollowService(f.accounts)
	f.convo = NewConversationService(memory.NewThreadRepo(), f.accounts, f.listings)
	f.convo.SetNotifier(f.notifier)
	f.convo.SetClock(f.clock.Now)
	f.alice = seedAccount(t, f.accounts, "alice")
	f.bob = seedAccount(t, f.accounts, "bob")
	return f
}

func (f *conversationFixture) mutual(t *testing.T) {
	ctx := context.Background()
	_, err := f.follows.Follow(ctx, f.alice.ID, f.bob.Seller.ID)
	require.NoError(t, err)
	_, err = f.follows.Follow(ctx, f.bob.ID, f.alice.Seller.ID)
	require.NoError(t, err)
}

func TestFollowService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)

	status, err := f.follows.Follow(ctx, f.alice.ID, f.bob.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.AwaitingMutualFollow, status)

	status, err = f.follows.Status(ctx, f.bob.ID, f.alice.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.AwaitingCurrentUserFollowBack, status)

	status, err = f.follows.Follow(ctx, f.bob.ID, f.alice.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.Available, status)

	// following twice is a no-op
	status, err = f.follows.Follow(ctx, f.bob.ID, f.alice.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.Available, status)

	status, err = f.follows.Unfollow(ctx, f.alice.ID, f.bob.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.AwaitingCurrentUserFollowBack, status)

	_, err = f.follows.Follow(ctx, f.alice.ID, f.alice.Seller.ID)
	assert.ErrorIs(t, err, ErrCannotFollowSelf)
	_, err = f.follows.Follow(ctx, uuid.New(), f.alice.Seller.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestConversationService_NoThreadWithoutMutualFollow(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)

	_, err := f.follows.Follow(ctx, f.alice.ID, f.bob.Seller.ID)
	require.NoError(t, err)

	thread, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)
	assert.Nil(t, thread)

	threads, err := f.convo.ListThreads(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestConversationService_OneThreadPerCounterparty(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)
	f.mutual(t)

	first, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, f.bob.Seller.ID, first.Seller.ID)
	assert.Equal(t, "bob", first.Seller.Nickname)

	again, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.alice.Seller.ID})
	assert.ErrorIs(t, err, ErrCannotChatSelf)
}

func TestConversationService_ListingThreadUsesListingSeller(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)
	f.mutual(t)

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       "Burton Custom 158",
		Condition:   domain.ConditionGood,
		TradeOption: domain.TradeShipping,
		Seller:      domain.NewSeller(f.bob.Seller.ID, "Bob the Shredder", 4.5, 12),
	}
	require.NoError(t, f.listings.Create(ctx, listing))

	thread, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{
		SellerID:  f.bob.Seller.ID,
		ListingID: &listing.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, thread.Listing)
	assert.Equal(t, listing.ID, thread.Listing.ID)
	assert.Equal(t, "Bob the Shredder", thread.Seller.Nickname)

	missing := uuid.New()
	_, err = f.convo.ThreadForSeller(ctx, f.bob.ID, OpenThreadInput{
		SellerID:  f.alice.Seller.ID,
		ListingID: &missing,
	})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestConversationService_SendMessage(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)
	f.mutual(t)

	thread, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)

	msg, err := f.convo.SendMessage(ctx, f.alice.ID, thread.ID, "   ")
	require.NoError(t, err)
	assert.Nil(t, msg)

	msg, err = f.convo.SendMessage(ctx, f.alice.ID, thread.ID, "  Is the board still available? ")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "Is the board still available?", msg.Text)
	assert.Equal(t, domain.RoleBuyer, msg.Role)
	assert.Equal(t, f.alice.Seller.ID, msg.SenderID)

	// a clock that jumps backwards never reorders the log
	f.clock.Set(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	second, err := f.convo.SendMessage(ctx, f.alice.ID, thread.ID, "Hello?")
	require.NoError(t, err)
	assert.False(t, second.SentAt.Before(msg.SentAt))

	stored, err := f.convo.GetThread(ctx, f.alice.ID, thread.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Len(t, f.notifier.threadMessages, 2)

	_, err = f.convo.GetThread(ctx, f.bob.ID, thread.ID)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestConversationService_ListingSellerSendsAsSeller(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)
	f.mutual(t)

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       "Union Force bindings",
		Condition:   domain.ConditionFair,
		TradeOption: domain.TradeBoth,
		Seller:      domain.NewSeller(f.bob.Seller.ID, "bob", 4, 3),
	}
	require.NoError(t, f.listings.Create(ctx, listing))

	// bob opens the thread about his own listing
	thread, err := f.convo.ThreadForSeller(ctx, f.bob.ID, OpenThreadInput{
		SellerID:  f.alice.Seller.ID,
		ListingID: &listing.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, thread.Listing)
	assert.Equal(t, listing.ID, thread.Listing.ID)
	assert.Equal(t, f.alice.Seller.ID, thread.Seller.ID)
	assert.Equal(t, "alice", thread.Seller.Nickname)

	msg, err := f.convo.SendMessage(ctx, f.bob.ID, thread.ID, "Still have them, want photos?")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, msg.Role)
	assert.Equal(t, f.bob.Seller.ID, msg.SenderID)

	// alice writing about bob's listing is the buyer
	other, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{
		SellerID:  f.bob.Seller.ID,
		ListingID: &listing.ID,
	})
	require.NoError(t, err)
	msg, err = f.convo.SendMessage(ctx, f.alice.ID, other.ID, "Yes please")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, msg.Role)
}

func TestConversationService_SendRequiresMutualFollowAtSendTime(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)
	f.mutual(t)

	thread, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)

	_, err = f.follows.Unfollow(ctx, f.bob.ID, f.alice.Seller.ID)
	require.NoError(t, err)

	_, err = f.convo.SendMessage(ctx, f.alice.ID, thread.ID, "still there?")
	assert.ErrorIs(t, err, ErrChatUnavailable)

	status, err := f.convo.ChatStatus(ctx, f.alice.ID, f.bob.Seller.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.AwaitingMutualFollow, status)

	// the thread itself is kept
	existing, err := f.convo.ThreadForSeller(ctx, f.alice.ID, OpenThreadInput{SellerID: f.bob.Seller.ID})
	require.NoError(t, err)
	assert.Equal(t, thread.ID, existing.ID)
}
