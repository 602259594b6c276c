package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository/memory"
	"github.com/vedran77/powderswap/pkg/validator"
)

type fakeCatalog struct {
	listings  []domain.Listing
	fetchErr  error
	createErr error
	lastDraft *domain.Listing
}

func (c *fakeCatalog) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.listings, nil
}

func (c *fakeCatalog) CreateListing(ctx context.Context, draft domain.Listing) (*domain.Listing, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.lastDraft = &draft
	created := draft
	created.ID = uuid.New()
	return &created, nil
}

var rider = domain.NewSeller(uuid.New(), "Rider", 4.8, 7)

func validListing() PublishListingInput {
	return PublishListingInput{
		Title:       " Burton Custom 158 ",
		Description: "Two seasons, freshly waxed",
		Condition:   "like_new",
		Price:       320,
		Location:    "Zagreb",
		TradeOption: "both",
	}
}

func TestListingService_PublishLocal(t *testing.T) {
	ctx := context.Background()
	svc := NewListingService(memory.NewListingRepo())

	listing, err := svc.Publish(ctx, rider, validListing())
	require.NoError(t, err)
	assert.Equal(t, "Burton Custom 158", listing.Title)
	assert.Equal(t, domain.ConditionLikeNew, listing.Condition)
	assert.Equal(t, domain.TradeBoth, listing.TradeOption)
	assert.Equal(t, rider, listing.Seller)

	fav, err := svc.ToggleFavorite(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)

	_, err = svc.ToggleFavorite(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrListingNotFound)

	in := validListing()
	in.Condition = "mint"
	_, err = svc.Publish(ctx, rider, in)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "condition")
}

func TestListingService_PublishRemote(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{}
	svc := NewListingService(memory.NewListingRepo())
	svc.SetRemote(catalog)

	listing, err := svc.Publish(ctx, rider, validListing())
	require.NoError(t, err)
	require.NotNil(t, catalog.lastDraft)
	assert.NotEqual(t, catalog.lastDraft.ID, listing.ID)

	stored, err := svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Title, stored.Title)

	catalog.createErr = errors.New("boom")
	_, err = svc.Publish(ctx, rider, validListing())
	assert.Error(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListingService_SyncRemoteKeepsLocalOnError(t *testing.T) {
	ctx := context.Background()
	svc := NewListingService(memory.NewListingRepo())

	_, err := svc.SyncRemote(ctx)
	assert.ErrorIs(t, err, ErrRemoteNotConfigured)

	local, err := svc.Publish(ctx, rider, validListing())
	require.NoError(t, err)

	unknown := &domain.UnknownValueError{Field: "condition", Value: "mint"}
	catalog := &fakeCatalog{fetchErr: unknown}
	svc.SetRemote(catalog)

	_, err = svc.SyncRemote(ctx)
	assert.ErrorIs(t, err, domain.ErrUnknownValue)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, local.ID, all[0].ID)

	catalog.fetchErr = nil
	catalog.listings = []domain.Listing{
		{ID: uuid.New(), Title: "Remote A", Condition: domain.ConditionFair, TradeOption: domain.TradeInPerson},
		{ID: uuid.New(), Title: "Remote B", Condition: domain.ConditionNew, TradeOption: domain.TradeShipping},
	}
	synced, err := svc.SyncRemote(ctx)
	require.NoError(t, err)
	assert.Len(t, synced, 2)
}
