package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
	"github.com/vedran77/powderswap/pkg/validator"
)

var ErrRemoteNotConfigured = errors.New("remote marketplace is not configured")

// RemoteCatalog is the marketplace API as seen by the listing service.
type RemoteCatalog interface {
	FetchListings(ctx context.Context) ([]domain.Listing, error)
	CreateListing(ctx context.Context, draft domain.Listing) (*domain.Listing, error)
}

type ListingService struct {
	listingRepo repository.ListingRepository
	remote      RemoteCatalog
	now         func() time.Time
}

func NewListingService(listingRepo repository.ListingRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		now:         time.Now,
	}
}

// SetRemote routes publishing through the marketplace API and enables
// SyncRemote.
func (s *ListingService) SetRemote(remote RemoteCatalog) {
	s.remote = remote
}

func (s *ListingService) SetClock(now func() time.Time) {
	s.now = now
}

type PublishListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Condition   string   `json:"condition"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	TradeOption string   `json:"trade_option"`
	Photos      []string `json:"photos,omitempty"`
}

func (s *ListingService) Publish(ctx context.Context, seller domain.Seller, input PublishListingInput) (*domain.Listing, error) {
	if errs := validator.ValidateListing(input.Title, input.Condition, input.TradeOption, input.Price); errs.HasErrors() {
		return nil, errs
	}
	condition, _ := domain.ParseCondition(input.Condition)
	tradeOption, _ := domain.ParseTradeOption(input.TradeOption)

	listing := &domain.Listing{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Condition:   condition,
		Price:       input.Price,
		Location:    strings.TrimSpace(input.Location),
		TradeOption: tradeOption,
		Photos:      input.Photos,
		Seller:      seller,
		CreatedAt:   s.now(),
	}

	if s.remote != nil {
		created, err := s.remote.CreateListing(ctx, *listing)
		if err != nil {
			return nil, fmt.Errorf("publishing listing remotely: %w", err)
		}
		listing = created
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	listings, err := s.listingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

func (s *ListingService) ToggleFavorite(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// SyncRemote replaces the local catalog with the remote one. Any fetch
// error leaves the local catalog as it was.
func (s *ListingService) SyncRemote(ctx context.Context) ([]domain.Listing, error) {
	if s.remote == nil {
		return nil, ErrRemoteNotConfigured
	}

	listings, err := s.remote.FetchListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote listings: %w", err)
	}
	if err := s.listingRepo.ReplaceAll(ctx, listings); err != nil {
		return nil, fmt.Errorf("replacing listings: %w", err)
	}
	return s.List(ctx)
}
