package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Location    *string  `json:"location"`
	Bio         *string  `json:"bio"`
	Rating      *float64 `json:"rating"`
	DealsCount  *int     `json:"deals_count"`
}

type sellerDTO struct {
	SellerID    string   `json:"seller_id"`
	DisplayName string   `json:"display_name"`
	Rating      *float64 `json:"rating"`
	DealsCount  *int     `json:"deals_count"`
}

type listingDTO struct {
	ListingID   string     `json:"listing_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Condition   string     `json:"condition"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	TradeOption string     `json:"trade_option"`
	IsFavorite  *bool      `json:"is_favorite"`
	ImageURL    *string    `json:"image_url"`
	CreatedAt   *time.Time `json:"created_at"`
	Seller      sellerDTO  `json:"seller"`
}

type createListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	TradeOption string  `json:"trade_option"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// remoteNamespace derives stable ids for remote identifiers that are not
// UUIDs.
var remoteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("powderswap/remote"))

func remoteID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.NewSHA1(remoteNamespace, []byte(s))
}

func (u userDTO) toAccount() domain.Account {
	id := remoteID(u.UserID)
	return domain.Account{
		ID:                 id,
		Username:           u.Email,
		Email:              u.Email,
		Location:           deref(u.Location),
		Bio:                deref(u.Bio),
		Seller:             domain.NewSeller(id, u.DisplayName, deref(u.Rating), deref(u.DealsCount)),
		FollowingSellerIDs: domain.NewIDSet(),
		FollowerSellerIDs:  domain.NewIDSet(),
	}
}

func (s sellerDTO) toSeller() domain.Seller {
	return domain.NewSeller(remoteID(s.SellerID), s.DisplayName, deref(s.Rating), deref(s.DealsCount))
}

// toListing fails on enum values the domain does not know and on negative
// prices.
func (l listingDTO) toListing() (domain.Listing, error) {
	if l.Price < 0 {
		return domain.Listing{}, &domain.UnknownValueError{
			Field: "price",
			Value: strconv.FormatFloat(l.Price, 'f', -1, 64),
		}
	}
	condition, err := domain.ParseCondition(l.Condition)
	if err != nil {
		return domain.Listing{}, err
	}
	tradeOption, err := domain.ParseTradeOption(l.TradeOption)
	if err != nil {
		return domain.Listing{}, err
	}

	listing := domain.Listing{
		ID:          remoteID(l.ListingID),
		Title:       l.Title,
		Description: l.Description,
		Condition:   condition,
		Price:       l.Price,
		Location:    l.Location,
		TradeOption: tradeOption,
		IsFavorite:  deref(l.IsFavorite),
		Seller:      l.Seller.toSeller(),
		CreatedAt:   deref(l.CreatedAt),
	}
	if url := strings.TrimSpace(deref(l.ImageURL)); url != "" {
		listing.Photos = []string{url}
	}
	return listing, nil
}

func newCreateListingRequest(draft domain.Listing) createListingRequest {
	req := createListingRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Condition:   draft.Condition.String(),
		Price:       draft.Price,
		Location:    draft.Location,
		TradeOption: draft.TradeOption.String(),
	}
	if len(draft.Photos) > 0 {
		req.ImageURL = draft.Photos[0]
	}
	return req
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
