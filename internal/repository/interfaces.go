package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Lookups return (nil, nil) when nothing matches. Mutations on a missing
// record return ErrNotFound; unique violations return ErrConflict.

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	ToggleFavorite(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ReplaceAll(ctx context.Context, listings []domain.Listing) error
}

type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.MessageThread) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageThread, error)
	GetByCounterparty(ctx context.Context, ownerID, sellerID uuid.UUID) (*domain.MessageThread, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.MessageThread, error)
	// AppendMessage stores msg, moving SentAt forward to the newest stored
	// timestamp if needed, and returns the stored copy.
	AppendMessage(ctx context.Context, threadID uuid.UUID, msg domain.Message) (*domain.Message, error)
}

type TripRepository interface {
	Create(ctx context.Context, trip *domain.GroupTrip) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupTrip, error)
	List(ctx context.Context) ([]domain.GroupTrip, error)
	// Update applies fn to the stored trip atomically. If fn returns an
	// error nothing is written.
	Update(ctx context.Context, id uuid.UUID, fn func(trip *domain.GroupTrip) error) (*domain.GroupTrip, error)

	// GetOrCreateThread returns the single chat thread of a trip, creating
	// it with newThread when absent.
	GetOrCreateThread(ctx context.Context, tripID uuid.UUID, newThread func() domain.GroupTripThread) (*domain.GroupTripThread, error)
	GetThread(ctx context.Context, tripID uuid.UUID) (*domain.GroupTripThread, error)
	AppendThreadMessage(ctx context.Context, tripID uuid.UUID, msg domain.GroupTripMessage) (*domain.GroupTripMessage, error)
}

type ProfileRepository interface {
	List(ctx context.Context, viewerID uuid.UUID) ([]domain.UserProfile, error)
	Get(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserProfile, error)
	Put(ctx context.Context, viewerID uuid.UUID, profile domain.UserProfile) error

	GetChat(ctx context.Context, viewerID, userID uuid.UUID) (*domain.UserChatThread, error)
	ListChats(ctx context.Context, viewerID uuid.UUID) ([]domain.UserChatThread, error)
	PutChat(ctx context.Context, thread *domain.UserChatThread) error
	DeleteChat(ctx context.Context, viewerID, userID uuid.UUID) error
	AppendChatMessage(ctx context.Context, viewerID, userID uuid.UUID, msg domain.UserChatMessage) (*domain.UserChatMessage, error)
}
