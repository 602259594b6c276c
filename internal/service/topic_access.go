package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
)

// TopicAccess decides which live topics an account may follow. A topic is
// either a trip id or a message thread id.
type TopicAccess struct {
	trips  *TripService
	convos *ConversationService
}

func NewTopicAccess(trips *TripService, convos *ConversationService) *TopicAccess {
	return &TopicAccess{trips: trips, convos: convos}
}

// CanSubscribe allows trip topics to the organizer and approved
// participants, and thread topics to the thread owner. Unknown topics are
// refused without an error.
func (a *TopicAccess) CanSubscribe(ctx context.Context, accountID, topicID uuid.UUID) (bool, error) {
	account, err := a.convos.account(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}

	trip, err := a.trips.GetTrip(ctx, topicID)
	switch {
	case err == nil:
		return authz.CanPostInTrip(*trip, account.Seller.ID), nil
	case !errors.Is(err, ErrTripNotFound):
		return false, err
	}

	_, err = a.convos.GetThread(ctx, accountID, topicID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrThreadNotFound):
		return false, nil
	default:
		return false, err
	}
}
