// Package authz decides who may talk to whom and who belongs to a trip.
// Every function is a pure predicate over a snapshot; callers re-evaluate
// after each change to the follow graph or a trip roster.
package authz

import (
	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

// Status is the outcome of a direct-chat check.
type Status int

const (
	AwaitingMutualFollow Status = iota
	AwaitingCurrentUserFollowBack
	Available
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case AwaitingCurrentUserFollowBack:
		return "awaiting_current_user_follow_back"
	default:
		return "awaiting_mutual_follow"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ChatStatus reports whether account may open a direct channel with the
// counterparty seller. Both follow edges are required.
func ChatStatus(account domain.Account, counterparty uuid.UUID) Status {
	return status(account.Follows(counterparty), account.FollowedBy(counterparty))
}

// ProfileChatStatus is ChatStatus for the social-profile view of the graph.
func ProfileChatStatus(p domain.UserProfile) Status {
	return status(p.IsFollowing, p.IsFollowingMe)
}

func status(following, followedBy bool) Status {
	switch {
	case following && followedBy:
		return Available
	case followedBy:
		return AwaitingCurrentUserFollowBack
	default:
		return AwaitingMutualFollow
	}
}

// JoinState is a seller's participation state in a trip.
type JoinState int

const (
	NotRequested JoinState = iota
	Pending
	Approved
	Organizer
)

func (s JoinState) String() string {
	switch s {
	case Organizer:
		return "organizer"
	case Approved:
		return "approved"
	case Pending:
		return "pending"
	default:
		return "not_requested"
	}
}

func (s JoinState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TripJoinState resolves exactly one state. Organizer wins over approved,
// approved over pending, so a stale roster still yields a single answer.
func TripJoinState(trip domain.GroupTrip, sellerID uuid.UUID) JoinState {
	switch {
	case trip.Organizer.ID == sellerID:
		return Organizer
	case trip.ApprovedParticipantIDs.Has(sellerID):
		return Approved
	case trip.PendingRequest(sellerID) != nil:
		return Pending
	default:
		return NotRequested
	}
}

// CanPostInTrip reports whether sellerID may open or write to the trip chat.
func CanPostInTrip(trip domain.GroupTrip, sellerID uuid.UUID) bool {
	st := TripJoinState(trip, sellerID)
	return st == Organizer || st == Approved
}

// TripRoleOf stamps the chat role for a sender.
func TripRoleOf(trip domain.GroupTrip, sellerID uuid.UUID) domain.TripRole {
	if trip.Organizer.ID == sellerID {
		return domain.TripRoleOrganizer
	}
	return domain.TripRoleParticipant
}
