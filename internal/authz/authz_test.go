package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vedran77/powderswap/internal/domain"
)

func TestChatStatus(t *testing.T) {
	other := uuid.New()

	tests := []struct {
		name       string
		following  bool
		followedBy bool
		want       Status
	}{
		{"neither", false, false, AwaitingMutualFollow},
		{"only current user follows", true, false, AwaitingMutualFollow},
		{"only counterparty follows", false, true, AwaitingCurrentUserFollowBack},
		{"mutual", true, true, Available},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc := domain.Account{
				FollowingSellerIDs: domain.NewIDSet(),
				FollowerSellerIDs:  domain.NewIDSet(),
			}
			if tc.following {
				acc.FollowingSellerIDs.Add(other)
			}
			if tc.followedBy {
				acc.FollowerSellerIDs.Add(other)
			}
			assert.Equal(t, tc.want, ChatStatus(acc, other))

			p := domain.UserProfile{IsFollowing: tc.following, IsFollowingMe: tc.followedBy}
			assert.Equal(t, tc.want, ProfileChatStatus(p))
			assert.Equal(t, tc.want == Available, p.CanChat())
		})
	}
}

func TestChatStatus_NilSets(t *testing.T) {
	assert.Equal(t, AwaitingMutualFollow, ChatStatus(domain.Account{}, uuid.New()))
}

func TestTripJoinState(t *testing.T) {
	organizer := domain.Seller{ID: uuid.New(), Nickname: "org"}
	approved := uuid.New()
	pending := domain.Seller{ID: uuid.New(), Nickname: "pending"}
	stranger := uuid.New()

	trip := domain.GroupTrip{
		Organizer:              organizer,
		ApprovedParticipantIDs: domain.NewIDSet(approved),
		PendingRequests:        []domain.JoinRequest{{ID: uuid.New(), Applicant: pending}},
	}

	assert.Equal(t, Organizer, TripJoinState(trip, organizer.ID))
	assert.Equal(t, Approved, TripJoinState(trip, approved))
	assert.Equal(t, Pending, TripJoinState(trip, pending.ID))
	assert.Equal(t, NotRequested, TripJoinState(trip, stranger))

	assert.True(t, CanPostInTrip(trip, organizer.ID))
	assert.True(t, CanPostInTrip(trip, approved))
	assert.False(t, CanPostInTrip(trip, pending.ID))
	assert.False(t, CanPostInTrip(trip, stranger))
}

func TestTripJoinState_Precedence(t *testing.T) {
	organizer := domain.Seller{ID: uuid.New()}
	both := domain.Seller{ID: uuid.New()}

	// stale copy: organizer listed everywhere, and an approval that
	// never cleared its pending entry
	trip := domain.GroupTrip{
		Organizer:              organizer,
		ApprovedParticipantIDs: domain.NewIDSet(organizer.ID, both.ID),
		PendingRequests: []domain.JoinRequest{
			{ID: uuid.New(), Applicant: organizer},
			{ID: uuid.New(), Applicant: both},
		},
	}

	assert.Equal(t, Organizer, TripJoinState(trip, organizer.ID))
	assert.Equal(t, Approved, TripJoinState(trip, both.ID))
	assert.Equal(t, 2, trip.CurrentParticipantsCount())
}

func TestTripRoleOf(t *testing.T) {
	organizer := domain.Seller{ID: uuid.New()}
	trip := domain.GroupTrip{Organizer: organizer}

	assert.Equal(t, domain.TripRoleOrganizer, TripRoleOf(trip, organizer.ID))
	assert.Equal(t, domain.TripRoleParticipant, TripRoleOf(trip, uuid.New()))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "available", Available.String())
	assert.Equal(t, "awaiting_current_user_follow_back", AwaitingCurrentUserFollowBack.String())
	assert.Equal(t, "awaiting_mutual_follow", AwaitingMutualFollow.String())
	assert.Equal(t, "not_requested", NotRequested.String())
	assert.Equal(t, "organizer", Organizer.String())
}
