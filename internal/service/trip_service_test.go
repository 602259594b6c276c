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
	"github.com/vedran77/powderswap/pkg/validator"
)

var (
	organizer = domain.NewSeller(uuid.New(), "Olga", 4.9, 30)
	applicant = domain.NewSeller(uuid.New(), "Xavi", 4.2, 3)
	outsider  = domain.NewSeller(uuid.New(), "Yuki", 5, 0)
)

func newTripService() (*TripService, *fakeNotifier) {
	n := &fakeNotifier{}
	svc := NewTripService(memory.NewTripRepo())
	svc.SetNotifier(n)
	svc.SetClock(newStepClock().Now)
	return svc, n
}

func createTrip(t *testing.T, svc *TripService) *domain.GroupTrip {
	t.Helper()
	trip, err := svc.CreateTrip(context.Background(), organizer, CreateTripInput{
		Title:                  "Powder weekend",
		Resort:                 "Jasna",
		DepartureLocation:      "Bratislava",
		StartDate:              time.Date(2027, 1, 15, 6, 30, 0, 0, time.UTC),
		MinParticipants:        4,
		MaxParticipants:        6,
		EstimatedCostPerPerson: 180,
	})
	require.NoError(t, err)
	return trip
}

func TestTripService_CreateTripValidates(t *testing.T) {
	svc, _ := newTripService()

	_, err := svc.CreateTrip(context.Background(), organizer, CreateTripInput{
		Title:           "Bad range",
		Resort:          "Jasna",
		StartDate:       time.Now(),
		MinParticipants: 6,
		MaxParticipants: 4,
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "participant_range")
}

func TestTripService_RequestAndApprove(t *testing.T) {
	ctx := context.Background()
	svc, n := newTripService()
	trip := createTrip(t, svc)
	assert.Equal(t, 1, trip.CurrentParticipantsCount())

	req, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	require.NotNil(t, req)

	trip, err = svc.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, trip.PendingRequests, 1)
	assert.Equal(t, applicant.ID, trip.PendingRequests[0].Applicant.ID)
	state, err := svc.JoinState(ctx, trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.Pending, state)

	trip, err = svc.Approve(ctx, trip.ID, organizer.ID, req.ID)
	require.NoError(t, err)
	assert.True(t, trip.ApprovedParticipantIDs.Has(applicant.ID))
	assert.Empty(t, trip.PendingRequests)
	assert.Equal(t, 2, trip.CurrentParticipantsCount())
	assert.Equal(t, 4, trip.SpotsLeft())

	state, err = svc.JoinState(ctx, trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.Approved, state)
	assert.Len(t, n.tripUpdates, 2)
}

func TestTripService_ApproveRefusesFullTrip(t *testing.T) {
	ctx := context.Background()
	svc, n := newTripService()
	trip, err := svc.CreateTrip(ctx, organizer, CreateTripInput{
		Title:           "Two seats",
		Resort:          "Jasna",
		StartDate:       time.Date(2027, 2, 1, 7, 0, 0, 0, time.UTC),
		MinParticipants: 1,
		MaxParticipants: 2,
	})
	require.NoError(t, err)

	first, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	second, err := svc.RequestToJoin(ctx, trip.ID, outsider)
	require.NoError(t, err)

	trip, err = svc.Approve(ctx, trip.ID, organizer.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, trip.IsFull())
	updates := len(n.tripUpdates)

	_, err = svc.Approve(ctx, trip.ID, organizer.ID, second.ID)
	assert.ErrorIs(t, err, ErrTripFull)
	assert.Len(t, n.tripUpdates, updates)

	trip, err = svc.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, trip.CurrentParticipantsCount())
	assert.False(t, trip.ApprovedParticipantIDs.Has(outsider.ID))
	require.Len(t, trip.PendingRequests, 1)
	assert.Equal(t, second.ID, trip.PendingRequests[0].ID)

	// declining still works on a full trip
	trip, err = svc.Revoke(ctx, trip.ID, organizer.ID, second.ID)
	require.NoError(t, err)
	assert.Empty(t, trip.PendingRequests)
}

func TestTripService_RequestToJoinIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, n := newTripService()
	trip := createTrip(t, svc)

	first, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	assert.Nil(t, second)

	fromOrganizer, err := svc.RequestToJoin(ctx, trip.ID, organizer)
	require.NoError(t, err)
	assert.Nil(t, fromOrganizer)

	trip, err = svc.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, trip.PendingRequests, 1)
	assert.Len(t, n.tripUpdates, 1)

	_, err = svc.Approve(ctx, trip.ID, organizer.ID, first.ID)
	require.NoError(t, err)
	again, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestTripService_RevokeReturnsToNotRequested(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTripService()
	trip := createTrip(t, svc)

	req, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)

	trip, err = svc.Revoke(ctx, trip.ID, organizer.ID, req.ID)
	require.NoError(t, err)
	assert.Empty(t, trip.PendingRequests)
	assert.Equal(t, 0, trip.ApprovedParticipantIDs.Len())

	state, err := svc.JoinState(ctx, trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.NotRequested, state)

	// a declined applicant may ask again
	req, err = svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)
	assert.NotNil(t, req)
}

func TestTripService_OrganizerOnlyDecisions(t *testing.T) {
	ctx := context.Background()
	svc, n := newTripService()
	trip := createTrip(t, svc)
	req, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, trip.ID, applicant.ID, req.ID)
	assert.ErrorIs(t, err, ErrNotTripOrganizer)
	_, err = svc.Revoke(ctx, trip.ID, outsider.ID, req.ID)
	assert.ErrorIs(t, err, ErrNotTripOrganizer)

	// unknown request ids change nothing
	updates := len(n.tripUpdates)
	trip, err = svc.Approve(ctx, trip.ID, organizer.ID, uuid.New())
	require.NoError(t, err)
	assert.Len(t, trip.PendingRequests, 1)
	assert.Len(t, n.tripUpdates, updates)

	_, err = svc.Approve(ctx, uuid.New(), organizer.ID, req.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestTripService_ChatIsMembersOnly(t *testing.T) {
	ctx := context.Background()
	svc, n := newTripService()
	trip := createTrip(t, svc)
	req, err := svc.RequestToJoin(ctx, trip.ID, applicant)
	require.NoError(t, err)

	thread, err := svc.TripThread(ctx, trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Nil(t, thread)
	_, err = svc.SendTripMessage(ctx, trip.ID, applicant, "can I come?")
	assert.ErrorIs(t, err, ErrNotTripMember)

	_, err = svc.Approve(ctx, trip.ID, organizer.ID, req.ID)
	require.NoError(t, err)

	msg, err := svc.SendTripMessage(ctx, trip.ID, organizer, "Meet at 6:30")
	require.NoError(t, err)
	assert.Equal(t, domain.TripRoleOrganizer, msg.Role)
	assert.Equal(t, "Olga", msg.SenderName)

	msg, err = svc.SendTripMessage(ctx, trip.ID, applicant, " See you there ")
	require.NoError(t, err)
	assert.Equal(t, domain.TripRoleParticipant, msg.Role)
	assert.Equal(t, "See you there", msg.Text)

	blank, err := svc.SendTripMessage(ctx, trip.ID, applicant, "  ")
	require.NoError(t, err)
	assert.Nil(t, blank)

	thread, err = svc.TripThread(ctx, trip.ID, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Equal(t, trip.ID, thread.TripID)
	assert.Len(t, thread.Messages, 2)
	assert.Len(t, n.tripMessages, 2)

	thread, err = svc.TripThread(ctx, trip.ID, outsider.ID)
	require.NoError(t, err)
	assert.Nil(t, thread)
}
