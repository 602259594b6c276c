package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
	"github.com/vedran77/powderswap/pkg/validator"
)

var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrNotTripOrganizer = errors.New("only the trip organizer can perform this action")
	ErrNotTripMember    = errors.New("only the organizer and approved participants can use the trip chat")
	ErrTripFull         = errors.New("trip has no spots left")
)

type TripService struct {
	tripRepo repository.TripRepository
	notifier Notifier
	now      func() time.Time
}

func NewTripService(tripRepo repository.TripRepository) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		now:      time.Now,
	}
}

func (s *TripService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *TripService) SetClock(now func() time.Time) {
	s.now = now
}

type CreateTripInput struct {
	Title                  string    `json:"title"`
	Resort                 string    `json:"resort"`
	DepartureLocation      string    `json:"departure_location"`
	StartDate              time.Time `json:"start_date"`
	MinParticipants        int       `json:"min_participants"`
	MaxParticipants        int       `json:"max_participants"`
	EstimatedCostPerPerson float64   `json:"estimated_cost_per_person"`
}

// CreateTrip registers a trip. The organizer is fixed here for good.
func (s *TripService) CreateTrip(ctx context.Context, organizer domain.Seller, input CreateTripInput) (*domain.GroupTrip, error) {
	if errs := validator.ValidateTrip(input.Title, input.Resort, input.StartDate,
		input.MinParticipants, input.MaxParticipants, input.EstimatedCostPerPerson); errs.HasErrors() {
		return nil, errs
	}

	trip := &domain.GroupTrip{
		ID:                     uuid.New(),
		Title:                  strings.TrimSpace(input.Title),
		Resort:                 strings.TrimSpace(input.Resort),
		DepartureLocation:      strings.TrimSpace(input.DepartureLocation),
		StartDate:              input.StartDate,
		ParticipantRange:       domain.ParticipantRange{Min: input.MinParticipants, Max: input.MaxParticipants},
		EstimatedCostPerPerson: input.EstimatedCostPerPerson,
		Organizer:              organizer,
		ApprovedParticipantIDs: domain.NewIDSet(),
		PendingRequests:        []domain.JoinRequest{},
		CreatedAt:              s.now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("creating trip: %w", err)
	}
	return trip, nil
}

func (s *TripService) ListTrips(ctx context.Context) ([]domain.GroupTrip, error) {
	trips, err := s.tripRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []domain.GroupTrip{}
	}
	return trips, nil
}

func (s *TripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.GroupTrip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	return trip, nil
}

func (s *TripService) JoinState(ctx context.Context, tripID, sellerID uuid.UUID) (authz.JoinState, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return authz.NotRequested, err
	}
	return authz.TripJoinState(*trip, sellerID), nil
}

// RequestToJoin files a join request. It returns (nil, nil) when the
// applicant is the organizer, already approved or already pending.
func (s *TripService) RequestToJoin(ctx context.Context, tripID uuid.UUID, applicant domain.Seller) (*domain.JoinRequest, error) {
	var created *domain.JoinRequest

	trip, err := s.tripRepo.Update(ctx, tripID, func(trip *domain.GroupTrip) error {
		if authz.TripJoinState(*trip, applicant.ID) != authz.NotRequested {
			return nil
		}
		req := domain.JoinRequest{
			ID:          uuid.New(),
			Applicant:   applicant,
			RequestedAt: s.now(),
		}
		trip.PendingRequests = append(trip.PendingRequests, req)
		created = &req
		return nil
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	if created != nil && s.notifier != nil {
		s.notifier.NotifyTripUpdated(trip)
	}
	return created, nil
}

// Approve moves the request's applicant onto the approved roster. An
// unknown request id changes nothing. A full trip refuses new participants
// with ErrTripFull and keeps the request pending.
func (s *TripService) Approve(ctx context.Context, tripID, organizerID, requestID uuid.UUID) (*domain.GroupTrip, error) {
	changed := false

	trip, err := s.tripRepo.Update(ctx, tripID, func(trip *domain.GroupTrip) error {
		if trip.Organizer.ID != organizerID {
			return ErrNotTripOrganizer
		}
		req, ok := removeRequest(trip, requestID)
		if !ok {
			return nil
		}
		changed = true
		if req.Applicant.ID == trip.Organizer.ID {
			return nil
		}
		if trip.IsFull() && !trip.ApprovedParticipantIDs.Has(req.Applicant.ID) {
			return ErrTripFull
		}
		if trip.ApprovedParticipantIDs == nil {
			trip.ApprovedParticipantIDs = domain.NewIDSet()
		}
		trip.ApprovedParticipantIDs.Add(req.Applicant.ID)

		// drop any stale duplicate from the same applicant
		kept := trip.PendingRequests[:0]
		for _, r := range trip.PendingRequests {
			if r.Applicant.ID != req.Applicant.ID {
				kept = append(kept, r)
			}
		}
		trip.PendingRequests = kept
		return nil
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	if changed && s.notifier != nil {
		s.notifier.NotifyTripUpdated(trip)
	}
	return trip, nil
}

// Revoke declines a pending request. The approved roster is not touched.
func (s *TripService) Revoke(ctx context.Context, tripID, organizerID, requestID uuid.UUID) (*domain.GroupTrip, error) {
	changed := false

	trip, err := s.tripRepo.Update(ctx, tripID, func(trip *domain.GroupTrip) error {
		if trip.Organizer.ID != organizerID {
			return ErrNotTripOrganizer
		}
		_, changed = removeRequest(trip, requestID)
		return nil
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	if changed && s.notifier != nil {
		s.notifier.NotifyTripUpdated(trip)
	}
	return trip, nil
}

// TripThread opens the trip chat for the organizer or an approved
// participant and returns (nil, nil) for anyone else.
func (s *TripService) TripThread(ctx context.Context, tripID, sellerID uuid.UUID) (*domain.GroupTripThread, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !authz.CanPostInTrip(*trip, sellerID) {
		return nil, nil
	}

	thread, err := s.tripRepo.GetOrCreateThread(ctx, tripID, func() domain.GroupTripThread {
		return domain.GroupTripThread{
			ID:        uuid.New(),
			Messages:  []domain.GroupTripMessage{},
			CreatedAt: s.now(),
		}
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	return thread, nil
}

// SendTripMessage posts to the trip chat, stamping the sender's role.
// Blank text yields (nil, nil).
func (s *TripService) SendTripMessage(ctx context.Context, tripID uuid.UUID, sender domain.Seller, text string) (*domain.GroupTripMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !authz.CanPostInTrip(*trip, sender.ID) {
		return nil, ErrNotTripMember
	}

	if _, err := s.TripThread(ctx, tripID, sender.ID); err != nil {
		return nil, err
	}

	msg, err := s.tripRepo.AppendThreadMessage(ctx, tripID, domain.GroupTripMessage{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		SenderName: sender.Nickname,
		Role:       authz.TripRoleOf(*trip, sender.ID),
		Text:       text,
		SentAt:     s.now(),
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	if s.notifier != nil {
		s.notifier.NotifyTripMessage(msg)
	}
	return msg, nil
}

func (s *TripService) mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTripNotFound
	}
	return err
}

// removeRequest deletes the request with id from the pending list, keeping
// the order of the rest.
func removeRequest(trip *domain.GroupTrip, id uuid.UUID) (domain.JoinRequest, bool) {
	for i, r := range trip.PendingRequests {
		if r.ID == id {
			trip.PendingRequests = append(trip.PendingRequests[:i], trip.PendingRequests[i+1:]...)
			return r, true
		}
	}
	return domain.JoinRequest{}, false
}
