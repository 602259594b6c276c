package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripRole int

const (
	TripRoleOrganizer TripRole = iota + 1
	TripRoleParticipant
)

var tripRoleNames = map[TripRole]string{
	TripRoleOrganizer:   "organizer",
	TripRoleParticipant: "participant",
}

var tripRoleDisplay = map[TripRole]string{
	TripRoleOrganizer:   "Organizer",
	TripRoleParticipant: "Participant",
}

func (r TripRole) String() string {
	return tripRoleNames[r]
}

func (r TripRole) DisplayName() string {
	return tripRoleDisplay[r]
}

func (r TripRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParticipantRange bounds the headcount of a trip, organizer included.
type ParticipantRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type GroupTrip struct {
	ID                     uuid.UUID        `json:"id"`
	Title                  string           `json:"title"`
	Resort                 string           `json:"resort"`
	DepartureLocation      string           `json:"departure_location"`
	StartDate              time.Time        `json:"start_date"`
	ParticipantRange       ParticipantRange `json:"participant_range"`
	EstimatedCostPerPerson float64          `json:"estimated_cost_per_person"`
	Organizer              Seller           `json:"organizer"`
	ApprovedParticipantIDs IDSet            `json:"approved_participant_ids"`
	PendingRequests        []JoinRequest    `json:"pending_requests"`
	CreatedAt              time.Time        `json:"created_at"`
}

type JoinRequest struct {
	ID          uuid.UUID `json:"id"`
	Applicant   Seller    `json:"applicant"`
	RequestedAt time.Time `json:"requested_at"`
}

func (t GroupTrip) Clone() GroupTrip {
	t.ApprovedParticipantIDs = t.ApprovedParticipantIDs.Clone()
	t.PendingRequests = append([]JoinRequest(nil), t.PendingRequests...)
	return t
}

// CurrentParticipantsCount counts the organizer plus approved participants.
func (t GroupTrip) CurrentParticipantsCount() int {
	n := 1
	for id := range t.ApprovedParticipantIDs {
		if id != t.Organizer.ID {
			n++
		}
	}
	return n
}

func (t GroupTrip) SpotsLeft() int {
	return max(t.ParticipantRange.Max-t.CurrentParticipantsCount(), 0)
}

func (t GroupTrip) IsFull() bool {
	return t.SpotsLeft() == 0
}

// PendingRequest returns the pending request filed by applicantID, if any.
func (t GroupTrip) PendingRequest(applicantID uuid.UUID) *JoinRequest {
	for i := range t.PendingRequests {
		if t.PendingRequests[i].Applicant.ID == applicantID {
			req := t.PendingRequests[i]
			return &req
		}
	}
	return nil
}

type GroupTripThread struct {
	ID        uuid.UUID          `json:"id"`
	TripID    uuid.UUID          `json:"trip_id"`
	Messages  []GroupTripMessage `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
}

type GroupTripMessage struct {
	ID         uuid.UUID `json:"id"`
	TripID     uuid.UUID `json:"trip_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Role       TripRole  `json:"role"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}

func (t GroupTripThread) Clone() GroupTripThread {
	t.Messages = append([]GroupTripMessage(nil), t.Messages...)
	return t
}

func (t GroupTripThread) LastSentAt() time.Time {
	if len(t.Messages) == 0 {
		return time.Time{}
	}
	return t.Messages[len(t.Messages)-1].SentAt
}
