package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/pkg/validator"
)

type TripHandler struct {
	tripService    *service.TripService
	sessionService *service.SessionService
}

func NewTripHandler(tripService *service.TripService, sessionService *service.SessionService) *TripHandler {
	return &TripHandler{tripService: tripService, sessionService: sessionService}
}

type tripResponse struct {
	Trip                     *domain.GroupTrip `json:"trip"`
	JoinState                authz.JoinState   `json:"join_state"`
	CurrentParticipantsCount int               `json:"current_participants_count"`
	SpotsLeft                int               `json:"spots_left"`
}

type joinResponse struct {
	Request   *domain.JoinRequest `json:"request"`
	JoinState authz.JoinState     `json:"join_state"`
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripService.ListTrips(r.Context())
	if err != nil {
		writeInternal(w, "list trips", err)
		return
	}

	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}

	var input service.CreateTripInput
	if !decodeJSON(w, r, &input) {
		return
	}

	trip, err := h.tripService.CreateTrip(r.Context(), seller, input)
	if err != nil {
		if !writeServiceError(w, err) {
			writeInternal(w, "create trip", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "id", "trip")
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(r.Context(), tripID)
	if err != nil {
		h.writeTripError(w, "get trip", err)
		return
	}

	writeJSON(w, http.StatusOK, tripResponse{
		Trip:                     trip,
		JoinState:                authz.TripJoinState(*trip, seller.ID),
		CurrentParticipantsCount: trip.CurrentParticipantsCount(),
		SpotsLeft:                trip.SpotsLeft(),
	})
}

// Join answers 200 with a null request when nothing was filed.
func (h *TripHandler) Join(w http.ResponseWriter, r *http.Request) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "id", "trip")
	if !ok {
		return
	}

	req, err := h.tripService.RequestToJoin(r.Context(), tripID, seller)
	if err != nil {
		h.writeTripError(w, "request to join", err)
		return
	}
	state, err := h.tripService.JoinState(r.Context(), tripID, seller.ID)
	if err != nil {
		h.writeTripError(w, "join state", err)
		return
	}

	status := http.StatusOK
	if req != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, joinResponse{Request: req, JoinState: state})
}

func (h *TripHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve join request", h.tripService.Approve)
}

func (h *TripHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "revoke join request", h.tripService.Revoke)
}

func (h *TripHandler) Chat(w http.ResponseWriter, r *http.Request) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "id", "trip")
	if !ok {
		return
	}

	thread, err := h.tripService.TripThread(r.Context(), tripID, seller.ID)
	if err != nil {
		h.writeTripError(w, "trip chat", err)
		return
	}
	if thread == nil {
		writeError(w, http.StatusForbidden, "NOT_TRIP_MEMBER", service.ErrNotTripMember.Error())
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

func (h *TripHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "id", "trip")
	if !ok {
		return
	}

	var input messageInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateMessage(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.tripService.SendTripMessage(r.Context(), tripID, seller, input.Text)
	if err != nil {
		h.writeTripError(w, "send trip message", err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *TripHandler) decide(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, tripID, organizerID, requestID uuid.UUID) (*domain.GroupTrip, error)) {
	seller, ok := h.seller(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "id", "trip")
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "rid", "request")
	if !ok {
		return
	}

	trip, err := fn(r.Context(), tripID, seller.ID, requestID)
	if err != nil {
		h.writeTripError(w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// seller resolves the signed-in account's seller identity.
func (h *TripHandler) seller(w http.ResponseWriter, r *http.Request) (domain.Seller, bool) {
	account, err := h.sessionService.Current(r.Context())
	if err != nil {
		if !writeServiceError(w, err) {
			writeInternal(w, "current account", err)
		}
		return domain.Seller{}, false
	}
	return account.Seller, true
}

func (h *TripHandler) writeTripError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTripNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
	case errors.Is(err, service.ErrNotTripOrganizer):
		writeError(w, http.StatusForbidden, "NOT_TRIP_ORGANIZER", err.Error())
	case errors.Is(err, service.ErrNotTripMember):
		writeError(w, http.StatusForbidden, "NOT_TRIP_MEMBER", err.Error())
	case errors.Is(err, service.ErrTripFull):
		writeError(w, http.StatusConflict, "TRIP_FULL", err.Error())
	case writeServiceError(w, err):
	default:
		writeInternal(w, op, err)
	}
}
