package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/powderswap/internal/client"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
	sessionService *service.SessionService
}

func NewListingHandler(listingService *service.ListingService, sessionService *service.SessionService) *ListingHandler {
	return &ListingHandler{listingService: listingService, sessionService: sessionService}
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.List(r.Context())
	if err != nil {
		writeInternal(w, "list listings", err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	listing, err := h.listingService.Get(r.Context(), listingID)
	if err != nil {
		h.writeListingError(w, "get listing", err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	account, err := h.sessionService.Current(r.Context())
	if err != nil {
		if !writeServiceError(w, err) {
			writeInternal(w, "current account", err)
		}
		return
	}

	var input service.PublishListingInput
	if !decodeJSON(w, r, &input) {
		return
	}

	listing, err := h.listingService.Publish(r.Context(), account.Seller, input)
	if err != nil {
		h.writeListingError(w, "publish listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	listing, err := h.listingService.ToggleFavorite(r.Context(), listingID)
	if err != nil {
		h.writeListingError(w, "toggle favorite", err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// Sync pulls the remote catalog. A failed fetch keeps the local one.
func (h *ListingHandler) Sync(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.SyncRemote(r.Context())
	if err != nil {
		h.writeListingError(w, "sync listings", err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) writeListingError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case writeServiceError(w, err):
	case writeRemoteError(w, err):
	default:
		writeInternal(w, op, err)
	}
}

// writeRemoteError maps marketplace API failures. It reports false when
// err did not come from the API client.
func writeRemoteError(w http.ResponseWriter, err error) bool {
	var httpErr *client.HTTPError
	switch {
	case errors.Is(err, service.ErrRemoteNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "REMOTE_NOT_CONFIGURED", "Remote marketplace is not configured")
	case errors.Is(err, client.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "REMOTE_LOGIN_REQUIRED", "Log in to the remote marketplace first")
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized:
		writeError(w, http.StatusUnauthorized, "REMOTE_UNAUTHORIZED", "Remote marketplace rejected the credentials")
	case errors.As(err, &httpErr):
		writeError(w, http.StatusBadGateway, "REMOTE_STATUS", httpErr.Error())
	case errors.Is(err, domain.ErrUnknownValue), errors.Is(err, client.ErrDecode):
		writeError(w, http.StatusBadGateway, "REMOTE_BAD_DATA", err.Error())
	case errors.Is(err, client.ErrTransport):
		writeError(w, http.StatusBadGateway, "REMOTE_UNREACHABLE", "Remote marketplace is unreachable")
	case errors.Is(err, client.ErrEncode):
		writeError(w, http.StatusBadRequest, "REMOTE_ENCODE", err.Error())
	default:
		return false
	}
	return true
}
