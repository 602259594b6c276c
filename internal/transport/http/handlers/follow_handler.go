package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

type followResponse struct {
	SellerID uuid.UUID    `json:"seller_id"`
	Status   authz.Status `json:"status"`
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "follow", h.followService.Follow)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "unfollow", h.followService.Unfollow)
}

func (h *FollowHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "follow status", h.followService.Status)
}

func (h *FollowHandler) respond(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, accountID, sellerID uuid.UUID) (authz.Status, error)) {
	accountID := middleware.GetAccountID(r.Context())
	sellerID, ok := pathID(w, r, "sellerID", "seller")
	if !ok {
		return
	}

	status, err := fn(r.Context(), accountID, sellerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotFollowSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_FOLLOW_SELF", "You cannot follow yourself")
		case writeServiceError(w, err):
		default:
			writeInternal(w, op, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, followResponse{SellerID: sellerID, Status: status})
}
