package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/internal/transport/http/middleware"
	"github.com/vedran77/powderswap/pkg/validator"
)

// SocialHandler serves the viewer's list of riders and the chats that
// follow mutual follows.
type SocialHandler struct {
	socialService *service.SocialService
}

func NewSocialHandler(socialService *service.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

type profileResponse struct {
	domain.UserProfile
	ChatStatus authz.Status `json:"chat_status"`
}

type followsMeInput struct {
	Follows bool `json:"follows"`
}

func newProfileResponse(p domain.UserProfile) profileResponse {
	return profileResponse{UserProfile: p, ChatStatus: authz.ProfileChatStatus(p)}
}

func (h *SocialHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())

	profiles, err := h.socialService.Profiles(r.Context(), viewerID)
	if err != nil {
		writeInternal(w, "list profiles", err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SocialHandler) Add(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())

	var input domain.UserProfile
	if !decodeJSON(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		writeValidationErrors(w, validator.ValidationErrors{"display_name": "Display name is required"})
		return
	}

	profile, err := h.socialService.AddProfile(r.Context(), viewerID, input)
	if err != nil {
		writeInternal(w, "add profile", err)
		return
	}

	writeJSON(w, http.StatusCreated, newProfileResponse(*profile))
}

func (h *SocialHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	profile, err := h.socialService.Profile(r.Context(), viewerID, userID)
	if err != nil {
		h.writeSocialError(w, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(*profile))
}

func (h *SocialHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	profile, err := h.socialService.ToggleFollow(r.Context(), viewerID, userID)
	if err != nil {
		h.writeSocialError(w, "toggle follow", err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(*profile))
}

func (h *SocialHandler) SetFollowsMe(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var input followsMeInput
	if !decodeJSON(w, r, &input) {
		return
	}

	profile, err := h.socialService.SetFollowsMe(r.Context(), viewerID, userID, input.Follows)
	if err != nil {
		h.writeSocialError(w, "set follows me", err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(*profile))
}

func (h *SocialHandler) Chats(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())

	threads, err := h.socialService.ChatThreads(r.Context(), viewerID)
	if err != nil {
		writeInternal(w, "list chats", err)
		return
	}

	writeJSON(w, http.StatusOK, threads)
}

func (h *SocialHandler) Chat(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	thread, err := h.socialService.ChatThread(r.Context(), viewerID, userID)
	if err != nil {
		writeInternal(w, "get chat", err)
		return
	}
	if thread == nil {
		writeError(w, http.StatusNotFound, "CHAT_NOT_FOUND", "No chat with this rider; follow each other first")
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

func (h *SocialHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	userID, ok := pathID(w, r, "id", "user")
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

	msg, err := h.socialService.SendChatMessage(r.Context(), viewerID, userID, input.Text)
	if err != nil {
		h.writeSocialError(w, "send chat message", err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *SocialHandler) writeSocialError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Rider not found")
	case errors.Is(err, service.ErrChatUnavailable):
		writeError(w, http.StatusForbidden, "CHAT_UNAVAILABLE", "Chat requires a mutual follow")
	default:
		writeInternal(w, op, err)
	}
}
