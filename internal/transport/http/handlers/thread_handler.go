package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/authz"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/internal/transport/http/middleware"
	"github.com/vedran77/powderswap/pkg/validator"
)

type ThreadHandler struct {
	conversationService *service.ConversationService
}

func NewThreadHandler(conversationService *service.ConversationService) *ThreadHandler {
	return &ThreadHandler{conversationService: conversationService}
}

// openThreadResponse carries a nil thread when chat is not yet available.
type openThreadResponse struct {
	Thread     *domain.MessageThread `json:"thread"`
	ChatStatus authz.Status          `json:"chat_status"`
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	threads, err := h.conversationService.ListThreads(r.Context(), accountID)
	if err != nil {
		writeInternal(w, "list threads", err)
		return
	}

	writeJSON(w, http.StatusOK, threads)
}

func (h *ThreadHandler) Open(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var input service.OpenThreadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.SellerID == uuid.Nil {
		writeValidationErrors(w, validator.ValidationErrors{"seller_id": "Seller is required"})
		return
	}

	thread, err := h.conversationService.ThreadForSeller(r.Context(), accountID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotChatSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_CHAT_SELF", "You cannot message yourself")
		case errors.Is(err, service.ErrListingNotFound):
			writeError(w, http.StatusNotFound, "LISTING_NOT_FOUND", "Listing not found")
		case writeServiceError(w, err):
		default:
			writeInternal(w, "open thread", err)
		}
		return
	}

	status, err := h.conversationService.ChatStatus(r.Context(), accountID, input.SellerID)
	if err != nil {
		writeInternal(w, "chat status", err)
		return
	}

	writeJSON(w, http.StatusOK, openThreadResponse{Thread: thread, ChatStatus: status})
}

func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	threadID, ok := pathID(w, r, "id", "thread")
	if !ok {
		return
	}

	thread, err := h.conversationService.GetThread(r.Context(), accountID, threadID)
	if err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
		} else {
			writeInternal(w, "get thread", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// Send answers 204 when the text is blank and nothing was posted.
func (h *ThreadHandler) Send(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	threadID, ok := pathID(w, r, "id", "thread")
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

	msg, err := h.conversationService.SendMessage(r.Context(), accountID, threadID, input.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
		case errors.Is(err, service.ErrChatUnavailable):
			writeError(w, http.StatusForbidden, "CHAT_UNAVAILABLE", "Chat requires a mutual follow")
		case writeServiceError(w, err):
		default:
			writeInternal(w, "send message", err)
		}
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
