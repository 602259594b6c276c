package handlers

import (
	"net/http"
	"time"

	"github.com/vedran77/powderswap/internal/client"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/pkg/validator"
)

// RemoteHandler manages the session with the remote marketplace API. A
// nil client answers 503 everywhere.
type RemoteHandler struct {
	api *client.APIClient
}

func NewRemoteHandler(api *client.APIClient) *RemoteHandler {
	return &RemoteHandler{api: api}
}

type remoteLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type remoteRegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type remoteStatusResponse struct {
	LoggedIn  bool            `json:"logged_in"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Account   *domain.Account `json:"account,omitempty"`
}

func (h *RemoteHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	var input remoteLoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateRemoteLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	session, err := h.api.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		if !writeRemoteError(w, err) {
			writeInternal(w, "remote login", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *RemoteHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	var input remoteRegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	errs := validator.ValidateRemoteLogin(input.Email, input.Password)
	if input.DisplayName == "" {
		errs.Add("display_name", "Display name is required")
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	session, err := h.api.Register(r.Context(), input.Email, input.Password, input.DisplayName)
	if err != nil {
		if !writeRemoteError(w, err) {
			writeInternal(w, "remote register", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Me reports whether a token is held and, if so, who it belongs to.
func (h *RemoteHandler) Me(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	account, err := h.api.FetchCurrentUser(r.Context())
	if err != nil {
		if !writeRemoteError(w, err) {
			writeInternal(w, "remote me", err)
		}
		return
	}

	resp := remoteStatusResponse{LoggedIn: account != nil}
	if account != nil {
		resp.Account = account
		if exp := h.api.TokenExpiresAt(); !exp.IsZero() {
			resp.ExpiresAt = &exp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RemoteHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	if err := h.api.Logout(r.Context()); err != nil {
		writeInternal(w, "remote logout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RemoteHandler) configured(w http.ResponseWriter) bool {
	if h.api == nil {
		writeError(w, http.StatusServiceUnavailable, "REMOTE_NOT_CONFIGURED", service.ErrRemoteNotConfigured.Error())
		return false
	}
	return true
}
