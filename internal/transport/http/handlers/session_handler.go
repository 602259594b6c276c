package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/pkg/validator"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateRegister(input.Username, input.Password, input.DisplayName); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.sessionService.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username is already taken")
		case errors.Is(err, service.ErrUsernameTooShort):
			writeError(w, http.StatusBadRequest, "USERNAME_TOO_SHORT", err.Error())
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error())
		default:
			writeInternal(w, "register", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input service.SignInInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateSignIn(input.Username, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.sessionService.SignIn(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMatchingAccount):
			writeError(w, http.StatusUnauthorized, "NO_MATCHING_ACCOUNT", "No account matches that username")
		case errors.Is(err, service.ErrIncorrectPassword):
			writeError(w, http.StatusUnauthorized, "INCORRECT_PASSWORD", "Incorrect password")
		default:
			writeInternal(w, "sign in", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessionService.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.sessionService.Current(r.Context())
	if err != nil {
		if !writeServiceError(w, err) {
			writeInternal(w, "current account", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateProfile(input.DisplayName, input.Email); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	account, err := h.sessionService.UpdateProfile(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyDisplayName):
			writeError(w, http.StatusBadRequest, "EMPTY_DISPLAY_NAME", err.Error())
		case errors.Is(err, service.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "INVALID_EMAIL", err.Error())
		case writeServiceError(w, err):
		default:
			writeInternal(w, "update profile", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// ChangePassword leaves rule ordering to the service: current password,
// then confirmation, then strength.
func (h *SessionHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input service.ChangePasswordInput
	if !decodeJSON(w, r, &input) {
		return
	}

	err := h.sessionService.ChangePassword(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncorrectCurrentPassword):
			writeError(w, http.StatusBadRequest, "INCORRECT_CURRENT_PASSWORD", err.Error())
		case errors.Is(err, service.ErrPasswordsDoNotMatch):
			writeError(w, http.StatusBadRequest, "PASSWORDS_DO_NOT_MATCH", err.Error())
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error())
		case writeServiceError(w, err):
		default:
			writeInternal(w, "change password", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
