package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/service"
	"github.com/vedran77/powderswap/pkg/validator"
)

// maxBodySize bounds request bodies read by decodeJSON.
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeInternal logs err under op and hides it from the caller.
func writeInternal(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}

// writeServiceError handles the errors every authenticated handler can
// see. It reports false when err is none of them.
func writeServiceError(w http.ResponseWriter, err error) bool {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidationErrors(w, verrs)
	case errors.Is(err, service.ErrNoActiveAccount):
		writeError(w, http.StatusUnauthorized, "NO_ACTIVE_ACCOUNT", "No account is signed in")
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found")
	default:
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// pathID parses the named path segment, answering 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

type messageInput struct {
	Text string `json:"text"`
}
