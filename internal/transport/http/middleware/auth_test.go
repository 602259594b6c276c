package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	active uuid.UUID
}

func (f fakeSessions) IsActive(id uuid.UUID) bool {
	return id == f.active
}

func sign(t *testing.T, secret string, sub string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	active := uuid.New()
	var seen uuid.UUID
	h := Auth("secret", fakeSessions{active: active})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAccountID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	future := time.Now().Add(time.Hour)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, "other", active.String(), future), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, "secret", active.String(), time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"bad subject", "Bearer " + sign(t, "secret", "alice", future), http.StatusUnauthorized},
		{"signed out", "Bearer " + sign(t, "secret", uuid.NewString(), future), http.StatusUnauthorized},
		{"ok", "Bearer " + sign(t, "secret", active.String(), future), http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
	assert.Equal(t, active, seen)
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/trips", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
