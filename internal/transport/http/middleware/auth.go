package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const AccountIDKey contextKey = "account_id"

// SessionChecker reports whether an account still holds the device session.
type SessionChecker interface {
	IsActive(accountID uuid.UUID) bool
}

// Auth accepts a bearer token signed with jwtSecret whose subject is the
// account currently signed in. A token minted before sign-out is rejected.
func Auth(jwtSecret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Missing or invalid token")
				return
			}

			accountID, ok := ParseToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
			if !ok {
				unauthorized(w, "Invalid or expired token")
				return
			}
			if !sessions.IsActive(accountID) {
				unauthorized(w, "Session has ended")
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken validates an HS256 token and returns its subject.
func ParseToken(tokenStr, jwtSecret string) (uuid.UUID, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return accountID, true
}

// GetAccountID extracts the account ID placed by Auth.
func GetAccountID(ctx context.Context) uuid.UUID {
	return ctx.Value(AccountIDKey).(uuid.UUID)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}
