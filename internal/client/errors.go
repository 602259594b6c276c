package client

import (
	"errors"
	"fmt"

	"github.com/vedran77/powderswap/internal/domain"
)

var (
	ErrInvalidURL   = errors.New("invalid base URL")
	ErrMissingToken = errors.New("no auth token; log in first")
	ErrTransport    = errors.New("transport failure")
	ErrHTTPStatus   = errors.New("unexpected HTTP status")
	ErrDecode       = errors.New("decoding response")
	ErrEncode       = errors.New("encoding request")

	// ErrDomain matches responses carrying values the domain cannot
	// represent, such as an unknown listing condition.
	ErrDomain = domain.ErrUnknownValue
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatus
}
