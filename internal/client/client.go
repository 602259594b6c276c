// Package client talks to the remote marketplace REST API. It caches the
// bearer token in memory and persists it through a TokenStore so a
// restarted app stays logged in.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vedran77/powderswap/internal/domain"
)

// TokenKey is the store key the token lives under.
const TokenKey = "auth_token"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize int64 = 8 << 20

const defaultTimeout = 15 * time.Second

// TokenStore is an opaque key/value store. Get returns "" for a missing key.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type APIClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger
	timeout    time.Duration

	// writeMu spans the cache update and the store write of login and
	// logout so both always end up holding the same token.
	writeMu sync.Mutex
	mu      sync.RWMutex
	token   string
}

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) {
		a.httpClient = c
	}
}

// WithTimeout bounds every request. It never modifies a client passed to
// WithHTTPClient; New applies it to a copy.
func WithTimeout(d time.Duration) Option {
	return func(a *APIClient) {
		a.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *APIClient) {
		a.logger = l
	}
}

// Session is the outcome of a successful login or registration.
type Session struct {
	Token     string         `json:"token"`
	Account   domain.Account `json:"account"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// New validates baseURL and restores any token saved in store.
func New(ctx context.Context, baseURL string, store TokenStore, opts ...Option) (*APIClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &APIClient{
		baseURL: u,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.httpClient == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	token, err := store.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("loading saved token: %w", err)
	}
	c.token = token

	return c, nil
}

func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// TokenExpiresAt reads the exp claim without verifying the signature. It is
// zero when there is no token or the token is not a JWT with exp.
func (c *APIClient) TokenExpiresAt() time.Time {
	return tokenExpiry(c.Token())
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", false, loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c.startSession(ctx, resp)
}

func (c *APIClient) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", false, registerRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return c.startSession(ctx, resp)
}

// FetchCurrentUser returns (nil, nil) when no token is held.
func (c *APIClient) FetchCurrentUser(ctx context.Context) (*domain.Account, error) {
	if c.Token() == "" {
		return nil, nil
	}

	var user userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/me", true, nil, &user); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	account := user.toAccount()
	return &account, nil
}

// FetchListings returns every listing or an error; one listing with an
// unknown enum value fails the whole call.
func (c *APIClient) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	var dtos []listingDTO
	if err := c.do(ctx, http.MethodGet, "/listings", true, nil, &dtos); err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	listings := make([]domain.Listing, 0, len(dtos))
	for _, dto := range dtos {
		l, err := dto.toListing()
		if err != nil {
			return nil, fmt.Errorf("fetch listings: listing %s: %w", dto.ListingID, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *APIClient) CreateListing(ctx context.Context, draft domain.Listing) (*domain.Listing, error) {
	if !draft.Condition.Valid() || !draft.TradeOption.Valid() {
		return nil, fmt.Errorf("create listing: %w: condition or trade option unset", ErrEncode)
	}

	var dto listingDTO
	if err := c.do(ctx, http.MethodPost, "/listings", true, newCreateListingRequest(draft), &dto); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	listing, err := dto.toListing()
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return &listing, nil
}

// Logout forgets the token locally. The API is not contacted.
func (c *APIClient) Logout(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.setToken("")
	if err := c.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clearing saved token: %w", err)
	}
	return nil
}

func (c *APIClient) startSession(ctx context.Context, resp authResponse) (*Session, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: response has no token", ErrDecode)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.store.Set(ctx, TokenKey, resp.Token); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}
	c.setToken(resp.Token)

	return &Session{
		Token:     resp.Token,
		Account:   resp.User.toAccount(),
		ExpiresAt: tokenExpiry(resp.Token),
	}, nil
}

func (c *APIClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *APIClient) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var token string
	if auth {
		token = c.Token()
		if token == "" {
			return ErrMissingToken
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
