package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository"
	"github.com/vedran77/powderswap/pkg/validator"
)

var (
	ErrNoMatchingAccount        = errors.New("no account matches that username")
	ErrIncorrectPassword        = errors.New("incorrect password")
	ErrUsernameTooShort         = errors.New("username must be at least 3 characters")
	ErrWeakPassword             = errors.New("password must be at least 6 characters")
	ErrUsernameTaken            = errors.New("username already taken")
	ErrEmptyDisplayName         = errors.New("display name cannot be empty")
	ErrInvalidEmail             = errors.New("email address is invalid")
	ErrIncorrectCurrentPassword = errors.New("current password is incorrect")
	ErrPasswordsDoNotMatch      = errors.New("new passwords do not match")
	ErrNoActiveAccount          = errors.New("no account is signed in")
)

// SessionService owns the account store and the single signed-in session
// of this device.
type SessionService struct {
	accountRepo repository.AccountRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	now         func() time.Time

	mu        sync.RWMutex
	currentID uuid.UUID
	signedIn  bool
	lastErr   error
}

func NewSessionService(accountRepo repository.AccountRepository, jwtSecret string, tokenTTL time.Duration) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionService{
		accountRepo: accountRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// SetClock replaces the time source (tests).
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

type RegisterInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProfileInput struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type AuthResponse struct {
	Account     *domain.Account `json:"account"`
	AccessToken string          `json:"access_token"`
}

// SignIn matches the username case-insensitively and the password exactly.
// A failure records LastError and leaves any existing session in place.
func (s *SessionService) SignIn(ctx context.Context, input SignInInput) (*AuthResponse, error) {
	account, err := s.accountRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if account == nil {
		s.fail(ErrNoMatchingAccount)
		return nil, ErrNoMatchingAccount
	}
	if !verifyPassword(input.Password, account.PasswordHash) {
		s.fail(ErrIncorrectPassword)
		return nil, ErrIncorrectPassword
	}

	return s.startSession(account)
}

// Register creates an account with a fresh seller identity and signs it in.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	if len([]rune(username)) < validator.MinUsernameLength {
		s.fail(ErrUsernameTooShort)
		return nil, ErrUsernameTooShort
	}
	if len([]rune(input.Password)) < validator.MinPasswordLength {
		s.fail(ErrWeakPassword)
		return nil, ErrWeakPassword
	}

	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.fail(ErrUsernameTaken)
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	nickname := strings.TrimSpace(input.DisplayName)
	if nickname == "" {
		nickname = username
	}

	now := s.now()
	account := &domain.Account{
		ID:                 uuid.New(),
		Username:           username,
		PasswordHash:       hash,
		Seller:             domain.NewSeller(uuid.New(), nickname, domain.DefaultRating, 0),
		FollowingSellerIDs: domain.NewIDSet(),
		FollowerSellerIDs:  domain.NewIDSet(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.fail(ErrUsernameTaken)
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return s.startSession(account)
}

// UpdateProfile edits the signed-in account.
func (s *SessionService) UpdateProfile(ctx context.Context, input ProfileInput) (*domain.Account, error) {
	account, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, ErrEmptyDisplayName
	}
	email := strings.TrimSpace(input.Email)
	if email != "" && !validator.IsPlausibleEmail(email) {
		return nil, ErrInvalidEmail
	}

	account.Seller.Nickname = name
	account.Email = email
	account.Location = strings.TrimSpace(input.Location)
	account.Bio = strings.TrimSpace(input.Bio)
	account.UpdatedAt = s.now()

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}

	// Re-read so the caller sees the committed state with a fresh follow graph.
	return s.Current(ctx)
}

// ChangePassword checks current password, confirmation, then strength.
func (s *SessionService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	account, err := s.Current(ctx)
	if err != nil {
		return err
	}

	if !verifyPassword(input.CurrentPassword, account.PasswordHash) {
		return ErrIncorrectCurrentPassword
	}
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordsDoNotMatch
	}
	if len([]rune(input.NewPassword)) < validator.MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	account.PasswordHash = hash
	account.UpdatedAt = s.now()

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// SignOut ends the session. The account stays in the store.
func (s *SessionService) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = false
	s.currentID = uuid.Nil
}

// Current returns a fresh snapshot of the signed-in account.
func (s *SessionService) Current(ctx context.Context) (*domain.Account, error) {
	s.mu.RLock()
	id, ok := s.currentID, s.signedIn
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoActiveAccount
	}

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNoActiveAccount
	}
	return account, nil
}

// IsActive reports whether accountID owns the current session.
func (s *SessionService) IsActive(accountID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signedIn && s.currentID == accountID
}

func (s *SessionService) IsSignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signedIn
}

// LastError returns the error of the most recent failed sign-in or
// registration, cleared by the next success.
func (s *SessionService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *SessionService) startSession(account *domain.Account) (*AuthResponse, error) {
	token, err := s.generateToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	s.mu.Lock()
	s.currentID = account.ID
	s.signedIn = true
	s.lastErr = nil
	s.mu.Unlock()

	return &AuthResponse{Account: account, AccessToken: token}, nil
}

func (s *SessionService) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *SessionService) generateToken(accountID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": accountID.String(),
		"exp": now.Add(s.tokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
