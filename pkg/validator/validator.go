package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/vedran77/powderswap/internal/domain"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxDisplayName    = 100
	MaxListingTitle   = 120
	MaxMessageLength  = 4000
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error lets a ValidationErrors travel through error returns.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsPlausibleEmail is the account-profile email rule: the address must
// contain both an "@" and a ".".
func IsPlausibleEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

func ValidateRegister(username, password, displayName string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len([]rune(username)) < MinUsernameLength {
		errs.Add("username", fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	} else if len([]rune(username)) > MaxUsernameLength {
		errs.Add("username", "Username is too long")
	}

	if len(strings.TrimSpace(displayName)) > MaxDisplayName {
		errs.Add("display_name", "Display name is too long")
	}

	validatePassword("password", password, errs)

	return errs
}

func ValidateSignIn(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateProfile(displayName, email string) ValidationErrors {
	errs := make(ValidationErrors)

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) > MaxDisplayName {
		errs.Add("display_name", "Display name is too long")
	}

	email = strings.TrimSpace(email)
	if email != "" && !IsPlausibleEmail(email) {
		errs.Add("email", "Invalid email address")
	}

	return errs
}

// ValidateRemoteLogin checks credentials bound for the remote marketplace
// API, which identifies accounts by email.
func ValidateRemoteLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateListing(title, condition, tradeOption string, price float64) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > MaxListingTitle {
		errs.Add("title", "Title is too long")
	}

	if price < 0 {
		errs.Add("price", "Price cannot be negative")
	}

	if _, err := domain.ParseCondition(condition); err != nil {
		errs.Add("condition", fmt.Sprintf("Unknown condition %q", condition))
	}
	if _, err := domain.ParseTradeOption(tradeOption); err != nil {
		errs.Add("trade_option", fmt.Sprintf("Unknown trade option %q", tradeOption))
	}

	return errs
}

func ValidateTrip(title, resort string, startDate time.Time, minParticipants, maxParticipants int, cost float64) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(title) == "" {
		errs.Add("title", "Trip title is required")
	}
	if strings.TrimSpace(resort) == "" {
		errs.Add("resort", "Resort is required")
	}
	if startDate.IsZero() {
		errs.Add("start_date", "Start date is required")
	}
	if minParticipants < 1 {
		errs.Add("participant_range", "Minimum participants must be at least 1")
	} else if maxParticipants < minParticipants {
		errs.Add("participant_range", "Maximum participants must not be below the minimum")
	}
	if cost < 0 {
		errs.Add("estimated_cost_per_person", "Cost cannot be negative")
	}

	return errs
}

func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	if len(text) > MaxMessageLength {
		errs.Add("text", "Message is too long")
	}

	return errs
}

func validatePassword(field, password string, errs ValidationErrors) {
	if len([]rune(password)) < MinPasswordLength {
		errs.Add(field, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
}
