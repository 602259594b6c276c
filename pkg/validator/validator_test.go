package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		wantField string
	}{
		{"ok", "alice", "secret1", ""},
		{"short username", "al", "secret1", "username"},
		{"blank username", "   ", "secret1", "username"},
		{"long username", strings.Repeat("a", 51), "secret1", "username"},
		{"short password", "alice", "12345", "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateRegister(tc.username, tc.password, "")
			if tc.wantField == "" {
				assert.False(t, errs.HasErrors(), "%v", errs)
				return
			}
			assert.Contains(t, errs, tc.wantField)
		})
	}
}

func TestValidateProfile_Email(t *testing.T) {
	assert.False(t, ValidateProfile("Alice", "").HasErrors())
	assert.False(t, ValidateProfile("Alice", "alice@example.com").HasErrors())
	assert.Contains(t, ValidateProfile("Alice", "alice.example.com"), "email")
	assert.Contains(t, ValidateProfile("Alice", "alice@example"), "email")
	assert.Contains(t, ValidateProfile("  ", "alice@example.com"), "display_name")
}

func TestValidateListing(t *testing.T) {
	assert.False(t, ValidateListing("Burton Custom 158", "good", "shipping", 250).HasErrors())

	errs := ValidateListing("", "mint", "teleport", -1)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "condition")
	assert.Contains(t, errs, "trade_option")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs.Error(), "mint")
}

func TestValidateTrip(t *testing.T) {
	start := time.Date(2027, 1, 15, 7, 0, 0, 0, time.UTC)
	assert.False(t, ValidateTrip("Powder day", "Jasna", start, 4, 6, 120).HasErrors())
	assert.Contains(t, ValidateTrip("Powder day", "Jasna", start, 5, 4, 0), "participant_range")
	assert.Contains(t, ValidateTrip("Powder day", "Jasna", start, 0, 4, 0), "participant_range")
	assert.Contains(t, ValidateTrip("Powder day", "", time.Time{}, 1, 1, 0), "start_date")
}

func TestValidateRemoteLogin(t *testing.T) {
	assert.False(t, ValidateRemoteLogin("rider@example.com", "pw").HasErrors())
	assert.Contains(t, ValidateRemoteLogin("not-an-email", "pw"), "email")
	assert.Contains(t, ValidateRemoteLogin("rider@example.com", ""), "password")
}
