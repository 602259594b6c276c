package domain

import (
	"time"

	"github.com/google/uuid"
)

type SenderRole int

const (
	RoleBuyer SenderRole = iota + 1
	RoleSeller
)

var senderRoleNames = map[SenderRole]string{
	RoleBuyer:  "buyer",
	RoleSeller: "seller",
}

var senderRoleDisplay = map[SenderRole]string{
	RoleBuyer:  "You",
	RoleSeller: "Seller",
}

func (r SenderRole) String() string {
	return senderRoleNames[r]
}

func (r SenderRole) DisplayName() string {
	return senderRoleDisplay[r]
}

func (r SenderRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// MessageThread is the conversation between an account and one counterparty
// seller, optionally anchored to the listing it started from.
type MessageThread struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Seller    Seller    `json:"seller"`
	Listing   *Listing  `json:"listing,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID       uuid.UUID  `json:"id"`
	ThreadID uuid.UUID  `json:"thread_id"`
	SenderID uuid.UUID  `json:"sender_id"`
	Role     SenderRole `json:"role"`
	Text     string     `json:"text"`
	SentAt   time.Time  `json:"sent_at"`
}

func (t MessageThread) Clone() MessageThread {
	if t.Listing != nil {
		l := t.Listing.Clone()
		t.Listing = &l
	}
	t.Messages = append([]Message(nil), t.Messages...)
	return t
}

// LastSentAt returns the timestamp of the newest message, or the zero time.
func (t MessageThread) LastSentAt() time.Time {
	if len(t.Messages) == 0 {
		return time.Time{}
	}
	return t.Messages[len(t.Messages)-1].SentAt
}
