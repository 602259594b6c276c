package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is another rider as seen by one viewer. IsFollowing is the
// viewer's edge, IsFollowingMe the counterparty's.
type UserProfile struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	Bio           string    `json:"bio"`
	HomeResort    string    `json:"home_resort"`
	IsFollowing   bool      `json:"is_following"`
	IsFollowingMe bool      `json:"is_following_me"`
	AvatarSymbol  string    `json:"avatar_symbol"`
}

func (p UserProfile) CanChat() bool {
	return p.IsFollowing && p.IsFollowingMe
}

type UserChatThread struct {
	ID        uuid.UUID         `json:"id"`
	ViewerID  uuid.UUID         `json:"viewer_id"`
	User      UserProfile       `json:"user"`
	Messages  []UserChatMessage `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
}

type UserChatMessage struct {
	ID       uuid.UUID `json:"id"`
	SenderID uuid.UUID `json:"sender_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

func (t UserChatThread) Clone() UserChatThread {
	t.Messages = append([]UserChatMessage(nil), t.Messages...)
	return t
}

func (t UserChatThread) LastSentAt() time.Time {
	if len(t.Messages) == 0 {
		return time.Time{}
	}
	return t.Messages[len(t.Messages)-1].SentAt
}
