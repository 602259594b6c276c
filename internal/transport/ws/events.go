package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeTopicSubscribe   = "topic.subscribe"
	EventTypeTopicUnsubscribe = "topic.unsubscribe"
	EventTypePing             = "ping"
)

// Event types - Server → Client
const (
	EventTypeThreadMessage = "thread.message"
	EventTypeTripUpdated   = "trip.updated"
	EventTypeTripMessage   = "trip.message"
	EventTypeChatOpened    = "chat.opened"
	EventTypeChatClosed    = "chat.closed"
	EventTypeChatMessage   = "chat.message"
	EventTypePong          = "pong"
	EventTypeError         = "error"
)

// Event is the base envelope for all WebSocket messages. TopicID names the
// thread or trip an event belongs to.
type Event struct {
	Type      string          `json:"type"`
	TopicID   *uuid.UUID      `json:"topic_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type TopicPayload struct {
	TopicID uuid.UUID `json:"topic_id"`
}

type ThreadMessagePayload struct {
	ThreadID uuid.UUID      `json:"thread_id"`
	SellerID uuid.UUID      `json:"seller_id"`
	Message  domain.Message `json:"message"`
}

type ChatClosedPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type ChatMessagePayload struct {
	UserID  uuid.UUID              `json:"user_id"`
	Message domain.UserChatMessage `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, topicID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		TopicID:   topicID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
