package ws

import (
	"log"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyThreadMessage(thread *domain.MessageThread, msg *domain.Message) {
	evt, err := NewEvent(EventTypeThreadMessage, &thread.ID, ThreadMessagePayload{
		ThreadID: thread.ID,
		SellerID: thread.Seller.ID,
		Message:  *msg,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToTopic(thread.ID, evt)
}

func (n *HubNotifier) NotifyTripUpdated(trip *domain.GroupTrip) {
	evt, err := NewEvent(EventTypeTripUpdated, &trip.ID, trip)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToTopic(trip.ID, evt)
}

func (n *HubNotifier) NotifyTripMessage(msg *domain.GroupTripMessage) {
	evt, err := NewEvent(EventTypeTripMessage, &msg.TripID, msg)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToTopic(msg.TripID, evt)
}

func (n *HubNotifier) NotifyUserChatOpened(thread *domain.UserChatThread) {
	evt, err := NewEvent(EventTypeChatOpened, nil, thread)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(thread.ViewerID, evt)
}

func (n *HubNotifier) NotifyUserChatClosed(viewerID, userID uuid.UUID) {
	evt, err := NewEvent(EventTypeChatClosed, nil, ChatClosedPayload{UserID: userID})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(viewerID, evt)
}

func (n *HubNotifier) NotifyUserChatMessage(viewerID, userID uuid.UUID, msg *domain.UserChatMessage) {
	evt, err := NewEvent(EventTypeChatMessage, nil, ChatMessagePayload{UserID: userID, Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(viewerID, evt)
}
