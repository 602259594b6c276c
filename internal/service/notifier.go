package service

import (
	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/domain"
)

// Notifier broadcasts state changes to whatever UI is attached.
type Notifier interface {
	NotifyThreadMessage(thread *domain.MessageThread, msg *domain.Message)
	NotifyTripUpdated(trip *domain.GroupTrip)
	NotifyTripMessage(msg *domain.GroupTripMessage)
	// Social chat notifications go to the viewer only.
	NotifyUserChatOpened(thread *domain.UserChatThread)
	NotifyUserChatClosed(viewerID, userID uuid.UUID)
	NotifyUserChatMessage(viewerID, userID uuid.UUID, msg *domain.UserChatMessage)
}
