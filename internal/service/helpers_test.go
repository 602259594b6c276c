package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/powderswap/internal/domain"
	"github.com/vedran77/powderswap/internal/repository/memory"
)

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type fakeNotifier struct {
	mu             sync.Mutex
	threadMessages []*domain.Message
	tripUpdates    []*domain.GroupTrip
	tripMessages   []*domain.GroupTripMessage
	chatsOpened    []*domain.UserChatThread
	chatsClosed    []uuid.UUID
	chatMessages   []*domain.UserChatMessage
}

func (n *fakeNotifier) NotifyThreadMessage(thread *domain.MessageThread, msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.threadMessages = append(n.threadMessages, msg)
}

func (n *fakeNotifier) NotifyTripUpdated(trip *domain.GroupTrip) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tripUpdates = append(n.tripUpdates, trip)
}

func (n *fakeNotifier) NotifyTripMessage(msg *domain.GroupTripMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tripMessages = append(n.tripMessages, msg)
}

func (n *fakeNotifier) NotifyUserChatOpened(thread *domain.UserChatThread) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chatsOpened = append(n.chatsOpened, thread)
}

func (n *fakeNotifier) NotifyUserChatClosed(viewerID, userID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chatsClosed = append(n.chatsClosed, userID)
}

func (n *fakeNotifier) NotifyUserChatMessage(viewerID, userID uuid.UUID, msg *domain.UserChatMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chatMessages = append(n.chatMessages, msg)
}

// seedAccount registers username through a throwaway session service so
// the stored account carries a real password hash.
func seedAccount(t *testing.T, repo *memory.AccountRepo, username string) *domain.Account {
	t.Helper()
	sessions := NewSessionService(repo, "test-secret", time.Hour)
	resp, err := sessions.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "secret1",
	})
	require.NoError(t, err)
	return resp.Account
}
