package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/vedran77/powderswap/internal/transport/http/middleware"
)

// TopicAuthorizer reports whether accountID may subscribe to topicID.
type TopicAuthorizer func(ctx context.Context, accountID, topicID uuid.UUID) (bool, error)

// Hub manages all active WebSocket clients and routes events.
type Hub struct {
	// clients maps accountID → open connections of that account.
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	done       chan struct{}

	// authorize gates topic.subscribe; nil refuses every subscription.
	authorize TopicAuthorizer
	// sessions, when set, drops connections whose account signed out.
	sessions middleware.SessionChecker
}

// broadcastMsg goes either to subscribers of topicID or, when userID is
// set, to every connection of that account.
type broadcastMsg struct {
	topicID uuid.UUID
	userID  *uuid.UUID
	data    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
	}
}

// SetAuthorizer and SetSessionChecker must be called before Run.
func (h *Hub) SetAuthorizer(fn TopicAuthorizer) {
	h.authorize = fn
}

func (h *Hub) SetSessionChecker(sessions middleware.SessionChecker) {
	h.sessions = sessions
}

// Run starts the Hub's main event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for client := range conns {
					h.drop(client)
				}
			}
			return

		case client := <-h.register:
			if h.clients[client.accountID] == nil {
				h.clients[client.accountID] = make(map[*Client]struct{})
			}
			h.clients[client.accountID][client] = struct{}{}
			log.Printf("ws hub: account %s connected (%d connections)", client.accountID, len(h.clients[client.accountID]))

		case client := <-h.unregister:
			if _, ok := h.clients[client.accountID][client]; ok {
				h.drop(client)
				log.Printf("ws hub: account %s disconnected", client.accountID)
			}

		case msg := <-h.broadcast:
			for _, conns := range h.clients {
				for client := range conns {
					if h.sessions != nil && !h.sessions.IsActive(client.accountID) {
						h.drop(client)
						log.Printf("ws hub: account %s no longer signed in, connection closed", client.accountID)
						continue
					}
					if msg.userID != nil {
						if client.accountID != *msg.userID {
							continue
						}
					} else if !client.IsSubscribed(msg.topicID) {
						continue
					}
					select {
					case client.send <- msg.data:
					default:
						// Client buffer full - disconnect
						h.drop(client)
					}
				}
			}
		}
	}
}

// drop must only be called from Run.
func (h *Hub) drop(client *Client) {
	conns := h.clients[client.accountID]
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.accountID)
	}
	// send stays open so pumps racing with the drop never write to a
	// closed channel; done stops the writer.
	close(client.done)
}

// Register hands a connection to the hub. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// canSubscribe is called from client read pumps.
func (h *Hub) canSubscribe(ctx context.Context, accountID, topicID uuid.UUID) (bool, error) {
	if h.authorize == nil {
		return false, nil
	}
	return h.authorize(ctx, accountID, topicID)
}

// BroadcastToTopic sends an event to all subscribers of a thread or trip.
func (h *Hub) BroadcastToTopic(topicID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.enqueue(&broadcastMsg{topicID: topicID, data: data})
}

// BroadcastToUser sends an event to every connection of one account.
func (h *Hub) BroadcastToUser(accountID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.enqueue(&broadcastMsg{userID: &accountID, data: data})
}

func (h *Hub) enqueue(msg *broadcastMsg) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
