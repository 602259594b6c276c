package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	accountID uuid.UUID

	// topics holds the thread and trip ids this connection listens to.
	topics map[uuid.UUID]struct{}
	mu     sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, accountID uuid.UUID) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		hub:       hub,
		conn:      conn,
		accountID: accountID,
		topics:    make(map[uuid.UUID]struct{}),
		send:      make(chan []byte, sendBufSize),
		done:      make(chan struct{}),
	}
}

func (c *Client) IsSubscribed(topicID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topicID]
	return ok
}

func (c *Client) Subscribe(topicID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topicID] = struct{}{}
}

func (c *Client) Unsubscribe(topicID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topicID)
}

// ReadPump reads events from the WebSocket until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: account %s disconnected", c.accountID)
			} else {
				log.Printf("ws: read error from %s: %v", c.accountID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps it alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.accountID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.accountID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeTopicSubscribe:
		var p TopicPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid topic.subscribe payload")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		ok, err := c.hub.canSubscribe(ctx, c.accountID, p.TopicID)
		cancel()
		if err != nil {
			log.Printf("ws: authorizing %s for topic %s: %v", c.accountID, p.TopicID, err)
			c.sendError("INTERNAL_ERROR", "could not subscribe")
			return
		}
		if !ok {
			c.sendError("FORBIDDEN", "not allowed to follow this topic")
			return
		}
		c.Subscribe(p.TopicID)

	case EventTypeTopicUnsubscribe:
		var p TopicPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid topic.unsubscribe payload")
			return
		}
		c.Unsubscribe(p.TopicID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
