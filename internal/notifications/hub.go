// Package notifications provides real-time feed delivery and subscription management.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"realtime/internal/models"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// FeedHub is a websocket hub that maps userID -> connected Clients and owns
// the in-process ConversationFeed those clients subscribe through.
type FeedHub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	feed       *ConversationFeed
}

// Name returns a human-readable identifier for this hub.
func (h *FeedHub) Name() string { return "feed hub" }

// NewFeedHub creates a new FeedHub around the given conversation feed.
func NewFeedHub(feed *ConversationFeed) *FeedHub {
	return &FeedHub{
		conns: make(map[string]map[*Client]struct{}),
		feed:  feed,
	}
}

// Feed returns the hub's conversation feed registry.
func (h *FeedHub) Feed() *ConversationFeed { return h.feed }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *FeedHub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *FeedHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()
}

// IsOnline reports whether a user currently has at least one active websocket connection.
func (h *FeedHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[userID]
	return ok && len(clients) > 0
}

// StartWiring connects the Notifier to this hub: snapshots published on
// Redis conversation channels are routed into the local feed registry so
// subscribers on this instance receive them.
func (h *FeedHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartConversationSubscriber(ctx, func(channel, payload string) {
		key, ok := strings.CutPrefix(channel, conversationChannelPrefix)
		if !ok {
			log.Printf("invalid conversation channel: %s", channel)
			return
		}
		var messages []models.Message
		if err := json.Unmarshal([]byte(payload), &messages); err != nil {
			log.Printf("invalid conversation snapshot on %s: %v", channel, err)
			return
		}
		h.feed.Publish(key, messages)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *FeedHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			// Send close message to client
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %s: %v", userID, err)
			}
			// Close the connection
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %s: %v", userID, err)
			}
		}
	}
	// Clear all connections
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	return nil
}
