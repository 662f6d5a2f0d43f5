package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"realtime/internal/models"
	"realtime/internal/notifications"
	"realtime/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// feedEvent is the wire envelope for messages on the feed socket.
type feedEvent struct {
	Type         string           `json:"type"`
	Conversation string           `json:"conversation,omitempty"`
	Messages     []models.Message `json:"messages,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// FeedSocketHandler handles WebSocket connections for live conversation
// feeds. Clients join conversations by peer user id and receive a full
// snapshot immediately and again on every change:
//
//	-> {"type":"join","user_id":"<peer>"}
//	<- {"type":"snapshot","conversation":"a|b","messages":[...]}
//	-> {"type":"leave","user_id":"<peer>"}
func (s *Server) FeedSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(string)
		if !ok || userID == "" {
			log.Printf("WebSocket Feed: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.feedHub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Feed: Failed to register user %s: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.feedHub.UnregisterClient(client)

		// Live subscriptions owned by this connection, keyed by peer user id.
		var (
			subMu sync.Mutex
			subs  = make(map[string]*notifications.FeedSubscription)
		)
		cancelAll := func() {
			subMu.Lock()
			for _, sub := range subs {
				sub.Cancel()
			}
			subs = make(map[string]*notifications.FeedSubscription)
			subMu.Unlock()
		}
		defer cancelAll()

		sendEvent := func(ev feedEvent) {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("WebSocket Feed: marshal error for user %s: %v", userID, err)
				return
			}
			client.TrySend(payload)
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var req struct {
				Type   string `json:"type"`
				UserID string `json:"user_id"`
			}
			if err := json.Unmarshal(message, &req); err != nil {
				log.Printf("WebSocket Feed: Invalid message from user %s", userID)
				return
			}

			switch req.Type {
			case "join":
				if req.UserID == "" || req.UserID == userID {
					sendEvent(feedEvent{Type: "error", Error: "invalid user_id"})
					return
				}

				subMu.Lock()
				_, exists := subs[req.UserID]
				subMu.Unlock()
				if exists {
					return
				}

				sub, snapshot, err := s.messageService.Subscribe(ctx, userID, req.UserID)
				if err != nil {
					sendEvent(feedEvent{Type: "error", Error: err.Error()})
					return
				}

				subMu.Lock()
				subs[req.UserID] = sub
				subMu.Unlock()

				// Initial snapshot, then every refresh until the
				// subscription is cancelled. Cancel closes sub.C and ends
				// the forwarding goroutine.
				sendEvent(feedEvent{Type: "snapshot", Conversation: sub.Key(), Messages: snapshot})
				go func(sub *notifications.FeedSubscription) {
					for messages := range sub.C {
						sendEvent(feedEvent{Type: "snapshot", Conversation: sub.Key(), Messages: messages})
					}
				}(sub)

			case "leave":
				subMu.Lock()
				if sub, ok := subs[req.UserID]; ok {
					sub.Cancel()
					delete(subs, req.UserID)
				}
				subMu.Unlock()
			}
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}
