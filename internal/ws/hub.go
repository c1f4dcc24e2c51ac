// Package ws fans resolved rounds out to websocket subscribers of a battle.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// DefaultWriteTimeout bounds a single push when the hub is built without one.
const DefaultWriteTimeout = 3 * time.Second

// Hub tracks websocket connections per topic. A topic is a battle id.
// All methods are safe for concurrent use.
type Hub struct {
	mu           sync.Mutex
	topics       map[string]map[*websocket.Conn]struct{}
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHub returns an empty hub. A non-positive writeTimeout selects
// DefaultWriteTimeout.
func NewHub(writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Hub{
		topics:       make(map[string]map[*websocket.Conn]struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Add subscribes conn to topic.
func (h *Hub) Add(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*websocket.Conn]struct{})
		h.topics[topic] = subs
	}
	subs[conn] = struct{}{}
}

// Remove unsubscribes conn from topic.
func (h *Hub) Remove(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(topic, conn)
}

func (h *Hub) removeLocked(topic string, conn *websocket.Conn) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, conn)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Count returns the number of subscribers of topic.
func (h *Hub) Count(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func (h *Hub) subscribers(topic string) []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*websocket.Conn, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		out = append(out, c)
	}
	return out
}

// Broadcast writes message to every subscriber of topic and returns how many
// writes succeeded. A subscriber whose write fails is closed and dropped.
func (h *Hub) Broadcast(topic string, message []byte) int {
	sent := 0
	for _, conn := range h.subscribers(topic) {
		ctx, cancel := context.WithTimeout(context.Background(), h.writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			h.logger.Debug("dropping websocket subscriber",
				zap.String("topic", topic),
				zap.Error(err),
			)
			_ = conn.Close(websocket.StatusGoingAway, "write failed")
			h.Remove(topic, conn)
			continue
		}
		sent++
	}
	return sent
}

// Publish JSON-encodes v and broadcasts it to topic.
func (h *Hub) Publish(topic string, v any) (int, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encoding %s message: %w", topic, err)
	}
	return h.Broadcast(topic, msg), nil
}

// CloseTopic closes every subscriber of topic with reason and forgets the
// topic.
func (h *Hub) CloseTopic(topic, reason string) {
	h.mu.Lock()
	subs := h.topics[topic]
	delete(h.topics, topic)
	h.mu.Unlock()
	for conn := range subs {
		_ = conn.Close(websocket.StatusNormalClosure, reason)
	}
}

// Serve subscribes conn to topic and blocks reading until the peer goes
// away or ctx ends. Inbound messages are ignored; the feed is one-way.
func (h *Hub) Serve(ctx context.Context, topic string, conn *websocket.Conn) {
	h.Add(topic, conn)
	defer h.Remove(topic, conn)
	defer conn.Close(websocket.StatusNormalClosure, "")
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
