// Package websocket pushes workflow progress (ingestion commits, backfill
// runs) to subscribed browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Topic prefixes a client may subscribe to
const (
	TopicIngestionPrefix = "ingestion:"
	TopicJobPrefix       = "job:"
)

// IngestionTopic is the topic carrying commit progress of one session
func IngestionTopic(sessionID string) string { return TopicIngestionPrefix + sessionID }

// JobTopic is the topic carrying progress of one background job
func JobTopic(jobID string) string { return TopicJobPrefix + jobID }

// ValidTopic reports whether topic has a known prefix and a non-empty id
func ValidTopic(topic string) bool {
	for _, prefix := range []string{TopicIngestionPrefix, TopicJobPrefix} {
		if strings.HasPrefix(topic, prefix) && len(topic) > len(prefix) {
			return true
		}
	}
	return false
}

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message, e.g. "commit.progress"
	Type string `json:"type"`

	// Topic this message belongs to
	Topic string `json:"topic"`

	Payload any `json:"payload"`

	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by topic
	clients map[string]map[*Client]bool

	// Last message per topic, replayed to late subscribers
	last map[string][]byte

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	listenersMu      sync.RWMutex
	messageListeners []chan *Message

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		last:       make(map[string][]byte),
		logger:     logger.With().Str("component", "websocket").Logger(),
	}
}

// Run starts the hub, handling client registrations, broadcasts, etc. It
// returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.topic]; !ok {
		h.clients[client.topic] = make(map[*Client]bool)
	}
	h.clients[client.topic][client] = true

	if data, ok := h.last[client.topic]; ok {
		select {
		case client.send <- data:
		default:
		}
	}

	h.logger.Info().
		Str("topic", client.topic).
		Str("subscriber", client.subscriber).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}
	h.logger.Info().
		Str("topic", client.topic).
		Str("subscriber", client.subscriber).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.notifyMessageListeners(message)

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", message.Topic).Msg("Failed to marshal message for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[message.Topic] = data

	for client := range h.clients[message.Topic] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than stall the hub
			h.removeLocked(client)
		}
	}
}

// Publish queues a message for the subscribers of topic. It never blocks: when
// the queue is full the message is dropped.
func (h *Hub) Publish(topic, msgType string, payload any) {
	msg := &Message{Type: msgType, Topic: topic, Payload: payload, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Str("topic", topic).Str("type", msgType).Msg("Broadcast queue full, dropping message")
	}
}

// Forget drops the replay message of a finished topic
func (h *Hub) Forget(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.last, topic)
}

// GetClientsCount returns the number of connected clients for a topic
func (h *Hub) GetClientsCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// AddMessageListener registers a channel to receive all messages
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}

func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		select {
		case listener <- message:
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}
