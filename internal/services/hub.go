package services

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans server-initiated events out to websocket subscribers, grouped by
// topic. Comment feeds subscribe per artwork id; the admin metrics stream
// uses a single fixed topic.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool
	ch   chan hubMessage
}

type hubMessage struct {
	topic   string
	payload interface{}
}

const MetricsTopic = "metrics"

// CommentEvent mirrors the change-feed shape: clients refetch the full list
// on receipt instead of merging.
type CommentEvent struct {
	Type      string `json:"type"`
	ArtworkID string `json:"artworkId"`
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[*websocket.Conn]bool{},
		ch:   make(chan hubMessage, 64),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.ch:
			h.mu.Lock()
			for conn := range h.subs[msg.topic] {
				if err := conn.WriteJSON(msg.payload); err != nil {
					delete(h.subs[msg.topic], conn)
					_ = conn.Close()
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// Broadcast never blocks; events are dropped if the channel is full, which
// at worst delays a refetch until the next event.
func (h *Hub) Broadcast(topic string, payload interface{}) {
	select {
	case h.ch <- hubMessage{topic: topic, payload: payload}:
	default:
	}
}

func (h *Hub) Subscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = map[*websocket.Conn]bool{}
	}
	h.subs[topic][conn] = true
}

func (h *Hub) Unsubscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[topic], conn)
	if len(h.subs[topic]) == 0 {
		delete(h.subs, topic)
	}
}
