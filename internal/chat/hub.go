package chat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message is one posted outcome message.
type Message struct {
	EntityID string    `json:"entityId"`
	HTML     string    `json:"html"`
	PostedAt time.Time `json:"postedAt"`
}

// HubConfig tunes the hub.
type HubConfig struct {
	// SendQueue is the per-subscriber buffer. A full buffer drops messages.
	SendQueue    int
	WriteTimeout time.Duration
}

// Hub broadcasts outcome messages to websocket subscribers. Posting never
// blocks on slow subscribers.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]chan Message
}

// NewHub creates an empty hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[string]chan Message),
	}
}

// Subscribe registers a subscriber and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan Message) {
	id := uuid.NewString()
	ch := make(chan Message, h.cfg.SendQueue)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// PostOutcomeMessage broadcasts html to every subscriber.
func (h *Hub) PostOutcomeMessage(_ context.Context, entityID, html string) error {
	msg := Message{EntityID: entityID, HTML: html, PostedAt: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			slog.Warn("outcome message dropped", "subscriber", id, "entity", entityID)
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

// ServeWS upgrades the request and streams messages until the peer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	id, ch := h.Subscribe()
	slog.Debug("outcome subscriber joined", "subscriber", id)

	go h.readPump(id, conn)
	h.writePump(conn, ch)
}

// readPump discards client frames; it exists to process pongs and notice
// disconnects.
func (h *Hub) readPump(id string, conn *websocket.Conn) {
	defer func() {
		h.Unsubscribe(id)
		_ = conn.Close()
		slog.Debug("outcome subscriber left", "subscriber", id)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, ch <-chan Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("outcome write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
