// Package gateway exposes the daemon over WebSocket push and REST.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"cryptotrader/internal/metrics"
	"cryptotrader/internal/model"

	"github.com/gorilla/websocket"
)

// Push topics. Holdings and recommendations are independent streams and
// are never merged into one envelope.
const (
	TopicHoldings        = "updateHoldings"
	TopicRecommendations = "updateRecommendations"
)

// Hub manages WebSocket clients and fans out topic envelopes. It also
// retains the latest typed payload per topic so REST reads and the
// catch-up push on connect serve the same data the sockets saw.
type Hub struct {
	// Optional; counts connected clients.
	Metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry

	lastRecs     map[string]model.Recommendation
	lastHoldings []model.HoldingsSnapshot
}

type latestEntry struct {
	Data []byte
	TS   time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		latest:   make(map[string]latestEntry),
		lastRecs: make(map[string]model.Recommendation),
	}
}

// PublishRecommendations retains and broadcasts the latest decision set.
func (h *Hub) PublishRecommendations(recs map[string]model.Recommendation) {
	h.mu.Lock()
	h.lastRecs = recs
	h.mu.Unlock()
	h.publish(TopicRecommendations, recs)
}

// PublishHoldings retains and broadcasts the latest valued holdings.
func (h *Hub) PublishHoldings(snaps []model.HoldingsSnapshot) {
	h.mu.Lock()
	h.lastHoldings = snaps
	h.mu.Unlock()
	h.publish(TopicHoldings, snaps)
}

// LatestRecommendations returns the most recent decision set.
func (h *Hub) LatestRecommendations() map[string]model.Recommendation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[string]model.Recommendation, len(h.lastRecs))
	for k, v := range h.lastRecs {
		cp[k] = v
	}
	return cp
}

// LatestHoldings returns the most recent holdings snapshots.
func (h *Hub) LatestHoldings() []model.HoldingsSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.HoldingsSnapshot(nil), h.lastHoldings...)
}

func (h *Hub) publish(topic string, payload interface{}) {
	now := time.Now().UTC()
	envelope, err := json.Marshal(map[string]interface{}{
		"type": topic,
		"data": payload,
		"ts":   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("[gateway] encode %s envelope: %v", topic, err)
		return
	}

	h.mu.Lock()
	h.latest[topic] = latestEntry{Data: envelope, TS: now}
	h.mu.Unlock()

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			// Slow consumer; it catches up from the latest map on its own.
		}
	}
	h.mu.RUnlock()
}

// HandleWSRequest registers an upgraded connection and starts its pumps.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
