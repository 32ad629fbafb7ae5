package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	sendBacklog = 32
)

// Hub pushes committed game events to connected websocket clients.
//
// Planet events go to every client, since any player may be looking at a
// planet under attack or receiving a transport. User events only reach
// connections of that user.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	logger      common.Logger
}

type subscriber struct {
	userID int64
	conn   *websocket.Conn
	send   chan game.Event
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub creates a hub with no subscribers
func NewHub(logger common.Logger) *Hub {
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Publish fans event out without blocking; a subscriber whose backlog is
// full is disconnected
func (h *Hub) Publish(event game.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		if event.Type == game.EventUserUpdated && event.UserID != sub.userID {
			continue
		}
		select {
		case sub.send <- event:
		default:
			delete(h.subscribers, sub)
			sub.close()
		}
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		sub.close()
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
// Browsers cannot set headers on websocket requests, so the player id may
// also come from the player_id query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.Header.Get(PlayerHeader)
	if raw == "" {
		raw = r.URL.Query().Get("player_id")
	}
	player, err := shared.ParsePlayerID(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Log("WARNING", "Websocket upgrade failed", map[string]interface{}{
			"player_id": player.Value(),
			"error":     err.Error(),
		})
		return
	}

	sub := &subscriber{userID: player.Value(), conn: conn, send: make(chan game.Event, sendBacklog)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(sub)
	h.readLoop(sub)
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
	sub.close()
}

// readLoop discards client frames and detects disconnects
func (h *Hub) readLoop(sub *subscriber) {
	defer h.unsubscribe(sub)

	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := sub.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
