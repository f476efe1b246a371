package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/infra/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the HTTP level
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier func(token string) (userID string, err error)

// envelope is the wire format pushed to clients.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type session struct {
	conn   *websocket.Conn
	userID string // empty for anonymous connections
	send   chan []byte
}

var _ adapter.Broadcaster = (*Hub)(nil)

// Hub tracks open websocket sessions and fans events out to per-user rooms.
// Anonymous connections are accepted but never addressed; Publish targets
// only sessions authenticated as the given user.
type Hub struct {
	verify TokenVerifier
	log    zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*session]struct{}
}

func NewHub(verify TokenVerifier, log zerolog.Logger) *Hub {
	return &Hub{
		verify: verify,
		log:    log.With().Str("component", "ws").Logger(),
		rooms:  make(map[string]map[*session]struct{}),
	}
}

// Handle upgrades HTTP to WebSocket. The token comes either from the
// ?token= query param or an Authorization: Bearer header; a missing or bad
// token still gets a connection, just an anonymous one.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	var userID string
	if token := extractToken(r); token != "" {
		uid, err := h.verify(token)
		if err != nil {
			h.log.Debug().Err(err).Msg("ws token rejected, continuing anonymous")
		} else {
			userID = uid
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
	h.add(s)
	metrics.IncWSConnections()

	go s.writePump()
	go h.readPump(s)
}

// Publish sends an event to every open session of the given user. Slow
// clients are skipped rather than blocking the caller.
func (h *Hub) Publish(userID, event string, data interface{}) {
	if userID == "" {
		return
	}

	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to marshal ws event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[userID] {
		select {
		case s.send <- payload:
		default:
			metrics.IncWSEventDropped()
			h.log.Warn().Str("user_id", userID).Str("event", event).Msg("ws send buffer full, dropping event")
		}
	}
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := s.userID
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*session]struct{})
	}
	h.rooms[room][s] = struct{}{}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := s.userID
	if set, ok := h.rooms[room]; ok {
		if _, ok := set[s]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.rooms, room)
			}
			close(s.send)
			metrics.DecWSConnections()
		}
	}
}

// readPump drains inbound frames. Clients are push-only; anything they send
// is discarded, but the read loop drives ping/pong liveness.
func (h *Hub) readPump(s *session) {
	defer func() {
		h.remove(s)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
