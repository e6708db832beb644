package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// wsHub groups the websocket connections of each browser session.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[sessionID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, sessionID)
	}
}

func (h *wsHub) Count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[sessionID])
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(sessionID string, payload any) {
	h.mu.Lock()
	group := h.groups[sessionID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("encode websocket payload")
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(sessionID, conn)
		}
	}
}

func (s *Server) handleDesktopWebsocket(c *gin.Context) {
	id, ok := sessionID(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "load the desktop page first"})
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Info().Str("session", id).Str("remote", c.Request.RemoteAddr).Msg("ws connected")
	s.cancelEviction(id)
	sess := s.attach(id, conn)
	sess.desktop.Snapshot(newOpSurface(func(batch opBatch) {
		if err := s.ws.Send(conn, batch); err != nil {
			log.Debug().Err(err).Str("session", id).Msg("ws snapshot failed")
		}
	}))
	go s.readDesktopWS(sess, conn)
}

// attach registers conn before resolving the session so a concurrent eviction either sees the
// socket and keeps the session, or removes it first and this call builds a fresh one.
func (s *Server) attach(id string, conn *websocket.Conn) *desktopSession {
	s.ws.Add(id, conn)
	sess, _ := s.sessions.GetOrCreate(id)
	return sess
}

func (s *Server) readDesktopWS(sess *desktopSession, conn *websocket.Conn) {
	defer func() {
		s.ws.Remove(sess.id, conn)
		if s.ws.Count(sess.id) == 0 {
			s.scheduleEviction(sess.id)
		}
	}()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Info().Str("session", sess.id).Err(err).Msg("ws disconnected")
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Debug().Str("session", sess.id).Err(err).Msg("ws event malformed")
			continue
		}
		if err := validateEvent(&ev); err != nil {
			log.Debug().Str("session", sess.id).Str("type", ev.Type).Err(err).Msg("ws event rejected")
			continue
		}
		if _, err := s.dispatch(sess, ev); err != nil {
			log.Debug().Str("session", sess.id).Str("type", ev.Type).Err(err).Msg("ws event failed")
		}
	}
}
