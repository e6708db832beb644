package server

import (
	"net/http"
	"sync"

	"web-desktop/internal/chat"
	"web-desktop/internal/desktop"
	"web-desktop/internal/memory"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sessionCookie = "wd_session"

// desktopSession is the desktop of one browser session, shared by all of its tabs.
type desktopSession struct {
	id      string
	desktop *desktop.Desktop
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*desktopSession
	build    func(id string) *desktopSession
}

func newSessionStore(build func(id string) *desktopSession) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*desktopSession),
		build:    build,
	}
}

// GetOrCreate returns the session for id, building it on first use.
func (s *sessionStore) GetOrCreate(id string) (*desktopSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	sess := s.build(id)
	s.sessions[id] = sess
	return sess, true
}

func (s *sessionStore) Get(id string) (*desktopSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) Remove(id string) (*desktopSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return sess, ok
}

// RemoveIf removes the session for id when idle reports true, checked under the store lock.
func (s *sessionStore) RemoveIf(id string, idle func() bool) (*desktopSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || !idle() {
		return nil, false
	}
	delete(s.sessions, id)
	return sess, true
}

func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Drain removes and returns every session.
func (s *sessionStore) Drain() []*desktopSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*desktopSession, 0, len(s.sessions))
	for id, sess := range s.sessions {
		out = append(out, sess)
		delete(s.sessions, id)
	}
	return out
}

func sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := sessionID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// session returns the desktop for the request's browser session, creating both as needed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *desktopSession {
	id := ensureSessionID(w, r)
	sess, created := s.sessions.GetOrCreate(id)
	if created && s.ws.Count(id) == 0 {
		s.scheduleEviction(id)
	}
	return sess
}

func (s *Server) newDesktopSession(id string) *desktopSession {
	surface := newOpSurface(func(batch opBatch) {
		s.ws.Broadcast(id, batch)
	})
	d := desktop.New(surface, desktop.Options{
		Delays: memory.Delays{
			Mismatch: s.cfg.MismatchDelay(),
			Match:    s.cfg.MatchDelay(),
		},
		Ledger:  s.ledger,
		Store:   s.kvStore(id),
		Dialer:  s.dialer,
		Chat:    chat.Config{Channel: s.cfg.ChatChannel, Key: s.cfg.ChatKey},
		Journal: s.journal(id),
	})
	log.Info().Str("session", id).Msg("desktop session created")
	return &desktopSession{id: id, desktop: d}
}
