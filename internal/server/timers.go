package server

import (
	"time"

	"github.com/rs/zerolog/log"
)

// scheduleEviction drops an idle session once its last websocket has been gone for the idle period.
func (s *Server) scheduleEviction(id string) {
	duration := s.cfg.SessionIdle()
	if duration <= 0 {
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}
	s.timers[id] = time.AfterFunc(duration, func() {
		s.evict(id)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelEviction(id string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Server) evict(id string) {
	s.timersMu.Lock()
	delete(s.timers, id)
	s.timersMu.Unlock()
	sess, ok := s.sessions.RemoveIf(id, func() bool {
		return s.ws.Count(id) == 0
	})
	if !ok {
		return
	}
	sess.desktop.Shutdown()
	log.Info().Str("session", id).Msg("idle desktop session evicted")
}
