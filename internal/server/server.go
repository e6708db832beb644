package server

import (
	"net/http"
	"sync"
	"time"

	"web-desktop/internal/chat"
	"web-desktop/internal/config"
	"web-desktop/internal/highscore"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Server struct {
	db       *gorm.DB
	ws       *wsHub
	cfg      config.Config
	ledger   *highscore.Ledger
	dialer   chat.Dialer
	sessions *sessionStore
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	registerValidators()
	s := &Server{
		db:     conn,
		ws:     newWSHub(),
		cfg:    cfg,
		ledger: newLedger(conn),
		dialer: newDialer(cfg),
		timers: make(map[string]*time.Timer),
	}
	s.sessions = newSessionStore(s.newDesktopSession)
	return s
}

func newDialer(cfg config.Config) chat.Dialer {
	if cfg.ChatURL == "" {
		log.Warn().Msg("CHAT_URL is not set; chat windows will stay offline")
		return chat.OfflineDialer{}
	}
	return chat.NewWebsocketDialer(cfg.ChatURL, cfg.ChatDialTimeout())
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/", s.handleDesktopView)
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/highscores", s.handleHighscores)
	router.GET("/api/desktop", s.handleDesktopState)
	router.POST("/api/desktop/events", s.handleDesktopEvent)
	router.GET("/ws/desktop", s.handleDesktopWebsocket)
	router.Static("/static", "static")
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

// Close shuts down every desktop and cancels pending evictions.
func (s *Server) Close() {
	s.timersMu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.timersMu.Unlock()
	for _, sess := range s.sessions.Drain() {
		sess.desktop.Shutdown()
	}
}
