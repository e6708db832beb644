package server

import (
	"net/http"

	"web-desktop/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

type windowSummary struct {
	ID   string `json:"id"`
	Top  int    `json:"top"`
	Left int    `json:"left"`
}

type desktopState struct {
	Windows []windowSummary `json:"windows"`
	Focus   string          `json:"focus,omitempty"`
	Chat    string          `json:"chat"`
}

func (s *Server) handleDesktopView(c *gin.Context) {
	ensureSessionID(c.Writer, c.Request)
	templ.Handler(web.Desktop()).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok", "database": false}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": false})
			return
		}
		status["database"] = true
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleHighscores(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"highscores": s.ledger.Top()})
}

func (s *Server) handleDesktopState(c *gin.Context) {
	sess := s.session(c.Writer, c.Request)
	d := sess.desktop
	state := desktopState{Windows: []windowSummary{}, Chat: d.ChatState().String()}
	for _, id := range d.Stack() {
		w, ok := d.Window(id)
		if !ok {
			continue
		}
		state.Windows = append(state.Windows, windowSummary{ID: id.String(), Top: w.Position.Top, Left: w.Position.Left})
	}
	if focus := d.Focus(); focus.Active {
		state.Focus = focus.Kind.String()
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleDesktopEvent(c *gin.Context) {
	sess := s.session(c.Writer, c.Request)
	var ev inboundEvent
	if !bindJSON(c, &ev, eventMessages, "invalid event") {
		return
	}
	if err := requireEventFields(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window, err := s.dispatch(sess, ev)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"window": window})
}
