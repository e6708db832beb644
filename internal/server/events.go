package server

import (
	"errors"
	"fmt"
	"net/http"

	"web-desktop/internal/desktop"
	"web-desktop/internal/memory"
)

const (
	eventLaunch      = "launch"
	eventPointerDown = "pointerdown"
	eventDragStart   = "dragstart"
	eventDrop        = "drop"
	eventClose       = "close"
	eventKeyUp       = "keyup"
	eventAction      = "action"
)

const (
	actionMemoryStart    = "memory.start"
	actionMemoryGuess    = "memory.guess"
	actionMemoryNew      = "memory.new"
	actionHangmanStart   = "hangman.start"
	actionHangmanGuess   = "hangman.guess"
	actionHangmanRestart = "hangman.restart"
	actionChatUsername   = "chat.username"
	actionChatSend       = "chat.send"
	actionChatChange     = "chat.change"
	actionChatClear      = "chat.clear"
)

// inboundEvent is one browser input event.
type inboundEvent struct {
	Type   string `json:"type" binding:"required,oneof=launch pointerdown dragstart drop close keyup action"`
	Kind   string `json:"kind" binding:"omitempty,appkind"`
	Window string `json:"window" binding:"omitempty,windowid"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Scroll int    `json:"scroll" binding:"gte=0"`
	Key    string `json:"key" binding:"max=16"`
	Action string `json:"action" binding:"omitempty,oneof=memory.start memory.guess memory.new hangman.start hangman.guess hangman.restart chat.username chat.send chat.change chat.clear"`
	Tiles  int    `json:"tiles" binding:"omitempty,oneof=4 8 16"`
	Index  int    `json:"index" binding:"gte=0,lte=15"`
	Text   string `json:"text" binding:"max=500"`
}

// dispatch applies a validated event to the session desktop. It returns the id of a window the event
// created, if any.
func (s *Server) dispatch(sess *desktopSession, ev inboundEvent) (string, error) {
	d := sess.desktop
	switch ev.Type {
	case eventLaunch:
		kind, err := desktop.ParseKind(ev.Kind)
		if err != nil {
			return "", err
		}
		id, err := d.Launch(kind)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	case eventDrop:
		return "", d.Drop(ev.X, ev.Y, ev.Scroll)
	case eventKeyUp:
		return "", d.KeyUp(ev.Key)
	}

	id, err := desktop.ParseWindowID(ev.Window)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidEvent, err)
	}
	switch ev.Type {
	case eventPointerDown:
		return "", d.PointerDown(id, ev.Scroll)
	case eventDragStart:
		return "", d.DragStart(id, ev.X, ev.Y)
	case eventClose:
		return "", d.Close(id)
	case eventAction:
		return dispatchAction(d, id, ev)
	}
	return "", fmt.Errorf("%w: unknown type %q", errInvalidEvent, ev.Type)
}

func dispatchAction(d *desktop.Desktop, id desktop.WindowID, ev inboundEvent) (string, error) {
	switch ev.Action {
	case actionMemoryStart:
		return "", d.MemoryStart(id, ev.Tiles, ev.Text)
	case actionMemoryGuess:
		return "", d.MemoryGuess(id, ev.Index)
	case actionMemoryNew:
		next, err := d.MemoryNewGame(id)
		return windowString(next, err)
	case actionHangmanStart:
		return "", d.HangmanStart(id)
	case actionHangmanGuess:
		return "", d.HangmanGuess(id, ev.Text)
	case actionHangmanRestart:
		return "", d.HangmanRestart(id)
	case actionChatUsername:
		return "", d.ChatUsername(id, ev.Text)
	case actionChatSend:
		return "", d.ChatSend(id, ev.Text)
	case actionChatChange:
		next, err := d.ChatChangeUsername(id)
		return windowString(next, err)
	case actionChatClear:
		return "", d.ChatClearHistory(id)
	}
	return "", fmt.Errorf("%w: unknown action %q", errInvalidEvent, ev.Action)
}

func windowString(id desktop.WindowID, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if id == (desktop.WindowID{}) {
		return "", nil
	}
	return id.String(), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, desktop.ErrUnknownWindow):
		return http.StatusNotFound
	case errors.Is(err, desktop.ErrWindowClosed):
		return http.StatusConflict
	case errors.Is(err, desktop.ErrShutdown):
		return http.StatusGone
	case errors.Is(err, errInvalidEvent),
		errors.Is(err, desktop.ErrWrongKind),
		errors.Is(err, desktop.ErrUnknownKind),
		errors.Is(err, memory.ErrTileCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
