package server

import (
	"bytes"
	"context"

	"web-desktop/internal/chat"
	"web-desktop/internal/desktop"
	"web-desktop/internal/web"

	"github.com/rs/zerolog/log"
)

type surfaceOp struct {
	Op       string            `json:"op"`
	Window   string            `json:"window"`
	Kind     string            `json:"kind,omitempty"`
	Title    string            `json:"title,omitempty"`
	Position *desktop.Position `json:"position,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Scroll   *int              `json:"scroll,omitempty"`
}

type opBatch struct {
	Type string      `json:"type"`
	Ops  []surfaceOp `json:"ops"`
}

// opSurface batches desktop operations and hands each committed batch to send.
type opSurface struct {
	pending []surfaceOp
	send    func(batch opBatch)
}

func newOpSurface(send func(batch opBatch)) *opSurface {
	return &opSurface{send: send}
}

func (s *opSurface) push(op surfaceOp) {
	s.pending = append(s.pending, op)
}

func (s *opSurface) Create(info desktop.WindowInfo) {
	pos := info.Position
	s.push(surfaceOp{Op: "create", Window: info.ID.String(), Kind: info.Kind.String(), Title: info.Title, Position: &pos})
}

func (s *opSurface) Move(id desktop.WindowID, pos desktop.Position) {
	s.push(surfaceOp{Op: "move", Window: id.String(), Position: &pos})
}

func (s *opSurface) Raise(id desktop.WindowID) {
	s.push(surfaceOp{Op: "raise", Window: id.String()})
}

func (s *opSurface) Hide(id desktop.WindowID) {
	s.push(surfaceOp{Op: "hide", Window: id.String()})
}

func (s *opSurface) Paint(id desktop.WindowID, view any) {
	var buf bytes.Buffer
	if err := web.Window(view).Render(context.Background(), &buf); err != nil {
		log.Error().Err(err).Str("window", id.String()).Msg("render window")
		return
	}
	s.push(surfaceOp{Op: "paint", Window: id.String(), HTML: buf.String()})
}

func (s *opSurface) Append(id desktop.WindowID, msg chat.Message) {
	var buf bytes.Buffer
	if err := web.ChatLine(msg).Render(context.Background(), &buf); err != nil {
		log.Error().Err(err).Str("window", id.String()).Msg("render chat line")
		return
	}
	s.push(surfaceOp{Op: "append", Window: id.String(), HTML: buf.String()})
}

func (s *opSurface) ScrollTo(id desktop.WindowID, offset int) {
	s.push(surfaceOp{Op: "scroll", Window: id.String(), Scroll: &offset})
}

func (s *opSurface) FocusInput(id desktop.WindowID) {
	s.push(surfaceOp{Op: "focus", Window: id.String()})
}

func (s *opSurface) Commit() {
	if len(s.pending) == 0 {
		return
	}
	batch := opBatch{Type: "ops", Ops: s.pending}
	s.pending = nil
	s.send(batch)
}
