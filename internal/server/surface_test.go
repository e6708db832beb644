package server

import (
	"strings"
	"testing"

	"web-desktop/internal/chat"
	"web-desktop/internal/desktop"
	"web-desktop/internal/hangman"
)

func TestOpSurfaceBatchesUntilCommit(t *testing.T) {
	var batches []opBatch
	s := newOpSurface(func(batch opBatch) {
		batches = append(batches, batch)
	})
	id := desktop.WindowID{Kind: desktop.KindChat, Num: 2}

	s.Commit()
	if len(batches) != 0 {
		t.Fatalf("expected empty commit to send nothing")
	}

	s.Create(desktop.WindowInfo{ID: id, Kind: desktop.KindChat, Title: "Chat", Position: desktop.Position{Top: 60, Left: 60}})
	s.Raise(id)
	s.Append(id, chat.Message{Username: "<ada>", Text: "hi"})
	s.ScrollTo(id, desktop.ScrollBottom)
	s.FocusInput(id)
	if len(batches) != 0 {
		t.Fatalf("expected ops held until commit")
	}
	s.Commit()
	s.Commit()
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}

	ops := batches[0].Ops
	var names []string
	for _, op := range ops {
		names = append(names, op.Op)
	}
	if strings.Join(names, ",") != "create,raise,append,scroll,focus" {
		t.Fatalf("unexpected ops %v", names)
	}
	if ops[0].Window != "chat-2" || ops[0].Kind != "chat" || ops[0].Position.Top != 60 {
		t.Fatalf("unexpected create op %+v", ops[0])
	}
	if ops[2].HTML != "<b>&lt;ada&gt;</b>: hi<br>" {
		t.Fatalf("expected escaped chat line, got %q", ops[2].HTML)
	}
	if ops[3].Scroll == nil || *ops[3].Scroll != desktop.ScrollBottom {
		t.Fatalf("expected scroll to bottom, got %+v", ops[3])
	}
}

func TestOpSurfacePaintRendersView(t *testing.T) {
	var got opBatch
	s := newOpSurface(func(batch opBatch) { got = batch })
	id := desktop.WindowID{Kind: desktop.KindHangman}

	s.Paint(id, desktop.HangmanView{View: hangman.View{Phase: hangman.PhaseSetup, Stage: -1}})
	s.Paint(id, struct{}{})
	s.Commit()
	if len(got.Ops) != 1 {
		t.Fatalf("expected unknown views to be skipped, got %d ops", len(got.Ops))
	}
	if !strings.Contains(got.Ops[0].HTML, `data-action="hangman.start"`) {
		t.Fatalf("expected hangman setup, got %q", got.Ops[0].HTML)
	}
}
