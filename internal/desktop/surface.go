package desktop

import (
	"web-desktop/internal/chat"
	"web-desktop/internal/hangman"
	"web-desktop/internal/highscore"
	"web-desktop/internal/memory"
)

// ScrollBottom asks ScrollTo to scroll a transcript to its end.
const ScrollBottom = -1

// WindowInfo describes a window being created.
type WindowInfo struct {
	ID       WindowID
	Kind     Kind
	Title    string
	Position Position
}

// Surface is the rendering target of a desktop. Calls are made with the desktop lock held and are
// flushed by Commit once per handled event.
type Surface interface {
	Create(info WindowInfo)
	Move(id WindowID, pos Position)
	Raise(id WindowID)
	Hide(id WindowID)
	// Paint replaces the content of a window with one of MemoryView, HangmanView or ChatView.
	Paint(id WindowID, view any)
	Append(id WindowID, msg chat.Message)
	ScrollTo(id WindowID, offset int)
	FocusInput(id WindowID)
	Commit()
}

// MemoryView is the render model of a memory window.
type MemoryView struct {
	Setup      bool
	TileCounts []int
	Username   string
	Board      memory.View
	Won        bool
	Highscores []highscore.Score
}

// HangmanView is the render model of a hangman window.
type HangmanView struct {
	hangman.View
}

// ChatView is the render model of a chat window.
type ChatView struct {
	chat.View
}

// Journal receives a record of every state change worth keeping.
type Journal interface {
	Record(id WindowID, event string, payload map[string]any)
}

type nopJournal struct{}

func (nopJournal) Record(WindowID, string, map[string]any) {}

type nopSurface struct{}

func (nopSurface) Create(WindowInfo)             {}
func (nopSurface) Move(WindowID, Position)       {}
func (nopSurface) Raise(WindowID)                {}
func (nopSurface) Hide(WindowID)                 {}
func (nopSurface) Paint(WindowID, any)           {}
func (nopSurface) Append(WindowID, chat.Message) {}
func (nopSurface) ScrollTo(WindowID, int)        {}
func (nopSurface) FocusInput(WindowID)           {}
func (nopSurface) Commit()                       {}
