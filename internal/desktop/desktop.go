package desktop

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"web-desktop/internal/chat"
	"web-desktop/internal/hangman"
	"web-desktop/internal/highscore"
	"web-desktop/internal/memory"
	"web-desktop/internal/storage"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownWindow = errors.New("unknown window")
	ErrWindowClosed  = errors.New("window is closed")
	ErrWrongKind     = errors.New("window does not host this application")
	ErrShutdown      = errors.New("desktop is shut down")
)

// Source draws random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Window is one application window. Windows are never removed, only hidden.
type Window struct {
	ID       WindowID
	Position Position
	Visible  bool

	memory  *memoryApp
	hangman *hangman.Round
	chat    *chat.Client
}

// FocusState tracks the application kind in focus and the focused window number per kind.
type FocusState struct {
	Active  bool
	Kind    Kind
	PerKind map[Kind]int
}

// Holds reports whether id is the focused window of the focused kind.
func (f FocusState) Holds(id WindowID) bool {
	if !f.Active || f.Kind != id.Kind {
		return false
	}
	num, ok := f.PerKind[id.Kind]
	return ok && num == id.Num
}

func (f *FocusState) set(id WindowID) {
	f.Active = true
	f.Kind = id.Kind
	f.PerKind[id.Kind] = id.Num
}

type dragState struct {
	id     WindowID
	offset Position
}

// Options configures a desktop. Zero values select production defaults.
type Options struct {
	Rand      Source
	Scheduler memory.Scheduler
	Delays    memory.Delays
	Ledger    *highscore.Ledger
	Store     storage.KV
	Dialer    chat.Dialer
	Chat      chat.Config
	Journal   Journal
}

// Desktop owns every window of one browser session. All entry points are serialized and each one
// commits the surface exactly once.
type Desktop struct {
	mu        sync.Mutex
	surface   Surface
	rng       Source
	scheduler memory.Scheduler
	delays    memory.Delays
	ledger    *highscore.Ledger
	journal   Journal
	chat      *chat.Session

	counters map[Kind]int
	windows  map[WindowID]*Window
	stack    []WindowID
	focus    FocusState
	drag     *dragState
	shut     bool
}

func New(surface Surface, opts Options) *Desktop {
	if surface == nil {
		surface = nopSurface{}
	}
	if opts.Rand == nil {
		now := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(now, now>>1))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimeScheduler{}
	}
	if opts.Delays == (memory.Delays{}) {
		opts.Delays = memory.DefaultDelays()
	}
	if opts.Ledger == nil {
		opts.Ledger = highscore.NewLedger()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Dialer == nil {
		opts.Dialer = chat.OfflineDialer{}
	}
	if opts.Journal == nil {
		opts.Journal = nopJournal{}
	}
	d := &Desktop{
		surface:  surface,
		rng:      opts.Rand,
		delays:   opts.Delays,
		ledger:   opts.Ledger,
		journal:  opts.Journal,
		counters: make(map[Kind]int),
		windows:  make(map[WindowID]*Window),
		focus:    FocusState{PerKind: make(map[Kind]int)},
	}
	d.scheduler = lockedScheduler{desktop: d, inner: opts.Scheduler}
	d.chat = chat.NewSession(opts.Chat, lockedDialer{desktop: d, inner: opts.Dialer}, opts.Store)
	d.chat.Delivered = d.chatDelivered
	d.chat.StateChanged = d.chatStateChanged
	return d
}

// do runs one user event.
func (d *Desktop) do(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shut {
		return ErrShutdown
	}
	err := fn()
	d.surface.Commit()
	return err
}

// event runs one timer or channel event.
func (d *Desktop) event(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shut {
		return
	}
	fn()
	d.surface.Commit()
}

// Launch opens a new window of the given kind at its cascade position.
func (d *Desktop) Launch(kind Kind) (WindowID, error) {
	var id WindowID
	err := d.do(func() error {
		if _, ok := kindSpecs[kind]; !ok {
			return fmt.Errorf("launch %s: %w", kind, ErrUnknownKind)
		}
		id = d.open(kind, nil).ID
		return nil
	})
	return id, err
}

func (d *Desktop) open(kind Kind, at *Position) *Window {
	num := d.counters[kind]
	d.counters[kind]++
	layout := kindSpecs[kind]
	pos := layout.Cascade(num)
	if at != nil {
		pos = *at
	}
	w := &Window{ID: WindowID{Kind: kind, Num: num}, Position: pos, Visible: true}
	d.windows[w.ID] = w
	d.stack = append(d.stack, w.ID)
	d.focus.set(w.ID)
	d.surface.Create(WindowInfo{ID: w.ID, Kind: kind, Title: layout.Title, Position: pos})

	switch kind {
	case KindMemory:
		w.memory = &memoryApp{}
	case KindHangman:
		w.hangman = hangman.NewRound(d.rng)
	case KindChat:
		w.chat = d.chat.Attach(num)
	}
	d.paint(w)
	if w.chat != nil && w.chat.Phase() == chat.PhaseLive {
		d.surface.ScrollTo(w.ID, ScrollBottom)
	}
	if kind != KindMemory {
		d.surface.FocusInput(w.ID)
	}
	log.Debug().Str("window", w.ID.String()).Int("top", pos.Top).Int("left", pos.Left).Msg("window opened")
	d.journal.Record(w.ID, "window_opened", map[string]any{"top": pos.Top, "left": pos.Left})
	return w
}

func (d *Desktop) paint(w *Window) {
	switch {
	case w.memory != nil:
		d.surface.Paint(w.ID, w.memory.view())
	case w.hangman != nil:
		d.surface.Paint(w.ID, HangmanView{View: w.hangman.View()})
	case w.chat != nil:
		d.surface.Paint(w.ID, ChatView{View: d.chat.View(w.chat)})
	}
}

func (d *Desktop) lookup(id WindowID) (*Window, error) {
	w, ok := d.windows[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownWindow)
	}
	if !w.Visible {
		return nil, fmt.Errorf("%s: %w", id, ErrWindowClosed)
	}
	return w, nil
}

func (d *Desktop) raise(id WindowID) {
	for i, other := range d.stack {
		if other == id {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			break
		}
	}
	d.stack = append(d.stack, id)
	d.surface.Raise(id)
}

// restoreChat keeps the transcript scroll and input focus of a chat window across a restack.
func (d *Desktop) restoreChat(w *Window, scroll int) {
	if w.chat == nil {
		return
	}
	d.surface.ScrollTo(w.ID, scroll)
	d.surface.FocusInput(w.ID)
}

// PointerDown brings a window to the front unless it already holds focus. scroll is the current
// transcript scroll offset of chat windows.
func (d *Desktop) PointerDown(id WindowID, scroll int) error {
	return d.do(func() error {
		w, err := d.lookup(id)
		if err != nil {
			return err
		}
		if d.focus.Holds(id) {
			return nil
		}
		d.focus.set(id)
		d.raise(id)
		d.restoreChat(w, scroll)
		return nil
	})
}

// DragStart records the pointer offset relative to the window's corner.
func (d *Desktop) DragStart(id WindowID, pointerX, pointerY int) error {
	return d.do(func() error {
		w, err := d.lookup(id)
		if err != nil {
			return err
		}
		d.drag = &dragState{
			id:     id,
			offset: Position{Top: w.Position.Top - pointerY, Left: w.Position.Left - pointerX},
		}
		return nil
	})
}

// Drop moves the dragged window to the pointer plus the recorded offset and raises it.
func (d *Desktop) Drop(pointerX, pointerY, scroll int) error {
	return d.do(func() error {
		drag := d.drag
		d.drag = nil
		if drag == nil {
			return nil
		}
		w, err := d.lookup(drag.id)
		if err != nil {
			return err
		}
		w.Position = Position{Top: pointerY + drag.offset.Top, Left: pointerX + drag.offset.Left}
		d.surface.Move(w.ID, w.Position)
		d.raise(w.ID)
		d.restoreChat(w, scroll)
		d.journal.Record(w.ID, "window_moved", map[string]any{"top": w.Position.Top, "left": w.Position.Left})
		return nil
	})
}

// Close hides a window for good.
func (d *Desktop) Close(id WindowID) error {
	return d.do(func() error {
		w, err := d.lookup(id)
		if err != nil {
			return err
		}
		d.hide(w)
		return nil
	})
}

func (d *Desktop) hide(w *Window) {
	w.Visible = false
	for i, other := range d.stack {
		if other == w.ID {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			break
		}
	}
	if d.drag != nil && d.drag.id == w.ID {
		d.drag = nil
	}
	if w.memory != nil {
		w.memory.stop()
	}
	if w.chat != nil {
		d.chat.Detach(w.chat)
	}
	d.surface.Hide(w.ID)
	log.Debug().Str("window", w.ID.String()).Msg("window closed")
	d.journal.Record(w.ID, "window_closed", nil)
}

// KeyUp routes a key to the focused memory window while memory is the kind in focus.
func (d *Desktop) KeyUp(key string) error {
	return d.do(func() error {
		if !d.focus.Active || d.focus.Kind != KindMemory {
			return nil
		}
		w, ok := d.windows[WindowID{Kind: KindMemory, Num: d.focus.PerKind[KindMemory]}]
		if !ok || !w.Visible || w.memory.board == nil {
			return nil
		}
		d.memoryOutcome(w, w.memory.board.Navigate(key))
		return nil
	})
}

// Snapshot replays every visible window onto s, bottom of the stack first.
func (d *Desktop) Snapshot(s Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	saved := d.surface
	d.surface = s
	defer func() { d.surface = saved }()
	for _, id := range d.stack {
		w := d.windows[id]
		layout := kindSpecs[id.Kind]
		s.Create(WindowInfo{ID: id, Kind: id.Kind, Title: layout.Title, Position: w.Position})
		d.paint(w)
		if w.chat != nil {
			s.ScrollTo(id, ScrollBottom)
		}
	}
	s.Commit()
}

// Shutdown cancels timers and closes the chat channel. Later calls fail with ErrShutdown.
func (d *Desktop) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shut {
		return
	}
	for _, id := range append([]WindowID(nil), d.stack...) {
		d.hide(d.windows[id])
	}
	d.shut = true
}

// Window returns a copy of the window state.
func (d *Desktop) Window(id WindowID) (Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	if !ok {
		return Window{}, false
	}
	return Window{ID: w.ID, Position: w.Position, Visible: w.Visible}, true
}

// Stack returns the visible windows, bottom first.
func (d *Desktop) Stack() []WindowID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]WindowID(nil), d.stack...)
}

func (d *Desktop) Focus() FocusState {
	d.mu.Lock()
	defer d.mu.Unlock()
	per := make(map[Kind]int, len(d.focus.PerKind))
	for k, v := range d.focus.PerKind {
		per[k] = v
	}
	return FocusState{Active: d.focus.Active, Kind: d.focus.Kind, PerKind: per}
}

func (d *Desktop) ChatState() chat.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chat.State()
}

func (d *Desktop) Highscores() []highscore.Score {
	return d.ledger.Top()
}
