package memory

import (
	"errors"
	"fmt"
	"time"
)

// ErrTileCount is returned for boards that are not 4, 8 or 16 tiles.
var ErrTileCount = errors.New("tile count must be 4, 8 or 16")

// TileCounts lists the board sizes offered to players, largest first.
var TileCounts = []int{16, 8, 4}

const (
	DefaultMismatchDelay = 1000 * time.Millisecond
	DefaultMatchDelay    = 500 * time.Millisecond
)

// Face is what a cell currently shows.
type Face int

const (
	FaceHidden  Face = iota // placeholder
	FaceShown               // value visible, still in play
	FaceMatched             // value visible, pair found, waiting to blank
	FaceBlank               // pair found, cell inert
)

// Outcome reports what a guess or navigation did.
type Outcome int

const (
	Ignored Outcome = iota
	Revealed
	Mismatch
	Match
	Won
	Moved
)

// Timer is a pending delayed callback.
type Timer interface {
	Stop() bool
}

// Scheduler creates delayed callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Source draws random integers in [0, n).
type Source interface {
	IntN(n int) int
}

type Delays struct {
	Mismatch time.Duration
	Match    time.Duration
}

func DefaultDelays() Delays {
	return Delays{Mismatch: DefaultMismatchDelay, Match: DefaultMatchDelay}
}

// Board is one memory game. It is not safe for concurrent use; the owner serializes calls and
// scheduler callbacks.
type Board struct {
	tiles    int
	values   []int
	faces    []Face
	pending  int
	faceUp   int
	matched  int
	attempts int
	focused  int

	delays    Delays
	scheduler Scheduler
	timers    map[int]Timer
	nextTimer int

	// OnChange runs after a delayed flip changed the board.
	OnChange func()
}

// NewBoard deals a new board of the given size.
func NewBoard(tiles int, rng Source, scheduler Scheduler, delays Delays) (*Board, error) {
	if !ValidTileCount(tiles) {
		return nil, fmt.Errorf("new board %d: %w", tiles, ErrTileCount)
	}
	b := &Board{
		tiles:     tiles,
		values:    deal(tiles, rng),
		faces:     make([]Face, tiles),
		pending:   -1,
		focused:   -1,
		delays:    delays,
		scheduler: scheduler,
		timers:    make(map[int]Timer),
	}
	return b, nil
}

func ValidTileCount(tiles int) bool {
	for _, n := range TileCounts {
		if n == tiles {
			return true
		}
	}
	return false
}

// deal fills positions one by one, redrawing any value that already appears twice.
func deal(tiles int, rng Source) []int {
	values := make([]int, tiles)
	counts := make([]int, tiles/2)
	for pos := range values {
		v := rng.IntN(tiles / 2)
		for counts[v] >= 2 {
			v = rng.IntN(tiles / 2)
		}
		counts[v]++
		values[pos] = v
	}
	return values
}

func (b *Board) Tiles() int    { return b.tiles }
func (b *Board) Attempts() int { return b.attempts }
func (b *Board) Matched() int  { return b.matched }
func (b *Board) Won() bool     { return b.matched == b.tiles }

// Values returns a copy of the hidden values.
func (b *Board) Values() []int {
	out := make([]int, len(b.values))
	copy(out, b.values)
	return out
}

// Columns is the grid width used for rendering and arrow navigation.
func (b *Board) Columns() int {
	if b.tiles == 4 {
		return 2
	}
	return 4
}

// Guess reveals a cell.
func (b *Board) Guess(index int) Outcome {
	if b.Won() || index < 0 || index >= b.tiles {
		return Ignored
	}
	if b.faceUp >= 2 || index == b.pending || b.faces[index] != FaceHidden {
		return Ignored
	}
	b.faces[index] = FaceShown
	b.faceUp++
	if b.faceUp == 1 {
		b.pending = index
		return Revealed
	}

	first := b.pending
	b.attempts++
	if b.values[first] != b.values[index] {
		b.after(b.delays.Mismatch, func() {
			b.faces[first] = FaceHidden
			b.faces[index] = FaceHidden
			b.faceUp = 0
			b.pending = -1
		})
		return Mismatch
	}

	b.faces[first] = FaceMatched
	b.faces[index] = FaceMatched
	b.faceUp = 0
	b.pending = -1
	b.matched += 2
	b.after(b.delays.Match, func() {
		b.faces[first] = FaceBlank
		b.faces[index] = FaceBlank
	})
	if b.Won() {
		return Won
	}
	return Match
}

// Navigation keys, named after the browser's KeyboardEvent.key values.
const (
	KeyUp    = "ArrowUp"
	KeyDown  = "ArrowDown"
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
	KeyEnter = "Enter"
)

// Navigate moves the keyboard focus or guesses the focused cell on Enter.
func (b *Board) Navigate(key string) Outcome {
	if b.Won() {
		return Ignored
	}
	switch key {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyEnter:
	default:
		return Ignored
	}
	if b.focused < 0 {
		b.focused = 0
		return Moved
	}

	cols := b.Columns()
	next := b.focused
	switch key {
	case KeyEnter:
		return b.Guess(b.focused)
	case KeyRight:
		if (b.focused+1)%cols != 0 && b.focused+1 < b.tiles {
			next = b.focused + 1
		}
	case KeyLeft:
		if b.focused%cols != 0 {
			next = b.focused - 1
		}
	case KeyUp:
		if b.focused-cols >= 0 {
			next = b.focused - cols
		}
	case KeyDown:
		if b.focused+cols < b.tiles {
			next = b.focused + cols
		}
	}
	if next == b.focused {
		return Ignored
	}
	b.focused = next
	return Moved
}

// Focused returns the keyboard-focused cell or -1.
func (b *Board) Focused() int {
	return b.focused
}

// Pending reports whether delayed flips are still outstanding.
func (b *Board) Pending() bool {
	return len(b.timers) > 0
}

// Stop cancels every outstanding delayed flip.
func (b *Board) Stop() {
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Board) after(d time.Duration, fn func()) {
	id := b.nextTimer
	b.nextTimer++
	b.timers[id] = b.scheduler.AfterFunc(d, func() {
		if _, live := b.timers[id]; !live {
			return
		}
		delete(b.timers, id)
		fn()
		if b.OnChange != nil {
			b.OnChange()
		}
	})
}

// CellView is the render state of one cell.
type CellView struct {
	Index   int
	Face    Face
	Value   int
	Focused bool
}

// View is a render snapshot of the board.
type View struct {
	Tiles    int
	Columns  int
	Attempts int
	Matched  int
	Won      bool
	Cells    []CellView
}

func (b *Board) View() View {
	cells := make([]CellView, b.tiles)
	for i := range cells {
		cells[i] = CellView{
			Index:   i,
			Face:    b.faces[i],
			Focused: i == b.focused,
			Value:   -1,
		}
		if b.faces[i] == FaceShown || b.faces[i] == FaceMatched {
			cells[i].Value = b.values[i]
		}
	}
	return View{
		Tiles:    b.tiles,
		Columns:  b.Columns(),
		Attempts: b.attempts,
		Matched:  b.matched,
		Won:      b.Won(),
		Cells:    cells,
	}
}
