package desktop

import (
	"fmt"

	"web-desktop/internal/highscore"
	"web-desktop/internal/memory"

	"github.com/rs/zerolog/log"
)

type memoryApp struct {
	username string
	board    *memory.Board
	top      []highscore.Score
}

func (a *memoryApp) view() MemoryView {
	v := MemoryView{
		Setup:      a.board == nil,
		TileCounts: memory.TileCounts,
		Username:   a.username,
	}
	if a.board == nil {
		return v
	}
	v.Board = a.board.View()
	v.Won = a.board.Won()
	if v.Won {
		v.Highscores = a.top
	}
	return v
}

func (a *memoryApp) stop() {
	if a.board != nil {
		a.board.Stop()
	}
}

func (d *Desktop) memoryWindow(id WindowID) (*Window, error) {
	w, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if w.memory == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrWrongKind)
	}
	return w, nil
}

// MemoryStart leaves the setup page and deals a board of the chosen size.
func (d *Desktop) MemoryStart(id WindowID, tiles int, username string) error {
	return d.do(func() error {
		w, err := d.memoryWindow(id)
		if err != nil {
			return err
		}
		if w.memory.board != nil {
			return nil
		}
		return d.startBoard(w, tiles, username)
	})
}

func (d *Desktop) startBoard(w *Window, tiles int, username string) error {
	board, err := memory.NewBoard(tiles, d.rng, d.scheduler, d.delays)
	if err != nil {
		return err
	}
	board.OnChange = func() { d.paint(w) }
	w.memory.username = username
	w.memory.board = board
	d.paint(w)
	d.journal.Record(w.ID, "memory_started", map[string]any{"tiles": tiles, "username": username})
	return nil
}

// MemoryGuess reveals a cell.
func (d *Desktop) MemoryGuess(id WindowID, index int) error {
	return d.do(func() error {
		w, err := d.memoryWindow(id)
		if err != nil {
			return err
		}
		if w.memory.board == nil {
			return nil
		}
		d.memoryOutcome(w, w.memory.board.Guess(index))
		return nil
	})
}

func (d *Desktop) memoryOutcome(w *Window, outcome memory.Outcome) {
	if outcome == memory.Ignored {
		return
	}
	if outcome == memory.Won {
		d.memoryWon(w)
	}
	d.paint(w)
}

func (d *Desktop) memoryWon(w *Window) {
	board := w.memory.board
	score := highscore.NewScore(w.memory.username, board.Tiles(), board.Attempts())
	top, err := d.ledger.Insert(score)
	if err != nil {
		log.Warn().Err(err).Str("window", w.ID.String()).Msg("record score")
	}
	w.memory.top = top
	log.Info().Str("window", w.ID.String()).Str("username", score.Username).
		Int("tiles", score.Tiles).Int("attempts", score.Attempts).Msg("memory game won")
	d.journal.Record(w.ID, "memory_won", map[string]any{
		"username": score.Username,
		"tiles":    score.Tiles,
		"attempts": score.Attempts,
	})
}

// MemoryNewGame replaces a won game with a fresh window at the same position, same board size and
// same username.
func (d *Desktop) MemoryNewGame(id WindowID) (WindowID, error) {
	var next WindowID
	err := d.do(func() error {
		w, err := d.memoryWindow(id)
		if err != nil {
			return err
		}
		if w.memory.board == nil || !w.memory.board.Won() {
			return nil
		}
		pos := w.Position
		tiles, username := w.memory.board.Tiles(), w.memory.username
		d.hide(w)
		nw := d.open(KindMemory, &pos)
		next = nw.ID
		return d.startBoard(nw, tiles, username)
	})
	return next, err
}
