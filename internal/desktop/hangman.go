package desktop

import (
	"errors"
	"fmt"

	"web-desktop/internal/hangman"
)

func (d *Desktop) hangmanWindow(id WindowID) (*Window, error) {
	w, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if w.hangman == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrWrongKind)
	}
	return w, nil
}

// HangmanStart begins the first round from the start page.
func (d *Desktop) HangmanStart(id WindowID) error {
	return d.do(func() error {
		w, err := d.hangmanWindow(id)
		if err != nil {
			return err
		}
		if w.hangman.Phase() != hangman.PhaseSetup {
			return nil
		}
		w.hangman.Start()
		d.paint(w)
		d.surface.FocusInput(w.ID)
		return nil
	})
}

// HangmanGuess submits a letter. Rejected input is shown as a notice in the window.
func (d *Desktop) HangmanGuess(id WindowID, input string) error {
	return d.do(func() error {
		w, err := d.hangmanWindow(id)
		if err != nil {
			return err
		}
		if _, err := w.hangman.Guess(input); errors.Is(err, hangman.ErrRoundOver) {
			return nil
		}
		d.paint(w)
		d.surface.FocusInput(w.ID)
		switch w.hangman.Phase() {
		case hangman.PhaseWon, hangman.PhaseLost:
			d.journal.Record(w.ID, "hangman_"+w.hangman.Phase().String(), map[string]any{
				"word":  w.hangman.Word(),
				"wrong": w.hangman.WrongCount(),
			})
		}
		return nil
	})
}

// HangmanRestart starts a new round after a win or loss.
func (d *Desktop) HangmanRestart(id WindowID) error {
	return d.do(func() error {
		w, err := d.hangmanWindow(id)
		if err != nil {
			return err
		}
		switch w.hangman.Phase() {
		case hangman.PhaseWon, hangman.PhaseLost:
		default:
			return nil
		}
		w.hangman.Restart()
		d.paint(w)
		d.surface.FocusInput(w.ID)
		return nil
	})
}
