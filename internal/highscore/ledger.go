package highscore

import (
	"sort"
	"sync"
)

// MaxEntries is the number of scores the ledger keeps.
const MaxEntries = 5

const unnamed = "Unnamed"

// Score is one finished memory game.
type Score struct {
	Username string `json:"username"`
	Tiles    int    `json:"tiles"`
	Attempts int    `json:"attempts"`
}

// NewScore builds a Score, substituting a placeholder for an empty username.
func NewScore(username string, tiles, attempts int) Score {
	if username == "" {
		username = unnamed
	}
	return Score{Username: username, Tiles: tiles, Attempts: attempts}
}

// Recorder receives every score accepted by a ledger.
type Recorder interface {
	RecordScore(score Score) error
}

// Ledger keeps the best scores, larger boards first and fewer attempts second.
type Ledger struct {
	mu       sync.Mutex
	scores   []Score
	recorder Recorder
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// WithRecorder attaches a persistence hook and seeds the ledger with previously stored scores.
func (l *Ledger) WithRecorder(recorder Recorder, seed []Score) *Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = recorder
	for _, score := range seed {
		l.insertLocked(score)
	}
	return l
}

// Insert adds a score and returns the resulting top list.
func (l *Ledger) Insert(score Score) ([]Score, error) {
	l.mu.Lock()
	l.insertLocked(score)
	top := l.topLocked()
	recorder := l.recorder
	l.mu.Unlock()

	if recorder != nil {
		if err := recorder.RecordScore(score); err != nil {
			return top, err
		}
	}
	return top, nil
}

// Top returns a copy of the current ranking.
func (l *Ledger) Top() []Score {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.topLocked()
}

func (l *Ledger) insertLocked(score Score) {
	l.scores = append(l.scores, score)
	sort.SliceStable(l.scores, func(i, j int) bool {
		if l.scores[i].Tiles != l.scores[j].Tiles {
			return l.scores[i].Tiles > l.scores[j].Tiles
		}
		return l.scores[i].Attempts < l.scores[j].Attempts
	})
	if len(l.scores) > MaxEntries {
		l.scores = l.scores[:MaxEntries]
	}
}

func (l *Ledger) topLocked() []Score {
	out := make([]Score, len(l.scores))
	copy(out, l.scores)
	return out
}
