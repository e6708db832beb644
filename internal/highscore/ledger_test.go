package highscore

import (
	"errors"
	"testing"
)

func TestLedgerOrdering(t *testing.T) {
	ledger := NewLedger()
	ledger.Insert(NewScore("A", 4, 10))
	ledger.Insert(NewScore("B", 16, 3))
	top, err := ledger.Insert(NewScore("C", 16, 2))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	want := []Score{{"C", 16, 2}, {"B", 16, 3}, {"A", 4, 10}}
	if len(top) != len(want) {
		t.Fatalf("expected %d scores, got %d", len(want), len(top))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], top[i])
		}
	}
}

func TestLedgerKeepsFiveBest(t *testing.T) {
	ledger := NewLedger()
	for attempts := 10; attempts > 0; attempts-- {
		ledger.Insert(NewScore("p", 8, attempts))
	}
	top := ledger.Top()
	if len(top) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(top))
	}
	for i, score := range top {
		if score.Attempts != i+1 {
			t.Fatalf("position %d: expected %d attempts, got %d", i, i+1, score.Attempts)
		}
	}
}

func TestNewScoreDefaultsUsername(t *testing.T) {
	if got := NewScore("", 4, 2).Username; got != "Unnamed" {
		t.Fatalf("expected Unnamed, got %q", got)
	}
}

type failingRecorder struct {
	calls int
}

func (r *failingRecorder) RecordScore(Score) error {
	r.calls++
	return errors.New("db down")
}

func TestLedgerRecorderFailureKeepsScore(t *testing.T) {
	recorder := &failingRecorder{}
	ledger := NewLedger().WithRecorder(recorder, []Score{{"seed", 16, 9}})

	top, err := ledger.Insert(NewScore("Ada", 16, 4))
	if err == nil {
		t.Fatalf("expected recorder error")
	}
	if recorder.calls != 1 {
		t.Fatalf("expected one record call, got %d", recorder.calls)
	}
	if len(top) != 2 || top[0].Username != "Ada" || top[1].Username != "seed" {
		t.Fatalf("unexpected ranking %+v", top)
	}
}
