package chat

import (
	"fmt"
	"testing"

	"web-desktop/internal/storage"
)

func TestLogPrependTruncates(t *testing.T) {
	l := NewLog(storage.NewMemory())
	for i := 0; i < MaxLogEntries+1; i++ {
		if _, err := l.Prepend(Message{Username: "u", Text: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("prepend: %v", err)
		}
	}
	messages, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(messages) != MaxLogEntries {
		t.Fatalf("expected %d messages, got %d", MaxLogEntries, len(messages))
	}
	if messages[0].Text != "m100" {
		t.Fatalf("expected newest first, got %q", messages[0].Text)
	}
	if messages[len(messages)-1].Text != "m1" {
		t.Fatalf("expected oldest entry dropped, got %q", messages[len(messages)-1].Text)
	}
}

func TestLogLoadMalformed(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(KeyMessageLog, "{not json")
	l := NewLog(kv)
	messages, err := l.Load()
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty log, got %d", len(messages))
	}
	if _, err := l.Prepend(Message{Username: "a", Text: "b"}); err != nil {
		t.Fatalf("prepend over malformed log: %v", err)
	}
	messages, err = l.Load()
	if err != nil || len(messages) != 1 {
		t.Fatalf("expected one message after recovery, got %d (%v)", len(messages), err)
	}
}

func TestLogClear(t *testing.T) {
	l := NewLog(storage.NewMemory())
	_, _ = l.Prepend(Message{Username: "a", Text: "b"})
	if err := l.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	messages, _ := l.Load()
	if len(messages) != 0 {
		t.Fatalf("expected empty log, got %d", len(messages))
	}
}

func TestChronological(t *testing.T) {
	got := Chronological([]Message{{Text: "3"}, {Text: "2"}, {Text: "1"}})
	if got[0].Text != "1" || got[2].Text != "3" {
		t.Fatalf("unexpected order %+v", got)
	}
}
