package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"web-desktop/internal/desktop"
	"web-desktop/internal/memory"
)

func TestValidateEvent(t *testing.T) {
	registerValidators()
	cases := []struct {
		name string
		ev   inboundEvent
		err  string
	}{
		{"launch", inboundEvent{Type: "launch", Kind: "hangman"}, ""},
		{"keyup", inboundEvent{Type: "keyup", Key: "ArrowLeft"}, ""},
		{"drop", inboundEvent{Type: "drop", X: 4, Y: 9}, ""},
		{"guess", inboundEvent{Type: "action", Window: "memory-3", Action: "memory.guess", Index: 15}, ""},
		{"missing key", inboundEvent{Type: "keyup"}, "key is required"},
		{"missing window", inboundEvent{Type: "dragstart"}, "window is required"},
		{"missing action", inboundEvent{Type: "action", Window: "chat-0"}, "action is required"},
		{"bad kind", inboundEvent{Type: "launch", Kind: "MEMORY"}, "unknown application"},
		{"bad index", inboundEvent{Type: "action", Window: "memory-0", Action: "memory.guess", Index: 16}, "index out of range"},
		{"negative scroll", inboundEvent{Type: "pointerdown", Window: "chat-0", Scroll: -3}, "scroll must not be negative"},
		{"long text", inboundEvent{Type: "action", Window: "chat-0", Action: "chat.send", Text: strings.Repeat("a", 501)}, "text is too long"},
	}
	for _, tc := range cases {
		err := validateEvent(&tc.ev)
		if tc.err == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.err) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.err, err)
		}
		if !errors.Is(err, errInvalidEvent) {
			t.Fatalf("%s: expected errInvalidEvent, got %v", tc.name, err)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("chat-1: %w", desktop.ErrUnknownWindow), http.StatusNotFound},
		{fmt.Errorf("chat-1: %w", desktop.ErrWindowClosed), http.StatusConflict},
		{desktop.ErrShutdown, http.StatusGone},
		{desktop.ErrWrongKind, http.StatusBadRequest},
		{memory.ErrTileCount, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", errInvalidEvent), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, got)
		}
	}
}

func TestSessionCookieMustBeUUID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	if _, ok := sessionID(req); ok {
		t.Fatalf("expected malformed cookie to be rejected")
	}
}

func TestSessionStoreRemoveIf(t *testing.T) {
	store := newSessionStore(func(id string) *desktopSession {
		return &desktopSession{id: id}
	})
	store.GetOrCreate("a")
	if _, ok := store.RemoveIf("a", func() bool { return false }); ok {
		t.Fatalf("expected busy session kept")
	}
	if _, ok := store.RemoveIf("a", func() bool { return true }); !ok {
		t.Fatalf("expected idle session removed")
	}
	if _, ok := store.RemoveIf("a", func() bool { return true }); ok {
		t.Fatalf("expected missing session to report false")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
