package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"web-desktop/internal/config"

	"github.com/gorilla/websocket"
)

func TestDesktopWebsocketRequiresSession(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/desktop"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected handshake to fail without a session")
	}
	if resp == nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestDesktopWebsocketSnapshotReplaysWindows(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	b.launch(t, "hangman")
	b.launch(t, "memory")

	conn := b.dial(t)
	batch := readBatch(t, conn, 2*time.Second)
	if batch.Type != "ops" {
		t.Fatalf("expected ops batch, got %q", batch.Type)
	}
	var created []string
	painted := 0
	for _, op := range batch.Ops {
		switch op.Op {
		case "create":
			created = append(created, op.Window)
		case "paint":
			painted++
		}
	}
	if strings.Join(created, ",") != "hangman-0,memory-0" {
		t.Fatalf("expected windows replayed in stacking order, got %v", created)
	}
	if painted != 2 {
		t.Fatalf("expected two paints, got %d", painted)
	}
}

func TestDesktopWebsocketBroadcastsToEveryTab(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	first := b.dial(t)
	second := b.dial(t)
	waitForTabs(t, srv, b.sessionID(t), 2)

	if err := first.WriteJSON(map[string]any{"type": "launch", "kind": "memory"}); err != nil {
		t.Fatalf("write launch: %v", err)
	}
	for _, conn := range []*websocket.Conn{first, second} {
		op := waitForOp(t, conn, 2*time.Second, "paint", "memory-0")
		if !strings.Contains(op.HTML, `data-action="memory.start"`) {
			t.Fatalf("expected setup view, got %q", op.HTML)
		}
	}

	if err := second.WriteJSON(map[string]any{"type": "action", "window": "memory-0", "action": "memory.start", "tiles": 4, "text": "ada"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	op := waitForOp(t, first, 2*time.Second, "paint", "memory-0")
	if strings.Count(op.HTML, `data-action="memory.guess"`) != 4 {
		t.Fatalf("expected a four tile board, got %q", op.HTML)
	}
}

func TestDesktopWebsocketIgnoresInvalidEvents(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	conn := b.dial(t)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "launch", "kind": "paint"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "launch", "kind": "chat"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	op := waitForOp(t, conn, 2*time.Second, "create", "chat-0")
	if op.Title != "Chat" {
		t.Fatalf("expected chat title, got %q", op.Title)
	}
}

func TestChatRoundTripThroughRelay(t *testing.T) {
	upgrader := websocket.Upgrader{}
	relay := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, payload); err != nil {
				return
			}
		}
	}))
	t.Cleanup(relay.Close)

	cfg := config.Default()
	cfg.ChatURL = "ws" + strings.TrimPrefix(relay.URL, "http")
	srv := New(nil, cfg)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	conn := b.dial(t)
	id := b.launch(t, "chat")
	waitForChatState(t, b, "open")

	if status, body := b.event(t, map[string]any{"type": "action", "window": id, "action": "chat.username", "text": "ada"}); status != http.StatusAccepted {
		t.Fatalf("username failed: %d %v", status, body)
	}
	if status, body := b.event(t, map[string]any{"type": "action", "window": id, "action": "chat.send", "text": "hi <3 :heart:"}); status != http.StatusAccepted {
		t.Fatalf("send failed: %d %v", status, body)
	}
	op := waitForOp(t, conn, 2*time.Second, "append", id)
	if op.HTML != "<b>ada</b>: hi &lt;3 ❤<br>" {
		t.Fatalf("unexpected appended line %q", op.HTML)
	}
}

func TestChatSendWhileOfflineIsDropped(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	id := b.launch(t, "chat")
	waitForChatState(t, b, "closed")
	if status, body := b.event(t, map[string]any{"type": "action", "window": id, "action": "chat.username", "text": "ada"}); status != http.StatusAccepted {
		t.Fatalf("username failed: %d %v", status, body)
	}
	status, body := b.event(t, map[string]any{"type": "action", "window": id, "action": "chat.send", "text": "hello"})
	if status != http.StatusAccepted {
		t.Fatalf("expected offline send to be dropped quietly, got %d %v", status, body)
	}
	if got := b.state(t).Chat; got != "closed" {
		t.Fatalf("expected chat to stay closed, got %s", got)
	}
}

func waitForTabs(t *testing.T, srv *Server, id string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.ws.Count(id) < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d tabs", want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitForChatState(t *testing.T, b *browser, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		state := b.state(t)
		if state.Chat == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for chat %s, got %s", want, state.Chat)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEvictKeepsSessionWithOpenSocket(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	b.launch(t, "memory")
	id := b.sessionID(t)
	conn := b.dial(t)
	waitForTabs(t, srv, id, 1)
	readBatch(t, conn, 2*time.Second)

	srv.evict(id)
	if _, ok := srv.sessions.Get(id); !ok {
		t.Fatalf("expected session with an open socket to survive eviction")
	}
	if err := conn.WriteJSON(map[string]any{"type": "launch", "kind": "hangman"}); err != nil {
		t.Fatalf("write launch: %v", err)
	}
	waitForOp(t, conn, 2*time.Second, "create", "hangman-0")
}

func TestSocketAfterEvictionGetsFreshDesktop(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	b := newBrowser(t, ts)
	b.launch(t, "memory")
	id := b.sessionID(t)
	old, _ := srv.sessions.Get(id)
	srv.evict(id)

	conn := b.dial(t)
	waitForTabs(t, srv, id, 1)
	current, ok := srv.sessions.Get(id)
	if !ok || current == old {
		t.Fatalf("expected a rebuilt session after eviction")
	}
	if err := conn.WriteJSON(map[string]any{"type": "launch", "kind": "memory"}); err != nil {
		t.Fatalf("write launch: %v", err)
	}
	waitForOp(t, conn, 2*time.Second, "create", "memory-0")
}
