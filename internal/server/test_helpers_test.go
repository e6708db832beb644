package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// browser is a test client that keeps the session cookie like a real tab would.
type browser struct {
	ts     *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	b := &browser{ts: ts, client: &http.Client{Jar: jar}}
	resp := b.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return b
}

func (b *browser) do(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, b.ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func (b *browser) event(t *testing.T, payload map[string]any) (int, map[string]any) {
	t.Helper()
	resp := b.do(t, http.MethodPost, "/api/desktop/events", payload)
	return resp.StatusCode, decodeBody(t, resp)
}

func (b *browser) launch(t *testing.T, kind string) string {
	t.Helper()
	status, body := b.event(t, map[string]any{"type": "launch", "kind": kind})
	if status != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d (%v)", http.StatusAccepted, status, body)
	}
	return body["window"].(string)
}

func (b *browser) state(t *testing.T) desktopState {
	t.Helper()
	resp := b.do(t, http.MethodGet, "/api/desktop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var state desktopState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func (b *browser) sessionID(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(b.ts.URL)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatalf("no session cookie")
	return ""
}

func (b *browser) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(b.ts.URL)
	header := http.Header{}
	for _, c := range b.client.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	wsURL := "ws" + strings.TrimPrefix(b.ts.URL, "http") + "/ws/desktop"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func readBatch(t *testing.T, conn *websocket.Conn, timeout time.Duration) opBatch {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var batch opBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	return batch
}

// waitForOp reads batches until one carries op for window.
func waitForOp(t *testing.T, conn *websocket.Conn, timeout time.Duration, op, window string) surfaceOp {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var seen []string
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out waiting for %s %s; seen=%v", op, window, seen)
		}
		batch := readBatch(t, conn, remaining)
		for _, o := range batch.Ops {
			if o.Op == op && o.Window == window {
				return o
			}
			seen = append(seen, o.Op+" "+o.Window)
		}
	}
}
