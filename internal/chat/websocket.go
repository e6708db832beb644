package chat

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultDialTimeout = 10 * time.Second

// WebsocketDialer connects to a chat server over a websocket.
type WebsocketDialer struct {
	URL     string
	Timeout time.Duration
	dialer  *websocket.Dialer
}

func NewWebsocketDialer(url string, timeout time.Duration) *WebsocketDialer {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &WebsocketDialer{
		URL:     url,
		Timeout: timeout,
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

// Dial starts connecting in the background and returns immediately.
func (d *WebsocketDialer) Dial(handler Handler) Channel {
	ch := &wsChannel{}
	go ch.run(d, handler)
	return ch
}

type wsChannel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (c *wsChannel) run(d *WebsocketDialer, handler Handler) {
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	conn, _, err := d.dialer.DialContext(ctx, d.URL, nil)
	cancel()
	if err != nil {
		handler.Closed(err)
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()
	log.Debug().Str("url", d.URL).Msg("chat websocket dialed")

	handler.Opened()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				handler.Closed(nil)
			} else {
				handler.Closed(err)
			}
			return
		}
		handler.Received(payload)
	}
}

func (c *wsChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// OfflineDialer is used when no chat server is configured. Every dial reports a closed channel.
type OfflineDialer struct{}

func (OfflineDialer) Dial(handler Handler) Channel {
	go handler.Closed(ErrNotConnected)
	return offlineChannel{}
}

type offlineChannel struct{}

func (offlineChannel) Send([]byte) error { return ErrNotConnected }
func (offlineChannel) Close() error      { return nil }
