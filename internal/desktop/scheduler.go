package desktop

import (
	"time"

	"web-desktop/internal/chat"
	"web-desktop/internal/memory"
)

// TimeScheduler runs callbacks on runtime timers.
type TimeScheduler struct{}

func (TimeScheduler) AfterFunc(d time.Duration, fn func()) memory.Timer {
	return time.AfterFunc(d, fn)
}

// lockedScheduler runs timer callbacks as desktop events.
type lockedScheduler struct {
	desktop *Desktop
	inner   memory.Scheduler
}

func (s lockedScheduler) AfterFunc(d time.Duration, fn func()) memory.Timer {
	return s.inner.AfterFunc(d, func() {
		s.desktop.event(fn)
	})
}

// lockedDialer delivers channel callbacks as desktop events.
type lockedDialer struct {
	desktop *Desktop
	inner   chat.Dialer
}

func (d lockedDialer) Dial(handler chat.Handler) chat.Channel {
	return d.inner.Dial(lockedHandler{desktop: d.desktop, inner: handler})
}

type lockedHandler struct {
	desktop *Desktop
	inner   chat.Handler
}

func (h lockedHandler) Opened() {
	h.desktop.event(h.inner.Opened)
}

func (h lockedHandler) Received(payload []byte) {
	h.desktop.event(func() { h.inner.Received(payload) })
}

func (h lockedHandler) Closed(err error) {
	h.desktop.event(func() { h.inner.Closed(err) })
}
