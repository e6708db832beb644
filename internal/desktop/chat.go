package desktop

import (
	"errors"
	"fmt"

	"web-desktop/internal/chat"

	"github.com/rs/zerolog/log"
)

func (d *Desktop) chatWindow(id WindowID) (*Window, error) {
	w, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	if w.chat == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrWrongKind)
	}
	return w, nil
}

// ChatUsername stores the username typed into a prompting chat window.
func (d *Desktop) ChatUsername(id WindowID, name string) error {
	return d.do(func() error {
		w, err := d.chatWindow(id)
		if err != nil {
			return err
		}
		if w.chat.Phase() != chat.PhasePrompt {
			return nil
		}
		err = d.chat.SubmitUsername(w.chat, name)
		d.paint(w)
		if err == nil {
			d.surface.ScrollTo(w.ID, ScrollBottom)
		}
		d.surface.FocusInput(w.ID)
		return nil
	})
}

// ChatSend sends a message on the shared channel. Messages typed while the channel is down are
// dropped.
func (d *Desktop) ChatSend(id WindowID, text string) error {
	return d.do(func() error {
		w, err := d.chatWindow(id)
		if err != nil {
			return err
		}
		if w.chat.Phase() != chat.PhaseLive {
			return nil
		}
		if err := d.chat.Send(text); err != nil && !errors.Is(err, chat.ErrNotConnected) {
			log.Warn().Err(err).Str("window", id.String()).Msg("chat send failed")
		}
		d.surface.FocusInput(w.ID)
		return nil
	})
}

// ChatChangeUsername forgets the stored username and replaces the window with a prompting one at
// the same position.
func (d *Desktop) ChatChangeUsername(id WindowID) (WindowID, error) {
	var next WindowID
	err := d.do(func() error {
		w, err := d.chatWindow(id)
		if err != nil {
			return err
		}
		d.chat.ForgetUsername()
		pos := w.Position
		next = d.open(KindChat, &pos).ID
		d.hide(w)
		return nil
	})
	return next, err
}

// ChatClearHistory empties the stored log and this window's transcript.
func (d *Desktop) ChatClearHistory(id WindowID) error {
	return d.do(func() error {
		w, err := d.chatWindow(id)
		if err != nil {
			return err
		}
		d.chat.ClearHistory(w.chat)
		d.paint(w)
		d.surface.FocusInput(w.ID)
		return nil
	})
}

func (d *Desktop) chatDelivered(c *chat.Client, msg chat.Message) {
	id := WindowID{Kind: KindChat, Num: c.ID}
	d.surface.Append(id, msg)
	d.surface.ScrollTo(id, ScrollBottom)
}

func (d *Desktop) chatStateChanged(state chat.State) {
	log.Debug().Str("state", state.String()).Msg("chat channel state")
	for _, id := range d.stack {
		w := d.windows[id]
		if w.chat != nil && w.chat.Phase() == chat.PhaseLive {
			d.paint(w)
			d.surface.ScrollTo(id, ScrollBottom)
		}
	}
}
