package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"web-desktop/internal/storage"

	"github.com/rs/zerolog/log"
)

// MaxUsernameLength is the longest accepted username, in characters.
const MaxUsernameLength = 20

var (
	// ErrNotConnected is returned by Send while the shared channel is not open.
	ErrNotConnected = errors.New("chat channel is not connected")
	// ErrEmptyUsername rejects a username that is empty after trimming and expansion.
	ErrEmptyUsername = errors.New("Pick a username first!")
)

// State of the shared channel.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Channel is an established or establishing connection to the chat server.
type Channel interface {
	Send(payload []byte) error
	Close() error
}

// Handler receives channel events. Calls may arrive from any goroutine.
type Handler interface {
	Opened()
	Received(payload []byte)
	Closed(err error)
}

// Dialer starts a connection without blocking; progress is reported through the handler.
type Dialer interface {
	Dial(handler Handler) Channel
}

// Config is the per-server chat routing configuration.
type Config struct {
	Channel string
	Key     string
}

// Envelope is the wire format exchanged with the chat server.
type Envelope struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	Username string `json:"username"`
	Channel  string `json:"channel"`
	Key      string `json:"key"`
}

// Session is the chat state shared by every chat window of one desktop.
type Session struct {
	cfg    Config
	dialer Dialer
	kv     storage.KV
	log    *Log

	opened   int
	closed   int
	state    State
	channel  Channel
	gen      int
	username string
	clients  map[int]*Client

	// Delivered is called for every live client an inbound message was appended to.
	Delivered func(c *Client, msg Message)
	// StateChanged is called after the channel state changes.
	StateChanged func(state State)
}

func NewSession(cfg Config, dialer Dialer, kv storage.KV) *Session {
	if cfg.Channel == "" {
		cfg.Channel = "default"
	}
	return &Session{
		cfg:     cfg,
		dialer:  dialer,
		kv:      kv,
		log:     NewLog(kv),
		clients: make(map[int]*Client),
	}
}

func (s *Session) State() State       { return s.state }
func (s *Session) Username() string   { return s.username }
func (s *Session) Counts() (int, int) { return s.opened, s.closed }

// Attach registers a new chat window and dials the channel if none is open or connecting.
func (s *Session) Attach(id int) *Client {
	c := &Client{ID: id}
	s.clients[id] = c
	s.opened++
	if s.channel == nil {
		s.connect()
	}
	s.init(c)
	return c
}

// Detach counts a closed chat window. When every opened window is closed the channel is closed and the
// counters reset.
func (s *Session) Detach(c *Client) {
	if c == nil || c.detached {
		return
	}
	c.detached = true
	delete(s.clients, c.ID)
	s.closed++
	if s.closed < s.opened {
		return
	}
	s.teardown()
	s.opened, s.closed = 0, 0
}

// Client returns the attached window client with the given id.
func (s *Session) Client(id int) (*Client, bool) {
	c, ok := s.clients[id]
	return c, ok
}

func (s *Session) init(c *Client) {
	name, err := s.kv.Get(KeyUsername)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Warn().Err(err).Msg("chat: load username")
	}
	if err != nil || name == "" {
		c.phase = PhasePrompt
		return
	}
	s.username = name
	s.goLive(c)
}

func (s *Session) goLive(c *Client) {
	messages, err := s.log.Load()
	if err != nil {
		log.Warn().Err(err).Msg("chat: message log unreadable, starting empty")
	}
	c.phase = PhaseLive
	c.notice = ""
	c.transcript = Chronological(messages)
}

// SubmitUsername validates and stores a username entered in a prompting window and moves it to the live
// transcript.
func (s *Session) SubmitUsername(c *Client, input string) error {
	name := truncateRunes(strings.TrimSpace(input), MaxUsernameLength)
	name = strings.TrimSpace(Expand(name))
	if name == "" {
		c.notice = ErrEmptyUsername.Error()
		return ErrEmptyUsername
	}
	if err := s.kv.Set(KeyUsername, name); err != nil {
		log.Warn().Err(err).Msg("chat: store username")
	}
	s.username = name
	s.goLive(c)
	return nil
}

// ForgetUsername deletes the stored username so the next window prompts again. Live windows keep
// sending under the current name until a new one is submitted.
func (s *Session) ForgetUsername() {
	if err := s.kv.Delete(KeyUsername); err != nil {
		log.Warn().Err(err).Msg("chat: delete username")
	}
}

// ClearHistory empties the persisted log and the transcript of c only.
func (s *Session) ClearHistory(c *Client) {
	if err := s.log.Clear(); err != nil {
		log.Warn().Err(err).Msg("chat: clear message log")
	}
	c.transcript = nil
}

// Send expands and transmits text. Empty text is ignored.
func (s *Session) Send(text string) error {
	if text == "" {
		return nil
	}
	text = Expand(text)
	if s.state != StateOpen || s.channel == nil {
		log.Warn().Str("state", s.state.String()).Msg("chat: channel not open, message dropped")
		return ErrNotConnected
	}
	payload, err := json.Marshal(Envelope{
		Type:     "message",
		Data:     text,
		Username: s.username,
		Channel:  s.cfg.Channel,
		Key:      s.cfg.Key,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := s.channel.Send(payload); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (s *Session) connect() {
	s.gen++
	s.setState(StateConnecting)
	s.channel = s.dialer.Dial(&link{session: s, gen: s.gen})
	log.Info().Int("generation", s.gen).Msg("chat: connecting")
}

func (s *Session) teardown() {
	ch := s.channel
	s.channel = nil
	s.gen++
	if ch != nil {
		if err := ch.Close(); err != nil {
			log.Debug().Err(err).Msg("chat: close channel")
		}
	}
	s.setState(StateClosed)
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.state = state
	if s.StateChanged != nil {
		s.StateChanged(state)
	}
}

func (s *Session) receive(payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Debug().Err(err).Msg("chat: malformed payload ignored")
		return
	}
	if env.Type != "message" {
		return
	}
	msg := Message{Username: env.Username, Text: env.Data}
	if _, err := s.log.Prepend(msg); err != nil {
		log.Warn().Err(err).Msg("chat: persist message")
	}
	ids := make([]int, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := s.clients[id]
		if c.phase != PhaseLive {
			continue
		}
		c.transcript = append(c.transcript, msg)
		if s.Delivered != nil {
			s.Delivered(c, msg)
		}
	}
}

// link binds channel events to one connection generation.
type link struct {
	session *Session
	gen     int
}

func (l *link) current() bool { return l.session.gen == l.gen }

func (l *link) Opened() {
	if !l.current() {
		return
	}
	log.Info().Msg("chat: connected")
	l.session.setState(StateOpen)
}

func (l *link) Received(payload []byte) {
	if !l.current() {
		return
	}
	l.session.receive(payload)
}

func (l *link) Closed(err error) {
	if !l.current() {
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("chat: connection closed")
	} else {
		log.Info().Msg("chat: connection closed")
	}
	l.session.channel = nil
	l.session.gen++
	l.session.setState(StateClosed)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
