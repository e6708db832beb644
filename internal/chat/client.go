package chat

// Phase of a chat window.
type Phase int

const (
	PhasePrompt Phase = iota
	PhaseLive
)

// Client is the per-window chat state.
type Client struct {
	ID         int
	phase      Phase
	transcript []Message
	notice     string
	detached   bool
}

func (c *Client) Phase() Phase          { return c.phase }
func (c *Client) Transcript() []Message { return c.transcript }

// View is the render model of a chat window.
type View struct {
	Live       bool
	Username   string
	Transcript []Message
	Notice     string
	Connected  bool
}

// View returns the render model of c within s.
func (s *Session) View(c *Client) View {
	return View{
		Live:       c.phase == PhaseLive,
		Username:   s.username,
		Transcript: append([]Message(nil), c.transcript...),
		Notice:     c.notice,
		Connected:  s.state == StateOpen,
	}
}
