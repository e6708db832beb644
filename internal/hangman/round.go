package hangman

import (
	"errors"
	"strings"
)

// MaxWrong is the number of wrong guesses that loses a round; one illustration stage per wrong guess.
const MaxWrong = 9

// Words is the fixed list secret words are drawn from.
var Words = []string{"happy", "hippie", "firetruck", "moped", "strong", "love"}

// Guess validation errors. Their text is shown to the player as is.
var (
	ErrEmpty          = errors.New("Type a guess first!")
	ErrNotLetter      = errors.New("Not a letter!")
	ErrTooLong        = errors.New("One letter at a time!")
	ErrAlreadyGuessed = errors.New("Already guessed that letter!")
	ErrRoundOver      = errors.New("The round is over.")
)

type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseWon
	PhaseLost
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	case PhaseLost:
		return "lost"
	default:
		return "setup"
	}
}

// Source draws random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Round is one hangman game window. Calls must be serialized by the owner.
type Round struct {
	rng     Source
	words   []string
	phase   Phase
	word    string
	pattern []rune
	wrong   int
	guessed map[rune]bool
	misses  []rune
	stage   int
	lastErr error
}

func NewRound(rng Source) *Round {
	return &Round{rng: rng, words: Words, stage: -1, guessed: make(map[rune]bool)}
}

// WithWords replaces the word list; used by tests and custom decks.
func (r *Round) WithWords(words []string) *Round {
	if len(words) > 0 {
		r.words = words
	}
	return r
}

// Start picks a new secret word and clears every per-round field.
func (r *Round) Start() {
	r.word = r.words[r.rng.IntN(len(r.words))]
	r.pattern = []rune(strings.Repeat("_", len([]rune(r.word))))
	r.wrong = 0
	r.guessed = make(map[rune]bool)
	r.misses = nil
	r.stage = -1
	r.lastErr = nil
	r.phase = PhasePlaying
}

// Restart re-enters play after a finished round.
func (r *Round) Restart() {
	r.Start()
}

// Guess submits one letter. Validation failures leave the round untouched.
func (r *Round) Guess(input string) (bool, error) {
	r.lastErr = nil
	hit, err := r.guess(input)
	r.lastErr = err
	return hit, err
}

func (r *Round) guess(input string) (bool, error) {
	if r.phase != PhasePlaying {
		return false, ErrRoundOver
	}
	letters := []rune(strings.TrimSpace(input))
	if len(letters) == 0 {
		return false, ErrEmpty
	}
	for _, c := range letters {
		if !isASCIILetter(c) {
			return false, ErrNotLetter
		}
	}
	if len(letters) > 1 {
		return false, ErrTooLong
	}
	c := toLower(letters[0])
	if r.guessed[c] {
		return false, ErrAlreadyGuessed
	}
	r.guessed[c] = true

	hit := false
	for i, w := range []rune(r.word) {
		if w == c {
			r.pattern[i] = toUpper(c)
			hit = true
		}
	}
	if hit {
		if strings.EqualFold(string(r.pattern), r.word) {
			r.phase = PhaseWon
		}
		return true, nil
	}

	r.stage = r.wrong
	r.wrong++
	r.misses = append(r.misses, toUpper(c))
	if r.wrong >= MaxWrong {
		r.phase = PhaseLost
	}
	return false, nil
}

func (r *Round) Phase() Phase    { return r.phase }
func (r *Round) Word() string    { return r.word }
func (r *Round) Pattern() string { return string(r.pattern) }
func (r *Round) WrongCount() int { return r.wrong }

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toLower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func toUpper(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// View is a render snapshot of the round.
type View struct {
	Phase   Phase
	Pattern string
	Word    string
	Misses  string
	Stage   int
	Wrong   int
	Notice  string
}

func (r *Round) View() View {
	v := View{
		Phase:   r.phase,
		Pattern: string(r.pattern),
		Misses:  string(r.misses),
		Stage:   r.stage,
		Wrong:   r.wrong,
	}
	if r.phase == PhaseLost {
		v.Pattern = strings.ToUpper(r.word)
		v.Word = r.word
	}
	if r.lastErr != nil && r.phase == PhasePlaying {
		v.Notice = r.lastErr.Error()
	}
	return v
}
