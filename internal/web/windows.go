package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"web-desktop/internal/chat"
	"web-desktop/internal/desktop"
	"web-desktop/internal/hangman"
	"web-desktop/internal/highscore"
	"web-desktop/internal/memory"

	"github.com/a-h/templ"
)

// tileSymbols are the faces of memory tiles, indexed by tile value.
var tileSymbols = []string{"🍎", "🚲", "🎈", "🐢", "🌵", "⚓", "🎸", "🦉"}

const (
	hiddenSymbol = "?"
	blankSymbol  = ""
)

// Window renders the content of a window from its view model.
func Window(view any) templ.Component {
	switch v := view.(type) {
	case desktop.MemoryView:
		return Memory(v)
	case desktop.HangmanView:
		return Hangman(v)
	case desktop.ChatView:
		return Chat(v)
	default:
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return fmt.Errorf("render window: unsupported view %T", view)
		})
	}
}

func Memory(v desktop.MemoryView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		switch {
		case v.Setup:
			b.WriteString(`<div class="memory-setup"><h1>Select number of images</h1>`)
			b.WriteString(`<input type="text" name="username" placeholder="Username" autocomplete="off"/><div class="memory-sizes">`)
			for _, n := range v.TileCounts {
				b.WriteString(`<button type="button" data-action="memory.start" data-tiles="` + itoa(n) + `">` + itoa(n) + `</button>`)
			}
			b.WriteString(`</div></div>`)
		case v.Won:
			b.WriteString(`<div class="memory-won"><h1>You win in ` + itoa(v.Board.Attempts) + ` guesses!</h1>`)
			if err := writeComponent(ctx, &b, Highscores(v.Highscores)); err != nil {
				return err
			}
			b.WriteString(`<button type="button" data-action="memory.new">New Game</button></div>`)
		default:
			b.WriteString(`<table class="memory-grid memory-` + itoa(v.Board.Tiles) + `"><tr>`)
			for i, cell := range v.Board.Cells {
				if i > 0 && i%v.Board.Columns == 0 {
					b.WriteString(`</tr><tr>`)
				}
				class := "cell"
				if cell.Focused {
					class += " focused"
				}
				b.WriteString(`<td class="` + class + `" data-action="memory.guess" data-index="` + itoa(cell.Index) + `">` + cellSymbol(cell) + `</td>`)
			}
			b.WriteString(`</tr></table>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func cellSymbol(cell memory.CellView) string {
	switch cell.Face {
	case memory.FaceShown, memory.FaceMatched:
		if cell.Value >= 0 && cell.Value < len(tileSymbols) {
			return tileSymbols[cell.Value]
		}
		return itoa(cell.Value)
	case memory.FaceBlank:
		return blankSymbol
	default:
		return hiddenSymbol
	}
}

// Highscores renders the ranked score table.
func Highscores(scores []highscore.Score) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="highscores"><caption><h3><u>Highscores</u></h3></caption>`)
		b.WriteString(`<thead><tr><th>Username</th><th>Images</th><th>Guesses</th></tr></thead><tbody>`)
		for _, s := range scores {
			b.WriteString(`<tr><td>` + esc(s.Username) + `</td><td>` + itoa(s.Tiles) + `</td><td>` + itoa(s.Attempts) + `</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// gallows holds one drawing per illustration stage, starting with the empty scaffold.
var gallows = []string{
	"\n\n\n\n\n_______",
	"\n |\n |\n |\n |\n_|_____",
	" _____\n |\n |\n |\n |\n_|_____",
	" _____\n |   |\n |\n |\n |\n_|_____",
	" _____\n |   |\n |   O\n |\n |\n_|_____",
	" _____\n |   |\n |   O\n |   |\n |\n_|_____",
	" _____\n |   |\n |   O\n |  /|\n |\n_|_____",
	" _____\n |   |\n |   O\n |  /|\\\n |\n_|_____",
	" _____\n |   |\n |   O\n |  /|\\\n |  /\n_|_____",
	" _____\n |   |\n |   O\n |  /|\\\n |  / \\\n_|_____",
}

func Hangman(v desktop.HangmanView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		stage := v.Stage + 1
		if stage >= len(gallows) {
			stage = len(gallows) - 1
		}
		b.WriteString(`<div class="hangman"><pre class="gallows">` + esc(gallows[stage]) + `</pre><div class="hangman-body">`)
		switch v.Phase {
		case hangman.PhaseSetup:
			b.WriteString(`<h1>Hangman</h1><h2>Guess the correct word!</h2>`)
			b.WriteString(`<button type="button" data-action="hangman.start">New game</button>`)
		case hangman.PhaseWon, hangman.PhaseLost:
			if v.Phase == hangman.PhaseWon {
				b.WriteString(`<h1 class="banner win">YOU WIN!</h1>`)
			} else {
				b.WriteString(`<h1 class="banner lose">YOU LOSE!</h1>`)
			}
			b.WriteString(`<p class="pattern">` + esc(spaced(v.Pattern)) + `</p>`)
			b.WriteString(`<button type="button" data-action="hangman.restart">New game</button>`)
		default:
			b.WriteString(`<p class="pattern">` + esc(spaced(v.Pattern)) + `</p>`)
			b.WriteString(`<p class="misses">Wrong: ` + esc(v.Misses) + ` (` + itoa(v.Wrong) + `/` + itoa(hangman.MaxWrong) + `)</p>`)
			b.WriteString(`<form data-action="hangman.guess"><input type="text" name="text" maxlength="1" autocomplete="off"/><button type="submit">Guess</button></form>`)
			if v.Notice != "" {
				b.WriteString(`<p class="notice">` + esc(v.Notice) + `</p>`)
			}
		}
		b.WriteString(`</div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func spaced(pattern string) string {
	return strings.Join(strings.Split(pattern, ""), " ")
}

func Chat(v desktop.ChatView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if !v.Live {
			b.WriteString(`<form class="chat-prompt" data-action="chat.username"><h2>Choose a username</h2>`)
			b.WriteString(`<input type="text" name="text" maxlength="20" autocomplete="off" placeholder="Username"/><button type="submit">Start chatting</button>`)
			if v.Notice != "" {
				b.WriteString(`<p class="notice">` + esc(v.Notice) + `</p>`)
			}
			b.WriteString(`</form>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		status := "offline"
		if v.Connected {
			status = "online"
		}
		b.WriteString(`<div class="chat"><div class="chat-header"><span class="status ` + status + `">` + esc(v.Username) + `</span>`)
		b.WriteString(`<button type="button" data-action="chat.change">Change username</button>`)
		b.WriteString(`<button type="button" data-action="chat.clear">Clear history</button></div><div class="chat-transcript">`)
		for _, msg := range v.Transcript {
			if err := writeComponent(ctx, &b, ChatLine(msg)); err != nil {
				return err
			}
		}
		b.WriteString(`</div><form data-action="chat.send"><input type="text" name="text" autocomplete="off"/><button type="submit">Send</button></form></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ChatLine renders one transcript entry.
func ChatLine(msg chat.Message) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<b>`+esc(msg.Username)+`</b>: `+esc(msg.Text)+`<br>`)
		return err
	})
}

func writeComponent(ctx context.Context, b *strings.Builder, c templ.Component) error {
	return c.Render(ctx, b)
}
