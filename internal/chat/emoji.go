package chat

import "strings"

// emojis maps shortcode names, written as :name:, to the character they expand to.
var emojis = map[string]rune{
	"happy":          0x1F600,
	"veryHappy":      0x1F601,
	"laughing":       0x1F602,
	"upsideDown":     0x1F643,
	"angel":          0x1F607,
	"heartEyes":      0x1F60D,
	"loved":          0x1F970,
	"starEyes":       0x1F929,
	"kiss":           0x1F618,
	"crazy":          0x1F92A,
	"moneyEyes":      0x1F911,
	"thinking":       0x1F914,
	"smirk":          0x1F60F,
	"sleeping":       0x1F634,
	"corona":         0x1F912,
	"party":          0x1F973,
	"cool":           0x1F60E,
	"scared":         0x1F631,
	"angry":          0x1F621,
	"curse":          0x1F92C,
	"devil":          0x1F608,
	"poop":           0x1F4A9,
	"clown":          0x1F921,
	"shyMonkey":      0x1F648,
	"laughingMonkey": 0x1F64A,
	"heart":          0x2764,
	"chat":           0x1F5E8,
	"fire":           0x1F525,
	"lion":           0x1F981,
}

// Expand replaces known :name: shortcodes left to right. Unknown tokens are kept verbatim and their
// closing colon may open the next token.
func Expand(s string) string {
	if !strings.Contains(s, ":") {
		return s
	}
	var b strings.Builder
	for {
		start := strings.IndexByte(s, ':')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], ':')
		if end < 0 {
			break
		}
		end += start + 1
		if r, ok := emojis[s[start+1:end]]; ok {
			b.WriteString(s[:start])
			b.WriteRune(r)
			s = s[end+1:]
			continue
		}
		b.WriteString(s[:end])
		s = s[end:]
	}
	b.WriteString(s)
	return b.String()
}
