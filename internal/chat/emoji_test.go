package chat

import "testing"

func TestExpand(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hi :heart: you", "hi ❤ you"},
		{":bogus:", ":bogus:"},
		{"no tokens", "no tokens"},
		{":fire::lion:", "\U0001F525\U0001F981"},
		{"time 10:30 :happy:", "time 10:30 \U0001F600"},
		{"a:b:heart:", "a:b❤"},
		{"unterminated :heart", "unterminated :heart"},
	}
	for _, tc := range cases {
		if got := Expand(tc.in); got != tc.want {
			t.Fatalf("Expand(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmojiTableSize(t *testing.T) {
	if len(emojis) != 29 {
		t.Fatalf("expected 29 shortcodes, got %d", len(emojis))
	}
}
