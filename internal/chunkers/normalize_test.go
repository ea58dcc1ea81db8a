package chunkers

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no breaks", "one line", "one line"},
		{"crlf", "a\r\nb", "a\n\nb"},
		{"lone cr", "a\rb", "a\n\nb"},
		{"single lf", "a\nb", "a\n\nb"},
		{"many lf", "a\n\n\n\n\nb", "a\n\nb"},
		{"mixed", "a\r\n\r\n\rb\n", "a\n\nb\n\n"},
		{"keeps spaces", "a \n  b", "a \n\n  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Chapter 1\r\nIt was night.\r\n\r\n\r\nChapter 2\rMorning.",
		"already\n\nnormal",
		"\n\n\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize is not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
