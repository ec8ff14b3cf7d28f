package mux

import (
	"reflect"
	"testing"
)

func TestCommandLineRoundTrip(t *testing.T) {
	args := []string{
		"--gui-mode",
		"--output",
		"/media/My Movie (2019)/My Movie.mkv",
		"--track-name",
		`1:Director's "special" cut`,
		`C:\media\weird\path.mkv`,
		"",
	}
	line := CommandLine("mkvmerge", args)
	tokens, err := Tokenize(line)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := append([]string{"mkvmerge"}, args...)
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("tokens = %q, want %q", tokens, want)
	}
}

func TestQuoteArgPlain(t *testing.T) {
	if got := QuoteArg("--no-chapters"); got != "--no-chapters" {
		t.Fatalf("QuoteArg = %q", got)
	}
	if got := QuoteArg("two words"); got != `"two words"` {
		t.Fatalf("QuoteArg = %q", got)
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	if _, err := Tokenize(`mkvmerge "broken`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}
