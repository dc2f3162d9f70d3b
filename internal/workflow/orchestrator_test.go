package workflow

import (
	"errors"
	"testing"
)

func TestTextContains(t *testing.T) {
	pred := textContains("品川500あ1234")
	if !pred("2026-02-24 品川500あ1234 10:30") {
		t.Error("plate embedded in row text must match")
	}
	if pred("2026-02-24 品川300う9999 10:30") {
		t.Error("different plate must not match")
	}
	if pred("") {
		t.Error("empty row must not match")
	}
}

func TestXPathQuote(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"大和テストステーション", "'大和テストステーション'"},
		{"O'Hare", `"O'Hare"`},
		{`say "hi"`, `'say "hi"'`},
		{`both ' and "`, `concat('both ', "'", ' and "')`},
	}
	for _, c := range cases {
		if got := xpathQuote(c.in); got != c.want {
			t.Errorf("xpathQuote(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestSearchExhaustedError(t *testing.T) {
	var target SearchExhaustedError
	err := error(SearchExhaustedError{What: "station X"})
	if !errors.As(err, &target) {
		t.Fatal("errors.As must match SearchExhaustedError")
	}
	if target.What != "station X" {
		t.Errorf("What = %q", target.What)
	}
}
