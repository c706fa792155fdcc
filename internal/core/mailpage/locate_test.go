package mailpage

import (
	"strings"
	"testing"
)

func TestLocateHeaderBlock(t *testing.T) {
	g := DefaultGrammar()

	testCases := []struct {
		name       string
		text       string
		found      bool
		window     string
		firstLabel string
		bounded    bool
	}{
		{
			name:  "no labels",
			text:  "Quarterly report\nRevenue grew.\n",
			found: false,
		},
		{
			name:       "starts at earliest label",
			text:       "Printed by Jane\nFrom: a@x.com\nTo: b@y.com\nHi\n",
			found:      true,
			window:     "From: a@x.com\nTo: b@y.com\nHi\n",
			firstLabel: "From:",
		},
		{
			name:       "bounded by repeat of first label",
			text:       "From: a@x.com\nTo: b@y.com\n\n-----\nFrom: c@z.com\nTo: d@z.com\n",
			found:      true,
			window:     "From: a@x.com\nTo: b@y.com\n\n-----\nF",
			firstLabel: "From:",
			bounded:    true,
		},
		{
			name:       "label alone on its line",
			text:       "To:\nb@y.com\nFrom: a@x.com\nBody\n",
			found:      true,
			window:     "To: b@y.com\nFrom: a@x.com\nBody\n",
			firstLabel: "To:",
		},
		{
			name:       "misencoded quotes and wrapped name",
			text:       "From: ‚ÄùDoe,\nJane‚Äù <j@x.com>\nTo: b@y.com\nX",
			found:      true,
			window:     "From: \"Doe,Jane\" <j@x.com>\nTo: b@y.com\nX",
			firstLabel: "From:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := LocateHeaderBlock(tc.text, g)
			if ok != tc.found {
				t.Fatalf("LocateHeaderBlock() found = %v, want %v", ok, tc.found)
			}
			if !ok {
				return
			}
			if w.Text != tc.window {
				t.Errorf("Text = %q, want %q", w.Text, tc.window)
			}
			if w.FirstLabel != tc.firstLabel {
				t.Errorf("FirstLabel = %q, want %q", w.FirstLabel, tc.firstLabel)
			}
			if w.Bounded != tc.bounded {
				t.Errorf("Bounded = %v, want %v", w.Bounded, tc.bounded)
			}
		})
	}
}

func TestLocateHeaderBlock_ColonSpaceNewline(t *testing.T) {
	w, ok := LocateHeaderBlock("From: \nTo: b@y.com\n", DefaultGrammar())
	if !ok {
		t.Fatal("expected a header block")
	}
	if !strings.HasPrefix(w.Text, "From:  To:") {
		t.Errorf("Text = %q, want the lone label joined to the next line", w.Text)
	}
}
