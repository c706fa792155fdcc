package mailpage

import (
	"slices"
	"testing"
)

func TestStartsNewBlock(t *testing.T) {
	for _, c := range []byte("aZm!|.*-") {
		if !StartsNewBlock(c) {
			t.Errorf("StartsNewBlock(%q) = false, want true", c)
		}
	}
	for _, c := range []byte(" \t0<\"@\n>,") {
		if StartsNewBlock(c) {
			t.Errorf("StartsNewBlock(%q) = true, want false", c)
		}
	}
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected []string
	}{
		{"semicolon precedence", `a@x.com; "b, c"@y.com`, []string{"a@x.com", `"b, c"@y.com`}},
		{"single comma guard", "Doe, Jane", []string{"Doe, Jane"}},
		{"commas", "a@x.com, b@y.com, c@z.com", []string{"a@x.com", "b@y.com", "c@z.com"}},
		{"commas outside quotes", `"Doe, Jane" <j@x.com>, "Roe, Rick" <r@x.com>`, []string{`"Doe, Jane" <j@x.com>`, `"Roe, Rick" <r@x.com>`}},
		{"quoted semicolon", `"a;b" <a@x.com>; c@y.com`, []string{`"a;b" <a@x.com>`, "c@y.com"}},
		{"single item", "  b@y.com ", []string{"b@y.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SplitList(tc.value); !slices.Equal(got, tc.expected) {
				t.Errorf("SplitList(%q) = %q, want %q", tc.value, got, tc.expected)
			}
		})
	}
}

func TestExtractFields(t *testing.T) {
	g := DefaultGrammar()
	window := "From: \"Doe, Jane\" <j@x.com>\nTo: b@y.com; c@y.com\n  d@y.com\nSubject: Re: lunch\nSent: March 3, 2022 10:45 AM\n\nSee you.\n"

	ex := ExtractFields(window, g)
	if !ex.Complete() || !ex.Matched {
		t.Fatalf("ExtractFields() incomplete: missing %v", ex.Missing)
	}

	if got, _ := ex.Fields.String("from"); got != `"Doe, Jane" <j@x.com>` {
		t.Errorf("from = %q", got)
	}
	if got, _ := ex.Fields.List("to"); !slices.Equal(got, []string{"b@y.com", "c@y.com  d@y.com"}) {
		t.Errorf("to = %q", got)
	}
	if got, _ := ex.Fields.String("subject"); got != "Re: lunch" {
		t.Errorf("subject = %q", got)
	}
	if got, _ := ex.Fields.String("date"); got != "March 3, 2022 10:45 AM" {
		t.Errorf("date = %q", got)
	}
	if _, ok := ex.Fields["cc"]; ok {
		t.Error("cc should be absent")
	}

	wantHi := len(window) - len("\nSee you.\n")
	if ex.Span != (Span{Lo: 0, Hi: wantHi}) {
		t.Errorf("Span = %+v, want {0 %d}", ex.Span, wantHi)
	}
}

func TestExtractFields_MissingMandatory(t *testing.T) {
	g := DefaultGrammar()

	testCases := []struct {
		name    string
		window  string
		missing []string
	}{
		{"no to label", "From: a@x.com\nSubject: hi\nBody\n", []string{"to"}},
		{"empty from", "From: \nTo: b@y.com\nSubject: hi\n", []string{"from"}},
		{"blank to list", "From: a@x.com\nTo:  \nSubject: hi\nBody\n", nil},
		{"separators only", "From: a@x.com\nTo: ;\nSubject: hi\nBody\n", nil},
		{"unterminated value", "From: a@x.com", []string{"from", "to"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ex := ExtractFields(tc.window, g)
			if !slices.Equal(ex.Missing, tc.missing) {
				t.Errorf("Missing = %v, want %v", ex.Missing, tc.missing)
			}
		})
	}
}

func TestParseFirstPage_BlankRecipientList(t *testing.T) {
	e := NewEngine(nil)

	testCases := []struct {
		name string
		text string
		to   []string
	}{
		{"blank value", "From: a@x.com\nTo:  \nSubject: hi\nBody\n", []string{""}},
		{"separators only", "From: a@x.com\nTo: ;\nSubject: hi\nBody\n", []string{"", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, outcome := e.ParseFirstPage(NewPageRecord("a.pdf", 0, tc.text))
			if outcome != OutcomeEmail {
				t.Fatalf("outcome = %v, want %v", outcome, OutcomeEmail)
			}
			if to, _ := res.Fields.List("to"); !slices.Equal(to, tc.to) {
				t.Errorf("to = %q, want %q", to, tc.to)
			}
		})
	}
}
