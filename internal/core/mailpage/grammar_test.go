package mailpage

import (
	"errors"
	"slices"
	"testing"
)

func TestNewGrammar_Errors(t *testing.T) {
	valid := func() GrammarSpec {
		return GrammarSpec{
			Fields: []FieldSpec{
				{Name: "from", Labels: []string{"From:"}},
				{Name: "date", Labels: []string{"Date:"}},
			},
			Mandatory: []string{"from"},
			DateField: "date",
		}
	}

	testCases := []struct {
		name   string
		mutate func(*GrammarSpec)
		want   error
	}{
		{"no fields", func(s *GrammarSpec) { s.Fields = nil }, ErrNoFields},
		{"empty label", func(s *GrammarSpec) { s.Fields[0].Labels = []string{""} }, ErrEmptyLabel},
		{"duplicate field", func(s *GrammarSpec) { s.Fields[1].Name = "from" }, ErrDuplicateField},
		{"unknown mandatory", func(s *GrammarSpec) { s.Mandatory = []string{"to"} }, ErrUnknownField},
		{"unknown list", func(s *GrammarSpec) { s.Lists = []string{"cc"} }, ErrUnknownField},
		{"unnamed field", func(s *GrammarSpec) { s.Fields[0].Name = "" }, ErrUnknownField},
		{"undeclared date", func(s *GrammarSpec) { s.DateField = "sent" }, ErrMissingDateSpec},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := valid()
			tc.mutate(&spec)
			_, err := NewGrammar(spec)
			if !errors.Is(err, tc.want) {
				t.Errorf("NewGrammar() error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := NewGrammar(valid()); err != nil {
		t.Fatalf("NewGrammar(valid) error = %v", err)
	}
}

func TestNewGrammar_DateFieldAsRenameTarget(t *testing.T) {
	g, err := NewGrammar(GrammarSpec{
		Fields:    []FieldSpec{{Name: "sent", Labels: []string{"Sent:"}}},
		DateField: "date",
		Synonyms:  map[string]string{"sent": "date"},
	})
	if err != nil {
		t.Fatalf("NewGrammar() error = %v", err)
	}
	if got := g.Renames(); len(got) != 1 || got[0] != (Rename{From: "sent", To: "date"}) {
		t.Errorf("Renames() = %v", got)
	}
}

func TestGrammar_IsImmutable(t *testing.T) {
	spec := DefaultSpec()
	g, err := NewGrammar(spec)
	if err != nil {
		t.Fatal(err)
	}

	spec.Fields[0].Labels[0] = "Sender:"
	if got := g.Labels("from")[0]; got != "From:" {
		t.Errorf("grammar changed with its spec: Labels(from)[0] = %q", got)
	}

	labels := g.AllLabels()
	labels[0] = "mutated"
	if g.AllLabels()[0] == "mutated" {
		t.Error("AllLabels leaked internal slice")
	}
}

func TestDefaultGrammar(t *testing.T) {
	g := DefaultGrammar()

	wantFields := []string{"from", "to", "cc", "subject", "date", "inline-images", "attachments"}
	if got := g.Fields(); !slices.Equal(got, wantFields) {
		t.Errorf("Fields() = %v, want %v", got, wantFields)
	}
	if got := g.Mandatory(); !slices.Equal(got, []string{"from", "to"}) {
		t.Errorf("Mandatory() = %v", got)
	}
	for _, f := range []string{"to", "cc", "inline-images", "attachments"} {
		if !g.IsList(f) {
			t.Errorf("IsList(%q) = false", f)
		}
	}
	if g.IsList("from") {
		t.Error("IsList(from) = true")
	}
	if g.DateField() != "date" {
		t.Errorf("DateField() = %q", g.DateField())
	}

	// Round trip through the serializable form.
	again, err := NewGrammar(g.Spec())
	if err != nil {
		t.Fatalf("NewGrammar(Spec()) error = %v", err)
	}
	if !slices.Equal(again.AllLabels(), g.AllLabels()) {
		t.Errorf("AllLabels differ after round trip: %v vs %v", again.AllLabels(), g.AllLabels())
	}
}
