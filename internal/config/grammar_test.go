package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGrammar_Default(t *testing.T) {
	g, err := LoadGrammar("")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(g.Fields(), mailpage.DefaultGrammar().Fields()) {
		t.Errorf("Fields() = %v", g.Fields())
	}
}

func TestLoadGrammar_YAML(t *testing.T) {
	path := writeFile(t, "grammar.yaml", `
fields:
  - name: from
    labels: ["From:", "Von:"]
  - name: to
    labels: ["To:", "An:"]
  - name: sent
    labels: ["Gesendet:"]
mandatory: [from, to]
lists: [to]
date_field: date
synonyms:
  sent: date
`)

	g, err := LoadGrammar(path)
	if err != nil {
		t.Fatalf("LoadGrammar() error = %v", err)
	}
	if got := g.Labels("from"); !slices.Equal(got, []string{"From:", "Von:"}) {
		t.Errorf("Labels(from) = %v", got)
	}
	if got := g.Renames(); len(got) != 1 || got[0].To != "date" {
		t.Errorf("Renames() = %v", got)
	}
	if g.IsList("cc") {
		t.Error("cc should not be a list")
	}
}

func TestLoadGrammar_PartialJSONKeepsDefaults(t *testing.T) {
	path := writeFile(t, "grammar.json", `{"mandatory": ["from"]}`)

	g, err := LoadGrammar(path)
	if err != nil {
		t.Fatalf("LoadGrammar() error = %v", err)
	}
	if got := g.Mandatory(); !slices.Equal(got, []string{"from"}) {
		t.Errorf("Mandatory() = %v", got)
	}
	if len(g.Fields()) != len(mailpage.DefaultSpec().Fields) {
		t.Errorf("Fields() = %v, want defaults", g.Fields())
	}
	if !g.IsList("attachments") {
		t.Error("default lists lost")
	}
}

func TestLoadGrammar_Errors(t *testing.T) {
	if _, err := LoadGrammar(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeFile(t, "bad.yaml", "mandatory: [bcc]\n")
	_, err := LoadGrammar(path)
	if !errors.Is(err, mailpage.ErrUnknownField) {
		t.Errorf("LoadGrammar() error = %v, want ErrUnknownField", err)
	}
}
