package mailpage

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	ErrNoFields        = errors.New("grammar has no fields")
	ErrEmptyLabel      = errors.New("grammar label is empty")
	ErrUnknownField    = errors.New("grammar references an unknown field")
	ErrDuplicateField  = errors.New("grammar declares a field twice")
	ErrMissingDateSpec = errors.New("grammar date field is not declared")
)

// FieldSpec names a canonical field and the labels accepted for it, in the
// order they are tried.
type FieldSpec struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// GrammarSpec is the mutable, serializable form of a Grammar.
type GrammarSpec struct {
	Fields    []FieldSpec `json:"fields" yaml:"fields" mapstructure:"fields"`
	Mandatory []string    `json:"mandatory" yaml:"mandatory" mapstructure:"mandatory"`
	Lists     []string    `json:"lists" yaml:"lists" mapstructure:"lists"`
	DateField string      `json:"date_field" yaml:"date_field" mapstructure:"date_field"`
	// Synonyms renames an extracted field to a canonical name after extraction.
	Synonyms map[string]string `json:"synonyms,omitempty" yaml:"synonyms,omitempty" mapstructure:"synonyms"`
}

// Rename moves the value of From to To, replacing any value already at To.
type Rename struct {
	From string
	To   string
}

// Grammar is the immutable header grammar. Build it once with NewGrammar and
// share it freely; none of its methods mutate it or leak internal slices.
type Grammar struct {
	fields    []FieldSpec
	mandatory []string
	lists     map[string]bool
	dateField string
	renames   []Rename
	allLabels []string
}

// DefaultSpec returns the grammar used for Outlook- and Gmail-style printouts.
func DefaultSpec() GrammarSpec {
	return GrammarSpec{
		Fields: []FieldSpec{
			{Name: "from", Labels: []string{"From:", "FROM:"}},
			{Name: "to", Labels: []string{"To:", "TO:"}},
			{Name: "cc", Labels: []string{"Cc:", "CC:", "cc:"}},
			{Name: "subject", Labels: []string{"Subject:", "Re:", "RE:", "SUBJECT:"}},
			{Name: "date", Labels: []string{"Date:", "Sent:", "DATE:"}},
			{Name: "inline-images", Labels: []string{"Inline-Images:"}},
			{Name: "attachments", Labels: []string{"Attachments:"}},
		},
		Mandatory: []string{"from", "to"},
		Lists:     []string{"to", "cc", "inline-images", "attachments"},
		DateField: "date",
	}
}

// DefaultGrammar returns the compiled DefaultSpec.
func DefaultGrammar() *Grammar {
	g, err := NewGrammar(DefaultSpec())
	if err != nil {
		panic(fmt.Sprintf("mailpage: default grammar: %v", err))
	}
	return g
}

// NewGrammar validates spec and returns an immutable Grammar. The spec is
// copied; later changes to it do not affect the result.
func NewGrammar(spec GrammarSpec) (*Grammar, error) {
	if len(spec.Fields) == 0 {
		return nil, ErrNoFields
	}

	g := &Grammar{
		lists:     make(map[string]bool, len(spec.Lists)),
		dateField: spec.DateField,
	}

	known := make(map[string]bool, len(spec.Fields))
	seenLabel := make(map[string]bool)
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: unnamed field", ErrUnknownField)
		}
		if known[f.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		known[f.Name] = true
		for _, l := range f.Labels {
			if l == "" {
				return nil, fmt.Errorf("%w: field %q", ErrEmptyLabel, f.Name)
			}
			if !seenLabel[l] {
				seenLabel[l] = true
				g.allLabels = append(g.allLabels, l)
			}
		}
		g.fields = append(g.fields, FieldSpec{Name: f.Name, Labels: slices.Clone(f.Labels)})
	}

	for _, name := range spec.Mandatory {
		if !known[name] {
			return nil, fmt.Errorf("%w: mandatory %q", ErrUnknownField, name)
		}
	}
	g.mandatory = slices.Clone(spec.Mandatory)

	for _, name := range spec.Lists {
		if !known[name] {
			return nil, fmt.Errorf("%w: list %q", ErrUnknownField, name)
		}
		g.lists[name] = true
	}

	// Renames are applied in a stable order so repeated runs agree.
	froms := make([]string, 0, len(spec.Synonyms))
	for from := range spec.Synonyms {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		to := spec.Synonyms[from]
		if to == "" || to == from {
			continue
		}
		g.renames = append(g.renames, Rename{From: from, To: to})
	}

	if g.dateField != "" && !known[g.dateField] && !g.isRenameTarget(g.dateField) {
		return nil, fmt.Errorf("%w: %q", ErrMissingDateSpec, g.dateField)
	}

	return g, nil
}

func (g *Grammar) isRenameTarget(name string) bool {
	for _, r := range g.renames {
		if r.To == name {
			return true
		}
	}
	return false
}

// Fields returns the canonical field names in grammar order.
func (g *Grammar) Fields() []string {
	out := make([]string, len(g.fields))
	for i, f := range g.fields {
		out[i] = f.Name
	}
	return out
}

// Labels returns the labels of a field in the order they are tried.
func (g *Grammar) Labels(field string) []string {
	for _, f := range g.fields {
		if f.Name == field {
			return slices.Clone(f.Labels)
		}
	}
	return nil
}

// AllLabels returns every label of every field, without duplicates.
func (g *Grammar) AllLabels() []string { return slices.Clone(g.allLabels) }

// Mandatory returns the fields that must all be present for a page to count
// as an email, in expected order of appearance.
func (g *Grammar) Mandatory() []string { return slices.Clone(g.mandatory) }

// IsList reports whether field is split into a list.
func (g *Grammar) IsList(field string) bool { return g.lists[field] }

// DateField is the field converted into KeyUDate. Empty disables conversion.
func (g *Grammar) DateField() string { return g.dateField }

// Renames returns the synonym table in application order.
func (g *Grammar) Renames() []Rename { return slices.Clone(g.renames) }

// Spec converts g back to its serializable form.
func (g *Grammar) Spec() GrammarSpec {
	spec := GrammarSpec{
		Mandatory: slices.Clone(g.mandatory),
		DateField: g.dateField,
	}
	for _, f := range g.fields {
		spec.Fields = append(spec.Fields, FieldSpec{Name: f.Name, Labels: slices.Clone(f.Labels)})
		if g.lists[f.Name] {
			spec.Lists = append(spec.Lists, f.Name)
		}
	}
	if len(g.renames) > 0 {
		spec.Synonyms = make(map[string]string, len(g.renames))
		for _, r := range g.renames {
			spec.Synonyms[r.From] = r.To
		}
	}
	return spec
}
