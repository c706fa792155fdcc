package mailpage

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Outcome classifies a first-page parse.
type Outcome int

const (
	// OutcomeEmail means every mandatory field was found.
	OutcomeEmail Outcome = iota
	// OutcomeNoHeader means no label of the grammar occurs in the page.
	OutcomeNoHeader
	// OutcomeMissingMandatory means a header block was found but a mandatory
	// field was absent or empty.
	OutcomeMissingMandatory
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmail:
		return "email"
	case OutcomeNoHeader:
		return "no-header"
	case OutcomeMissingMandatory:
		return "missing-mandatory"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// IsEmail reports whether the page was recognized as an email.
func (o Outcome) IsEmail() bool { return o == OutcomeEmail }

// ParseResult is what a successful first-page parse yields.
type ParseResult struct {
	// Fields holds the renamed fields and, when the date parsed, KeyUDate.
	Fields Metadata
	// Span is the union of all matched fields inside Window.Text.
	Span Span
	// HeaderText is Window.Text[Span.Lo:Span.Hi].
	HeaderText string
	Window     Window
	Date       DateResult
	// Missing is set when the outcome is OutcomeMissingMandatory.
	Missing []string
}

// Engine runs the header pipeline. It is stateless and safe for concurrent
// use; per-document state lives in DocumentState.
type Engine struct {
	grammar   *Grammar
	replicate bool
	dates     *DateNormalizer
	log       logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeaderReplication prepends the captured header text to every
// continuation page of an email.
func WithHeaderReplication(on bool) Option {
	return func(e *Engine) { e.replicate = on }
}

// WithDateNormalizer replaces the default normalizer, which uses time.Local.
func WithDateNormalizer(n *DateNormalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.dates = n
		}
	}
}

// WithLogger sets the logger used for malformed date warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine builds an engine for g. A nil grammar means DefaultGrammar.
func NewEngine(g *Grammar, opts ...Option) *Engine {
	if g == nil {
		g = DefaultGrammar()
	}
	e := &Engine{
		grammar: g,
		dates:   NewDateNormalizer(nil),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grammar returns the grammar the engine was built with.
func (e *Engine) Grammar() *Grammar { return e.grammar }

// Replicates reports whether header replication is enabled.
func (e *Engine) Replicates() bool { return e.replicate }

// ParseFirstPage runs locate, extract, rename and date normalization over the
// text of page. It never modifies page.
func (e *Engine) ParseFirstPage(page PageRecord) (ParseResult, Outcome) {
	window, ok := LocateHeaderBlock(page.Text, e.grammar)
	if !ok {
		return ParseResult{}, OutcomeNoHeader
	}

	ex := ExtractFields(window.Text, e.grammar)
	if !ex.Complete() {
		return ParseResult{Window: window, Missing: ex.Missing}, OutcomeMissingMandatory
	}

	fields := ex.Fields
	ApplyRenames(fields, e.grammar)

	res := ParseResult{
		Fields:     fields,
		Span:       ex.Span,
		HeaderText: window.Text[ex.Span.Lo:ex.Span.Hi],
		Window:     window,
	}

	if df := e.grammar.dateField; df != "" {
		raw, present := fields[df].(string)
		if present {
			res.Date = e.dates.Normalize(raw)
		}
		switch res.Date.Status {
		case DateParsed:
			fields[KeyUDate] = res.Date.UDate()
		case DateMalformed:
			e.log.WithFields(logrus.Fields{
				"source": page.SourceID,
				"value":  raw,
			}).WithError(res.Date.Err).Warn("could not normalize email date")
		}
	}

	return res, OutcomeEmail
}
