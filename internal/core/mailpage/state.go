package mailpage

import "fmt"

// Phase is the position of the propagation state machine.
type Phase int

const (
	AwaitingFirstPage Phase = iota
	TrackingEmail
	TrackingNonEmail
)

func (p Phase) String() string {
	switch p {
	case AwaitingFirstPage:
		return "awaiting-first-page"
	case TrackingEmail:
		return "tracking-email"
	case TrackingNonEmail:
		return "tracking-non-email"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// DocumentState is everything remembered between pages of one document. The
// zero value is the initial state.
type DocumentState struct {
	Phase    Phase
	SourceID string
	// Fields is the snapshot merged into continuation pages.
	Fields Metadata
	// HeaderText is prepended to continuation pages when replication is on.
	HeaderText string
}

// tracks reports whether a continuation page of source inherits the snapshot.
func (s DocumentState) tracks(source string) bool {
	return s.Phase == TrackingEmail && s.SourceID == source
}

// Step advances the state machine by one page and returns the new state with
// the annotated page. Pages that receive no metadata are returned as given.
// Annotated pages carry a fresh metadata map; the input page is never mutated.
func (e *Engine) Step(prev DocumentState, page PageRecord) (DocumentState, PageRecord) {
	if page.IsFirstPage() {
		res, outcome := e.ParseFirstPage(page)
		if !outcome.IsEmail() {
			return DocumentState{Phase: TrackingNonEmail, SourceID: page.SourceID}, page
		}

		next := DocumentState{
			Phase:      TrackingEmail,
			SourceID:   page.SourceID,
			Fields:     res.Fields,
			HeaderText: res.HeaderText,
		}
		out := page
		out.Metadata = page.Metadata.Clone()
		if out.Metadata == nil {
			out.Metadata = Metadata{}
		}
		for k, v := range res.Fields.Clone() {
			out.Metadata[k] = v
		}
		return next, out
	}

	if !prev.tracks(page.SourceID) {
		return prev, page
	}

	out := page
	out.Metadata = page.Metadata.Clone()
	if out.Metadata == nil {
		out.Metadata = Metadata{}
	}
	mergeMissing(out.Metadata, prev.Fields)
	if e.replicate {
		out.Text = prev.HeaderText + page.Text
	}
	return prev, out
}
