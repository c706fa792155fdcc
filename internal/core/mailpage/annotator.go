package mailpage

import "context"

// Annotator owns one DocumentState and feeds pages through Engine.Step. It is
// not safe for concurrent use: concurrent workers each need their own
// Annotator, and one Annotator must never see two interleaved documents.
type Annotator struct {
	engine *Engine
	state  DocumentState
}

// NewAnnotator returns an annotator in the initial state.
func NewAnnotator(e *Engine) *Annotator {
	return &Annotator{engine: e}
}

// Annotate processes the next page of the stream.
func (a *Annotator) Annotate(page PageRecord) PageRecord {
	var out PageRecord
	a.state, out = a.engine.Step(a.state, page)
	return out
}

// AnnotateAll processes pages in order and returns one record per input.
func (a *Annotator) AnnotateAll(pages []PageRecord) []PageRecord {
	out := make([]PageRecord, len(pages))
	for i, p := range pages {
		out[i] = a.Annotate(p)
	}
	return out
}

// State returns the current document state.
func (a *Annotator) State() DocumentState { return a.state }

// Reset returns the annotator to the initial state.
func (a *Annotator) Reset() { a.state = DocumentState{} }

// Stream annotates pages read from in until it is closed or ctx is done. The
// returned channel is closed when Stream stops.
func (a *Annotator) Stream(ctx context.Context, in <-chan PageRecord) <-chan PageRecord {
	out := make(chan PageRecord)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case page, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- a.Annotate(page):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
