// Package mailpage recognizes the header block of emails that were printed or
// scanned to PDF and propagates the parsed identity to every page of the same
// source document.
//
// The package is pure: it performs no I/O and keeps no hidden state. Document
// state is carried explicitly by DocumentState and advanced with Engine.Step;
// Annotator wraps that loop for callers that process one page stream at a time.
package mailpage

import "slices"

// Metadata keys always written by the page producer.
const (
	KeySource = "source"
	KeyPage   = "page"
	// KeyUDate holds the day-level Unix timestamp derived from the date field.
	KeyUDate = "udate"
)

// Metadata maps a key to a string, a []string or an int64 timestamp.
type Metadata map[string]any

// PageRecord is one page of one source document.
type PageRecord struct {
	SourceID  string   `json:"source_id" yaml:"source_id"`
	PageIndex int      `json:"page_index" yaml:"page_index"`
	Text      string   `json:"text" yaml:"text"`
	Metadata  Metadata `json:"metadata" yaml:"metadata"`
}

// NewPageRecord builds a record with the source and page keys already set.
func NewPageRecord(sourceID string, pageIndex int, text string) PageRecord {
	return PageRecord{
		SourceID:  sourceID,
		PageIndex: pageIndex,
		Text:      text,
		Metadata: Metadata{
			KeySource: sourceID,
			KeyPage:   pageIndex,
		},
	}
}

// IsFirstPage reports whether the record starts a new document.
func (p PageRecord) IsFirstPage() bool { return p.PageIndex == 0 }

// Clone returns a deep copy of m. List values are copied so that pages never
// share backing arrays.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		if list, ok := v.([]string); ok {
			v = slices.Clone(list)
		}
		out[k] = v
	}
	return out
}

// String returns the value at key when it is a scalar string.
func (m Metadata) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// List returns the value at key when it is a list.
func (m Metadata) List(key string) ([]string, bool) {
	l, ok := m[key].([]string)
	return l, ok
}
