package mailpage

import "strings"

// blockStartPunct lists the non-letter characters that, at the start of a
// line, end the current header value.
const blockStartPunct = "!|.*-"

// StartsNewBlock reports whether a line beginning with c looks like the start
// of another header or of the body: an ASCII letter or one of blockStartPunct.
// Lines starting with anything else (spaces, digits, '<', quotes) continue the
// previous value.
func StartsNewBlock(c byte) bool {
	if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
		return true
	}
	return strings.IndexByte(blockStartPunct, c) != -1
}

// Span is a half-open byte range [Lo, Hi) in a Window's text.
type Span struct {
	Lo int
	Hi int
}

// Extraction is the outcome of running a grammar over a header window.
type Extraction struct {
	Fields Metadata
	// Span covers every matched label and value; valid only when Matched.
	Span    Span
	Matched bool
	// Missing lists the mandatory fields that were absent or empty.
	Missing []string
}

// Complete reports whether every mandatory field was found.
func (e Extraction) Complete() bool { return len(e.Missing) == 0 }

// ExtractFields tries, for each field in grammar order, each of its labels
// until one matches in window. List fields are split with SplitList.
func ExtractFields(window string, g *Grammar) Extraction {
	ex := Extraction{Fields: Metadata{}}

	for _, f := range g.fields {
		for _, label := range f.Labels {
			value, span, ok := matchLabel(window, label)
			if !ok {
				continue
			}
			if !ex.Matched {
				ex.Span = span
				ex.Matched = true
			} else {
				ex.Span.Lo = min(ex.Span.Lo, span.Lo)
				ex.Span.Hi = max(ex.Span.Hi, span.Hi)
			}
			if g.lists[f.Name] {
				ex.Fields[f.Name] = SplitList(value)
			} else {
				ex.Fields[f.Name] = value
			}
			break
		}
	}

	for _, name := range g.mandatory {
		if isEmptyValue(ex.Fields[name]) {
			ex.Missing = append(ex.Missing, name)
		}
	}
	return ex
}

// matchLabel finds the first occurrence of label and captures everything up
// to the first line break followed by a new-block character. Without such a
// line break there is no match.
func matchLabel(window, label string) (string, Span, bool) {
	lo := strings.Index(window, label)
	if lo == -1 {
		return "", Span{}, false
	}
	valueStart := lo + len(label)
	for j := valueStart; j+1 < len(window); j++ {
		if window[j] == '\n' && StartsNewBlock(window[j+1]) {
			value := strings.TrimSpace(window[valueStart:j])
			value = strings.ReplaceAll(value, "\n", "")
			return value, Span{Lo: lo, Hi: j}, true
		}
	}
	return "", Span{}, false
}

// SplitList splits a list-valued field:
//   - with a semicolon present, on semicolons outside double quotes;
//   - with at most one comma, not at all, so "Doe, Jane" stays one item;
//   - otherwise on commas outside double quotes.
//
// Items are trimmed.
func SplitList(value string) []string {
	var parts []string
	switch {
	case strings.Contains(value, ";"):
		parts = splitOutsideQuotes(value, ';')
	case strings.Count(value, ",") <= 1:
		parts = []string{value}
	default:
		parts = splitOutsideQuotes(value, ',')
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitOutsideQuotes splits s at each sep that is followed by an even number
// of double quotes, i.e. one that is not inside a balanced quoted substring.
func splitOutsideQuotes(s string, sep byte) []string {
	after := strings.Count(s, `"`)
	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			after--
		case sep:
			if after%2 == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		// A matched label with a blank value still yields [""], which counts.
		return len(t) == 0
	}
	return false
}
