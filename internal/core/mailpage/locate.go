package mailpage

import "strings"

// misencodedRightQuote is U+201D after a UTF-8 -> Mac Roman -> UTF-8 round trip,
// which OCR and PDF exports of Outlook mail produce regularly.
const misencodedRightQuote = "‚Äù"

// Window is the cleaned header-search region of a first page.
type Window struct {
	// Text starts at the first recognized label and is folded.
	Text string
	// FirstLabel is the leading text up to and including the first colon,
	// normally the label that opened the block.
	FirstLabel string
	// Bounded is true when a repeat of FirstLabel cut the window short.
	Bounded bool
}

// LocateHeaderBlock finds the header block of a first page. It returns false
// when no label of g occurs anywhere in text.
//
// The window runs from the earliest label to one character past the next
// occurrence of that same label, so the quoted history of a reply does not
// feed field matches. The extra character keeps a new-block boundary
// detectable right before the repeated label.
func LocateHeaderBlock(text string, g *Grammar) (Window, bool) {
	text = strings.ReplaceAll(text, ":\n", ": ")

	start := -1
	for _, label := range g.allLabels {
		if i := strings.Index(text, label); i != -1 && (start == -1 || i < start) {
			start = i
		}
	}
	if start == -1 {
		return Window{}, false
	}
	text = text[start:]

	firstLabel := text[:strings.Index(text, ":")+1]

	w := Window{FirstLabel: firstLabel}
	end := len(text)
	if i := strings.Index(text[1:], firstLabel); i != -1 {
		if p := i + 1; p+1 < end {
			end = p + 1
		}
		w.Bounded = true
	}

	search := strings.ReplaceAll(text[:end], misencodedRightQuote, `"`)
	search = strings.ReplaceAll(search, ": \n", ":  ")
	w.Text = FoldQuotedLines(search)
	return w, true
}
