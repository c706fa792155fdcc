package mailpage

import "strings"

// FoldQuotedLines deletes every line break that falls inside a double-quoted
// span, so that a display name wrapped by OCR or word-wrap is put back on one
// line ("Jane Doe\n<jane@x.com>" inside quotes becomes "Jane Doe<jane@x.com>").
//
// Quote state is a single toggle flipped by each '"'. A '<' always closes an
// open quote: OCR output often drops the closing quote before an address, as
// in `"Jane Doe <jane@x.com>`. A '<' inside a well-formed quoted name is
// treated the same way. Backslash escapes are not recognized.
func FoldQuotedLines(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	quoted := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			quoted = !quoted
		case c == '<':
			quoted = false
		case c == '\n' && quoted:
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
