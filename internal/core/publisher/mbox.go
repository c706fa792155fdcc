package publisher

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-mbox"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

var _ core.PagePublisher = (*MboxPublisher)(nil)

const unknownSender = "MAILER-DAEMON"

// MboxPublisher rebuilds one message per recognized email document and
// appends it to an mbox stream. Pages of documents without a sender are
// dropped. A document is written once the next document starts or on Close.
type MboxPublisher struct {
	mu      sync.Mutex
	w       *mbox.Writer
	loc     *time.Location
	pending []mailpage.PageRecord
	written int
}

// NewMboxPublisher renders udate in loc, which should be the zone the dates
// were normalized in so the day is preserved. nil means UTC.
func NewMboxPublisher(w io.Writer, loc *time.Location) *MboxPublisher {
	if loc == nil {
		loc = time.UTC
	}
	return &MboxPublisher{w: mbox.NewWriter(w), loc: loc}
}

func (p *MboxPublisher) Publish(ctx context.Context, pages ...mailpage.PageRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(p.pending) > 0 && (page.IsFirstPage() || page.SourceID != p.pending[0].SourceID) {
			if err := p.flush(); err != nil {
				return err
			}
		}
		p.pending = append(p.pending, page)
	}
	return nil
}

// Written returns the number of messages written so far.
func (p *MboxPublisher) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

func (p *MboxPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.flush(); err != nil {
		return err
	}
	return p.w.Close()
}

func (p *MboxPublisher) flush() error {
	pages := p.pending
	p.pending = nil
	if len(pages) == 0 {
		return nil
	}
	meta := pages[0].Metadata
	from, ok := meta.String("from")
	if !ok || from == "" {
		return nil
	}

	date := messageDate(meta, p.loc)
	mw, err := p.w.CreateMessage(envelopeSender(from), date)
	if err != nil {
		return fmt.Errorf("mbox message for %s: %w", pages[0].SourceID, err)
	}

	var b strings.Builder
	writeHeader(&b, "From", from)
	if to, ok := meta.List("to"); ok {
		writeHeader(&b, "To", strings.Join(to, ", "))
	}
	if cc, ok := meta.List("cc"); ok {
		writeHeader(&b, "Cc", strings.Join(cc, ", "))
	}
	if subject, ok := meta.String("subject"); ok {
		writeHeader(&b, "Subject", subject)
	}
	if !date.IsZero() {
		writeHeader(&b, "Date", date.Format(time.RFC1123Z))
	} else if raw, ok := meta.String("date"); ok {
		writeHeader(&b, "Date", raw)
	}
	if att, ok := meta.List("attachments"); ok {
		writeHeader(&b, "X-Attachments", strings.Join(att, ", "))
	}
	writeHeader(&b, "X-Source-ID", pages[0].SourceID)
	writeHeader(&b, "Content-Type", "text/plain; charset=utf-8")
	b.WriteString("\r\n")

	for i, page := range pages {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(strings.ReplaceAll(page.Text, "\n", "\r\n"))
	}

	if _, err := io.WriteString(mw, b.String()); err != nil {
		return fmt.Errorf("mbox message for %s: %w", pages[0].SourceID, err)
	}
	p.written++
	return nil
}

func writeHeader(b *strings.Builder, key, value string) {
	value = strings.Join(strings.Fields(value), " ")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

// envelopeSender reduces a display address to the bare address the mbox
// separator line expects.
func envelopeSender(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	if fields := strings.Fields(from); len(fields) == 1 && strings.Contains(from, "@") {
		return fields[0]
	}
	return unknownSender
}

func messageDate(meta mailpage.Metadata, loc *time.Location) time.Time {
	if udate, ok := meta[mailpage.KeyUDate].(int64); ok {
		return time.Unix(udate, 0).In(loc)
	}
	return time.Time{}
}
