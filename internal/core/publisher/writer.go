package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

// Output formats of WriterPublisher.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var _ core.PagePublisher = (*WriterPublisher)(nil)

type encoder interface {
	Encode(v any) error
}

// WriterPublisher prints pages as JSON lines or as a YAML document stream.
type WriterPublisher struct {
	mu     sync.Mutex
	enc    encoder
	closer io.Closer
}

func NewWriterPublisher(w io.Writer, format string) (*WriterPublisher, error) {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &WriterPublisher{enc: enc}, nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &WriterPublisher{enc: enc, closer: enc}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func (p *WriterPublisher) Publish(ctx context.Context, pages ...mailpage.PageRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.enc.Encode(page); err != nil {
			return fmt.Errorf("encode page %s/%d: %w", page.SourceID, page.PageIndex, err)
		}
	}
	return nil
}

func (p *WriterPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
