package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

var _ core.PageExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.PageExtractor using sajari/docconv, which
// shells out to pdftotext. Pages are separated by form feeds in its output.
type DocconvExtractor struct {
	useReadability bool
	log            logrus.FieldLogger
	buffer         int
}

func NewDocconvExtractor(useReadability bool, log logrus.FieldLogger) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability, log: log, buffer: 8}
}

func (e *DocconvExtractor) Name() string { return "docconv" }

func (e *DocconvExtractor) ExtractPages(ctx context.Context, g *errgroup.Group, sourceID string, data []byte) (<-chan mailpage.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return emitPages(ctx, g, e.log, e.Name(), sourceID, e.buffer, func() ([]string, error) {
		res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", e.useReadability)
		if err != nil {
			return nil, fmt.Errorf("docconv: %w", err)
		}
		return splitFormFeeds(res.Body), nil
	}), nil
}

// splitFormFeeds splits pdftotext output into pages. The separator after the
// last page does not start another page.
func splitFormFeeds(body string) []string {
	if body == "" {
		return nil
	}
	pages := strings.Split(body, "\f")
	if last := len(pages) - 1; last > 0 && strings.TrimSpace(pages[last]) == "" {
		pages = pages[:last]
	}
	return pages
}
