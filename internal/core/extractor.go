package core

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// PageExtractor turns a PDF into page records, in page order.
type PageExtractor interface {
	// ExtractPages starts extraction as a stage of g and returns the page
	// channel, closed after the last page. A document that cannot be converted
	// yields a single placeholder page rather than an error.
	ExtractPages(ctx context.Context, g *errgroup.Group, sourceID string, data []byte) (<-chan mailpage.PageRecord, error)
	// Name identifies the backend in logs.
	Name() string
}
