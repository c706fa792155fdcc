package ingestion_engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// streamAnnotate runs every page through ann, preserving order. It is the
// only stage that touches the annotator, so the annotator's document state
// never crosses goroutines.
func streamAnnotate(
	ctx context.Context,
	g *errgroup.Group,
	ann *mailpage.Annotator,
	pages <-chan mailpage.PageRecord,
	buffer int,
) <-chan mailpage.PageRecord {
	out := make(chan mailpage.PageRecord, buffer)

	g.Go(func() error {
		defer close(out)
		for page := range pages {
			select {
			case out <- ann.Annotate(page):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return ctx.Err()
	})

	return out
}

// streamBatch groups annotated pages into slices of at most batchSize. A
// partial batch is flushed when the input closes.
func streamBatch(
	ctx context.Context,
	g *errgroup.Group,
	pages <-chan mailpage.PageRecord,
	batchSize int,
) <-chan []mailpage.PageRecord {
	if batchSize < 1 {
		batchSize = 1
	}
	out := make(chan []mailpage.PageRecord, 1)

	g.Go(func() error {
		defer close(out)

		var buf []mailpage.PageRecord
		flush := func() error {
			if len(buf) == 0 {
				return nil
			}
			select {
			case out <- buf:
			case <-ctx.Done():
				return ctx.Err()
			}
			buf = nil
			return nil
		}

		for page := range pages {
			buf = append(buf, page)
			if len(buf) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	return out
}
