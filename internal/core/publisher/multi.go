package publisher

import (
	"context"
	"errors"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

// Multi fans every batch out to several publishers in order. Publishing stops
// at the first failure; Close closes all of them.
type Multi []core.PagePublisher

func (m Multi) Publish(ctx context.Context, pages ...mailpage.PageRecord) error {
	for _, p := range m {
		if err := p.Publish(ctx, pages...); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
