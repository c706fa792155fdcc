package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// Placeholder page texts. Downstream indexers reject empty content, and a
// document that fails conversion must still produce a record.
const (
	DummyPageText = "[doc couldn't be converted. this is a dummy page.]"
	BlankPageText = "[blank page]"
)

// convertFunc returns the text of every page of a document, in order.
type convertFunc func() ([]string, error)

// emitPages runs convert as a stage of g and streams its pages as records.
// A conversion error or panic is logged and replaced by a single dummy page;
// only context cancellation fails the stage.
func emitPages(
	ctx context.Context,
	g *errgroup.Group,
	log logrus.FieldLogger,
	backend string,
	sourceID string,
	buffer int,
	convert convertFunc,
) <-chan mailpage.PageRecord {
	out := make(chan mailpage.PageRecord, buffer)

	g.Go(func() error {
		defer close(out)

		texts, err := safeConvert(convert)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"source":    sourceID,
				"extractor": backend,
			}).Warn("document could not be converted, emitting placeholder")
			texts = []string{DummyPageText}
		}
		if len(texts) == 0 {
			texts = []string{BlankPageText}
		}

		for i, text := range texts {
			page := mailpage.NewPageRecord(sourceID, i, cleanPageText(text))
			select {
			case out <- page:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out
}

func safeConvert(convert convertFunc) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter panic: %v", r)
		}
	}()
	return convert()
}

// cleanPageText composes the text to NFC and replaces an empty page with
// BlankPageText.
func cleanPageText(text string) string {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return BlankPageText
	}
	return text
}
