//go:build ocr

package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

var _ core.PageExtractor = (*OCRExtractor)(nil)

// OCRExtractor recognizes the page images of scanned PDFs with Tesseract.
// Each page is read as a single uniform block of text, the layout of a
// printed mail header.
type OCRExtractor struct {
	language string
	log      logrus.FieldLogger
	buffer   int
}

func NewOCRExtractor(language string, log logrus.FieldLogger) (*OCRExtractor, error) {
	if language == "" {
		language = "eng"
	}
	return &OCRExtractor{language: language, log: log, buffer: 4}, nil
}

func (e *OCRExtractor) Name() string { return "ocr" }

func (e *OCRExtractor) ExtractPages(ctx context.Context, g *errgroup.Group, sourceID string, data []byte) (<-chan mailpage.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return emitPages(ctx, g, e.log, e.Name(), sourceID, e.buffer, func() ([]string, error) {
		return e.recognize(ctx, data)
	}), nil
}

// recognize uses one Tesseract client per document; clients are not safe for
// concurrent use.
func (e *OCRExtractor) recognize(ctx context.Context, data []byte) ([]string, error) {
	pages, err := pageImages(data)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("tesseract language %q: %w", e.language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("tesseract page mode: %w", err)
	}

	texts := make([]string, len(pages))
	for i, images := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(images))
		for _, img := range images {
			if err := client.SetImageFromBytes(img); err != nil {
				return nil, fmt.Errorf("page %d: %w", i+1, err)
			}
			text, err := client.Text()
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i+1, err)
			}
			parts = append(parts, text)
		}
		texts[i] = strings.Join(parts, "\n")
	}
	return texts, nil
}
