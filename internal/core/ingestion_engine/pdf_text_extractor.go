package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

var _ core.PageExtractor = (*PDFTextExtractor)(nil)

// PDFTextExtractor reads the text layer of each page directly. It is the
// cheapest backend and suits PDFs printed from a mail client.
type PDFTextExtractor struct {
	log    logrus.FieldLogger
	buffer int
}

func NewPDFTextExtractor(log logrus.FieldLogger) *PDFTextExtractor {
	return &PDFTextExtractor{log: log, buffer: 8}
}

func (e *PDFTextExtractor) Name() string { return "native" }

func (e *PDFTextExtractor) ExtractPages(ctx context.Context, g *errgroup.Group, sourceID string, data []byte) (<-chan mailpage.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return emitPages(ctx, g, e.log, e.Name(), sourceID, e.buffer, func() ([]string, error) {
		texts, err := pdfPageTexts(data)
		if err == nil && allBlank(texts) {
			e.warnIfScanned(sourceID, data)
		}
		return texts, err
	}), nil
}

// warnIfScanned flags documents whose pages are images without a text layer.
func (e *PDFTextExtractor) warnIfScanned(sourceID string, data []byte) {
	images, err := pageImages(data)
	if err != nil {
		return
	}
	n := 0
	for _, page := range images {
		n += len(page)
	}
	if n > 0 {
		e.log.WithFields(logrus.Fields{
			"source": sourceID,
			"images": n,
		}).Warn("no text layer found, document looks scanned; use the ocr extractor")
	}
}

func allBlank(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return len(texts) > 0
}

func pdfPageTexts(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	texts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}
