//go:build !ocr

package ingestion_engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// ErrOCRUnavailable is returned when the binary was built without the ocr tag.
var ErrOCRUnavailable = errors.New("ocr support not compiled in, rebuild with -tags ocr")

// OCRExtractor is a placeholder; build with -tags ocr for Tesseract support.
type OCRExtractor struct{}

func NewOCRExtractor(string, logrus.FieldLogger) (*OCRExtractor, error) {
	return nil, ErrOCRUnavailable
}

func (e *OCRExtractor) Name() string { return "ocr" }

func (e *OCRExtractor) ExtractPages(context.Context, *errgroup.Group, string, []byte) (<-chan mailpage.PageRecord, error) {
	return nil, ErrOCRUnavailable
}
