package ingestion_engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core"
)

// NewPageExtractor builds the backend named by cfg.Extractor.
func NewPageExtractor(cfg *config.Config, log logrus.FieldLogger) (core.PageExtractor, error) {
	switch cfg.Extractor {
	case config.ExtractorNative, "":
		return NewPDFTextExtractor(log), nil
	case config.ExtractorDocconv:
		return NewDocconvExtractor(false, log), nil
	case config.ExtractorOCR:
		ocr, err := NewOCRExtractor(cfg.OCRLanguage, log)
		if err != nil {
			return nil, err
		}
		return ocr, nil
	}
	return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
}
