package ingestion_engine

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageImages returns, for every page in order, the raw bytes of the images
// drawn on it. Scanned mail has one image per page; pages without images get
// an empty slice.
func pageImages(data []byte) ([][][]byte, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([][][]byte, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d images: %w", pageNr, err)
		}

		objNrs := make([]int, 0, len(images))
		for objNr := range images {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			raw, err := io.ReadAll(images[objNr])
			if err != nil {
				return nil, fmt.Errorf("page %d image %d: %w", pageNr, objNr, err)
			}
			pages[pageNr-1] = append(pages[pageNr-1], raw)
		}
	}
	return pages, nil
}
