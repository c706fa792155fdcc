package ingestion_engine

import (
	"context"

	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

var _ Ingestor = (*DocumentIngestor)(nil)

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(bucket, key string) (models.Job, error)
	Job(id string) (models.Job, bool)
	ProcessDocument(ctx context.Context, ann *mailpage.Annotator, sourceID string, data []byte, sink BatchSink) (models.DocumentResult, error)
}
