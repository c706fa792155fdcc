package ingestion_engine

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

// IngestConfig tunes the streaming pipeline.
//
// QueueSize:      capacity of the in-memory job queue.
// BatchSize:      how many annotated pages are handed to the publisher at once.
// PageBuffer:     channel buffer between pipeline stages.
// ProcessTimeout: upper bound for fetching and processing one document.
type IngestConfig struct {
	QueueSize      int
	BatchSize      int
	PageBuffer     int
	ProcessTimeout time.Duration
}

// DefaultIngestConfig returns the settings used by the service.
func DefaultIngestConfig() *IngestConfig {
	return &IngestConfig{
		QueueSize:      64,
		BatchSize:      16,
		PageBuffer:     8,
		ProcessTimeout: 5 * time.Minute,
	}
}

// DocumentIngestor orchestrates the background ingestion pipeline:
//
// obj:       object storage the PDFs are read from.
// extractor: turns PDF bytes into page records.
// engine:    header recognition; each worker drives it with its own Annotator.
// publisher: destination of annotated pages.
// jobs:      in-memory queue of job IDs to process.
// status:    last known state of every job, keyed by ID.
type DocumentIngestor struct {
	obj       core.ObjectClient
	extractor core.PageExtractor
	engine    *mailpage.Engine
	publisher core.PagePublisher
	cfg       *IngestConfig
	log       logrus.FieldLogger
	jobs      chan string

	mu     sync.RWMutex
	status map[string]*models.Job
}
