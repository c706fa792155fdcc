package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

var (
	ErrQueueFull  = errors.New("ingestion queue is full")
	ErrNoStorage  = errors.New("no object storage configured")
	ErrBadRequest = errors.New("bucket and key are required")
)

// BatchSink receives annotated pages in order.
type BatchSink func(ctx context.Context, pages []mailpage.PageRecord) error

// PublishTo adapts a publisher to a BatchSink.
func PublishTo(p core.PagePublisher) BatchSink {
	return func(ctx context.Context, pages []mailpage.PageRecord) error {
		return p.Publish(ctx, pages...)
	}
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue. obj
// may be nil when only ProcessDocument is used.
func NewDocumentIngestor(
	obj core.ObjectClient,
	extractor core.PageExtractor,
	engine *mailpage.Engine,
	publisher core.PagePublisher,
	cfg *IngestConfig,
	log logrus.FieldLogger,
) *DocumentIngestor {
	if cfg == nil {
		cfg = DefaultIngestConfig()
	}
	return &DocumentIngestor{
		obj:       obj,
		extractor: extractor,
		engine:    engine,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		jobs:      make(chan string, cfg.QueueSize),
		status:    make(map[string]*models.Job),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel. Each worker
// owns one Annotator, so no document state is shared between workers.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			ann := mailpage.NewAnnotator(i.engine)
			log := i.log.WithField("worker", w)
			for {
				select {
				case <-ctx.Done():
					log.Info("ingestion worker shutting down")
					return
				case jobID := <-i.jobs:
					log.WithField("job", jobID).Info("processing job")
					if err := i.processOne(ctx, ann, jobID); err != nil {
						log.WithError(err).WithField("job", jobID).Error("job failed")
					}
				}
			}
		}(w)
	}
}

// Enqueue registers a job for bucket/key and schedules it. It does not block:
// a full queue yields ErrQueueFull.
func (i *DocumentIngestor) Enqueue(bucket, key string) (models.Job, error) {
	if bucket == "" || key == "" {
		return models.Job{}, ErrBadRequest
	}
	if i.obj == nil {
		return models.Job{}, ErrNoStorage
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:        uuid.NewString(),
		Bucket:    bucket,
		Key:       key,
		Status:    models.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	i.mu.Lock()
	i.status[job.ID] = job
	i.mu.Unlock()

	select {
	case i.jobs <- job.ID:
		return *job, nil
	default:
		i.mu.Lock()
		delete(i.status, job.ID)
		i.mu.Unlock()
		return models.Job{}, ErrQueueFull
	}
}

// Job returns a snapshot of the job with the given ID.
func (i *DocumentIngestor) Job(id string) (models.Job, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	job, ok := i.status[id]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

func (i *DocumentIngestor) update(id string, fn func(*models.Job)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if job, ok := i.status[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

// processOne fetches, annotates and publishes a single job.
func (i *DocumentIngestor) processOne(ctx context.Context, ann *mailpage.Annotator, jobID string) error {
	job, ok := i.Job(jobID)
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	i.update(jobID, func(j *models.Job) { j.Status = models.JobProcessing })

	proctx, cancel := context.WithTimeout(ctx, i.cfg.ProcessTimeout)
	defer cancel()

	fail := func(err error) error {
		i.update(jobID, func(j *models.Job) {
			j.Status = models.JobFailed
			j.Error = err.Error()
		})
		return err
	}

	data, err := i.obj.GetFile(proctx, job.Bucket, job.Key)
	if err != nil {
		return fail(fmt.Errorf("get object: %w", err))
	}

	var sink BatchSink
	if i.publisher != nil {
		sink = PublishTo(i.publisher)
	}
	res, err := i.ProcessDocument(proctx, ann, SourceID(job.Bucket, job.Key), data, sink)
	if err != nil {
		return fail(err)
	}

	i.update(jobID, func(j *models.Job) {
		j.Status = models.JobDone
		j.Pages = len(res.Pages)
		j.IsEmail = res.IsEmail
	})
	return nil
}

// ProcessDocument extracts the pages of one PDF, annotates them with ann and
// hands them to sink in batches. The annotated pages are also returned. sink
// may be nil.
func (i *DocumentIngestor) ProcessDocument(
	ctx context.Context,
	ann *mailpage.Annotator,
	sourceID string,
	data []byte,
	sink BatchSink,
) (models.DocumentResult, error) {
	res := models.DocumentResult{SourceID: sourceID}

	// Build an errgroup to tie the pipeline stages together.
	g, gctx := errgroup.WithContext(ctx)

	// PDF -> raw pages.
	pageCh, err := i.extractor.ExtractPages(gctx, g, sourceID, data)
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", sourceID, err)
	}

	// raw pages -> annotated pages -> batches.
	annotated := streamAnnotate(gctx, g, ann, pageCh, i.cfg.PageBuffer)
	batches := streamBatch(gctx, g, annotated, i.cfg.BatchSize)

	g.Go(func() error {
		for batch := range batches {
			res.Pages = append(res.Pages, batch...)
			if sink == nil {
				continue
			}
			if err := sink(gctx, batch); err != nil {
				return fmt.Errorf("publish %s: %w", sourceID, err)
			}
		}
		return nil
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		return res, err
	}

	state := ann.State()
	res.IsEmail = state.Phase == mailpage.TrackingEmail && state.SourceID == sourceID

	i.log.WithFields(logrus.Fields{
		"source":   sourceID,
		"pages":    len(res.Pages),
		"is_email": res.IsEmail,
	}).Debug("document processed")
	return res, nil
}

// SourceID names an object the way pages of it are attributed downstream.
func SourceID(bucket, key string) string {
	return "s3://" + path.Join(bucket, key)
}
