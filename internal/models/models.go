package models

import (
	"time"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// Job represents one PDF scheduled for ingestion from object storage.
type Job struct {
	ID        string    `json:"id"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Status    JobStatus `json:"status"`
	Pages     int       `json:"pages"`
	IsEmail   bool      `json:"is_email"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IngestRequest is the body of POST /api/documents/ingest.
type IngestRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// DocumentResult is the outcome of annotating one PDF.
type DocumentResult struct {
	SourceID string                `json:"source_id" yaml:"source_id"`
	IsEmail  bool                  `json:"is_email" yaml:"is_email"`
	Pages    []mailpage.PageRecord `json:"pages" yaml:"pages"`
}

// ParseResponse is returned by POST /api/documents/parse.
type ParseResponse struct {
	Documents []DocumentResult `json:"documents"`
}

// PageMessage is the wire form of an annotated page published downstream.
type PageMessage struct {
	SourceID  string            `json:"source_id"`
	PageIndex int               `json:"page_index"`
	Content   string            `json:"page_content"`
	Metadata  mailpage.Metadata `json:"metadata"`
	Published time.Time         `json:"published_at"`
}

// NewPageMessage wraps page for publishing at time now.
func NewPageMessage(page mailpage.PageRecord, now time.Time) PageMessage {
	return PageMessage{
		SourceID:  page.SourceID,
		PageIndex: page.PageIndex,
		Content:   page.Text,
		Metadata:  page.Metadata,
		Published: now,
	}
}

// UploadResponse is returned by POST /api/documents/upload.
type UploadResponse struct {
	Job        Job    `json:"job"`
	StorageURL string `json:"storage_url"`
}
