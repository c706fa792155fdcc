package core

import (
	"context"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	// ListKeys returns the keys under prefix that end in suffix, sorted.
	ListKeys(ctx context.Context, bucket, prefix, suffix string) ([]string, error)
}

// PagePublisher delivers annotated pages downstream.
type PagePublisher interface {
	// Publish delivers pages in the order given.
	Publish(ctx context.Context, pages ...mailpage.PageRecord) error
	Close() error
}
