package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

// DocumentSource enumerates PDFs and reads them by source ID.
type DocumentSource interface {
	Documents(ctx context.Context) ([]string, error)
	Read(ctx context.Context, sourceID string) ([]byte, error)
}

// DirSource lists the *.pdf files of one directory, not recursively.
type DirSource struct {
	Dir string
}

func (s DirSource) Documents(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.Dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(s.Dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (s DirSource) Read(_ context.Context, sourceID string) ([]byte, error) {
	return os.ReadFile(sourceID)
}

// FileSource serves an explicit list of files.
type FileSource []string

func (s FileSource) Documents(context.Context) ([]string, error) { return s, nil }

func (s FileSource) Read(_ context.Context, sourceID string) ([]byte, error) {
	return os.ReadFile(sourceID)
}

// ObjectSource lists the PDFs under a bucket prefix.
type ObjectSource struct {
	Client core.ObjectClient
	Bucket string
	Prefix string
}

func (s ObjectSource) Documents(ctx context.Context) ([]string, error) {
	keys, err := s.Client.ListKeys(ctx, s.Bucket, s.Prefix, ".pdf")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = SourceID(s.Bucket, k)
	}
	return out, nil
}

func (s ObjectSource) Read(ctx context.Context, sourceID string) ([]byte, error) {
	bucket, key := parseS3URL(sourceID)
	if bucket != s.Bucket || key == "" {
		return nil, fmt.Errorf("source %q is not in bucket %s", sourceID, s.Bucket)
	}
	return s.Client.GetFile(ctx, bucket, key)
}

// OpenSource interprets location as s3://bucket/prefix or a directory.
func OpenSource(location string, obj core.ObjectClient) (DocumentSource, error) {
	if strings.HasPrefix(location, "s3://") {
		if obj == nil {
			return nil, ErrNoStorage
		}
		bucket, prefix := parseS3URL(location)
		if bucket == "" {
			return nil, fmt.Errorf("no bucket in %q", location)
		}
		return ObjectSource{Client: obj, Bucket: bucket, Prefix: prefix}, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return FileSource{location}, nil
	}
	return DirSource{Dir: location}, nil
}

// parseS3URL extracts the bucket and key from s3://bucket/key or a typical
// virtual-hosted–style S3 URL such as
// https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	if rest, ok := strings.CutPrefix(u, "s3://"); ok {
		bucket, key, _ = strings.Cut(rest, "/")
		return bucket, key
	}
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

// Scan annotates every document of src in order with a single annotator and
// stops early once limit pages were produced (limit <= 0 means no limit). A
// document that fails is logged and skipped.
func (i *DocumentIngestor) Scan(ctx context.Context, src DocumentSource, sink BatchSink, limit int) ([]models.DocumentResult, error) {
	ids, err := src.Documents(ctx)
	if err != nil {
		return nil, err
	}

	ann := mailpage.NewAnnotator(i.engine)
	var (
		results []models.DocumentResult
		total   int
	)
	for _, id := range ids {
		if limit > 0 && total >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		data, err := src.Read(ctx, id)
		if err != nil {
			i.log.WithError(err).WithField("source", id).Warn("skipping unreadable document")
			continue
		}
		res, err := i.ProcessDocument(ctx, ann, id, data, sink)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return results, err
			}
			i.log.WithError(err).WithField("source", id).Error("document failed")
			continue
		}
		total += len(res.Pages)
		results = append(results, res)
	}
	return results, nil
}
