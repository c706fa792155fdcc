package ingestion_engine

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/sync/errgroup"

	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

func collect(t *testing.T, convert convertFunc) ([]mailpage.PageRecord, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	g, ctx := errgroup.WithContext(context.Background())
	ch := emitPages(ctx, g, logger, "test", "doc.pdf", 0, convert)

	var pages []mailpage.PageRecord
	for p := range ch {
		pages = append(pages, p)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("emitPages stage error = %v", err)
	}
	return pages, hook
}

func TestEmitPages(t *testing.T) {
	pages, hook := collect(t, func() ([]string, error) {
		return []string{"From: a\n", "", " \n\t", "Café"}, nil
	})

	var texts []string
	for i, p := range pages {
		texts = append(texts, p.Text)
		if p.PageIndex != i || p.SourceID != "doc.pdf" {
			t.Errorf("page %d = %s/%d", i, p.SourceID, p.PageIndex)
		}
		if p.Metadata[mailpage.KeySource] != "doc.pdf" || p.Metadata[mailpage.KeyPage] != i {
			t.Errorf("page %d metadata = %v", i, p.Metadata)
		}
	}
	want := []string{"From: a\n", BlankPageText, BlankPageText, "Café"}
	if !slices.Equal(texts, want) {
		t.Errorf("texts = %q, want %q", texts, want)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries")
	}
}

func TestEmitPages_Placeholders(t *testing.T) {
	testCases := []struct {
		name    string
		convert convertFunc
		want    string
		warns   int
	}{
		{"error", func() ([]string, error) { return nil, errors.New("corrupt xref") }, DummyPageText, 1},
		{"panic", func() ([]string, error) { panic("index out of range") }, DummyPageText, 1},
		{"no pages", func() ([]string, error) { return nil, nil }, BlankPageText, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pages, hook := collect(t, tc.convert)
			if len(pages) != 1 || pages[0].Text != tc.want || pages[0].PageIndex != 0 {
				t.Fatalf("pages = %+v, want one %q page", pages, tc.want)
			}
			if len(hook.AllEntries()) != tc.warns {
				t.Fatalf("log entries = %d, want %d", len(hook.AllEntries()), tc.warns)
			}
			if tc.warns > 0 {
				entry := hook.LastEntry()
				if entry.Level != logrus.WarnLevel || entry.Data["source"] != "doc.pdf" {
					t.Errorf("entry = %v %v", entry.Level, entry.Data)
				}
			}
		})
	}
}

func TestSplitFormFeeds(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want []string
	}{
		{"empty", "", nil},
		{"single page", "one", []string{"one"}},
		{"trailing separator", "one\ftwo\f", []string{"one", "two"}},
		{"blank middle page", "one\f\fthree\f\n", []string{"one", "", "three"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := splitFormFeeds(tc.body); !slices.Equal(got, tc.want) {
				t.Errorf("splitFormFeeds(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestPDFTextExtractor_NotAPDF(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := NewPDFTextExtractor(logger)

	g, ctx := errgroup.WithContext(context.Background())
	ch, err := e.ExtractPages(ctx, g, "junk.pdf", []byte("this is not a pdf"))
	if err != nil {
		t.Fatal(err)
	}
	var pages []mailpage.PageRecord
	for p := range ch {
		pages = append(pages, p)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Text != DummyPageText {
		t.Errorf("pages = %+v", pages)
	}
	if len(hook.AllEntries()) != 1 {
		t.Errorf("log entries = %d, want 1", len(hook.AllEntries()))
	}
}

func TestExtractPages_CanceledContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, gctx := errgroup.WithContext(ctx)

	if _, err := NewPDFTextExtractor(logger).ExtractPages(gctx, g, "a.pdf", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("ExtractPages() error = %v, want context.Canceled", err)
	}
}

func TestPageImages_NotAPDF(t *testing.T) {
	if _, err := pageImages([]byte("not a pdf")); err == nil {
		t.Error("expected an error")
	}
}

func TestNewPageExtractor(t *testing.T) {
	logger, _ := test.NewNullLogger()

	native, err := NewPageExtractor(&config.Config{Extractor: config.ExtractorNative}, logger)
	if err != nil || native.Name() != "native" {
		t.Errorf("native = %v, %v", native, err)
	}
	docconv, err := NewPageExtractor(&config.Config{Extractor: config.ExtractorDocconv}, logger)
	if err != nil || docconv.Name() != "docconv" {
		t.Errorf("docconv = %v, %v", docconv, err)
	}
	if _, err := NewPageExtractor(&config.Config{Extractor: "fax"}, logger); err == nil {
		t.Error("expected error for unknown extractor")
	}
}

func TestAllBlank(t *testing.T) {
	testCases := []struct {
		texts []string
		want  bool
	}{
		{nil, false},
		{[]string{"", " \n\t"}, true},
		{[]string{"", "From: a@x.com"}, false},
	}
	for _, tc := range testCases {
		if got := allBlank(tc.texts); got != tc.want {
			t.Errorf("allBlank(%q) = %v, want %v", tc.texts, got, tc.want)
		}
	}
}

func TestWarnIfScanned_Unreadable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	NewPDFTextExtractor(logger).warnIfScanned("a.pdf", []byte("not a pdf"))
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries: %d", len(hook.AllEntries()))
	}
}
