package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tevslin/emailai/internal/app"
	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/ingestion_engine"
	"github.com/tevslin/emailai/internal/core/mailpage"
	objectclient "github.com/tevslin/emailai/internal/core/object-client"
	"github.com/tevslin/emailai/internal/core/publisher"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "emailpdf",
		Short: "Recover email headers from PDF printouts",
		Long: `emailpdf reads emails that were printed or scanned to PDF, recognizes the
header block on each document's first page and attributes every page of the
document with the sender, recipients, subject and date.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("grammar", "", "header grammar file (yaml, json or toml); overrides GRAMMAR_FILE")
	flags.String("extractor", "", "page text backend: native, docconv or ocr; overrides EXTRACTOR")
	flags.Bool("replicate-headers", false, "prepend the header block to every continuation page")
	flags.String("timezone", "", "zone for dates without an offset; overrides DATE_TIMEZONE")
	flags.String("log-level", "", "log level; overrides LOG_LEVEL")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(grammarCmd())
	return rootCmd
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir|s3://bucket/prefix>",
		Short: "Annotate every PDF in a directory or bucket prefix",
		Long: `Annotate every *.pdf in a directory (not recursive) or under an S3 prefix and
print the first annotated pages.

Example:
  emailpdf scan ./inbox --replicate-headers
  emailpdf scan s3://mail/2022/ --limit 0 --format yaml --mbox out.mbox`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args[0], nil)
		},
	}
	addOutputFlags(cmd, 5)
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file.pdf>...",
		Short: "Annotate specific PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, "", ingestion_engine.FileSource(args))
		},
	}
	addOutputFlags(cmd, 0)
	return cmd
}

func grammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Print the effective header grammar as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			g, err := config.LoadGrammar(cfg.GrammarFile)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(g.Spec()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func addOutputFlags(cmd *cobra.Command, defaultLimit int) {
	cmd.Flags().Int("limit", defaultLimit, "number of annotated pages to print (0 prints all)")
	cmd.Flags().String("format", publisher.FormatJSON, "output format: json or yaml")
	cmd.Flags().String("output", "", "write pages to this file instead of stdout")
	cmd.Flags().String("mbox", "", "also export recognized emails to this mbox file")
	cmd.Flags().Bool("kafka", false, "also publish every page to KAFKA_TOPIC")
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.LoadConfig()
	flags := cmd.Flags()
	if v, _ := flags.GetString("grammar"); v != "" {
		cfg.GrammarFile = v
	}
	if v, _ := flags.GetString("extractor"); v != "" {
		cfg.Extractor = v
	}
	if flags.Changed("replicate-headers") {
		cfg.ReplicateHeaders, _ = flags.GetBool("replicate-headers")
	}
	if v, _ := flags.GetString("timezone"); v != "" {
		cfg.DateTimezone = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// runAnnotate scans location, or src when it is set, and writes the annotated
// pages to the selected outputs.
func runAnnotate(cmd *cobra.Command, location string, src ingestion_engine.DocumentSource) error {
	cfg := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())

	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	mboxPath, _ := cmd.Flags().GetString("mbox")
	useKafka, _ := cmd.Flags().GetBool("kafka")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := app.NewEngine(cfg, logger)
	if err != nil {
		return err
	}
	extractor, err := ingestion_engine.NewPageExtractor(cfg, logger)
	if err != nil {
		return err
	}

	var obj core.ObjectClient
	if strings.HasPrefix(location, "s3://") && cfg.HasS3() {
		s3c, err := objectclient.NewS3Client(ctx, cfg, logger)
		if err != nil {
			return err
		}
		obj = s3c
	}
	if src == nil {
		if src, err = ingestion_engine.OpenSource(location, obj); err != nil {
			return err
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	printer, err := publisher.NewWriterPublisher(out, format)
	if err != nil {
		return err
	}
	defer printer.Close()

	var extra publisher.Multi
	if mboxPath != "" {
		f, err := os.Create(mboxPath)
		if err != nil {
			return err
		}
		defer f.Close()
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		extra = append(extra, publisher.NewMboxPublisher(f, loc))
	}
	if useKafka {
		if !cfg.HasKafka() {
			return fmt.Errorf("--kafka needs KAFKA_BROKERS")
		}
		kp, err := publisher.NewKafkaPublisher(publisher.KafkaConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaTopic,
			RetryAttempts: cfg.KafkaRetryAttempts,
		}, logger)
		if err != nil {
			return err
		}
		extra = append(extra, kp)
	}

	// Without extra sinks there is no reason to read past the printed pages.
	scanLimit := 0
	if len(extra) == 0 {
		scanLimit = limit
	}

	ing := ingestion_engine.NewDocumentIngestor(obj, extractor, engine, nil, ingestion_engine.DefaultIngestConfig(), logger)
	sink := chainSinks(limitSink(printer, limit), ingestion_engine.PublishTo(extra))
	results, err := ing.Scan(ctx, src, sink, scanLimit)
	if err != nil {
		return err
	}
	if err := extra.Close(); err != nil {
		return err
	}

	emails, pages := 0, 0
	for _, r := range results {
		pages += len(r.Pages)
		if r.IsEmail {
			emails++
		}
	}
	logger.WithFields(logrus.Fields{
		"documents": len(results),
		"emails":    emails,
		"pages":     pages,
	}).Info("scan finished")
	return nil
}

// limitSink forwards at most limit pages to p; limit <= 0 forwards all.
func limitSink(p core.PagePublisher, limit int) ingestion_engine.BatchSink {
	sent := 0
	return func(ctx context.Context, pages []mailpage.PageRecord) error {
		if limit > 0 {
			if sent >= limit {
				return nil
			}
			if rest := limit - sent; len(pages) > rest {
				pages = pages[:rest]
			}
		}
		sent += len(pages)
		return p.Publish(ctx, pages...)
	}
}

func chainSinks(sinks ...ingestion_engine.BatchSink) ingestion_engine.BatchSink {
	return func(ctx context.Context, pages []mailpage.PageRecord) error {
		for _, s := range sinks {
			if err := s(ctx, pages); err != nil {
				return err
			}
		}
		return nil
	}
}
