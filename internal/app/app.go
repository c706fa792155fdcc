// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/ingestion_engine"
	"github.com/tevslin/emailai/internal/core/mailpage"
	objectclient "github.com/tevslin/emailai/internal/core/object-client"
	"github.com/tevslin/emailai/internal/core/publisher"
)

type App struct {
	Config       *config.Config
	Log          *logrus.Logger
	Engine       *mailpage.Engine
	ObjectClient core.ObjectClient
	Publisher    core.PagePublisher
	DocProcessor *ingestion_engine.DocumentIngestor
	Server       *Server
}

// NewEngine builds the recognition engine from the grammar file, header
// replication flag and date zone of cfg.
func NewEngine(cfg *config.Config, log logrus.FieldLogger) (*mailpage.Engine, error) {
	grammar, err := config.LoadGrammar(cfg.GrammarFile)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return mailpage.NewEngine(grammar,
		mailpage.WithHeaderReplication(cfg.ReplicateHeaders),
		mailpage.WithDateNormalizer(mailpage.NewDateNormalizer(loc)),
		mailpage.WithLogger(log),
	), nil
}

// NewApp wires storage, publishing and the ingestion pipeline. Object storage
// and Kafka are optional and only set up when configured.
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	engine, err := NewEngine(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the engine, %w", err)
	}

	extractor, err := ingestion_engine.NewPageExtractor(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the extractor, %w", err)
	}
	log.WithField("extractor", extractor.Name()).Info("Page extractor ready.")

	a := &App{Config: cfg, Log: log, Engine: engine}

	if cfg.HasS3() {
		objClient, err := objectclient.NewS3Client(appCtx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.ObjectClient = objClient
		log.Info("Object client initialized and ready.")
	}

	if cfg.HasKafka() {
		pub, err := publisher.NewKafkaPublisher(publisher.KafkaConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaTopic,
			RetryAttempts: cfg.KafkaRetryAttempts,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the kafka publisher, %w", err)
		}
		a.Publisher = pub
		log.WithField("topic", cfg.KafkaTopic).Info("Kafka publisher ready.")
	}

	a.DocProcessor = ingestion_engine.NewDocumentIngestor(
		a.ObjectClient, extractor, engine, a.Publisher, ingestion_engine.DefaultIngestConfig(), log)
	a.Server = NewServer(cfg, a.ObjectClient, a.DocProcessor, engine, log)

	return a, nil
}

func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Log.WithError(err).Warn("closing publisher")
		}
	}
}
