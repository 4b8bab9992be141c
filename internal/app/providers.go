// Package app assembles the pipeline's dependency graph.
package app

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/aggregator"
	"koenote-pipeline/internal/app/pipeline"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
	"koenote-pipeline/internal/app/storage/record/pg"
	"koenote-pipeline/internal/app/storage/record/sqlite"
	"koenote-pipeline/internal/app/summarizer"
	"koenote-pipeline/internal/app/transcriber"
	"koenote-pipeline/internal/app/transcriber/whisper"
	"koenote-pipeline/internal/app/workflow"
	"koenote-pipeline/internal/config"
)

// Application bundles the wired components the adapters need.
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	Pipeline   *pipeline.Pipeline
	Aggregator *aggregator.Aggregator
	Blobs      blob.Store
	Records    record.Store
	Workflows  workflow.Client
}

func newApplication(cfg *config.Config, logger *zap.Logger, p *pipeline.Pipeline,
	agg *aggregator.Aggregator, blobs blob.Store, records record.Store,
	workflows workflow.Client) *Application {
	return &Application{
		Config:     cfg,
		Logger:     logger,
		Pipeline:   p,
		Aggregator: agg,
		Blobs:      blobs,
		Records:    records,
		Workflows:  workflows,
	}
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var logger *zap.Logger
	var err error
	if cfg.Server.Mode == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideBlobStore(cfg *config.Config) (blob.Store, error) {
	store, err := blob.NewMinioStore(blob.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(context.Background(), cfg.Storage.Bucket); err != nil {
		return nil, err
	}
	return store, nil
}

func provideRecordStore(cfg *config.Config) (record.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pg.NewRecordingDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case "memory":
		db := record.NewMemoryStore()
		return db, func() {}, nil
	default:
		db, err := sqlite.NewRecordingDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}
}

func provideOpenAIClient(cfg *config.Config) *openai.Client {
	if cfg.OpenAI.BaseURL != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
		return openai.NewClientWithConfig(clientCfg)
	}
	return openai.NewClient(cfg.OpenAI.APIKey)
}

func provideTranscriber(client *openai.Client) transcriber.Transcriber {
	return whisper.NewRemoteTranscriber(client)
}

func provideSummarizer(client *openai.Client, cfg *config.Config, logger *zap.Logger) *summarizer.Summarizer {
	return summarizer.New(client, cfg.Summarizer.Budget, logger)
}

// provideWorkflowClient returns nil when no orchestrator host is configured;
// the pipeline then processes recordings synchronously.
func provideWorkflowClient(cfg *config.Config, logger *zap.Logger) (workflow.Client, func(), error) {
	if cfg.Temporal.HostPort == "" {
		logger.Info("no workflow orchestrator configured, recordings will be processed inline")
		return nil, func() {}, nil
	}
	c, err := workflow.NewTemporalClient(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

func provideAggregator(store blob.Store, records record.Store, sum *summarizer.Summarizer,
	cfg *config.Config, logger *zap.Logger) *aggregator.Aggregator {
	return aggregator.New(store, records, sum, cfg.Storage.Bucket, logger)
}

func providePipeline(store blob.Store, t transcriber.Transcriber, agg *aggregator.Aggregator,
	workflows workflow.Client, cfg *config.Config, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(store, t, agg, workflows, cfg.Storage.Bucket, cfg.Language, logger)
}
