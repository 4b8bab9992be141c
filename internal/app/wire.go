//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"koenote-pipeline/internal/config"
)

// InitializeApplication builds the full dependency graph from configuration.
func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		provideLogger,
		provideBlobStore,
		provideRecordStore,
		provideOpenAIClient,
		provideTranscriber,
		provideSummarizer,
		provideWorkflowClient,
		provideAggregator,
		providePipeline,
		newApplication,
	)
	return nil, nil, nil
}
