// Package activities exposes the pipeline's chunk processing and result
// combination as workflow activities.
package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"koenote-pipeline/internal/app/aggregator"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/pipeline"
)

// SessionActivities wraps the pipeline for execution inside a worker.
type SessionActivities struct {
	pipeline   *pipeline.Pipeline
	aggregator *aggregator.Aggregator
}

// NewSessionActivities creates the activity set backed by the given pipeline.
func NewSessionActivities(p *pipeline.Pipeline, agg *aggregator.Aggregator) *SessionActivities {
	return &SessionActivities{pipeline: p, aggregator: agg}
}

// ProcessChunk transcribes one chunk and stores its result. It never returns
// an error: chunk failures surface as placeholder results so the workflow
// keeps its siblings alive.
func (a *SessionActivities) ProcessChunk(ctx context.Context, chunk model.Chunk) (model.ChunkResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing chunk activity",
		"sessionId", chunk.SessionID,
		"chunkIndex", chunk.ChunkIndex)

	activity.RecordHeartbeat(ctx, fmt.Sprintf("processing chunk %d", chunk.ChunkIndex))

	done := make(chan model.ChunkResult, 1)
	go func() {
		done <- a.pipeline.ProcessAndStore(ctx, chunk)
	}()

	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case result := <-done:
			return result, nil
		case <-heartbeat.C:
			activity.RecordHeartbeat(ctx, fmt.Sprintf("still processing chunk %d", chunk.ChunkIndex))
		case <-ctx.Done():
			return model.ChunkResult{
				ChunkKey:   chunk.ChunkKey,
				SessionID:  chunk.SessionID,
				ChunkIndex: chunk.ChunkIndex,
				Text:       model.PlaceholderTranscriptionFailed(ctx.Err()),
				Error:      ctx.Err().Error(),
			}, ctx.Err()
		}
	}
}

// CombineResults aggregates every stored chunk result of the session into
// the final transcript and summary.
func (a *SessionActivities) CombineResults(ctx context.Context, sessionID, userID string) (*model.SessionResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Combining session results", "sessionId", sessionID)

	return a.aggregator.Combine(ctx, sessionID, userID)
}
