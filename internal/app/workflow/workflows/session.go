// Package workflows contains the session transcription workflow definition.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"koenote-pipeline/internal/app/model"
	appworkflow "koenote-pipeline/internal/app/workflow"
)

// SessionTranscriptionWorkflow fans out one ProcessChunk activity per audio
// key, waits for all of them, then combines the stored results into the
// session transcript. Chunk activities report failures as placeholder
// results, so a bad chunk never fails the workflow.
func SessionTranscriptionWorkflow(ctx workflow.Context, req appworkflow.SessionRequest) (*model.SessionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting session transcription workflow",
		"sessionId", req.SessionID,
		"chunks", len(req.AudioKeys))

	chunkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})

	futures := make([]workflow.Future, len(req.AudioKeys))
	for i, key := range req.AudioKeys {
		futures[i] = workflow.ExecuteActivity(chunkCtx, "ProcessChunk", model.Chunk{
			ChunkKey:   key,
			Bucket:     req.Bucket,
			SessionID:  req.SessionID,
			ChunkIndex: i,
		})
	}

	for i, future := range futures {
		var result model.ChunkResult
		if err := future.Get(ctx, &result); err != nil {
			// Exhausted retries. The combine step tolerates the missing chunk.
			logger.Error("chunk activity failed after retries",
				"chunkIndex", i, "error", err)
		}
	}

	combineCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})

	var sessionResult *model.SessionResult
	if err := workflow.ExecuteActivity(combineCtx, "CombineResults",
		req.SessionID, req.UserID).Get(ctx, &sessionResult); err != nil {
		logger.Error("combine activity failed", "sessionId", req.SessionID, "error", err)
		return nil, err
	}

	logger.Info("Session transcription workflow completed",
		"sessionId", req.SessionID,
		"chunks", len(sessionResult.Chunks))
	return sessionResult, nil
}
