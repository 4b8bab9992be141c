// Package pipeline routes chunk-processing and combine requests through the
// validator, transcriber, normalizer and aggregator. One chunk's failure
// never aborts its siblings: every failure mode resolves to a placeholder
// ChunkResult.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/aggregator"
	"koenote-pipeline/internal/app/audio"
	apperrors "koenote-pipeline/internal/app/errors"
	"koenote-pipeline/internal/app/metrics"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/normalizer"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/transcriber"
	"koenote-pipeline/internal/app/workflow"
)

// Pipeline is the entry point for chunk and session processing.
type Pipeline struct {
	store       blob.Store
	transcriber transcriber.Transcriber
	aggregator  *aggregator.Aggregator
	workflows   workflow.Client // nil when no orchestrator is configured
	bucket      string
	language    string
	logger      *zap.Logger
}

// New creates a Pipeline. workflows may be nil, in which case whole-recording
// requests are processed synchronously.
func New(store blob.Store, t transcriber.Transcriber, agg *aggregator.Aggregator,
	workflows workflow.Client, bucket, language string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:       store,
		transcriber: t,
		aggregator:  agg,
		workflows:   workflows,
		bucket:      bucket,
		language:    language,
		logger:      logger,
	}
}

// ProcessRequest asks for a whole recording's chunks to be processed.
type ProcessRequest struct {
	AudioKeys []string
	Bucket    string
	UserID    string
	SessionID string
	AudioURL  string
}

// ProcessResponse reports either a started execution or, on the synchronous
// fallback path, the finished session.
type ProcessResponse struct {
	Status      workflow.Status      `json:"status"`
	ExecutionID string               `json:"executionId,omitempty"`
	Result      *model.SessionResult `json:"result,omitempty"`
}

// StatusResponse is the caller-facing view of an execution's state.
type StatusResponse struct {
	Status workflow.Status `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
}

// ProcessChunk downloads, validates, transcribes and normalizes one chunk.
// It never fails: every error becomes a placeholder result so sibling chunks
// and the session survive. Temporary files are removed on every exit path.
func (p *Pipeline) ProcessChunk(ctx context.Context, chunk model.Chunk) model.ChunkResult {
	logger := p.logger.With(
		zap.String("chunkKey", chunk.ChunkKey),
		zap.String("sessionId", chunk.SessionID),
		zap.Int("chunkIndex", chunk.ChunkIndex))
	logger.Info("processing audio chunk")

	result := model.ChunkResult{
		ChunkKey:   chunk.ChunkKey,
		SessionID:  chunk.SessionID,
		ChunkIndex: chunk.ChunkIndex,
	}

	bucket := chunk.Bucket
	if bucket == "" {
		bucket = p.bucket
	}

	ext := filepath.Ext(chunk.ChunkKey)
	if ext == "" {
		ext = ".webm"
	}
	localPath := filepath.Join(os.TempDir(), uuid.New().String()+ext)

	tempFiles := []string{localPath}
	defer func() {
		for _, path := range tempFiles {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to clean up temporary file",
					zap.String("path", path), zap.Error(err))
			}
		}
	}()

	if err := p.store.Download(ctx, bucket, chunk.ChunkKey, localPath); err != nil {
		logger.Error("chunk download failed", zap.Error(err))
		metrics.ChunksProcessed.WithLabelValues("download_failed").Inc()
		result.Text = model.PlaceholderDownloadFailed
		result.Error = err.Error()
		return result
	}

	if !audio.IsValid(ctx, localPath) {
		logger.Warn("invalid audio file detected, attempting repair")
		repaired, err := audio.Repair(ctx, localPath)
		if err != nil {
			// Unrecoverable: same bytes will not repair differently, so no
			// retry, just a placeholder.
			logger.Error("could not repair audio file", zap.Error(err))
			metrics.ChunksProcessed.WithLabelValues("invalid_audio").Inc()
			result.Text = model.PlaceholderInvalidAudio
			return result
		}
		logger.Info("repaired audio file")
		tempFiles = append(tempFiles, repaired)
		localPath = repaired
	}

	duration, err := audio.Probe(ctx, localPath)
	if err != nil {
		logger.Warn("failed to probe duration, using default", zap.Error(err))
		duration = audio.DefaultDuration
	}
	result.Duration = duration

	usePath := localPath
	if converted, err := audio.ConvertToMP3IfNeeded(ctx, localPath); err != nil {
		// Non-fatal: Whisper may still accept the original container.
		logger.Warn("audio conversion failed, submitting original file", zap.Error(err))
	} else if converted != "" {
		tempFiles = append(tempFiles, converted)
		usePath = converted
	}

	raw, err := p.transcriber.Transcribe(ctx, usePath, p.language)
	if err != nil {
		logger.Error("transcription failed", zap.Error(err))
		metrics.ChunksProcessed.WithLabelValues("transcription_failed").Inc()
		result.Text = model.PlaceholderTranscriptionFailed(err)
		result.Error = err.Error()
		return result
	}

	cleaned := normalizer.CleanRepeatedPhrases(raw)
	formatted := normalizer.Format(cleaned)

	result.Text = formatted
	result.Sentences = normalizer.StructureSentences(formatted)

	logger.Info("transcription successful")
	metrics.ChunksProcessed.WithLabelValues("ok").Inc()
	return result
}

// ProcessAndStore processes one chunk and persists its result. A storage
// failure is logged but does not discard the computed result.
func (p *Pipeline) ProcessAndStore(ctx context.Context, chunk model.Chunk) model.ChunkResult {
	result := p.ProcessChunk(ctx, chunk)
	if err := p.aggregator.StoreChunkResult(ctx, result); err != nil {
		p.logger.Warn("failed to store chunk result", zap.Error(err))
	}
	return result
}

// Combine aggregates all stored results of the session.
func (p *Pipeline) Combine(ctx context.Context, sessionID, userID string) (*model.SessionResult, error) {
	if sessionID == "" {
		return nil, apperrors.ErrMissingSessionID
	}
	return p.aggregator.Combine(ctx, sessionID, userID)
}

// ProcessRecording hands a whole recording to the workflow orchestrator when
// one is configured. Without one, or when the start call fails, it degrades
// to synchronous sequential processing followed by an inline combine.
func (p *Pipeline) ProcessRecording(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	if len(req.AudioKeys) == 0 {
		return nil, apperrors.RequiredField("audioKeys")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	if req.UserID == "" {
		req.UserID = "default"
	}
	if req.Bucket == "" {
		req.Bucket = p.bucket
	}

	if p.workflows != nil {
		executionID, err := p.workflows.StartSession(ctx, workflow.SessionRequest{
			SessionID: req.SessionID,
			UserID:    req.UserID,
			Bucket:    req.Bucket,
			AudioKeys: req.AudioKeys,
			AudioURL:  req.AudioURL,
		})
		if err == nil {
			p.logger.Info("started session workflow",
				zap.String("sessionId", req.SessionID),
				zap.String("executionId", executionID))
			return &ProcessResponse{Status: workflow.StatusProcessing, ExecutionID: executionID}, nil
		}
		p.logger.Warn("workflow orchestrator unavailable, falling back to direct processing",
			zap.Error(err))
	} else {
		p.logger.Warn("no workflow orchestrator configured, falling back to direct processing")
	}

	for i, key := range req.AudioKeys {
		p.ProcessAndStore(ctx, model.Chunk{
			ChunkKey:   key,
			Bucket:     req.Bucket,
			SessionID:  req.SessionID,
			ChunkIndex: i,
		})
	}

	result, err := p.aggregator.Combine(ctx, req.SessionID, req.UserID)
	if err != nil {
		return nil, err
	}
	return &ProcessResponse{Status: workflow.StatusCompleted, Result: result}, nil
}

// CheckStatus maps the orchestrator's view of an execution to
// processing/completed/failed.
func (p *Pipeline) CheckStatus(ctx context.Context, executionID string) (*StatusResponse, error) {
	if executionID == "" {
		return nil, apperrors.RequiredField("executionId")
	}
	if p.workflows == nil {
		return nil, apperrors.New("workflow orchestrator is not configured")
	}

	status, output, err := p.workflows.Describe(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{Status: status, Result: output}, nil
}

// DebugExecution returns the orchestrator's event history for an execution.
func (p *Pipeline) DebugExecution(ctx context.Context, executionID string) ([]workflow.Event, error) {
	if executionID == "" {
		return nil, apperrors.RequiredField("executionId")
	}
	if p.workflows == nil {
		return nil, apperrors.New("workflow orchestrator is not configured")
	}
	return p.workflows.History(ctx, executionID)
}

// IntermediateResults fetches a stored intermediate artifact by its blob key.
func (p *Pipeline) IntermediateResults(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, apperrors.ErrMissingKey
	}
	return p.store.Get(ctx, p.bucket, key)
}
