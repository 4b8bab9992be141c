// Package aggregator collects per-chunk transcription results and combines
// them, in chunk-index order, into one session transcript with a summary.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "koenote-pipeline/internal/app/errors"
	"koenote-pipeline/internal/app/metrics"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
	"koenote-pipeline/internal/app/summarizer"
)

// ErrNoResults is returned by Combine when a session has no stored chunk
// results at all.
var ErrNoResults = apperrors.ErrNoResults

// Aggregator persists chunk results and combines them per session.
type Aggregator struct {
	store      blob.Store
	records    record.Store
	summarizer *summarizer.Summarizer
	bucket     string
	logger     *zap.Logger
}

// New creates an Aggregator writing artifacts to the given bucket.
func New(store blob.Store, records record.Store, sum *summarizer.Summarizer, bucket string, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:      store,
		records:    records,
		summarizer: sum,
		bucket:     bucket,
		logger:     logger,
	}
}

// TempResultKey is the blob key holding one chunk's intermediate result.
func TempResultKey(sessionID string, chunkIndex int) string {
	return fmt.Sprintf("temp_results/%s/%d.json", sessionID, chunkIndex)
}

// FinalResultKey is the blob key holding a session's combined result.
func FinalResultKey(userID, sessionID string) string {
	return fmt.Sprintf("final_results/%s/%s.json", userID, sessionID)
}

// StoreChunkResult durably writes one chunk's result, keyed by session and
// chunk index. Retried writes for the same index overwrite idempotently.
func (a *Aggregator) StoreChunkResult(ctx context.Context, result model.ChunkResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode chunk result")
	}

	key := TempResultKey(result.SessionID, result.ChunkIndex)
	if err := a.store.Put(ctx, a.bucket, key, data, "application/json"); err != nil {
		return apperrors.Wrapf(err, "failed to store chunk result %s", key)
	}

	a.logger.Info("stored chunk result",
		zap.String("sessionId", result.SessionID),
		zap.Int("chunkIndex", result.ChunkIndex))
	return nil
}

// Combine reads every stored chunk result of the session, orders them by
// chunk index, concatenates the non-placeholder texts and generates a
// summary. The SessionResult is persisted to the blob store and upserted as
// a FinishedRecording; temporary artifacts are cleaned up afterwards.
// Cleanup failures are logged, never fatal.
func (a *Aggregator) Combine(ctx context.Context, sessionID, userID string) (*model.SessionResult, error) {
	timer := time.Now()

	results, audioChunks, err := a.loadChunkResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		a.logger.Error("no results found for session", zap.String("sessionId", sessionID))
		return nil, ErrNoResults
	}

	// Canonical order comes from the typed chunk index, never from arrival
	// or listing order.
	sort.Slice(results, func(i, j int) bool {
		return results[i].ChunkIndex < results[j].ChunkIndex
	})

	texts := lo.FilterMap(results, func(r model.ChunkResult, _ int) (string, bool) {
		return r.Text, r.Text != "" && !r.IsPlaceholder()
	})
	combined := strings.Join(texts, " ")

	summary := a.summarize(ctx, sessionID, combined)

	now := time.Now()
	sessionResult := &model.SessionResult{
		SessionID:    sessionID,
		UserID:       userID,
		Timestamp:    now,
		Chunks:       results,
		CombinedText: combined,
		Summary:      summary,
	}

	if err := a.persistSessionResult(ctx, sessionResult); err != nil {
		return nil, err
	}
	if err := a.saveRecording(ctx, sessionResult, audioChunks, now); err != nil {
		// The blob-store artifact is already written; a record-store outage
		// should not lose the combined transcript.
		a.logger.Warn("failed to save finished recording", zap.Error(err))
	}

	a.cleanupTempResults(ctx, sessionID)

	metrics.SessionsCombined.Inc()
	metrics.CombineDuration.Observe(time.Since(timer).Seconds())
	return sessionResult, nil
}

// loadChunkResults lists and decodes every stored result for the session.
// Unreadable entries are skipped with a log line; a missing chunk is a valid
// state, not an error.
func (a *Aggregator) loadChunkResults(ctx context.Context, sessionID string) ([]model.ChunkResult, []string, error) {
	prefix := fmt.Sprintf("temp_results/%s/", sessionID)
	keys, err := a.store.List(ctx, a.bucket, prefix)
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "failed to list results for session %s", sessionID)
	}

	a.logger.Info("found result files for session",
		zap.String("sessionId", sessionID),
		zap.Int("count", len(keys)))

	var results []model.ChunkResult
	var audioChunks []string
	for _, key := range keys {
		data, err := a.store.Get(ctx, a.bucket, key)
		if err != nil {
			a.logger.Error("failed to read result file", zap.String("key", key), zap.Error(err))
			continue
		}
		var result model.ChunkResult
		if err := json.Unmarshal(data, &result); err != nil {
			a.logger.Error("failed to decode result file", zap.String("key", key), zap.Error(err))
			continue
		}
		results = append(results, result)
		if result.ChunkKey != "" {
			audioChunks = append(audioChunks, result.ChunkKey)
		}
	}
	return results, audioChunks, nil
}

// summarize generates the session summary, degrading to the deterministic
// default (generated title, truncated transcript) when the service fails.
func (a *Aggregator) summarize(ctx context.Context, sessionID, combined string) model.SummaryData {
	if strings.TrimSpace(combined) == "" {
		return model.SummaryData{}
	}

	a.logger.Info("generating summary for session", zap.String("sessionId", sessionID))
	summary, err := a.summarizer.Summarize(ctx, combined)
	if err != nil {
		a.logger.Error("summary generation failed, using default", zap.Error(err))
		metrics.SummarizerFallbacks.Inc()
		return model.SummaryData{
			Title:    defaultTitle(sessionID),
			Summary:  summarizer.Truncate(combined, 200),
			Keywords: []string{},
		}
	}
	return summary
}

func (a *Aggregator) persistSessionResult(ctx context.Context, result *model.SessionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode session result")
	}
	key := FinalResultKey(result.UserID, result.SessionID)
	if err := a.store.Put(ctx, a.bucket, key, data, "application/json"); err != nil {
		return apperrors.Wrapf(err, "failed to store session result %s", key)
	}
	return nil
}

// saveRecording upserts the FinishedRecording. The recording id equals the
// session id, so re-combining the same session overwrites its record.
func (a *Aggregator) saveRecording(ctx context.Context, result *model.SessionResult, audioChunks []string, now time.Time) error {
	totalDuration := lo.SumBy(result.Chunks, func(r model.ChunkResult) float64 {
		return r.Duration
	})

	title := result.Summary.Title
	if title == "" {
		title = defaultTitle(result.SessionID)
	}
	summary := result.Summary.Summary
	if summary == "" {
		summary = "要約なし"
	}
	keywords := result.Summary.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	rec := model.FinishedRecording{
		ID:               result.SessionID,
		UserID:           result.UserID,
		Title:            title,
		Date:             now.Format("2006-01-02"),
		StartTime:        now.Format("15:04:05"),
		Duration:         model.FormatDuration(totalDuration),
		Transcript:       result.CombinedText,
		Summary:          summary,
		Keywords:         keywords,
		AudioChunks:      audioChunks,
		ProcessingStatus: "COMPLETED",
		Timestamp:        now.Format(time.RFC3339),
	}
	return a.records.Put(ctx, rec)
}

func (a *Aggregator) cleanupTempResults(ctx context.Context, sessionID string) {
	prefix := fmt.Sprintf("temp_results/%s/", sessionID)
	keys, err := a.store.List(ctx, a.bucket, prefix)
	if err != nil {
		a.logger.Warn("failed to list temporary results for cleanup", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := a.store.Remove(ctx, a.bucket, keys); err != nil {
		a.logger.Warn("failed to clean up temporary results", zap.Error(err))
		return
	}
	a.logger.Info("cleaned up temporary results",
		zap.String("sessionId", sessionID),
		zap.Int("count", len(keys)))
}

func defaultTitle(sessionID string) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	return "録音_" + short
}
