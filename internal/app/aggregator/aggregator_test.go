package aggregator

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
	"koenote-pipeline/internal/app/summarizer"
	"koenote-pipeline/internal/app/testutil"
)

const testBucket = "test-bucket"

type fixture struct {
	aggregator *Aggregator
	blobs      *blob.MemoryStore
	records    *record.MemoryStore
	chat       *testutil.ScriptedChatAPI
}

func newFixture(chat *testutil.ScriptedChatAPI) *fixture {
	blobs := blob.NewMemoryStore()
	records := record.NewMemoryStore()
	sum := summarizer.New(chat, 0, zap.NewNop())
	return &fixture{
		aggregator: New(blobs, records, sum, testBucket, zap.NewNop()),
		blobs:      blobs,
		records:    records,
		chat:       chat,
	}
}

func storeChunk(t *testing.T, f *fixture, sessionID string, index int, text string, duration float64) {
	t.Helper()
	err := f.aggregator.StoreChunkResult(context.Background(), model.ChunkResult{
		ChunkKey:   "chunks/audio.webm",
		SessionID:  sessionID,
		ChunkIndex: index,
		Text:       text,
		Duration:   duration,
	})
	require.NoError(t, err)
}

func TestCombineOrdersByChunkIndex(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"挨拶","summary":"挨拶をした。","keywords":[]}`},
	})

	// Stored out of order; the typed index defines the canonical order.
	storeChunk(t, f, "session-1", 1, "こんにちは。", 10)
	storeChunk(t, f, "session-1", 0, "はい、お願いします。", 10)

	result, err := f.aggregator.Combine(context.Background(), "session-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "はい、お願いします。 こんにちは。", result.CombinedText)
	assert.Equal(t, 0, result.Chunks[0].ChunkIndex)
	assert.Equal(t, 1, result.Chunks[1].ChunkIndex)
}

func TestCombinePlaceholdersExcludedFromTranscript(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"会議","summary":"要約。","keywords":[]}`},
	})

	storeChunk(t, f, "session-2", 0, "本題に入ります。", 10)
	storeChunk(t, f, "session-2", 1, model.PlaceholderInvalidAudio, 30)
	storeChunk(t, f, "session-2", 2, "以上です。", 10)

	result, err := f.aggregator.Combine(context.Background(), "session-2", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "本題に入ります。 以上です。", result.CombinedText)
	// The placeholder chunk is still present in the ordered chunk list.
	assert.Len(t, result.Chunks, 3)
	assert.Equal(t, model.PlaceholderInvalidAudio, result.Chunks[1].Text)
}

func TestCombineNoResults(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{})

	_, err := f.aggregator.Combine(context.Background(), "missing-session", "user-1")

	assert.True(t, stderrors.Is(err, ErrNoResults))
}

func TestCombineSummarizerFailureFallsBack(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{Err: stderrors.New("quota exceeded")})

	sessionID := "abcdef1234567890"
	storeChunk(t, f, sessionID, 0, "これはとても長い会話の文字起こしです。要約が必要です。", 60)

	result, err := f.aggregator.Combine(context.Background(), sessionID, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "録音_abcdef12", result.Summary.Title)
	assert.Equal(t, result.CombinedText, result.Summary.Summary)
	assert.Empty(t, result.Summary.Keywords)
}

func TestCombinePersistsFinalResultAndRecording(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"定例会議","summary":"進捗を確認した。","keywords":[]}`},
	})

	storeChunk(t, f, "session-3", 0, "進捗を確認しましょう。", 3700)

	_, err := f.aggregator.Combine(context.Background(), "session-3", "user-9")
	require.NoError(t, err)

	data, err := f.blobs.Get(context.Background(), testBucket, FinalResultKey("user-9", "session-3"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	rec, err := f.records.Get(context.Background(), "session-3")
	require.NoError(t, err)
	assert.Equal(t, "定例会議", rec.Title)
	assert.Equal(t, "user-9", rec.UserID)
	assert.Equal(t, "01:01:40", rec.Duration)
	assert.Equal(t, "COMPLETED", rec.ProcessingStatus)
}

func TestCombineCleansUpTempResults(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"t","summary":"s","keywords":[]}`},
	})

	storeChunk(t, f, "session-4", 0, "お疲れ様でした。", 5)

	_, err := f.aggregator.Combine(context.Background(), "session-4", "user-1")
	require.NoError(t, err)

	keys, err := f.blobs.List(context.Background(), testBucket, "temp_results/session-4/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRecombinationIsIdempotent(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"t","summary":"s","keywords":[]}`},
	})

	storeChunk(t, f, "session-5", 0, "一度目の結合です。", 5)
	first, err := f.aggregator.Combine(context.Background(), "session-5", "user-1")
	require.NoError(t, err)

	// Re-store and re-combine the same session; the record is upserted
	// under the same id.
	storeChunk(t, f, "session-5", 0, "一度目の結合です。", 5)
	second, err := f.aggregator.Combine(context.Background(), "session-5", "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.CombinedText, second.CombinedText)

	recordings, err := f.records.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)

	count := 0
	for _, rec := range recordings {
		if rec.ID == "session-5" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStoreChunkResultOverwrites(t *testing.T) {
	f := newFixture(&testutil.ScriptedChatAPI{})

	storeChunk(t, f, "session-6", 0, "最初の結果。", 5)
	storeChunk(t, f, "session-6", 0, "再試行の結果。", 5)

	keys, err := f.blobs.List(context.Background(), testBucket, "temp_results/session-6/")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}
