package pipeline

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/aggregator"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
	"koenote-pipeline/internal/app/summarizer"
	"koenote-pipeline/internal/app/testutil"
	"koenote-pipeline/internal/app/workflow"
)

const testBucket = "test-bucket"

func newTestPipeline(workflows workflow.Client) (*Pipeline, *blob.MemoryStore) {
	blobs := blob.NewMemoryStore()
	records := record.NewMemoryStore()
	sum := summarizer.New(&testutil.ScriptedChatAPI{}, 0, zap.NewNop())
	agg := aggregator.New(blobs, records, sum, testBucket, zap.NewNop())
	p := New(blobs, testutil.NewMockTranscriber(), agg, workflows, testBucket, "ja", zap.NewNop())
	return p, blobs
}

func TestProcessChunkDownloadFailure(t *testing.T) {
	p, _ := newTestPipeline(nil)

	result := p.ProcessChunk(context.Background(), model.Chunk{
		ChunkKey:   "chunks/missing.webm",
		SessionID:  "session-1",
		ChunkIndex: 0,
	})

	assert.Equal(t, model.PlaceholderDownloadFailed, result.Text)
	assert.True(t, result.IsPlaceholder())
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 0, result.ChunkIndex)
	assert.Equal(t, "session-1", result.SessionID)
}

func TestProcessChunkDownloadFailureLeavesNoTempFiles(t *testing.T) {
	p, _ := newTestPipeline(nil)

	before := tempFileCount(t)
	p.ProcessChunk(context.Background(), model.Chunk{
		ChunkKey:   "chunks/missing.webm",
		SessionID:  "session-1",
		ChunkIndex: 0,
	})
	after := tempFileCount(t)

	assert.LessOrEqual(t, after, before)
}

func tempFileCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	count := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".webm") {
			count++
		}
	}
	return count
}

func TestProcessAndStorePersistsPlaceholder(t *testing.T) {
	p, blobs := newTestPipeline(nil)

	p.ProcessAndStore(context.Background(), model.Chunk{
		ChunkKey:   "chunks/missing.webm",
		SessionID:  "session-2",
		ChunkIndex: 3,
	})

	data, err := blobs.Get(context.Background(), testBucket,
		aggregator.TempResultKey("session-2", 3))
	require.NoError(t, err)
	assert.Contains(t, string(data), model.PlaceholderDownloadFailed)
}

func TestProcessRecordingStartsWorkflow(t *testing.T) {
	fake := &testutil.FakeWorkflowClient{ExecutionID: "exec-42"}
	p, _ := newTestPipeline(fake)

	resp, err := p.ProcessRecording(context.Background(), ProcessRequest{
		AudioKeys: []string{"chunks/0.webm", "chunks/1.webm"},
		SessionID: "session-3",
		UserID:    "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, workflow.StatusProcessing, resp.Status)
	assert.Equal(t, "exec-42", resp.ExecutionID)
	require.Len(t, fake.Started, 1)
	assert.Equal(t, []string{"chunks/0.webm", "chunks/1.webm"}, fake.Started[0].AudioKeys)
	assert.Equal(t, testBucket, fake.Started[0].Bucket)
}

func TestProcessRecordingFallsBackWhenStartFails(t *testing.T) {
	fake := &testutil.FakeWorkflowClient{StartErr: stderrors.New("frontend unreachable")}
	p, _ := newTestPipeline(fake)

	resp, err := p.ProcessRecording(context.Background(), ProcessRequest{
		AudioKeys: []string{"chunks/0.webm"},
		SessionID: "session-4",
		UserID:    "user-1",
	})

	// Both chunks fail to download, but the synchronous path still combines
	// the stored placeholder results into a SessionResult.
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Chunks, 1)
	assert.Empty(t, resp.Result.CombinedText)
}

func TestProcessRecordingSynchronousWithoutOrchestrator(t *testing.T) {
	p, _ := newTestPipeline(nil)

	resp, err := p.ProcessRecording(context.Background(), ProcessRequest{
		AudioKeys: []string{"chunks/0.webm", "chunks/1.webm"},
		UserID:    "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Chunks, 2)
	// A session id was generated for the caller.
	assert.NotEmpty(t, resp.Result.SessionID)
}

func TestProcessRecordingRequiresAudioKeys(t *testing.T) {
	p, _ := newTestPipeline(nil)

	_, err := p.ProcessRecording(context.Background(), ProcessRequest{})

	assert.Error(t, err)
}

func TestCheckStatusWithoutOrchestrator(t *testing.T) {
	p, _ := newTestPipeline(nil)

	_, err := p.CheckStatus(context.Background(), "exec-1")

	assert.Error(t, err)
}

func TestCheckStatus(t *testing.T) {
	fake := &testutil.FakeWorkflowClient{
		Status: workflow.StatusCompleted,
		Output: []byte(`{"sessionId":"session-5"}`),
	}
	p, _ := newTestPipeline(fake)

	status, err := p.CheckStatus(context.Background(), "exec-1")

	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, status.Status)
	assert.JSONEq(t, `{"sessionId":"session-5"}`, string(status.Result))
}

func TestIntermediateResults(t *testing.T) {
	p, blobs := newTestPipeline(nil)
	ctx := context.Background()

	require.NoError(t, blobs.Put(ctx, testBucket, "temp_results/s/0.json",
		[]byte(`{"text":"hello"}`), "application/json"))

	data, err := p.IntermediateResults(ctx, "temp_results/s/0.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(data))

	_, err = p.IntermediateResults(ctx, "temp_results/s/1.json")
	assert.True(t, stderrors.Is(err, blob.ErrNotFound))

	_, err = p.IntermediateResults(ctx, "")
	assert.Error(t, err)
}

func TestTempResultKeyLayout(t *testing.T) {
	assert.Equal(t, "temp_results/session-1/4.json", aggregator.TempResultKey("session-1", 4))
	assert.Equal(t, "final_results/user-1/session-1.json", aggregator.FinalResultKey("user-1", "session-1"))
}
