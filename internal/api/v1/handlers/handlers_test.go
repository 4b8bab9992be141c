package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"koenote-pipeline/internal/api/middleware"
	"koenote-pipeline/internal/app/aggregator"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/pipeline"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
	"koenote-pipeline/internal/app/summarizer"
	"koenote-pipeline/internal/app/testutil"
)

const testBucket = "test-bucket"

type testEnv struct {
	router  *gin.Engine
	blobs   *blob.MemoryStore
	records *record.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	blobs := blob.NewMemoryStore()
	records := record.NewMemoryStore()
	logger := zap.NewNop()
	sum := summarizer.New(&testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"t","summary":"s","keywords":[]}`},
	}, 0, logger)
	agg := aggregator.New(blobs, records, sum, testBucket, logger)
	p := pipeline.New(blobs, testutil.NewMockTranscriber(), agg, nil, testBucket, "ja", logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))

	pipelineHandler := NewPipelineHandler(p)
	router.POST("/koenote/process-chunk", pipelineHandler.ProcessChunk)
	router.POST("/koenote/combine-results", pipelineHandler.CombineResults)
	router.GET("/koenote/process-status", pipelineHandler.ProcessStatus)
	router.GET("/koenote/intermediate-results", pipelineHandler.IntermediateResults)

	recordingsHandler := NewRecordingsHandler(records, blobs, testBucket)
	router.POST("/koenote/recordings", recordingsHandler.Save)
	router.GET("/koenote/recordings", recordingsHandler.List)
	router.GET("/koenote/recordings/:id", recordingsHandler.Get)
	router.DELETE("/koenote/recordings/:id", recordingsHandler.Delete)
	router.POST("/koenote/presigned-url", recordingsHandler.PresignedURL)

	return &testEnv{router: router, blobs: blobs, records: records}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestProcessChunkValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/koenote/process-chunk", map[string]interface{}{
		"sessionId": "session-1",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProcessChunkAnswersPlaceholderOnFailure(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/koenote/process-chunk", map[string]interface{}{
		"chunkKey":   "chunks/missing.webm",
		"sessionId":  "session-1",
		"chunkIndex": 0,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result model.ChunkResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.PlaceholderDownloadFailed, result.Text)
}

func TestCombineResultsNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/koenote/combine-results", map[string]interface{}{
		"sessionId": "no-such-session",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessStatusRequiresExecutionID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/koenote/process-status", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntermediateResultsNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/koenote/intermediate-results?key=temp_results/s/0.json", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntermediateResultsReturnsStoredArtifact(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.blobs.Put(context.Background(), testBucket,
		"temp_results/s/0.json", []byte(`{"text":"ok"}`), "application/json"))

	w := env.do(t, http.MethodGet, "/koenote/intermediate-results?key=temp_results/s/0.json", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"ok"}`, w.Body.String())
}

func TestSaveRecordingValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/koenote/recordings", map[string]interface{}{
		"title": "タイトルだけ",
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "id")
	assert.Contains(t, w.Body.String(), "user_id")
}

func TestRecordingsLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := map[string]interface{}{
		"id":      "rec-1",
		"user_id": "user-1",
		"title":   "会議の録音",
	}
	w := env.do(t, http.MethodPost, "/koenote/recordings", rec)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/koenote/recordings?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = env.do(t, http.MethodGet, "/koenote/recordings/rec-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "会議の録音")

	w = env.do(t, http.MethodDelete, "/koenote/recordings/rec-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/koenote/recordings/rec-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresignedURL(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/koenote/presigned-url", map[string]interface{}{
		"key": "chunks/session-1/0.webm",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.URL)
	assert.Equal(t, "chunks/session-1/0.webm", resp.Key)
}
