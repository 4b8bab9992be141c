package whisper

import (
	"context"
	stderrors "errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koenote-pipeline/internal/app/testutil"
)

func TestTranscribeRequestShape(t *testing.T) {
	api := &testutil.ScriptedAudioAPI{Text: "こんにちは。"}
	rt := NewRemoteTranscriber(api)

	text, err := rt.Transcribe(context.Background(), "/tmp/chunk.mp3", "ja")

	require.NoError(t, err)
	assert.Equal(t, "こんにちは。", text)

	require.Len(t, api.Requests, 1)
	req := api.Requests[0]
	assert.Equal(t, openai.Whisper1, req.Model)
	assert.Equal(t, "/tmp/chunk.mp3", req.FilePath)
	assert.Equal(t, "ja", req.Language)
	assert.Equal(t, Prompt, req.Prompt)
	assert.InDelta(t, 0.3, req.Temperature, 0.001)
}

func TestTranscribeError(t *testing.T) {
	api := &testutil.ScriptedAudioAPI{Err: stderrors.New("rate limited")}
	rt := NewRemoteTranscriber(api)

	_, err := rt.Transcribe(context.Background(), "/tmp/chunk.mp3", "ja")

	assert.Error(t, err)
}
