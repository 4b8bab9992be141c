package whisper

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Prompt biases the model toward per-speaker sentence breaks and proper
// punctuation for Japanese meeting recordings.
const Prompt = "これは会議や会話の録音です。話者ごとに文を区切り、句読点を適切に入れてください。「はい」「えーと」などの新しい発言の始まりには改行を入れてください。"

// AudioAPI is the slice of the OpenAI client used for transcription.
type AudioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// RemoteTranscriber implements transcription via the OpenAI Whisper API.
type RemoteTranscriber struct {
	client AudioAPI
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client AudioAPI) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// Transcribe sends the file to the Whisper API with the domain prompt.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, inputFilePath string, language string) (string, error) {
	req := openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    inputFilePath,
		Language:    language,
		Prompt:      Prompt,
		Temperature: 0.3,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("createTranscription failed: %w", err)
	}

	return resp.Text, nil
}
