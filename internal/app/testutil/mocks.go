// Package testutil provides configurable fakes for the pipeline's external
// services: the transcription API, the chat completion API and the workflow
// orchestrator.
package testutil

import (
	"context"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"koenote-pipeline/internal/app/workflow"
)

// MockTranscriber implements transcriber.Transcriber with per-file scripted
// responses. Safe for concurrent use.
type MockTranscriber struct {
	mu sync.Mutex

	DefaultResponse string
	DefaultError    error
	Responses       map[string]string
	Errors          map[string]error

	CallCount int
	Calls     []string
}

// NewMockTranscriber creates a MockTranscriber with an empty script.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		DefaultResponse: "テスト文字起こし結果です。",
		Responses:       make(map[string]string),
		Errors:          make(map[string]error),
	}
}

// SetResponse scripts a response for one input path.
func (m *MockTranscriber) SetResponse(path, response string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[path] = response
	return m
}

// SetError scripts an error for one input path.
func (m *MockTranscriber) SetError(path string, err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[path] = err
	return m
}

func (m *MockTranscriber) Transcribe(_ context.Context, inputFilePath, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Calls = append(m.Calls, inputFilePath)

	if err, ok := m.Errors[inputFilePath]; ok {
		return "", err
	}
	if m.DefaultError != nil {
		return "", m.DefaultError
	}
	if resp, ok := m.Responses[inputFilePath]; ok {
		return resp, nil
	}
	return m.DefaultResponse, nil
}

// ScriptedChatAPI implements summarizer.ChatAPI, replaying scripted function
// call arguments in order and recording every request for inspection.
type ScriptedChatAPI struct {
	mu sync.Mutex

	// Arguments are the raw JSON function-call arguments to return, consumed
	// in order. The last entry is repeated once exhausted.
	Arguments []string
	Err       error

	Requests []openai.ChatCompletionRequest
}

func (s *ScriptedChatAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)

	if s.Err != nil {
		return openai.ChatCompletionResponse{}, s.Err
	}

	args := "{}"
	if len(s.Arguments) > 0 {
		idx := len(s.Requests) - 1
		if idx >= len(s.Arguments) {
			idx = len(s.Arguments) - 1
		}
		args = s.Arguments[idx]
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				FunctionCall: &openai.FunctionCall{Arguments: args},
			},
		}},
	}, nil
}

// CallCount returns how many chat completions were requested.
func (s *ScriptedChatAPI) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// ScriptedAudioAPI implements whisper.AudioAPI with a fixed text or error.
type ScriptedAudioAPI struct {
	mu sync.Mutex

	Text string
	Err  error

	Requests []openai.AudioRequest
}

func (s *ScriptedAudioAPI) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return openai.AudioResponse{}, s.Err
	}
	return openai.AudioResponse{Text: s.Text}, nil
}

// FakeWorkflowClient implements workflow.Client with canned values.
type FakeWorkflowClient struct {
	mu sync.Mutex

	StartErr    error
	ExecutionID string
	Status      workflow.Status
	Output      []byte
	Events      []workflow.Event

	Started []workflow.SessionRequest
}

func (f *FakeWorkflowClient) StartSession(_ context.Context, req workflow.SessionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StartErr != nil {
		return "", f.StartErr
	}
	f.Started = append(f.Started, req)
	if f.ExecutionID != "" {
		return f.ExecutionID, nil
	}
	return "execution-" + req.SessionID, nil
}

func (f *FakeWorkflowClient) Describe(_ context.Context, _ string) (workflow.Status, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Status, f.Output, nil
}

func (f *FakeWorkflowClient) History(_ context.Context, _ string) ([]workflow.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Events, nil
}

func (f *FakeWorkflowClient) Close() {}
