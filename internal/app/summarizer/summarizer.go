// Package summarizer derives {title, summary, keywords} from a combined
// transcript. Oversized transcripts are split into fixed-size windows that
// are summarized independently, with at most one re-summarization pass over
// the concatenation. Callers always receive a well-formed SummaryData.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/model"
)

// DefaultBudget is the character budget (in runes) above which a transcript
// is windowed before summarization.
const DefaultBudget = 4000

// FallbackTitle is used when the summarization service yields no title.
const FallbackTitle = "無題"

const (
	summarySystemPrompt = "あなたは会議の録音から要約を生成する専門家です。"
	extractSystemPrompt = "あなたは顧客の問い合わせから製品名と問い合わせ理由を特定する専門家です。"
)

// ChatAPI is the slice of the OpenAI client used for summarization.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer generates structured summaries via the chat completion API.
type Summarizer struct {
	client ChatAPI
	budget int
	logger *zap.Logger
}

// New creates a Summarizer. A non-positive budget selects DefaultBudget.
func New(client ChatAPI, budget int, logger *zap.Logger) *Summarizer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Summarizer{
		client: client,
		budget: budget,
		logger: logger,
	}
}

var summarySchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title": {
			Type:        jsonschema.String,
			Description: "A concise title for the meeting",
		},
		"summary": {
			Type:        jsonschema.String,
			Description: "A summary of the meeting content",
		},
		"keywords": {
			Type:        jsonschema.Array,
			Items:       &jsonschema.Definition{Type: jsonschema.String},
			Description: "Key topics or terms from the meeting",
		},
	},
	Required: []string{"title", "summary", "keywords"},
}

var extractSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"product_name": {
			Type:        jsonschema.String,
			Description: "The name of the product mentioned in the text",
		},
		"call_reason": {
			Type:        jsonschema.String,
			Description: "The reason for the call (e.g., クレーム, 問い合わせ, 返品)",
		},
	},
	Required: []string{"product_name", "call_reason"},
}

// Summarize produces a SummaryData for the given transcript. Texts below the
// budget are summarized in a single request; larger texts are windowed and
// re-summarized at most once. The returned SummaryData is always well-formed:
// on service failure it holds the component fallback and the error is
// reported alongside so callers can apply their own policy.
func (s *Summarizer) Summarize(ctx context.Context, text string) (model.SummaryData, error) {
	if isBlank(text) {
		return model.SummaryData{Title: FallbackTitle, Summary: "", Keywords: []string{}}, nil
	}

	runes := []rune(text)
	if len(runes) <= s.budget {
		return s.summarizeOnce(ctx, text)
	}

	windows := splitWindows(runes, s.budget)
	s.logger.Info("splitting text for summary generation",
		zap.Int("windows", len(windows)),
		zap.Int("length", len(runes)))

	summaries := make([]string, 0, len(windows))
	for i, window := range windows {
		s.logger.Info("summarizing window",
			zap.Int("window", i+1),
			zap.Int("total", len(windows)))
		data, err := s.summarizeOnce(ctx, window)
		if err != nil {
			s.logger.Warn("window summary failed, keeping fallback text", zap.Error(err))
		}
		summaries = append(summaries, data.Summary)
	}

	combined := strings.Join(summaries, " ")
	if len([]rune(combined)) > s.budget {
		// One bounded re-summarization pass, never unbounded recursion.
		s.logger.Info("combined summaries still over budget, summarizing once more")
		combined = string([]rune(combined)[:s.budget])
	}
	return s.summarizeOnce(ctx, combined)
}

// summarizeOnce issues a single schema-constrained request. On failure it
// returns the deterministic fallback together with the error.
func (s *Summarizer) summarizeOnce(ctx context.Context, text string) (model.SummaryData, error) {
	if isBlank(text) {
		return model.SummaryData{Title: FallbackTitle, Summary: "", Keywords: []string{}}, nil
	}

	keywords := s.ExtractKeywords(ctx, text)

	req := openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("以下の文字起こしから、タイトル、要約、キーワードを抽出してください。\n\n%s", text)},
		},
		Functions: []openai.FunctionDefinition{{
			Name:        "generate_summary",
			Description: "Generate a summary from meeting transcript",
			Parameters:  summarySchema,
		}},
		FunctionCall: openai.FunctionCall{Name: "generate_summary"},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		return fallbackSummary(text, keywords), err
	}

	call := functionCall(resp)
	if call == nil {
		return model.SummaryData{Title: FallbackTitle, Summary: "", Keywords: keywords}, nil
	}

	var data model.SummaryData
	if err := json.Unmarshal([]byte(call.Arguments), &data); err != nil {
		s.logger.Warn("failed to decode summary arguments, using fallback", zap.Error(err))
		return fallbackSummary(text, keywords), err
	}

	if data.Title == "" {
		data.Title = FallbackTitle
	}
	// The formatted subject/reason pair replaces the model's free keywords.
	data.Keywords = keywords
	return data, nil
}

// ExtractKeywords identifies the subject product and the call reason for the
// transcript. The static lexicon is consulted first; the service is asked
// only for fields the lexicon could not match. The result is formatted as
// display strings for the keyword list.
func (s *Summarizer) ExtractKeywords(ctx context.Context, text string) []string {
	product := matchLexicon(text, productLexicon)
	reason := matchLexicon(text, callReasonLexicon)

	if product == "" || reason == "" {
		extracted := s.extractSubjectReason(ctx, text)
		if product == "" {
			product = extracted.ProductName
		}
		if reason == "" {
			reason = extracted.CallReason
		}
	}

	keywords := []string{}
	if product != "" {
		keywords = append(keywords, fmt.Sprintf("プロダクト＝%s", product))
	}
	if reason != "" {
		keywords = append(keywords, fmt.Sprintf("通話理由 = %s", reason))
	}
	return keywords
}

type extractedInfo struct {
	ProductName string `json:"product_name"`
	CallReason  string `json:"call_reason"`
}

func (s *Summarizer) extractSubjectReason(ctx context.Context, text string) extractedInfo {
	if isBlank(text) {
		return extractedInfo{}
	}

	req := openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("以下のテキストから、製品名と問い合わせ理由（クレーム、問い合わせ、返品など）を特定してください。\n\n%s", text)},
		},
		Functions: []openai.FunctionDefinition{{
			Name:        "extract_info",
			Description: "Extract product name and call reason from customer inquiry",
			Parameters:  extractSchema,
		}},
		FunctionCall: openai.FunctionCall{Name: "extract_info"},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.logger.Warn("subject/reason extraction failed", zap.Error(err))
		return extractedInfo{}
	}

	call := functionCall(resp)
	if call == nil {
		return extractedInfo{}
	}

	var info extractedInfo
	if err := json.Unmarshal([]byte(call.Arguments), &info); err != nil {
		s.logger.Warn("failed to decode extraction arguments", zap.Error(err))
		return extractedInfo{}
	}
	return info
}

func functionCall(resp openai.ChatCompletionResponse) *openai.FunctionCall {
	if len(resp.Choices) == 0 {
		return nil
	}
	return resp.Choices[0].Message.FunctionCall
}

func fallbackSummary(text string, keywords []string) model.SummaryData {
	return model.SummaryData{
		Title:    FallbackTitle,
		Summary:  Truncate(text, 200),
		Keywords: keywords,
	}
}

// Truncate shortens text to at most limit runes, appending an ellipsis
// marker when content was cut.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// isBlank reports whether the text is too short to summarize meaningfully.
func isBlank(text string) bool {
	return len([]rune(strings.TrimSpace(text))) < 10
}

func splitWindows(runes []rune, size int) []string {
	var windows []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}

func containsKeyword(text, keyword string) bool {
	return strings.Contains(text, keyword)
}
