package summarizer

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"koenote-pipeline/internal/app/testutil"
)

func newTestSummarizer(api ChatAPI, budget int) *Summarizer {
	return New(api, budget, zap.NewNop())
}

func TestSummarizeBlankInputSkipsService(t *testing.T) {
	api := &testutil.ScriptedChatAPI{}
	s := newTestSummarizer(api, 0)

	for _, input := range []string{"", "   ", "短い"} {
		data, err := s.Summarize(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, FallbackTitle, data.Title)
		assert.Empty(t, data.Summary)
		assert.Empty(t, data.Keywords)
	}
	assert.Zero(t, api.CallCount(), "blank input must not call the service")
}

func TestSummarizeSinglePass(t *testing.T) {
	api := &testutil.ScriptedChatAPI{
		Arguments: []string{
			`{"product_name":"","call_reason":""}`,
			`{"title":"打ち合わせ","summary":"新製品の発売日を決めた。","keywords":["発売日"]}`,
		},
	}
	s := newTestSummarizer(api, 0)

	text := strings.Repeat("新製品の発売日について話し合いました。", 5)
	data, err := s.Summarize(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, "打ち合わせ", data.Title)
	assert.Equal(t, "新製品の発売日を決めた。", data.Summary)
	// Keyword extraction found nothing, so the list stays empty.
	assert.Empty(t, data.Keywords)
	assert.Equal(t, 2, api.CallCount())
}

func TestSummarizeWindowsOversizedInput(t *testing.T) {
	api := &testutil.ScriptedChatAPI{
		Arguments: []string{`{"title":"会議","summary":"要点。","keywords":[]}`},
	}
	s := newTestSummarizer(api, 100)

	text := strings.Repeat("あ", 250) + "。" + strings.Repeat("い", 100)
	data, err := s.Summarize(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, "会議", data.Title)
	// 4 windows of 100 runes, each with an extraction and a summary request,
	// plus the final pass over the joined window summaries.
	assert.Greater(t, api.CallCount(), 4)
}

func TestSummarizeServiceFailureReturnsFallback(t *testing.T) {
	api := &testutil.ScriptedChatAPI{Err: stderrors.New("service unavailable")}
	s := newTestSummarizer(api, 0)

	text := strings.Repeat("長い文字起こしテキストです。", 30)
	data, err := s.Summarize(context.Background(), text)

	require.Error(t, err)
	assert.Equal(t, FallbackTitle, data.Title)
	assert.Equal(t, Truncate(text, 200), data.Summary)
	assert.Empty(t, data.Keywords)
}

func TestExtractKeywordsLexiconOnly(t *testing.T) {
	api := &testutil.ScriptedChatAPI{}
	s := newTestSummarizer(api, 0)

	keywords := s.ExtractKeywords(context.Background(),
		"スーパーブレイン3000が壊れてしまったので連絡しました。")

	assert.Equal(t, []string{"プロダクト＝Super Brain 3000", "通話理由 = クレーム"}, keywords)
	assert.Zero(t, api.CallCount(), "lexicon hits must not call the service")
}

func TestExtractKeywordsConsultsServiceForUnmatchedFields(t *testing.T) {
	api := &testutil.ScriptedChatAPI{
		Arguments: []string{`{"product_name":"イヤホンX","call_reason":"問い合わせ"}`},
	}
	s := newTestSummarizer(api, 0)

	keywords := s.ExtractKeywords(context.Background(),
		"この商品の使い方を教えてください。")

	assert.Equal(t, []string{"プロダクト＝イヤホンX", "通話理由 = 問い合わせ"}, keywords)
	assert.Equal(t, 1, api.CallCount())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "あいう...", Truncate("あいうえお", 3))
	assert.Equal(t, "あいうえお", Truncate("あいうえお", 5))
}
