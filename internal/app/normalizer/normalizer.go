// Package normalizer cleans raw Whisper output: it bounds pathological
// phrase repetition and re-segments the text into readable paragraphs with
// speaker-turn heuristics tuned for Japanese dictation.
package normalizer

import (
	"regexp"
	"strings"

	"koenote-pipeline/internal/app/model"
)

// DefaultRepeatCap is the maximum number of consecutive identical segments
// kept during repetition cleaning.
const DefaultRepeatCap = 2

var (
	// Sentence-terminal punctuation not followed by a closing bracket/quote
	// starts a new line.
	sentenceBreakRe = regexp.MustCompile(`([。.!?])([^」』）\]】])`)

	// A long unbroken run after whitespace usually means run-on dictation
	// from a different speaker.
	longRunRe = regexp.MustCompile(`(\S{10,})\s+(\S)`)

	// Discourse markers that conventionally open a new speaker turn.
	speakerTurnRe = regexp.MustCompile(`((?:はい|えーと|あの|そうですね|なるほど)[\s,、])`)

	// Punctuation followed directly by text gets a space for readability.
	spacingRe = regexp.MustCompile(`([。.!?、,])([^\s」』）\]】])`)

	sentenceRe = regexp.MustCompile(`[^、。,.!?]+[、。,.!?]`)
)

func isSegmentPunct(r rune) bool {
	switch r {
	case '、', '。', ',', '.', '!', '?':
		return true
	}
	return false
}

// splitSegments splits text into phrase/punctuation pairs on Japanese and
// ASCII sentence punctuation. The final phrase may carry no punctuation.
func splitSegments(text string) (phrases []string, puncts []string) {
	var current strings.Builder
	for _, r := range text {
		if isSegmentPunct(r) {
			phrases = append(phrases, current.String())
			puncts = append(puncts, string(r))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		phrases = append(phrases, current.String())
		puncts = append(puncts, "")
	}
	return phrases, puncts
}

// CleanRepeatedPhrases drops pathological "stuck" repetition produced by the
// transcription model. A segment identical to the immediately preceding one
// is kept only while at most DefaultRepeatCap consecutive copies have been
// emitted; the counter resets whenever the segment changes. The operation is
// idempotent.
func CleanRepeatedPhrases(text string) string {
	return cleanRepeatedPhrases(text, DefaultRepeatCap)
}

func cleanRepeatedPhrases(text string, maxRepeats int) string {
	if text == "" {
		return text
	}

	phrases, puncts := splitSegments(text)

	var cleaned strings.Builder
	lastPhrase := ""
	repeatCount := 0

	for i, raw := range phrases {
		phrase := strings.TrimSpace(raw)
		if phrase == "" {
			continue
		}

		if phrase == lastPhrase {
			repeatCount++
			if repeatCount <= maxRepeats {
				cleaned.WriteString(phrase)
				cleaned.WriteString(puncts[i])
			}
			continue
		}

		repeatCount = 1
		lastPhrase = phrase
		cleaned.WriteString(phrase)
		cleaned.WriteString(puncts[i])
	}

	return cleaned.String()
}

// Format cleans repetition and re-segments the transcript into paragraphs:
// line breaks after sentence-terminal punctuation, before long word runs and
// before speaker-turn markers, then non-empty paragraphs joined with a blank
// line.
func Format(text string) string {
	if text == "" {
		return text
	}

	text = CleanRepeatedPhrases(text)

	text = sentenceBreakRe.ReplaceAllString(text, "$1\n$2")
	text = longRunRe.ReplaceAllString(text, "$1\n$2")
	text = speakerTurnRe.ReplaceAllString(text, "\n$1")

	var formatted []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		paragraph = spacingRe.ReplaceAllString(paragraph, "$1 $2")
		formatted = append(formatted, strings.TrimSpace(paragraph))
	}

	return strings.Join(formatted, "\n\n")
}

// StructureSentences extracts punctuation-delimited sentences from formatted
// text. Start and end times are reserved fields and stay zero.
func StructureSentences(text string) []model.Sentence {
	if text == "" {
		return nil
	}

	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]model.Sentence, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		sentences = append(sentences, model.Sentence{Text: m})
	}
	return sentences
}
