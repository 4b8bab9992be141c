package model

import (
	"fmt"
	"strings"
	"time"
)

// Chunk identifies one uploaded audio segment of a recording session.
// It is created by the caller and never mutated by the pipeline.
type Chunk struct {
	ChunkKey   string `json:"chunkKey"`
	Bucket     string `json:"bucket"`
	SessionID  string `json:"sessionId"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Sentence is one punctuation-delimited sentence of a formatted transcript.
// StartTime and EndTime are reserved; no time alignment is computed yet.
type Sentence struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// ChunkResult is the durable per-chunk artifact, keyed by (session, index).
// A failed chunk still produces one with a bracketed placeholder text so the
// index space stays contiguous.
type ChunkResult struct {
	ChunkKey   string     `json:"chunk"`
	SessionID  string     `json:"session_id"`
	ChunkIndex int        `json:"chunk_index"`
	Text       string     `json:"text"`
	Sentences  []Sentence `json:"structured_sentences,omitempty"`
	Duration   float64    `json:"duration,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Placeholder texts used when a chunk cannot be processed.
const (
	PlaceholderDownloadFailed = "[Download failed]"
	PlaceholderInvalidAudio   = "[Invalid audio file]"
)

// PlaceholderTranscriptionFailed builds the placeholder text for a failed
// transcription call, carrying the error message.
func PlaceholderTranscriptionFailed(err error) string {
	return fmt.Sprintf("[Transcription failed: %v]", err)
}

// IsPlaceholder reports whether the result text is a failure marker rather
// than real transcript content.
func (r ChunkResult) IsPlaceholder() bool {
	return strings.HasPrefix(r.Text, "[")
}

// SummaryData is the structured summary derived from a combined transcript.
type SummaryData struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// SessionResult is the terminal artifact of combining a session's chunks.
type SessionResult struct {
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	Timestamp    time.Time     `json:"timestamp"`
	Chunks       []ChunkResult `json:"chunks"`
	CombinedText string        `json:"combinedText"`
	Summary      SummaryData   `json:"summary"`
}

// FinishedRecording is the record-store entry for a completed session.
// ID equals the session ID, so re-combining the same session upserts the
// same record.
type FinishedRecording struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Title            string   `json:"title"`
	Date             string   `json:"date"`
	StartTime        string   `json:"start_time"`
	Duration         string   `json:"duration"`
	Transcript       string   `json:"transcript"`
	Summary          string   `json:"summary"`
	Keywords         []string `json:"keywords"`
	AudioURL         string   `json:"audioUrl,omitempty"`
	AudioChunks      []string `json:"audioChunks,omitempty"`
	ProcessingStatus string   `json:"processingStatus"`
	Timestamp        string   `json:"timestamp"`
}

// FormatDuration renders a duration in seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
