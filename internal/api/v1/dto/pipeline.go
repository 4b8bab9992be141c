// Package dto defines the request and response bodies of the v1 API.
package dto

import (
	"koenote-pipeline/internal/app/model"
)

// ProcessChunkRequest asks for one uploaded chunk to be processed.
type ProcessChunkRequest struct {
	ChunkKey   string `json:"chunkKey" binding:"required"`
	Bucket     string `json:"bucket"`
	SessionID  string `json:"sessionId" binding:"required"`
	ChunkIndex int    `json:"chunkIndex" binding:"min=0"`
}

// ToChunk converts the request into the pipeline's chunk identity.
func (r ProcessChunkRequest) ToChunk() model.Chunk {
	return model.Chunk{
		ChunkKey:   r.ChunkKey,
		Bucket:     r.Bucket,
		SessionID:  r.SessionID,
		ChunkIndex: r.ChunkIndex,
	}
}

// ProcessAudioRequest asks for a whole recording to be processed.
type ProcessAudioRequest struct {
	AudioKeys []string `json:"audioKeys" binding:"required,min=1"`
	Bucket    string   `json:"bucket"`
	UserID    string   `json:"userId"`
	SessionID string   `json:"sessionId"`
	AudioURL  string   `json:"audioUrl"`
}

// CombineResultsRequest asks for a session's stored chunk results to be
// combined into the final transcript.
type CombineResultsRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	UserID    string `json:"userId"`
}

// PresignedURLRequest asks for a direct-upload URL for one chunk.
type PresignedURLRequest struct {
	Key         string `json:"key" binding:"required"`
	ContentType string `json:"contentType"`
}

// PresignedURLResponse carries the upload URL for a chunk.
type PresignedURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// RecordingsResponse lists a user's finished recordings.
type RecordingsResponse struct {
	Recordings []model.FinishedRecording `json:"recordings"`
	Count      int                       `json:"count"`
}
