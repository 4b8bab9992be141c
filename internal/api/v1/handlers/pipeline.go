// Package handlers implements the v1 HTTP endpoints.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"koenote-pipeline/internal/api/errors"
	"koenote-pipeline/internal/api/middleware"
	"koenote-pipeline/internal/api/v1/dto"
	apperrors "koenote-pipeline/internal/app/errors"
	"koenote-pipeline/internal/app/pipeline"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/workflow"
)

// PipelineHandler exposes chunk processing, recording processing and
// execution inspection.
type PipelineHandler struct {
	pipeline *pipeline.Pipeline
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(p *pipeline.Pipeline) *PipelineHandler {
	return &PipelineHandler{pipeline: p}
}

// ProcessChunk handles POST /koenote/process-chunk. Processing failures
// still answer 200 with a placeholder result; only invalid requests fail.
func (h *PipelineHandler) ProcessChunk(c *gin.Context) {
	var req dto.ProcessChunkRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	result := h.pipeline.ProcessAndStore(c.Request.Context(), req.ToChunk())
	c.JSON(http.StatusOK, result)
}

// ProcessAudio handles POST /koenote/process-audio. With an orchestrator it
// answers 202 and an execution id; on the synchronous fallback path it
// answers 200 with the finished session.
func (h *PipelineHandler) ProcessAudio(c *gin.Context) {
	var req dto.ProcessAudioRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.pipeline.ProcessRecording(c.Request.Context(), pipeline.ProcessRequest{
		AudioKeys: req.AudioKeys,
		Bucket:    req.Bucket,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		AudioURL:  req.AudioURL,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError(err.Error()))
		return
	}

	if resp.Status == workflow.StatusProcessing {
		c.JSON(http.StatusAccepted, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CombineResults handles POST /koenote/combine-results.
func (h *PipelineHandler) CombineResults(c *gin.Context) {
	var req dto.CombineResultsRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.UserID == "" {
		req.UserID = "default"
	}

	result, err := h.pipeline.Combine(c.Request.Context(), req.SessionID, req.UserID)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrNoResults) {
			middleware.HandleError(c, errors.NewNotFoundError("session results"))
			return
		}
		middleware.HandleError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProcessStatus handles GET /koenote/process-status?executionId=...
func (h *PipelineHandler) ProcessStatus(c *gin.Context) {
	executionID := c.Query("executionId")
	if executionID == "" {
		middleware.HandleError(c, errors.NewBadRequestError("executionId is required"))
		return
	}

	status, err := h.pipeline.CheckStatus(c.Request.Context(), executionID)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, status)
}

// IntermediateResults handles GET /koenote/intermediate-results?key=...
func (h *PipelineHandler) IntermediateResults(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		middleware.HandleError(c, errors.NewBadRequestError("key is required"))
		return
	}

	data, err := h.pipeline.IntermediateResults(c.Request.Context(), key)
	if err != nil {
		if stderrors.Is(err, blob.ErrNotFound) {
			middleware.HandleError(c, errors.NewNotFoundError("intermediate result"))
			return
		}
		middleware.HandleError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// DebugExecution handles GET /koenote/debug-execution?executionId=...
func (h *PipelineHandler) DebugExecution(c *gin.Context) {
	executionID := c.Query("executionId")
	if executionID == "" {
		middleware.HandleError(c, errors.NewBadRequestError("executionId is required"))
		return
	}

	events, err := h.pipeline.DebugExecution(c.Request.Context(), executionID)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError(err.Error()))
		return
	}

	types := lo.CountValuesBy(events, func(e workflow.Event) string { return e.Type })
	c.JSON(http.StatusOK, gin.H{
		"executionId": executionID,
		"events":      events,
		"eventCounts": types,
	})
}
