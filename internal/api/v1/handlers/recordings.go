package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"koenote-pipeline/internal/api/errors"
	"koenote-pipeline/internal/api/middleware"
	"koenote-pipeline/internal/api/v1/dto"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/blob"
	"koenote-pipeline/internal/app/storage/record"
)

// presignedURLExpiry bounds how long a direct-upload URL stays valid.
const presignedURLExpiry = 5 * time.Minute

// RecordingsHandler exposes finished-recording CRUD and chunk upload URLs.
type RecordingsHandler struct {
	records record.Store
	blobs   blob.Store
	bucket  string
}

// NewRecordingsHandler creates a recordings handler.
func NewRecordingsHandler(records record.Store, blobs blob.Store, bucket string) *RecordingsHandler {
	return &RecordingsHandler{records: records, blobs: blobs, bucket: bucket}
}

// Save handles POST /koenote/recordings.
func (h *RecordingsHandler) Save(c *gin.Context) {
	var rec model.FinishedRecording
	if err := c.ShouldBindJSON(&rec); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid recording payload"))
		return
	}

	fields := make(map[string]string)
	if rec.ID == "" {
		fields["id"] = "is required"
	}
	if rec.Title == "" {
		fields["title"] = "is required"
	}
	if rec.UserID == "" {
		fields["user_id"] = "is required"
	}
	if len(fields) > 0 {
		middleware.HandleError(c, errors.NewValidationError("Validation failed", fields))
		return
	}

	if err := h.records.Put(c.Request.Context(), rec); err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to save recording"))
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// List handles GET /koenote/recordings?userId=...
func (h *RecordingsHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = "default"
	}

	recordings, err := h.records.ListByUser(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to list recordings"))
		return
	}
	if recordings == nil {
		recordings = []model.FinishedRecording{}
	}

	c.JSON(http.StatusOK, dto.RecordingsResponse{
		Recordings: recordings,
		Count:      len(recordings),
	})
}

// Get handles GET /koenote/recordings/:id.
func (h *RecordingsHandler) Get(c *gin.Context) {
	rec, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if stderrors.Is(err, record.ErrNotFound) {
			middleware.HandleError(c, errors.NewNotFoundError("recording"))
			return
		}
		middleware.HandleError(c, errors.NewInternalError("failed to load recording"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /koenote/recordings/:id.
func (h *RecordingsHandler) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if stderrors.Is(err, record.ErrNotFound) {
			middleware.HandleError(c, errors.NewNotFoundError("recording"))
			return
		}
		middleware.HandleError(c, errors.NewInternalError("failed to delete recording"))
		return
	}
	c.Status(http.StatusNoContent)
}

// PresignedURL handles POST /koenote/presigned-url.
func (h *RecordingsHandler) PresignedURL(c *gin.Context) {
	var req dto.PresignedURLRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	url, err := h.blobs.PresignedPut(c.Request.Context(), h.bucket, req.Key, req.ContentType, presignedURLExpiry)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to create upload URL"))
		return
	}
	c.JSON(http.StatusOK, dto.PresignedURLResponse{URL: url, Key: req.Key})
}
