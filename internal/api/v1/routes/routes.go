// Package routes wires the v1 endpoints to their handlers.
package routes

import (
	"github.com/gin-gonic/gin"

	"koenote-pipeline/internal/api/v1/handlers"
	"koenote-pipeline/internal/app"
)

// RegisterRoutes registers the pipeline and recording endpoints under the
// given group.
func RegisterRoutes(router *gin.RouterGroup, application *app.Application) {
	pipelineHandler := handlers.NewPipelineHandler(application.Pipeline)
	router.POST("/process-chunk", pipelineHandler.ProcessChunk)
	router.POST("/process-audio", pipelineHandler.ProcessAudio)
	router.POST("/combine-results", pipelineHandler.CombineResults)
	router.GET("/process-status", pipelineHandler.ProcessStatus)
	router.GET("/intermediate-results", pipelineHandler.IntermediateResults)
	router.GET("/debug-execution", pipelineHandler.DebugExecution)

	recordingsHandler := handlers.NewRecordingsHandler(
		application.Records, application.Blobs, application.Config.Storage.Bucket)
	recordings := router.Group("/recordings")
	{
		recordings.POST("", recordingsHandler.Save)
		recordings.GET("", recordingsHandler.List)
		recordings.GET("/:id", recordingsHandler.Get)
		recordings.DELETE("/:id", recordingsHandler.Delete)
	}
	router.POST("/presigned-url", recordingsHandler.PresignedURL)
}
