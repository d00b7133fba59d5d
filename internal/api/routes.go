package api

import (
	"study_tutor_go_backend/internal/auth"
	"study_tutor_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	tutorService *services.TutorService,
	rateLimiter *services.RateLimiterService,
	documentService *services.DocumentService,
	documentDB services.DocumentServiceDB,
	conversationDB services.ConversationServiceDB,
	cacheService *services.ResponseCacheService,
	transcriptService *services.TranscriptService,
	statusRetryAfterSeconds int,
) {
	api := r.Group("/api")
	{
		api.POST("/tutor/ask", auth.AuthMiddleware(), askHandler(tutorService))
		api.GET("/tutor/limit", auth.AuthMiddleware(), rateLimitHandler(rateLimiter))
		api.GET("/tutor/history", auth.AuthMiddleware(), historyHandler(conversationDB))

		api.POST("/documents", auth.AuthMiddleware(), uploadDocumentHandler(documentService))
		api.GET("/documents", auth.AuthMiddleware(), listDocumentsHandler(documentDB))
		api.GET("/documents/:id/status", auth.AuthMiddleware(), documentStatusHandler(documentDB, statusRetryAfterSeconds))
		api.POST("/documents/:id/reprocess", auth.AuthMiddleware(), reprocessDocumentHandler(documentService))
		api.DELETE("/documents/:id", auth.AuthMiddleware(), deleteDocumentHandler(documentDB))

		api.GET("/sessions/:id/transcript.pdf", auth.AuthMiddleware(), transcriptHandler(transcriptService))

		api.POST("/admin/cache/cleanup", auth.AuthMiddleware(), cacheCleanupHandler(cacheService))
	}
}
