package api

import (
	"context"
	"fmt"
	"net/http"

	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type uploadDocumentRequest struct {
	DocumentID  string `json:"documentId"`
	FileName    string `json:"fileName" binding:"required"`
	StoragePath string `json:"storagePath" binding:"required"`
	FileType    string `json:"fileType" binding:"required"`
}

// uploadDocumentHandler registers the uploaded file and kicks off ingestion
// in the background. The caller gets 202 immediately; the terminal state
// arrives over the websocket channel, with the status endpoint as a
// pull-based fallback.
func uploadDocumentHandler(documentService *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req uploadDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("fileName, storagePath and fileType are required"))
			return
		}

		documentID := uuid.Nil
		if req.DocumentID != "" {
			parsed, err := uuid.Parse(req.DocumentID)
			if err != nil {
				apperrors.HandleError(c, apperrors.New400Error("invalid documentId"))
				return
			}
			documentID = parsed
		}

		doc, err := documentService.Register(user.ID, documentID, req.FileName, req.StoragePath, req.FileType)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		go func() {
			if err := documentService.Process(context.Background(), doc.ID); err != nil {
				log.Error().Err(err).Str("documentID", doc.ID.String()).Msg("ingestion run failed")
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{
			"documentId": doc.ID,
			"status":     doc.Status,
		})
	}
}

func listDocumentsHandler(documentDB services.DocumentServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		docs, err := documentDB.ListDocumentsByUserFromDB(user.ID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

func documentStatusHandler(documentDB services.DocumentServiceDB, retryAfterSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid document id"))
			return
		}

		doc, err := documentDB.GetDocumentForUserFromDB(id, user.ID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New404Error("document not found"))
			return
		}

		// Pull-based clients get a poll cadence hint; push clients should
		// use the websocket channel instead.
		if doc.Status == "pending" || doc.Status == "processing" {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfterSeconds))
		}
		c.JSON(http.StatusOK, gin.H{
			"documentId":   doc.ID,
			"status":       doc.Status,
			"progress":     doc.Progress,
			"chunksCount":  doc.ChunksCount,
			"retryCount":   doc.RetryCount,
			"errorMessage": doc.ErrorMessage,
		})
	}
}

func reprocessDocumentHandler(documentService *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid document id"))
			return
		}

		doc, err := documentService.Reprocess(c.Request.Context(), id, user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"documentId": doc.ID,
			"status":     "pending",
		})
	}
}

func deleteDocumentHandler(documentDB services.DocumentServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("invalid document id"))
			return
		}

		if err := documentDB.DeleteDocumentFromDB(id, user.ID); err != nil {
			apperrors.HandleError(c, apperrors.New404Error("document not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}
