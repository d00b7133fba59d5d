package api

import (
	"net/http"
	"time"

	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/models"
	"study_tutor_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func currentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		apperrors.HandleError(c, apperrors.New401Error())
		return nil, false
	}
	userModel, ok := user.(*models.User)
	if !ok {
		apperrors.HandleError(c, apperrors.New401Error())
		return nil, false
	}
	return userModel, true
}

type askRequest struct {
	Question     string `json:"question" binding:"required"`
	SessionID    string `json:"sessionId"`
	Subject      string `json:"subject"`
	UseDocuments bool   `json:"useDocuments"`
}

func askHandler(tutorService *services.TutorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req askRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("question is required"))
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		result, err := tutorService.Ask(c.Request.Context(), user, req.SessionID, req.Question, services.AskOptions{
			Subject:      req.Subject,
			UseDocuments: req.UseDocuments,
		})
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"answer":     result.Answer,
			"tokensUsed": result.TokensUsed,
			"cached":     result.Cached,
			"sources":    result.Sources,
			"sessionId":  req.SessionID,
		})
	}
}

func rateLimitHandler(rateLimiter *services.RateLimiterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		status := rateLimiter.Check(user)
		c.JSON(http.StatusOK, gin.H{
			"allowed":   status.Allowed,
			"remaining": status.Remaining,
			"resetTime": status.ResetTime.Format(time.RFC3339),
			"tier":      status.Tier,
		})
	}
}

func historyHandler(conversationDB services.ConversationServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		sessionID := c.Query("sessionId")
		if sessionID == "" {
			apperrors.HandleError(c, apperrors.New400Error("sessionId is required"))
			return
		}

		messages, err := conversationDB.GetSessionMessagesFromDB(user.ID, sessionID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}

func transcriptHandler(transcriptService *services.TranscriptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		sessionID := c.Param("id")
		pdfBytes, err := transcriptService.RenderSessionPDF(user.ID, sessionID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New404Error("transcript not available"))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=transcript-"+sessionID+".pdf")
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}

func cacheCleanupHandler(cacheService *services.ResponseCacheService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}

		removed, err := cacheService.Cleanup()
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}
