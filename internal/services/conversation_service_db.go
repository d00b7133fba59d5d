package services

import (
	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationServiceDB defines the interface for conversation persistence
type ConversationServiceDB interface {
	AppendMessageToDB(userID uuid.UUID, sessionID, role, content string, tokensUsed int) error
	GetSessionMessagesFromDB(userID uuid.UUID, sessionID string) ([]models.ConversationMessage, error)
	GetRecentSessionMessagesFromDB(userID uuid.UUID, sessionID string, limit int) ([]models.ConversationMessage, error)
}

// DefaultConversationService implements ConversationServiceDB
type DefaultConversationService struct {
	db *gorm.DB
}

func NewConversationServiceDB(db *gorm.DB) ConversationServiceDB {
	return &DefaultConversationService{db: db}
}

// AppendMessageToDB adds one turn; the log is append-only.
func (s *DefaultConversationService) AppendMessageToDB(userID uuid.UUID, sessionID, role, content string, tokensUsed int) error {
	message := &models.ConversationMessage{
		UserID:     userID,
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		TokensUsed: tokensUsed,
	}
	return s.db.Create(message).Error
}

func (s *DefaultConversationService) GetSessionMessagesFromDB(userID uuid.UUID, sessionID string) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	result := s.db.
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at asc").
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// GetRecentSessionMessagesFromDB returns the last limit turns in
// chronological order, for building the provider message list.
func (s *DefaultConversationService) GetRecentSessionMessagesFromDB(userID uuid.UUID, sessionID string, limit int) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	result := s.db.
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at desc").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	// Reverse back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
