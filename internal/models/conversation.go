package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one turn of a tutoring session. Rows are append
// only and read back ordered by creation time.
type ConversationMessage struct {
	gorm.Model
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	SessionID  string    `gorm:"type:varchar(64);index;not null"`
	Role       string    `gorm:"type:varchar(16);not null"`
	Content    string    `gorm:"type:text;not null"`
	TokensUsed int
}
