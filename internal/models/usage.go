package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageRecord accumulates a user's request and token consumption for one
// calendar day (UTC). One row per (user, date); counters only ever grow.
type UsageRecord struct {
	gorm.Model
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_usage_user_date;not null"`
	UsageDate     time.Time `gorm:"type:date;uniqueIndex:idx_usage_user_date;not null"`
	RequestsCount int       `gorm:"not null;default:0"`
	TokensUsed    int       `gorm:"not null;default:0"`
	CostUSD       float64   `gorm:"not null;default:0"`
}
