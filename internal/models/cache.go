package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// CacheEntry stores a previously generated answer keyed by the hash of the
// normalized question. The embedding of the normalized question powers
// semantic lookup; it may be zero-valued when the embedder was unavailable
// at store time, in which case only exact-hash lookup finds the row.
type CacheEntry struct {
	gorm.Model
	QueryHash      string `gorm:"type:varchar(32);uniqueIndex;not null"`
	QueryText      string `gorm:"type:text;not null"`
	ResponseText   string `gorm:"type:text;not null"`
	ModelName      string `gorm:"type:varchar(64)"`
	TokensUsed     int
	HitCount       int             `gorm:"not null;default:1"`
	Embedding      pgvector.Vector `gorm:"type:vector(768)"`
	HasEmbedding   bool            `gorm:"not null;default:false"`
	Topic          string          `gorm:"type:varchar(64)"`
	Difficulty     string          `gorm:"type:varchar(32)"`
	Language       string          `gorm:"type:varchar(16)"`
	LastAccessedAt time.Time
	ExpiresAt      time.Time `gorm:"index;not null"`
}
