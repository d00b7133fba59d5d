package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

const (
	FileTypePDF  = "pdf"
	FileTypePNG  = "png"
	FileTypeJPEG = "jpeg"
	FileTypeDOCX = "docx"
)

// Document tracks one uploaded study file through the ingestion pipeline.
// ChunksPersisted is the resumption cursor: the number of chunks already
// embedded and committed, so a failed run can pick up where it stopped.
type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null"`
	FileName     string    `gorm:"not null"`
	StoragePath  string    `gorm:"not null"`
	FileType     string    `gorm:"type:varchar(16);not null"`
	Status       string    `gorm:"type:varchar(16);not null;default:'pending'"`
	Progress     int       `gorm:"not null;default:0"`
	ChunksCount  int       `gorm:"not null;default:0"`
	ChunksPersisted int    `gorm:"not null;default:0"`
	ErrorMessage string    `gorm:"type:text"`
	RetryCount   int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Chunks []DocumentChunk `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// DocumentChunk is one overlapping window of a document's extracted text
// together with its embedding.
type DocumentChunk struct {
	gorm.Model
	DocumentID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_doc_chunk;not null"`
	ChunkIndex int             `gorm:"uniqueIndex:idx_doc_chunk;not null"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	Summary    string          `gorm:"type:text"`
}
