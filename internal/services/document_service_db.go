package services

import (
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentServiceDB defines the interface for document and chunk persistence
type DocumentServiceDB interface {
	CreateDocumentInDB(doc *models.Document) error
	GetDocumentFromDB(id uuid.UUID) (*models.Document, error)
	GetDocumentForUserFromDB(id, userID uuid.UUID) (*models.Document, error)
	ListDocumentsByUserFromDB(userID uuid.UUID) ([]models.Document, error)
	MarkDocumentProcessing(id uuid.UUID) error
	RaiseDocumentProgress(id uuid.UUID, progress int) error
	SaveChunkBatch(docID uuid.UUID, chunks []models.DocumentChunk, newCursor int) error
	CompleteDocument(id uuid.UUID, chunksCount int) error
	FailDocument(id uuid.UUID, message string) error
	ResetDocumentForReprocess(id uuid.UUID, keepCursor bool) error
	DeleteDocumentFromDB(id, userID uuid.UUID) error
}

// DefaultDocumentService implements DocumentServiceDB
type DefaultDocumentService struct {
	db *gorm.DB
}

func NewDocumentServiceDB(db *gorm.DB) DocumentServiceDB {
	return &DefaultDocumentService{db: db}
}

func (s *DefaultDocumentService) CreateDocumentInDB(doc *models.Document) error {
	return s.db.Create(doc).Error
}

func (s *DefaultDocumentService) GetDocumentFromDB(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *DefaultDocumentService) GetDocumentForUserFromDB(id, userID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *DefaultDocumentService) ListDocumentsByUserFromDB(userID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DefaultDocumentService) MarkDocumentProcessing(id uuid.UUID) error {
	return s.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.DocumentStatusProcessing,
			"error_message": "",
		}).Error
}

// RaiseDocumentProgress never lowers progress: GREATEST keeps it monotonic
// even if a resumed run reports an earlier stage.
func (s *DefaultDocumentService) RaiseDocumentProgress(id uuid.UUID, progress int) error {
	return s.db.Model(&models.Document{}).
		Where("id = ?", id).
		Update("progress", gorm.Expr("GREATEST(progress, ?)", progress)).Error
}

// SaveChunkBatch commits one embedded batch and advances the resumption
// cursor in the same transaction, so a crash never leaves the cursor ahead
// of the persisted chunks.
func (s *DefaultDocumentService) SaveChunkBatch(docID uuid.UUID, chunks []models.DocumentChunk, newCursor int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Document{}).
			Where("id = ?", docID).
			Update("chunks_persisted", newCursor).Error
	})
}

func (s *DefaultDocumentService) CompleteDocument(id uuid.UUID, chunksCount int) error {
	return s.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.DocumentStatusCompleted,
			"progress":     100,
			"chunks_count": chunksCount,
		}).Error
}

func (s *DefaultDocumentService) FailDocument(id uuid.UUID, message string) error {
	return s.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.DocumentStatusFailed,
			"error_message": message,
		}).Error
}

// ResetDocumentForReprocess puts the document back to pending and bumps the
// retry counter atomically in the database, so the stored count always
// reflects committed reprocess attempts. When keepCursor is false the
// already-persisted chunks are discarded and ingestion starts over.
func (s *DefaultDocumentService) ResetDocumentForReprocess(id uuid.UUID, keepCursor bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":        models.DocumentStatusPending,
			"error_message": "",
			"retry_count":   gorm.Expr("retry_count + 1"),
			"updated_at":    time.Now(),
		}
		if !keepCursor {
			updates["chunks_persisted"] = 0
			updates["progress"] = 0
			updates["chunks_count"] = 0
			if err := tx.Unscoped().Where("document_id = ?", id).Delete(&models.DocumentChunk{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Document{}).Where("id = ?", id).Updates(updates).Error
	})
}

// DeleteDocumentFromDB removes the document and cascades its chunks.
func (s *DefaultDocumentService) DeleteDocumentFromDB(id, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("document_id = ?", id).Delete(&models.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&doc).Error
	})
}
