package services

import (
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheServiceDB defines the interface for response-cache persistence
type CacheServiceDB interface {
	GetCacheEntryByHash(hash string) (*models.CacheEntry, error)
	InsertCacheEntryIfAbsent(entry *models.CacheEntry) error
	RecordCacheHit(entryID uint) error
	SearchCacheByEmbedding(embedding pgvector.Vector, limit int) ([]models.CacheEntry, error)
	GetRecentCacheEntries(limit int) ([]models.CacheEntry, error)
	DeleteExpiredCacheEntries() (int64, error)
}

// DefaultCacheService implements CacheServiceDB
type DefaultCacheService struct {
	db *gorm.DB
}

func NewCacheServiceDB(db *gorm.DB) CacheServiceDB {
	return &DefaultCacheService{db: db}
}

func (s *DefaultCacheService) GetCacheEntryByHash(hash string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	result := s.db.Where("query_hash = ? AND expires_at > ?", hash, time.Now()).First(&entry)
	if result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

// InsertCacheEntryIfAbsent writes the entry unless the hash already exists.
// First write wins: a second concurrent identical question simply does not
// benefit from the cache.
func (s *DefaultCacheService) InsertCacheEntryIfAbsent(entry *models.CacheEntry) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query_hash"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (s *DefaultCacheService) RecordCacheHit(entryID uint) error {
	return s.db.Model(&models.CacheEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"hit_count":        gorm.Expr("hit_count + 1"),
			"last_accessed_at": time.Now(),
		}).Error
}

// SearchCacheByEmbedding returns the nearest non-expired entries by cosine
// distance over the cached queries' own embeddings.
func (s *DefaultCacheService) SearchCacheByEmbedding(embedding pgvector.Vector, limit int) ([]models.CacheEntry, error) {
	var entries []models.CacheEntry
	result := s.db.
		Where("has_embedding = ? AND expires_at > ?", true, time.Now()).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{embedding}}).
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (s *DefaultCacheService) GetRecentCacheEntries(limit int) ([]models.CacheEntry, error) {
	var entries []models.CacheEntry
	result := s.db.
		Where("expires_at > ?", time.Now()).
		Order("created_at desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (s *DefaultCacheService) DeleteExpiredCacheEntries() (int64, error) {
	result := s.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}
