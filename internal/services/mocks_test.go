package services

import (
	"context"
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"
)

type MockUsageServiceDB struct {
	mock.Mock
}

func (m *MockUsageServiceDB) GetDailyUsageFromDB(userID uuid.UUID, day time.Time) (*models.UsageRecord, error) {
	args := m.Called(userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageRecord), args.Error(1)
}

func (m *MockUsageServiceDB) IncrementDailyUsageInDB(userID uuid.UUID, day time.Time, tokensUsed int, costUSD float64) error {
	args := m.Called(userID, day, tokensUsed, costUSD)
	return args.Error(0)
}

type MockCacheServiceDB struct {
	mock.Mock
}

func (m *MockCacheServiceDB) GetCacheEntryByHash(hash string) (*models.CacheEntry, error) {
	args := m.Called(hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CacheEntry), args.Error(1)
}

func (m *MockCacheServiceDB) InsertCacheEntryIfAbsent(entry *models.CacheEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockCacheServiceDB) RecordCacheHit(entryID uint) error {
	args := m.Called(entryID)
	return args.Error(0)
}

func (m *MockCacheServiceDB) SearchCacheByEmbedding(embedding pgvector.Vector, limit int) ([]models.CacheEntry, error) {
	args := m.Called(embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CacheEntry), args.Error(1)
}

func (m *MockCacheServiceDB) GetRecentCacheEntries(limit int) ([]models.CacheEntry, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CacheEntry), args.Error(1)
}

func (m *MockCacheServiceDB) DeleteExpiredCacheEntries() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type MockDocumentServiceDB struct {
	mock.Mock
}

func (m *MockDocumentServiceDB) CreateDocumentInDB(doc *models.Document) error {
	args := m.Called(doc)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) GetDocumentFromDB(id uuid.UUID) (*models.Document, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentServiceDB) GetDocumentForUserFromDB(id, userID uuid.UUID) (*models.Document, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentServiceDB) ListDocumentsByUserFromDB(userID uuid.UUID) ([]models.Document, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentServiceDB) MarkDocumentProcessing(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) RaiseDocumentProgress(id uuid.UUID, progress int) error {
	args := m.Called(id, progress)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) SaveChunkBatch(docID uuid.UUID, chunks []models.DocumentChunk, newCursor int) error {
	args := m.Called(docID, chunks, newCursor)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) CompleteDocument(id uuid.UUID, chunksCount int) error {
	args := m.Called(id, chunksCount)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) FailDocument(id uuid.UUID, message string) error {
	args := m.Called(id, message)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) ResetDocumentForReprocess(id uuid.UUID, keepCursor bool) error {
	args := m.Called(id, keepCursor)
	return args.Error(0)
}

func (m *MockDocumentServiceDB) DeleteDocumentFromDB(id, userID uuid.UUID) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

type MockRetrievalServiceDB struct {
	mock.Mock
}

func (m *MockRetrievalServiceDB) SearchChunksInDB(userID uuid.UUID, embedding pgvector.Vector, limit int) ([]ScoredChunk, error) {
	args := m.Called(userID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScoredChunk), args.Error(1)
}

type MockConversationServiceDB struct {
	mock.Mock
}

func (m *MockConversationServiceDB) AppendMessageToDB(userID uuid.UUID, sessionID, role, content string, tokensUsed int) error {
	args := m.Called(userID, sessionID, role, content, tokensUsed)
	return args.Error(0)
}

func (m *MockConversationServiceDB) GetSessionMessagesFromDB(userID uuid.UUID, sessionID string) ([]models.ConversationMessage, error) {
	args := m.Called(userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationMessage), args.Error(1)
}

func (m *MockConversationServiceDB) GetRecentSessionMessagesFromDB(userID uuid.UUID, sessionID string, limit int) ([]models.ConversationMessage, error) {
	args := m.Called(userID, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationMessage), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatResult), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractText(ctx context.Context, path, fileType string) (string, error) {
	args := m.Called(ctx, path, fileType)
	return args.String(0), args.Error(1)
}
