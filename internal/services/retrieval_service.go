package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ScoredChunk is one retrieval result, ranked by similarity to the query.
type ScoredChunk struct {
	DocumentID uuid.UUID `json:"document_id"`
	FileName   string    `json:"file_name"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

// RetrievalServiceDB defines the interface for vector search over chunks
type RetrievalServiceDB interface {
	SearchChunksInDB(userID uuid.UUID, embedding pgvector.Vector, limit int) ([]ScoredChunk, error)
}

// DefaultRetrievalService implements RetrievalServiceDB
type DefaultRetrievalService struct {
	db *gorm.DB
}

func NewRetrievalServiceDB(db *gorm.DB) RetrievalServiceDB {
	return &DefaultRetrievalService{db: db}
}

// SearchChunksInDB runs a cosine-distance query scoped to completed
// documents owned by the requesting user. The owner filter is the tenant
// isolation boundary; no query may cross it.
func (s *DefaultRetrievalService) SearchChunksInDB(userID uuid.UUID, embedding pgvector.Vector, limit int) ([]ScoredChunk, error) {
	var results []ScoredChunk
	err := s.db.Raw(`
		SELECT dc.document_id,
		       d.file_name,
		       dc.chunk_index,
		       dc.content,
		       1 - (dc.embedding <=> ?) AS similarity
		FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id
		WHERE d.user_id = ?
		  AND d.status = ?
		  AND d.deleted_at IS NULL
		  AND dc.deleted_at IS NULL
		ORDER BY dc.embedding <=> ?
		LIMIT ?`,
		embedding, userID, "completed", embedding, limit,
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RetrievalService finds the study-material passages most similar to a
// question and assembles them into model-ready context.
type RetrievalService struct {
	retrievalDB     RetrievalServiceDB
	embedder        EmbeddingProvider
	topK            int
	maxContextChars int
}

func NewRetrievalService(retrievalDB RetrievalServiceDB, embedder EmbeddingProvider, topK, maxContextChars int) *RetrievalService {
	return &RetrievalService{
		retrievalDB:     retrievalDB,
		embedder:        embedder,
		topK:            topK,
		maxContextChars: maxContextChars,
	}
}

// EmbedQuery embeds the question with the same model used on chunks.
func (s *RetrievalService) EmbedQuery(ctx context.Context, question string) ([]float32, error) {
	return s.embedder.EmbedText(ctx, question)
}

// Search returns the user's topK most similar chunks.
func (s *RetrievalService) Search(userID uuid.UUID, queryEmbedding []float32) ([]ScoredChunk, error) {
	chunks, err := s.retrievalDB.SearchChunksInDB(userID, pgvector.NewVector(queryEmbedding), s.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %v", err)
	}
	return chunks, nil
}

// AssembleContext labels each passage with its rank, source document and
// similarity, and concatenates them up to the character budget. Passages
// are already ranked, so the cap drops the least relevant ones.
func (s *RetrievalService) AssembleContext(chunks []ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	for i, chunk := range chunks {
		passage := fmt.Sprintf("[%d] (%s, %.1f%% relevant)\n%s\n\n",
			i+1, chunk.FileName, chunk.Similarity*100, chunk.Content)
		if s.maxContextChars > 0 && b.Len()+len(passage) > s.maxContextChars {
			break
		}
		b.WriteString(passage)
	}
	return strings.TrimSpace(b.String())
}
