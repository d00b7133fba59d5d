package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"
	"unicode"

	"study_tutor_go_backend/internal/models"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Politeness filler that carries no meaning for cache matching.
var fillerWords = map[string]bool{
	"please": true, "kindly": true, "thanks": true, "thank": true,
	"hi": true, "hello": true, "hey": true,
}

// CacheMetadata rides along with a stored answer.
type CacheMetadata struct {
	Model      string
	TokensUsed int
	Topic      string
	Difficulty string
	Language   string
}

// CacheResult is a successful lookup.
type CacheResult struct {
	Response   string
	Similarity float64
	Entry      *models.CacheEntry
}

// ResponseCacheService answers repeated questions without a provider call.
// Exact duplicates match on a hash of the normalized question; near
// duplicates match through a vector search over the cached queries' own
// embeddings, with a bounded recency scan as fallback when the embedder is
// down. All cache traffic is best effort and degrades to a miss.
type ResponseCacheService struct {
	cacheDB             CacheServiceDB
	embedder            EmbeddingProvider
	ttl                 time.Duration
	similarityThreshold float64
	fallbackScanLimit   int
	logger              zerolog.Logger
}

func NewResponseCacheService(cacheDB CacheServiceDB, embedder EmbeddingProvider, ttl time.Duration, threshold float64, fallbackScanLimit int, logger zerolog.Logger) *ResponseCacheService {
	return &ResponseCacheService{
		cacheDB:             cacheDB,
		embedder:            embedder,
		ttl:                 ttl,
		similarityThreshold: threshold,
		fallbackScanLimit:   fallbackScanLimit,
		logger:              logger,
	}
}

// Normalize lowercases, strips punctuation, collapses whitespace and drops
// politeness filler. Idempotent: normalizing a normalized string is a no-op.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// HashQuery returns a deterministic non-cryptographic hash of the
// normalized question, used for O(1) exact-match lookup.
func HashQuery(text string) string {
	h := fnv.New64a()
	h.Write([]byte(Normalize(text)))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Similarity computes bag-of-words cosine similarity between two texts
// after normalization. Symmetric, in [0,1], and 1 for identical inputs.
func Similarity(a, b string) float64 {
	countsA := wordCounts(Normalize(a))
	countsB := wordCounts(Normalize(b))
	if len(countsA) == 0 || len(countsB) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for word, ca := range countsA {
		normA += float64(ca * ca)
		if cb, ok := countsB[word]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range countsB {
		normB += float64(cb * cb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func wordCounts(normalized string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.Fields(normalized) {
		counts[w]++
	}
	return counts
}

// Lookup finds a cached answer for the question, exact hash first, then
// semantic search. Returns nil on a miss; never returns an error to the
// caller, infrastructure failures just log and miss.
func (s *ResponseCacheService) Lookup(ctx context.Context, question string) *CacheResult {
	hash := HashQuery(question)

	entry, err := s.cacheDB.GetCacheEntryByHash(hash)
	if err == nil {
		s.hit(entry)
		return &CacheResult{Response: entry.ResponseText, Similarity: 1.0, Entry: entry}
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Warn().Err(err).Msg("cache hash lookup failed")
		return nil
	}

	candidates := s.semanticCandidates(ctx, question)
	var best *models.CacheEntry
	var bestSim float64
	for i := range candidates {
		sim := Similarity(question, candidates[i].QueryText)
		if sim < s.similarityThreshold {
			continue
		}
		// Ties break by recency. Candidate order differs between the
		// vector path (by distance) and the fallback scan (newest first),
		// so compare creation times explicitly instead of relying on it.
		if best == nil || sim > bestSim ||
			(sim == bestSim && candidates[i].CreatedAt.After(best.CreatedAt)) {
			best = &candidates[i]
			bestSim = sim
		}
	}
	if best == nil {
		return nil
	}
	s.hit(best)
	return &CacheResult{Response: best.ResponseText, Similarity: bestSim, Entry: best}
}

func (s *ResponseCacheService) semanticCandidates(ctx context.Context, question string) []models.CacheEntry {
	embedding, err := s.embedder.EmbedText(ctx, Normalize(question))
	if err == nil {
		entries, searchErr := s.cacheDB.SearchCacheByEmbedding(pgvector.NewVector(embedding), s.fallbackScanLimit)
		if searchErr == nil {
			return entries
		}
		s.logger.Warn().Err(searchErr).Msg("cache vector search failed, falling back to recency scan")
	} else {
		s.logger.Warn().Err(err).Msg("query embedding failed, falling back to recency scan")
	}

	entries, err := s.cacheDB.GetRecentCacheEntries(s.fallbackScanLimit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache recency scan failed")
		return nil
	}
	return entries
}

func (s *ResponseCacheService) hit(entry *models.CacheEntry) {
	if err := s.cacheDB.RecordCacheHit(entry.ID); err != nil {
		s.logger.Warn().Err(err).Uint("entryID", entry.ID).Msg("failed to record cache hit")
	}
	entry.HitCount++
}

// Store saves a fresh answer under the question's hash. Best effort: any
// failure logs and the answer is simply not cached.
func (s *ResponseCacheService) Store(ctx context.Context, question, response string, meta CacheMetadata) {
	now := time.Now()
	entry := &models.CacheEntry{
		QueryHash:      HashQuery(question),
		QueryText:      question,
		ResponseText:   response,
		ModelName:      meta.Model,
		TokensUsed:     meta.TokensUsed,
		HitCount:       1,
		Topic:          meta.Topic,
		Difficulty:     meta.Difficulty,
		Language:       meta.Language,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(s.ttl),
	}

	embedding, err := s.embedder.EmbedText(ctx, Normalize(question))
	if err != nil {
		// Hash-only entry still serves exact duplicates.
		s.logger.Warn().Err(err).Msg("failed to embed cache entry, storing hash-only")
	} else {
		entry.Embedding = pgvector.NewVector(embedding)
		entry.HasEmbedding = true
	}

	if err := s.cacheDB.InsertCacheEntryIfAbsent(entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store cache entry")
	}
}

// Cleanup removes entries past their TTL and returns how many were deleted.
func (s *ResponseCacheService) Cleanup() (int64, error) {
	removed, err := s.cacheDB.DeleteExpiredCacheEntries()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %v", err)
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("cache cleanup completed")
	}
	return removed, nil
}
