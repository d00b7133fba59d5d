package config

import "time"

// Config is the single source of truth for every pipeline tunable. Daily
// quotas in particular live only here; no call path carries its own copy.
type Config struct {
	// Rate limiting
	FreeDailyQuota      int
	PremiumDailyQuota   int
	CostPerThousandUSD  float64

	// Response cache
	CacheTTL                time.Duration
	CacheSimilarityThreshold float64
	CacheFallbackScanLimit  int
	CacheCleanupInterval    time.Duration

	// Document ingestion
	TokensPerChunk  int
	OverlapTokens   int
	CharsPerToken   int
	EmbedBatchSize  int

	// Retrieval
	RetrievalTopK      int
	MaxContextChars    int

	// Provider
	ChatModel       string
	EmbeddingModel  string
	MaxOutputTokens int
	Temperature     float64

	// Orchestrator retry
	MaxRetries   int
	InitialDelay time.Duration

	// Document status polling hint for pull-based clients
	StatusRetryAfter time.Duration
}

func NewConfig() *Config {
	return &Config{
		FreeDailyQuota:     20,
		PremiumDailyQuota:  100,
		CostPerThousandUSD: 0.002,

		CacheTTL:                 24 * time.Hour,
		CacheSimilarityThreshold: 0.85,
		CacheFallbackScanLimit:   100,
		CacheCleanupInterval:     15 * time.Minute,

		TokensPerChunk: 500,
		OverlapTokens:  50,
		CharsPerToken:  4,
		EmbedBatchSize: 32,

		RetrievalTopK:   5,
		MaxContextChars: 8000,

		ChatModel:       "gpt-4o-mini",
		EmbeddingModel:  "text-embedding-004",
		MaxOutputTokens: 1024,
		Temperature:     0.7,

		MaxRetries:   3,
		InitialDelay: 1 * time.Second,

		StatusRetryAfter: 2 * time.Second,
	}
}
