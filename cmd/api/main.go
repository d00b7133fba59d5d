package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"study_tutor_go_backend/cmd/api/config"
	"study_tutor_go_backend/internal/api"
	"study_tutor_go_backend/internal/auth"
	"study_tutor_go_backend/internal/broker"
	"study_tutor_go_backend/internal/database"
	"study_tutor_go_backend/internal/services"
	"study_tutor_go_backend/internal/wsocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	genaiAPIKey := os.Getenv("GOOGLE_AI_STUDIO_API_KEY")
	if genaiAPIKey == "" {
		log.Fatal("GOOGLE_AI_STUDIO_API_KEY is not set in the environment")
	}

	llmAPIKey := os.Getenv("LLM_API_KEY")
	if llmAPIKey == "" {
		log.Fatal("LLM_API_KEY is not set in the environment")
	}
	llmBaseURL := os.Getenv("LLM_BASE_URL")
	if llmBaseURL == "" {
		llmBaseURL = "https://api.openai.com/v1"
	}

	ctx := context.Background()
	cfg := config.NewConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	database.InitDB()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(genaiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	defer genaiClient.Close()

	// DB facades
	usageDB := services.NewUsageServiceDB(database.DB)
	cacheDB := services.NewCacheServiceDB(database.DB)
	documentDB := services.NewDocumentServiceDB(database.DB)
	retrievalDB := services.NewRetrievalServiceDB(database.DB)
	conversationDB := services.NewConversationServiceDB(database.DB)

	// Providers
	embeddingService := services.NewGenAIEmbeddingService(genaiClient, cfg.EmbeddingModel)
	llmClient := services.NewLLMClient(llmBaseURL, llmAPIKey, cfg.ChatModel, cfg.MaxOutputTokens, cfg.Temperature)

	// Pipeline services
	events := broker.NewBroker()
	rateLimiter := services.NewRateLimiterService(usageDB, cfg.FreeDailyQuota, cfg.PremiumDailyQuota, cfg.CostPerThousandUSD, logger)
	cacheService := services.NewResponseCacheService(cacheDB, embeddingService, cfg.CacheTTL, cfg.CacheSimilarityThreshold, cfg.CacheFallbackScanLimit, logger)
	extractionService := services.NewExtractionService(embeddingService)
	documentService := services.NewDocumentService(documentDB, extractionService, embeddingService, events,
		cfg.TokensPerChunk, cfg.OverlapTokens, cfg.CharsPerToken, cfg.EmbedBatchSize, logger)
	retrievalService := services.NewRetrievalService(retrievalDB, embeddingService, cfg.RetrievalTopK, cfg.MaxContextChars)
	tutorService := services.NewTutorService(rateLimiter, cacheService, retrievalService, conversationDB,
		llmClient, cfg.ChatModel, cfg.MaxRetries, cfg.InitialDelay, logger)
	transcriptService := services.NewTranscriptService(conversationDB)

	// Expired cache entries are swept on a fixed cadence.
	go func() {
		ticker := time.NewTicker(cfg.CacheCleanupInterval)
		for range ticker.C {
			if _, err := cacheService.Cleanup(); err != nil {
				logger.Warn().Err(err).Msg("periodic cache cleanup failed")
			}
		}
	}()

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // TODO: Implement a more secure check in production
		},
	}

	wsHandler := wsocket.NewHandler(events, upgrader, 30*time.Second)

	api.SetupRoutes(r, tutorService, rateLimiter, documentService, documentDB, conversationDB,
		cacheService, transcriptService, int(cfg.StatusRetryAfter.Seconds()))
	auth.SetupRoutes(r)

	r.GET("/ws/documents", auth.AuthMiddleware(), func(c *gin.Context) {
		user, _ := c.Get("user")
		wsHandler.HandleWebSocket(c.Writer, c.Request, user)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
