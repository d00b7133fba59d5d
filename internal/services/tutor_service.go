package services

import (
	"context"
	"fmt"
	"time"

	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/models"

	"github.com/rs/zerolog"
)

const historyTurns = 10

// AskOptions tune a single tutoring request.
type AskOptions struct {
	Subject      string
	UseDocuments bool
}

// AskResult is the orchestrator's answer.
type AskResult struct {
	Answer     string        `json:"answer"`
	TokensUsed int           `json:"tokensUsed"`
	Cached     bool          `json:"cached"`
	Sources    []ScoredChunk `json:"sources,omitempty"`
}

// TutorService sequences the request pipeline: rate limit, cache lookup,
// retrieval, provider call with retry, then usage tracking, cache store and
// conversation logging. Best-effort stages (cache, rate lookup) degrade
// silently; anything that changes persisted state surfaces its error.
type TutorService struct {
	rateLimiter    *RateLimiterService
	cache          *ResponseCacheService
	retrieval      *RetrievalService
	conversationDB ConversationServiceDB
	chat           ChatCompleter
	modelName      string
	maxRetries     int
	initialDelay   time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	logger         zerolog.Logger
}

func NewTutorService(
	rateLimiter *RateLimiterService,
	cache *ResponseCacheService,
	retrieval *RetrievalService,
	conversationDB ConversationServiceDB,
	chat ChatCompleter,
	modelName string,
	maxRetries int,
	initialDelay time.Duration,
	logger zerolog.Logger,
) *TutorService {
	return &TutorService{
		rateLimiter:    rateLimiter,
		cache:          cache,
		retrieval:      retrieval,
		conversationDB: conversationDB,
		chat:           chat,
		modelName:      modelName,
		maxRetries:     maxRetries,
		initialDelay:   initialDelay,
		sleep:          sleepWithContext,
		logger:         logger,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ask answers one student question, cheaply when possible.
func (s *TutorService) Ask(ctx context.Context, user *models.User, sessionID, question string, opts AskOptions) (*AskResult, error) {
	status := s.rateLimiter.Check(user)
	if !status.Allowed {
		countdown := time.Until(status.ResetTime).Round(time.Minute)
		return nil, apperrors.NewDailyLimitError(
			fmt.Sprintf("Daily limit reached for the %s tier. Quota resets in %s.", status.Tier, countdown))
	}

	if hit := s.cache.Lookup(ctx, question); hit != nil {
		s.logger.Info().Float64("similarity", hit.Similarity).Msg("cache hit")
		return &AskResult{Answer: hit.Response, TokensUsed: 0, Cached: true}, nil
	}

	var sources []ScoredChunk
	var tutorContext string
	if opts.UseDocuments {
		sources, tutorContext = s.retrieveContext(ctx, user, question)
	}

	messages, err := s.buildMessages(user, sessionID, question, opts.Subject, tutorContext)
	if err != nil {
		return nil, err
	}

	var result *ChatResult
	err = s.RetryWithBackoff(ctx, func() error {
		var callErr error
		result, callErr = s.chat.Complete(ctx, messages)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if err := s.rateLimiter.Increment(user, result.TotalTokens); err != nil {
		// Usage counters change persisted state and must not vanish silently.
		return nil, fmt.Errorf("failed to track usage: %v", err)
	}

	s.cache.Store(ctx, question, result.Content, CacheMetadata{
		Model:      s.modelName,
		TokensUsed: result.TotalTokens,
	})

	if err := s.conversationDB.AppendMessageToDB(user.ID, sessionID, models.RoleUser, question, 0); err != nil {
		return nil, fmt.Errorf("failed to save user turn: %v", err)
	}
	if err := s.conversationDB.AppendMessageToDB(user.ID, sessionID, models.RoleAssistant, result.Content, result.TotalTokens); err != nil {
		return nil, fmt.Errorf("failed to save assistant turn: %v", err)
	}

	return &AskResult{
		Answer:     result.Content,
		TokensUsed: result.TotalTokens,
		Sources:    sources,
	}, nil
}

// retrieveContext is best effort: a broken retrieval path downgrades the
// answer to an ungrounded one instead of failing the request.
func (s *TutorService) retrieveContext(ctx context.Context, user *models.User, question string) ([]ScoredChunk, string) {
	embedding, err := s.retrieval.EmbedQuery(ctx, question)
	if err != nil {
		s.logger.Warn().Err(err).Msg("query embedding failed, answering without document context")
		return nil, ""
	}
	chunks, err := s.retrieval.Search(user.ID, embedding)
	if err != nil {
		s.logger.Warn().Err(err).Msg("retrieval search failed, answering without document context")
		return nil, ""
	}
	return chunks, s.retrieval.AssembleContext(chunks)
}

func (s *TutorService) buildMessages(user *models.User, sessionID, question, subject, tutorContext string) ([]ChatMessage, error) {
	persona := "You are a patient, encouraging tutor. Explain concepts step by step and check for understanding."
	if subject != "" {
		persona += fmt.Sprintf(" The student is studying %s.", subject)
	}
	messages := []ChatMessage{{Role: "system", Content: persona}}

	history, err := s.conversationDB.GetRecentSessionMessagesFromDB(user.ID, sessionID, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %v", err)
	}
	for _, turn := range history {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	if tutorContext != "" {
		messages = append(messages, ChatMessage{
			Role:    "system",
			Content: "Relevant passages from the student's own study material:\n\n" + tutorContext,
		})
	}

	messages = append(messages, ChatMessage{Role: "user", Content: question})
	return messages, nil
}

// RetryWithBackoff runs fn up to maxRetries times, doubling the delay after
// each failed attempt. Auth and payment errors fail fast: retrying cannot
// fix them and burns provider quota.
func (s *TutorService) RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if customErr, ok := lastErr.(*apperrors.CustomError); ok && !customErr.Retryable() {
			return lastErr
		}

		if attempt < s.maxRetries-1 {
			delay := s.initialDelay * (1 << attempt)
			s.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("delay", delay).Msg("provider call failed, backing off")
			if err := s.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}
