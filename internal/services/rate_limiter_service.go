package services

import (
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/rs/zerolog"
)

// RateLimitStatus is the outcome of a quota check.
type RateLimitStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"resetTime"`
	Tier      string    `json:"tier"`
}

// RateLimiterService enforces per-user daily quotas. Quota lookups are best
// effort: when the store cannot be read the limiter fails open, favoring
// availability over strict enforcement.
type RateLimiterService struct {
	usageDB            UsageServiceDB
	freeDailyQuota     int
	premiumDailyQuota  int
	costPerThousandUSD float64
	logger             zerolog.Logger
}

func NewRateLimiterService(usageDB UsageServiceDB, freeQuota, premiumQuota int, costPerThousandUSD float64, logger zerolog.Logger) *RateLimiterService {
	return &RateLimiterService{
		usageDB:            usageDB,
		freeDailyQuota:     freeQuota,
		premiumDailyQuota:  premiumQuota,
		costPerThousandUSD: costPerThousandUSD,
		logger:             logger,
	}
}

func (s *RateLimiterService) quotaForTier(tier string) int {
	if tier == models.TierPremium {
		return s.premiumDailyQuota
	}
	return s.freeDailyQuota
}

// Check reports whether the user may make another request today.
// Remaining is net of the request being admitted: at quota-1 the request
// goes through with zero left over.
func (s *RateLimiterService) Check(user *models.User) RateLimitStatus {
	quota := s.quotaForTier(user.Tier)
	status := RateLimitStatus{
		Allowed:   true,
		Remaining: quota - 1,
		ResetTime: nextUTCMidnight(time.Now()),
		Tier:      user.Tier,
	}

	record, err := s.usageDB.GetDailyUsageFromDB(user.ID, time.Now().UTC())
	if err != nil {
		// Fail open: a broken usage store must not block a student's
		// question. Enforcement resumes once the store recovers.
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("usage lookup failed, failing open")
		return status
	}

	remaining := quota - record.RequestsCount - 1
	if remaining < 0 {
		remaining = 0
	}
	status.Remaining = remaining
	status.Allowed = record.RequestsCount < quota
	return status
}

// Increment records one completed request and its token cost against the
// day's usage row.
func (s *RateLimiterService) Increment(user *models.User, tokensUsed int) error {
	cost := float64(tokensUsed) / 1000.0 * s.costPerThousandUSD
	return s.usageDB.IncrementDailyUsageInDB(user.ID, time.Now().UTC(), tokensUsed, cost)
}

// nextUTCMidnight returns the start of the next UTC day, when all quotas reset.
func nextUTCMidnight(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
