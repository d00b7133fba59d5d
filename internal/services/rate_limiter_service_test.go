package services

import (
	"fmt"
	"testing"
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestRateLimiter(usageDB *MockUsageServiceDB) *RateLimiterService {
	return NewRateLimiterService(usageDB, 20, 100, 0.002, zerolog.Nop())
}

func freeUser() *models.User {
	return &models.User{ID: uuid.New(), Tier: models.TierFree}
}

func TestCheckAllowsUnderQuota(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(&models.UsageRecord{RequestsCount: 5}, nil)

	status := limiter.Check(user)
	assert.True(t, status.Allowed)
	assert.Equal(t, 14, status.Remaining)
	assert.Equal(t, models.TierFree, status.Tier)
}

func TestCheckAtQuotaMinusOneAllowsLastRequest(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(&models.UsageRecord{RequestsCount: 19}, nil)

	// The last admitted request leaves nothing over.
	status := limiter.Check(user)
	assert.True(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestCheckAtQuotaRejects(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(&models.UsageRecord{RequestsCount: 20}, nil)

	status := limiter.Check(user)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestCheckPremiumTierQuota(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := &models.User{ID: uuid.New(), Tier: models.TierPremium}

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(&models.UsageRecord{RequestsCount: 50}, nil)

	status := limiter.Check(user)
	assert.True(t, status.Allowed)
	assert.Equal(t, 49, status.Remaining)
}

func TestCheckFailsOpenOnLookupError(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(nil, fmt.Errorf("connection refused"))

	status := limiter.Check(user)
	assert.True(t, status.Allowed)
	assert.Equal(t, 19, status.Remaining)
}

func TestCheckResetTimeIsNextUTCMidnight(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("GetDailyUsageFromDB", user.ID, mock.Anything).Return(&models.UsageRecord{}, nil)

	status := limiter.Check(user)
	assert.Equal(t, time.UTC, status.ResetTime.Location())
	assert.Equal(t, 0, status.ResetTime.Hour())
	assert.Equal(t, 0, status.ResetTime.Minute())
	assert.True(t, status.ResetTime.After(time.Now()))
	assert.LessOrEqual(t, time.Until(status.ResetTime), 24*time.Hour)
}

func TestIncrementComputesCost(t *testing.T) {
	usageDB := new(MockUsageServiceDB)
	limiter := newTestRateLimiter(usageDB)
	user := freeUser()

	usageDB.On("IncrementDailyUsageInDB", user.ID, mock.Anything, 1000, 0.002).Return(nil)

	assert.NoError(t, limiter.Increment(user, 1000))
	usageDB.AssertExpectations(t)
}
