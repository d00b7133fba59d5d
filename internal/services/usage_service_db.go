package services

import (
	"time"

	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageServiceDB defines the interface for daily usage persistence
type UsageServiceDB interface {
	GetDailyUsageFromDB(userID uuid.UUID, day time.Time) (*models.UsageRecord, error)
	IncrementDailyUsageInDB(userID uuid.UUID, day time.Time, tokensUsed int, costUSD float64) error
}

// DefaultUsageService implements UsageServiceDB
type DefaultUsageService struct {
	db *gorm.DB
}

func NewUsageServiceDB(db *gorm.DB) UsageServiceDB {
	return &DefaultUsageService{db: db}
}

// GetDailyUsageFromDB returns the usage row for the given day, or a zero
// record when the user has not asked anything yet today.
func (s *DefaultUsageService) GetDailyUsageFromDB(userID uuid.UUID, day time.Time) (*models.UsageRecord, error) {
	var record models.UsageRecord
	result := s.db.Where("user_id = ? AND usage_date = ?", userID, day.UTC().Format("2006-01-02")).First(&record)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return &models.UsageRecord{UserID: userID, UsageDate: day}, nil
		}
		return nil, result.Error
	}
	return &record, nil
}

// IncrementDailyUsageInDB upserts the day's usage row with a database-level
// atomic increment, so two racing requests never lose a count.
func (s *DefaultUsageService) IncrementDailyUsageInDB(userID uuid.UUID, day time.Time, tokensUsed int, costUSD float64) error {
	record := models.UsageRecord{
		UserID:        userID,
		UsageDate:     day,
		RequestsCount: 1,
		TokensUsed:    tokensUsed,
		CostUSD:       costUSD,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "usage_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"requests_count": gorm.Expr("usage_records.requests_count + 1"),
			"tokens_used":    gorm.Expr("usage_records.tokens_used + ?", tokensUsed),
			"cost_usd":       gorm.Expr("usage_records.cost_usd + ?", costUSD),
			"updated_at":     time.Now(),
		}),
	}).Create(&record).Error
}
