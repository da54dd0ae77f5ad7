package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glowline/backend/internal/models"
)

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// GormTurnoverReader computes per-period turnover from purchased team
// purchase memberships
type GormTurnoverReader struct {
	db *gorm.DB
}

// NewGormTurnoverReader creates a new turnover reader
func NewGormTurnoverReader(db *gorm.DB) *GormTurnoverReader {
	return &GormTurnoverReader{db: db}
}

// GetTurnover sums a dealer's own paid contributions across team purchases
// completed in the period (period format "2006-01")
func (r *GormTurnoverReader) GetTurnover(ctx context.Context, dealerID uuid.UUID, period string) (float64, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return 0, fmt.Errorf("invalid turnover period %q: %w", period, err)
	}
	end := start.AddDate(0, 1, 0)

	var total *float64
	err = r.db.WithContext(ctx).
		Table("team_purchase_members").
		Select("sum(team_purchase_members.contribution_actual)").
		Joins("inner join team_purchases on team_purchases.id = team_purchase_members.team_purchase_id").
		Where("team_purchase_members.dealer_id = ?", dealerID).
		Where("team_purchase_members.status = ?", models.MemberStatusPurchased).
		Where("team_purchases.status = ?", models.TeamPurchaseStatusCompleted).
		Where("team_purchases.completed_at >= ? AND team_purchases.completed_at < ?", start, end).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("error computing turnover: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
