package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowline/backend/internal/models"
)

// GormPurchaseRepository reads and updates team purchases in PostgreSQL
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new purchase repository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// GetTeamPurchase returns a team purchase by ID
func (r *GormPurchaseRepository) GetTeamPurchase(ctx context.Context, id uuid.UUID) (*models.TeamPurchase, error) {
	var purchase models.TeamPurchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding team purchase: %w", err)
	}
	return &purchase, nil
}

// GetPurchasedMembers returns the members of a purchase that actually bought
func (r *GormPurchaseRepository) GetPurchasedMembers(ctx context.Context, purchaseID uuid.UUID) ([]models.TeamPurchaseMember, error) {
	var members []models.TeamPurchaseMember
	err := r.db.WithContext(ctx).
		Where("team_purchase_id = ? AND status = ?", purchaseID, models.MemberStatusPurchased).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("error finding purchased members: %w", err)
	}
	return members, nil
}

// SetPurchaseFlags updates the bonus bookkeeping flags on a purchase
func (r *GormPurchaseRepository) SetPurchaseFlags(ctx context.Context, purchaseID uuid.UUID, flags PurchaseFlags) error {
	updates := map[string]interface{}{}
	if flags.BonusesCalculated != nil {
		updates["bonuses_calculated"] = *flags.BonusesCalculated
		updates["bonuses_calculated_at"] = flags.BonusesCalculatedAt
		updates["bonuses_calculated_by"] = flags.BonusesCalculatedBy
	}
	if flags.BonusesApproved != nil {
		updates["bonuses_approved"] = *flags.BonusesApproved
		updates["bonuses_approved_at"] = flags.BonusesApprovedAt
		updates["bonuses_approved_by"] = flags.BonusesApprovedBy
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.TeamPurchase{}).
		Where("id = ?", purchaseID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("error updating purchase flags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
