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

// GormBonusRepository owns bonus preview and final rows in PostgreSQL
type GormBonusRepository struct {
	db *gorm.DB
}

// NewGormBonusRepository creates a new bonus repository
func NewGormBonusRepository(db *gorm.DB) *GormBonusRepository {
	return &GormBonusRepository{db: db}
}

// GetPreviewRecords returns the current preview rows for a purchase
func (r *GormBonusRepository) GetPreviewRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.BonusPreview, error) {
	var records []models.BonusPreview
	err := r.db.WithContext(ctx).
		Where("team_purchase_id = ?", purchaseID).
		Order("hierarchy_level asc, bonus_amount desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error finding preview records: %w", err)
	}
	return records, nil
}

// ReplacePreviewRecords swaps out every preview row for a purchase in one
// transaction. Last writer wins; the preview is a projection, not money.
func (r *GormBonusRepository) ReplacePreviewRecords(ctx context.Context, purchaseID uuid.UUID, records []models.BonusPreview) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_purchase_id = ?", purchaseID).Delete(&models.BonusPreview{}).Error; err != nil {
			return fmt.Errorf("error clearing preview records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("error inserting preview records: %w", err)
		}
		return nil
	})
}

// GetFinalRecords returns the final rows for a purchase and month
func (r *GormBonusRepository) GetFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error) {
	var records []models.MonthlyBonus
	err := r.db.WithContext(ctx).
		Where("team_purchase_id = ? AND bonus_month = ?", purchaseID, month).
		Order("hierarchy_level asc, bonus_amount desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error finding final bonus records: %w", err)
	}
	return records, nil
}

// InsertFinalRecords inserts final rows for a purchase+month. The unique index
// on (purchase, month, beneficiary, contributor) plus ON CONFLICT DO NOTHING
// makes a concurrent second finalize insert zero rows instead of duplicating.
func (r *GormBonusRepository) InsertFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string, records []models.MonthlyBonus) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for i := range records {
		records[i].TeamPurchaseID = purchaseID
		records[i].BonusMonth = month
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records)
	if result.Error != nil {
		return 0, fmt.Errorf("error inserting final bonus records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateCalculationStatus moves rows still in `from` to `to`
func (r *GormBonusRepository) UpdateCalculationStatus(ctx context.Context, purchaseID uuid.UUID, month string, from, to models.BonusCalculationStatus, approverID *uuid.UUID) (int64, error) {
	updates := map[string]interface{}{
		"calculation_status": to,
		"updated_at":         time.Now(),
	}
	if approverID != nil {
		now := time.Now()
		updates["approved_by"] = *approverID
		updates["approved_at"] = now
	}
	result := r.db.WithContext(ctx).
		Model(&models.MonthlyBonus{}).
		Where("team_purchase_id = ? AND bonus_month = ? AND calculation_status = ?", purchaseID, month, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("error updating calculation status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdatePaymentStatus moves the given rows from one payment status to the other
func (r *GormBonusRepository) UpdatePaymentStatus(ctx context.Context, ids []uuid.UUID, from, to models.BonusPaymentStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updates := map[string]interface{}{
		"payment_status": to,
		"updated_at":     time.Now(),
	}
	if to == models.BonusPaymentStatusPaid {
		updates["paid_at"] = time.Now()
	} else {
		updates["paid_at"] = nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.MonthlyBonus{}).
		Where("id IN ? AND payment_status = ?", ids, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("error updating payment status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SetBalanceTransactionID records the ledger transaction on a bonus row,
// guarded so the column can only move from null to a value
func (r *GormBonusRepository) SetBalanceTransactionID(ctx context.Context, bonusID, transactionID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.MonthlyBonus{}).
		Where("id = ? AND balance_transaction_id IS NULL", bonusID).
		Update("balance_transaction_id", transactionID)
	if result.Error != nil {
		return fmt.Errorf("error setting balance transaction id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bonus record %s already has a balance transaction", bonusID)
	}
	return nil
}

// GetPayableRecords returns approved rows that have not been paid yet
func (r *GormBonusRepository) GetPayableRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error) {
	var records []models.MonthlyBonus
	err := r.db.WithContext(ctx).
		Where("team_purchase_id = ? AND bonus_month = ? AND calculation_status = ? AND payment_status = ?",
			purchaseID, month, models.BonusCalculationStatusApproved, models.BonusPaymentStatusPending).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error finding payable records: %w", err)
	}
	return records, nil
}

// GetPaidRecords returns every paid row for a purchase
func (r *GormBonusRepository) GetPaidRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.MonthlyBonus, error) {
	var records []models.MonthlyBonus
	err := r.db.WithContext(ctx).
		Where("team_purchase_id = ? AND payment_status = ?", purchaseID, models.BonusPaymentStatusPaid).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error finding paid records: %w", err)
	}
	return records, nil
}
