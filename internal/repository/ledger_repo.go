package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/utils"
)

// GormLedgerRepository writes balance transactions to PostgreSQL
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new ledger repository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// CreateBalanceTransaction credits a dealer's balance and records the movement
// in one database transaction. The unique index on source_ref rejects a second
// credit for the same bonus row.
func (r *GormLedgerRepository) CreateBalanceTransaction(ctx context.Context, dealerID uuid.UUID, amount float64, sourceRef, description string, metadata models.JSON) (*models.BalanceTransaction, error) {
	var transaction models.BalanceTransaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance models.Balance
		err := tx.Clauses(forUpdate()).Where("dealer_id = ?", dealerID).First(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			balance = models.Balance{DealerID: dealerID, Amount: 0}
			if err := tx.Create(&balance).Error; err != nil {
				return fmt.Errorf("error creating balance: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("error finding balance: %w", err)
		}

		balanceBefore := balance.Amount
		balance.Amount += amount
		if err := tx.Save(&balance).Error; err != nil {
			return fmt.Errorf("error updating balance: %w", err)
		}

		transaction = models.BalanceTransaction{
			BalanceID:     balance.ID,
			DealerID:      dealerID,
			Type:          "bonus_payout",
			Amount:        amount,
			Reference:     utils.GenerateReference("BNS"),
			SourceRef:     sourceRef,
			Description:   description,
			MetaData:      metadata,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balance.Amount,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("error creating balance transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}
