package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// DealerReader provides read access to the sponsor tree
type DealerReader interface {
	GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	GetDealersBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]models.Dealer, error)
}

// TierRepository provides the ordered bonus tier ladder
type TierRepository interface {
	GetBonusTiers(ctx context.Context) ([]models.BonusTier, error)
}

// TurnoverReader provides per-period turnover figures
type TurnoverReader interface {
	GetTurnover(ctx context.Context, dealerID uuid.UUID, period string) (float64, error)
}

// PurchaseFlags carries the optional bonus bookkeeping flags on a team
// purchase; nil fields are left untouched
type PurchaseFlags struct {
	BonusesCalculated   *bool
	BonusesCalculatedAt *time.Time
	BonusesCalculatedBy *uuid.UUID
	BonusesApproved     *bool
	BonusesApprovedAt   *time.Time
	BonusesApprovedBy   *uuid.UUID
}

// PurchaseRepository provides access to team purchases and their members
type PurchaseRepository interface {
	GetTeamPurchase(ctx context.Context, id uuid.UUID) (*models.TeamPurchase, error)
	GetPurchasedMembers(ctx context.Context, purchaseID uuid.UUID) ([]models.TeamPurchaseMember, error)
	SetPurchaseFlags(ctx context.Context, purchaseID uuid.UUID, flags PurchaseFlags) error
}

// BonusRepository owns preview and final bonus rows. All status transitions
// are state-qualified updates: they return the number of rows actually moved
// so a concurrent second caller observes zero affected rows instead of
// double-processing.
type BonusRepository interface {
	GetPreviewRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.BonusPreview, error)
	ReplacePreviewRecords(ctx context.Context, purchaseID uuid.UUID, records []models.BonusPreview) error

	GetFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error)
	// InsertFinalRecords inserts final rows for a purchase+month, skipping any
	// (beneficiary, contributor) pair that already exists. Returns how many
	// rows were actually inserted.
	InsertFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string, records []models.MonthlyBonus) (int64, error)
	// UpdateCalculationStatus moves rows still in `from` to `to`, stamping the
	// approver when one is given.
	UpdateCalculationStatus(ctx context.Context, purchaseID uuid.UUID, month string, from, to models.BonusCalculationStatus, approverID *uuid.UUID) (int64, error)
	// UpdatePaymentStatus moves the given rows from one payment status to the
	// other. Used both to mark rows paid and to roll that back.
	UpdatePaymentStatus(ctx context.Context, ids []uuid.UUID, from, to models.BonusPaymentStatus) (int64, error)
	// SetBalanceTransactionID records the ledger transaction on a bonus row.
	// It only succeeds while the column is still null.
	SetBalanceTransactionID(ctx context.Context, bonusID, transactionID uuid.UUID) error

	GetPayableRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error)
	// GetPaidRecords returns every paid row for a purchase, transferred or
	// not; the ledger bridge splits them on BalanceTransactionID.
	GetPaidRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.MonthlyBonus, error)
}

// LedgerRepository creates balance transactions. Implementations must treat
// SourceRef as unique so that a retried credit for the same bonus row fails
// instead of crediting twice.
type LedgerRepository interface {
	CreateBalanceTransaction(ctx context.Context, dealerID uuid.UUID, amount float64, sourceRef, description string, metadata models.JSON) (*models.BalanceTransaction, error)
}
