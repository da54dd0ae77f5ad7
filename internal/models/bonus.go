package models

import (
	"time"

	"github.com/google/uuid"
)

// BonusCalculationStatus tracks the administrative review of a final bonus row
type BonusCalculationStatus string

const (
	BonusCalculationStatusCalculated BonusCalculationStatus = "calculated"
	BonusCalculationStatusApproved   BonusCalculationStatus = "approved"
)

// BonusPaymentStatus tracks whether a final bonus row has been paid out
type BonusPaymentStatus string

const (
	BonusPaymentStatusPending BonusPaymentStatus = "pending"
	BonusPaymentStatusPaid    BonusPaymentStatus = "paid"
)

// BonusPreview is a mutable projection of what each upline dealer would earn
// from a team purchase. Rows are replaced wholesale on every recompute; they
// carry no money and are safe to regenerate at any time.
type BonusPreview struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	TeamPurchaseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"team_purchase_id"`
	BeneficiaryID      uuid.UUID `gorm:"type:uuid;not null;index" json:"beneficiary_id"`
	ContributorID      uuid.UUID `gorm:"type:uuid;not null" json:"contributor_id"`
	HierarchyLevel     int       `gorm:"not null" json:"hierarchy_level"`
	ContributionAmount float64   `gorm:"type:decimal(20,2);not null" json:"contribution_amount"`
	BeneficiaryPercent float64   `gorm:"type:decimal(5,2);not null" json:"beneficiary_percent"`
	ContributorPercent float64   `gorm:"type:decimal(5,2);not null" json:"contributor_percent"`
	BonusAmount        float64   `gorm:"type:decimal(20,2);not null" json:"bonus_amount"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// MonthlyBonus is the immutable, audit-grade bonus record created from a
// preview snapshot when an administrator finalizes a purchase. At most one row
// exists per (purchase, month, beneficiary, contributor).
// BalanceTransactionID is set exactly once when the amount reaches a balance.
type MonthlyBonus struct {
	ID                   uuid.UUID              `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	TeamPurchaseID       uuid.UUID              `gorm:"type:uuid;not null;index;uniqueIndex:idx_monthly_bonus_unique" json:"team_purchase_id"`
	BonusMonth           string                 `gorm:"type:varchar(7);not null;uniqueIndex:idx_monthly_bonus_unique" json:"bonus_month"`
	BeneficiaryID        uuid.UUID              `gorm:"type:uuid;not null;index;uniqueIndex:idx_monthly_bonus_unique" json:"beneficiary_id"`
	ContributorID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_bonus_unique" json:"contributor_id"`
	HierarchyLevel       int                    `gorm:"not null" json:"hierarchy_level"`
	ContributionAmount   float64                `gorm:"type:decimal(20,2);not null" json:"contribution_amount"`
	BeneficiaryPercent   float64                `gorm:"type:decimal(5,2);not null" json:"beneficiary_percent"`
	ContributorPercent   float64                `gorm:"type:decimal(5,2);not null" json:"contributor_percent"`
	BonusAmount          float64                `gorm:"type:decimal(20,2);not null" json:"bonus_amount"`
	CalculationStatus    BonusCalculationStatus `gorm:"type:varchar(20);not null;default:'calculated'" json:"calculation_status"`
	PaymentStatus        BonusPaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	ApprovedBy           *uuid.UUID             `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt           *time.Time             `json:"approved_at"`
	PaidAt               *time.Time             `json:"paid_at"`
	BalanceTransactionID *uuid.UUID             `gorm:"type:uuid" json:"balance_transaction_id"`
	CreatedAt            time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BonusMonthOf formats the month key for final bonus rows
func BonusMonthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
