package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Balance represents a dealer's bonus balance
type Balance struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	DealerID  uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"dealer_id"`
	Dealer    Dealer         `gorm:"foreignKey:DealerID" json:"-"`
	Amount    float64        `gorm:"type:decimal(20,2);default:0" json:"amount"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BalanceTransaction is one movement on a dealer's balance. SourceRef carries
// the identifier of the record that produced the movement (e.g. a monthly
// bonus row) and is unique, which is what makes crediting retry-safe.
type BalanceTransaction struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	BalanceID     uuid.UUID      `gorm:"type:uuid;index" json:"balance_id"`
	Balance       Balance        `gorm:"foreignKey:BalanceID" json:"-"`
	DealerID      uuid.UUID      `gorm:"type:uuid;index" json:"dealer_id"`
	Type          string         `gorm:"type:varchar(50);not null" json:"type"` // bonus_payout, withdrawal, adjustment
	Amount        float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Reference     string         `gorm:"type:varchar(100)" json:"reference"`
	SourceRef     string         `gorm:"type:varchar(100);uniqueIndex" json:"source_ref"`
	Description   string         `gorm:"type:text" json:"description"`
	MetaData      JSON           `gorm:"type:jsonb" json:"metadata"`
	BalanceBefore float64        `gorm:"type:decimal(20,2)" json:"balance_before"`
	BalanceAfter  float64        `gorm:"type:decimal(20,2)" json:"balance_after"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
