package models

import (
	"time"

	"github.com/google/uuid"
)

// BonusTier is one band of the turnover ladder. Bands are contiguous and
// non-overlapping over [0, inf); MaxAmount nil means open-ended. BonusPercent
// must be non-decreasing with MinAmount across the ordered ladder, otherwise
// the differential commission could go negative.
type BonusTier struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	MinAmount    float64   `gorm:"type:decimal(20,2);not null" json:"min_amount"`
	MaxAmount    *float64  `gorm:"type:decimal(20,2)" json:"max_amount"`
	BonusPercent float64   `gorm:"type:decimal(5,2);not null" json:"bonus_percent"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Contains reports whether amount falls inside [MinAmount, MaxAmount).
func (t *BonusTier) Contains(amount float64) bool {
	if amount < t.MinAmount {
		return false
	}
	if t.MaxAmount != nil && amount >= *t.MaxAmount {
		return false
	}
	return true
}
