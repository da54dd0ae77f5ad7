package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dealer represents a distributor in the sponsor tree. SponsorID points at the
// dealer who recruited this one; a nil SponsorID marks a root of the forest.
type Dealer struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName        string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName         string         `gorm:"type:varchar(100)" json:"last_name"`
	SponsorID        *uuid.UUID     `gorm:"type:uuid;index" json:"sponsor_id"`
	Sponsor          *Dealer        `gorm:"foreignKey:SponsorID" json:"-"`
	ReferralCode     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"referral_code"`
	PersonalTurnover float64        `gorm:"type:decimal(20,2);default:0" json:"personal_turnover"`
	PersonalLevel    int            `gorm:"default:0" json:"personal_level"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	IsAdmin          bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// DealerTurnover is a dealer's turnover for one period. Truncated is set when
// the descendant traversal hit the configured depth ceiling, in which case
// TeamTurnover is a lower bound rather than an exact figure.
type DealerTurnover struct {
	DealerID         uuid.UUID `json:"dealer_id"`
	Period           string    `json:"period"`
	PersonalTurnover float64   `json:"personal_turnover"`
	TeamTurnover     float64   `json:"team_turnover"`
	TotalTurnover    float64   `json:"total_turnover"`
	Truncated        bool      `json:"truncated"`
}
