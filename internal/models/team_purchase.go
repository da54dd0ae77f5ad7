package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamPurchaseStatus represents the lifecycle of a team purchase
type TeamPurchaseStatus string

const (
	TeamPurchaseStatusForming    TeamPurchaseStatus = "forming"
	TeamPurchaseStatusActive     TeamPurchaseStatus = "active"
	TeamPurchaseStatusPurchasing TeamPurchaseStatus = "purchasing"
	TeamPurchaseStatusConfirming TeamPurchaseStatus = "confirming"
	TeamPurchaseStatusCompleted  TeamPurchaseStatus = "completed"
	TeamPurchaseStatusCancelled  TeamPurchaseStatus = "cancelled"
)

// TeamPurchaseMemberStatus represents a member's standing within a team purchase
type TeamPurchaseMemberStatus string

const (
	MemberStatusInvited   TeamPurchaseMemberStatus = "invited"
	MemberStatusAccepted  TeamPurchaseMemberStatus = "accepted"
	MemberStatusPurchased TeamPurchaseMemberStatus = "purchased"
	MemberStatusLeft      TeamPurchaseMemberStatus = "left"
	MemberStatusRemoved   TeamPurchaseMemberStatus = "removed"
)

// TeamPurchase represents a collective order placed by a group of dealers.
// BonusesCalculated may only become true once Status is completed, and
// BonusesApproved implies BonusesCalculated.
type TeamPurchase struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	InitiatorID         uuid.UUID          `gorm:"type:uuid;not null" json:"initiator_id"`
	Initiator           Dealer             `gorm:"foreignKey:InitiatorID" json:"-"`
	Title               string             `gorm:"type:varchar(255)" json:"title"`
	Status              TeamPurchaseStatus `gorm:"type:varchar(20);not null;default:'forming'" json:"status"`
	TargetAmount        float64            `gorm:"type:decimal(20,2);not null" json:"target_amount"`
	CollectedAmount     float64            `gorm:"type:decimal(20,2);default:0" json:"collected_amount"`
	PaidAmount          float64            `gorm:"type:decimal(20,2);default:0" json:"paid_amount"`
	BonusesCalculated   bool               `gorm:"default:false" json:"bonuses_calculated"`
	BonusesCalculatedAt *time.Time         `json:"bonuses_calculated_at"`
	BonusesCalculatedBy *uuid.UUID         `gorm:"type:uuid" json:"bonuses_calculated_by"`
	BonusesApproved     bool               `gorm:"default:false" json:"bonuses_approved"`
	BonusesApprovedAt   *time.Time         `json:"bonuses_approved_at"`
	BonusesApprovedBy   *uuid.UUID         `gorm:"type:uuid" json:"bonuses_approved_by"`
	CompletedAt         *time.Time         `json:"completed_at"`
	CreatedAt           time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt           gorm.DeletedAt     `gorm:"index" json:"-"`
}

// TeamPurchaseMember links a dealer to a team purchase. Only members with
// status purchased participate in bonus computation.
type TeamPurchaseMember struct {
	ID                 uuid.UUID                `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	TeamPurchaseID     uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_member" json:"team_purchase_id"`
	TeamPurchase       TeamPurchase             `gorm:"foreignKey:TeamPurchaseID" json:"-"`
	DealerID           uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_member" json:"dealer_id"`
	Dealer             Dealer                   `gorm:"foreignKey:DealerID" json:"-"`
	Status             TeamPurchaseMemberStatus `gorm:"type:varchar(20);not null;default:'invited'" json:"status"`
	ContributionActual float64                  `gorm:"type:decimal(20,2);default:0" json:"contribution_actual"`
	PurchasedAt        *time.Time               `json:"purchased_at"`
	CreatedAt          time.Time                `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt          gorm.DeletedAt           `gorm:"index" json:"-"`
}
