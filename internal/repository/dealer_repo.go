package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowline/backend/internal/models"
)

// GormDealerRepository reads dealers from PostgreSQL
type GormDealerRepository struct {
	db *gorm.DB
}

// NewGormDealerRepository creates a new dealer repository
func NewGormDealerRepository(db *gorm.DB) *GormDealerRepository {
	return &GormDealerRepository{db: db}
}

// GetDealer returns a dealer by ID
func (r *GormDealerRepository) GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).First(&dealer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding dealer: %w", err)
	}
	return &dealer, nil
}

// GetDealersBySponsor returns the direct downline of a dealer
func (r *GormDealerRepository) GetDealersBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]models.Dealer, error) {
	var dealers []models.Dealer
	if err := r.db.WithContext(ctx).Where("sponsor_id = ?", sponsorID).Find(&dealers).Error; err != nil {
		return nil, fmt.Errorf("error finding downline dealers: %w", err)
	}
	return dealers, nil
}
