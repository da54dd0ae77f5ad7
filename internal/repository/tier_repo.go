package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/glowline/backend/internal/models"
)

// GormTierRepository reads the bonus tier ladder from PostgreSQL
type GormTierRepository struct {
	db *gorm.DB
}

// NewGormTierRepository creates a new tier repository
func NewGormTierRepository(db *gorm.DB) *GormTierRepository {
	return &GormTierRepository{db: db}
}

// GetBonusTiers returns all tiers ordered by sort order
func (r *GormTierRepository) GetBonusTiers(ctx context.Context) ([]models.BonusTier, error) {
	var tiers []models.BonusTier
	if err := r.db.WithContext(ctx).Order("sort_order asc").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("error finding bonus tiers: %w", err)
	}
	return tiers, nil
}

// CachedTierRepository decorates a TierRepository with a bounded-TTL cache.
// The tier ladder is seeded once and rarely changes, so a short TTL keeps the
// hot path off the database without letting a stale ladder live forever.
type CachedTierRepository struct {
	inner TierRepository
	ttl   time.Duration

	mu        sync.RWMutex
	tiers     []models.BonusTier
	fetchedAt time.Time
}

// NewCachedTierRepository wraps a tier repository with caching
func NewCachedTierRepository(inner TierRepository, ttl time.Duration) *CachedTierRepository {
	return &CachedTierRepository{inner: inner, ttl: ttl}
}

// GetBonusTiers returns the cached ladder, refreshing it when the TTL expires
func (c *CachedTierRepository) GetBonusTiers(ctx context.Context) ([]models.BonusTier, error) {
	c.mu.RLock()
	if c.tiers != nil && time.Since(c.fetchedAt) < c.ttl {
		tiers := c.tiers
		c.mu.RUnlock()
		return tiers, nil
	}
	c.mu.RUnlock()

	tiers, err := c.inner.GetBonusTiers(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tiers = tiers
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return tiers, nil
}

// Invalidate drops the cached ladder so the next read hits the database
func (c *CachedTierRepository) Invalidate() {
	c.mu.Lock()
	c.tiers = nil
	c.mu.Unlock()
}
