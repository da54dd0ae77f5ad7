package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowline/backend/internal/models"
)

type countingTierRepo struct {
	calls int
	tiers []models.BonusTier
}

func (c *countingTierRepo) GetBonusTiers(ctx context.Context) ([]models.BonusTier, error) {
	c.calls++
	return c.tiers, nil
}

func TestCachedTierRepositoryServesFromCache(t *testing.T) {
	inner := &countingTierRepo{tiers: []models.BonusTier{{Name: "Consultant", BonusPercent: 8}}}
	cached := NewCachedTierRepository(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tiers, err := cached.GetBonusTiers(ctx)
		require.NoError(t, err)
		assert.Len(t, tiers, 1)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedTierRepositoryInvalidate(t *testing.T) {
	inner := &countingTierRepo{tiers: []models.BonusTier{{Name: "Consultant", BonusPercent: 8}}}
	cached := NewCachedTierRepository(inner, time.Minute)
	ctx := context.Background()

	_, err := cached.GetBonusTiers(ctx)
	require.NoError(t, err)

	inner.tiers = append(inner.tiers, models.BonusTier{Name: "Manager", BonusPercent: 10})
	cached.Invalidate()

	tiers, err := cached.GetBonusTiers(ctx)
	require.NoError(t, err)
	assert.Len(t, tiers, 2)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedTierRepositoryTTLExpiry(t *testing.T) {
	inner := &countingTierRepo{tiers: []models.BonusTier{{Name: "Consultant", BonusPercent: 8}}}
	cached := NewCachedTierRepository(inner, time.Nanosecond)
	ctx := context.Background()

	_, err := cached.GetBonusTiers(ctx)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = cached.GetBonusTiers(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
