package tiers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowline/backend/internal/models"
)

type fakeTierRepository struct {
	tiers []models.BonusTier
}

func (f *fakeTierRepository) GetBonusTiers(ctx context.Context) ([]models.BonusTier, error) {
	return f.tiers, nil
}

func amountPtr(v float64) *float64 { return &v }

func defaultLadder() []models.BonusTier {
	return []models.BonusTier{
		{Name: "Consultant", MinAmount: 0, MaxAmount: amountPtr(500000), BonusPercent: 8, SortOrder: 1},
		{Name: "Manager", MinAmount: 500000, MaxAmount: amountPtr(1000000), BonusPercent: 10, SortOrder: 2},
		{Name: "Director", MinAmount: 1000000, MaxAmount: nil, BonusPercent: 13, SortOrder: 3},
	}
}

func newTestService(tiers []models.BonusTier) *Service {
	return NewService(&fakeTierRepository{tiers: tiers})
}

func TestTierForBandBoundaries(t *testing.T) {
	svc := newTestService(defaultLadder())
	ctx := context.Background()

	cases := []struct {
		amount float64
		want   string
	}{
		{0, "Consultant"},
		{499999.99, "Consultant"},
		{500000, "Manager"},
		{999999.99, "Manager"},
		{1000000, "Director"},
		{50000000, "Director"},
	}
	for _, tc := range cases {
		tier, err := svc.TierFor(ctx, tc.amount)
		require.NoError(t, err)
		require.NotNil(t, tier, "amount %.2f", tc.amount)
		assert.Equal(t, tc.want, tier.Name, "amount %.2f", tc.amount)
	}
}

func TestTierForBelowLowestBand(t *testing.T) {
	ladder := defaultLadder()
	ladder[0].MinAmount = 100000
	svc := newTestService(ladder)

	tier, err := svc.TierFor(context.Background(), 50000)
	require.NoError(t, err)
	assert.Nil(t, tier)
}

func TestPercentForMissingTierIsZero(t *testing.T) {
	ladder := defaultLadder()
	ladder[0].MinAmount = 100000
	svc := newTestService(ladder)

	percent, err := svc.PercentFor(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, percent)
}

func TestPercentFor(t *testing.T) {
	svc := newTestService(defaultLadder())

	percent, err := svc.PercentFor(context.Background(), 750000)
	require.NoError(t, err)
	assert.Equal(t, 10.0, percent)
}

func TestNextTierProgress(t *testing.T) {
	svc := newTestService(defaultLadder())

	progress, err := svc.NextTier(context.Background(), 250000)
	require.NoError(t, err)
	require.NotNil(t, progress.Current)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "Consultant", progress.Current.Name)
	assert.Equal(t, "Manager", progress.Next.Name)
	assert.Equal(t, 250000.0, progress.AmountRemaining)
	assert.InDelta(t, 50, progress.ProgressPercent, 0.001)
}

func TestNextTierAtTopOfLadder(t *testing.T) {
	svc := newTestService(defaultLadder())

	progress, err := svc.NextTier(context.Background(), 2000000)
	require.NoError(t, err)
	require.NotNil(t, progress.Current)
	assert.Equal(t, "Director", progress.Current.Name)
	assert.Nil(t, progress.Next)
	assert.Equal(t, 100.0, progress.ProgressPercent)
	assert.Zero(t, progress.AmountRemaining)
}

func TestNextTierBelowLowestBand(t *testing.T) {
	ladder := defaultLadder()
	ladder[0].MinAmount = 100000
	svc := newTestService(ladder)

	progress, err := svc.NextTier(context.Background(), 25000)
	require.NoError(t, err)
	assert.Nil(t, progress.Current)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "Consultant", progress.Next.Name)
	assert.Equal(t, 75000.0, progress.AmountRemaining)
	assert.InDelta(t, 25, progress.ProgressPercent, 0.001)
}

func TestValidateMonotonic(t *testing.T) {
	svc := newTestService(defaultLadder())
	assert.NoError(t, svc.ValidateMonotonic(context.Background()))

	broken := defaultLadder()
	broken[2].BonusPercent = 5
	svc = newTestService(broken)
	err := svc.ValidateMonotonic(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Director")
}
