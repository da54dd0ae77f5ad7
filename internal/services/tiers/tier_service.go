package tiers

import (
	"context"
	"fmt"
	"sort"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
)

// Progress describes where an amount sits on the tier ladder, for UI progress
// bars. Next is nil on the top tier; ProgressPercent is clamped to [0,100].
type Progress struct {
	Current         *models.BonusTier `json:"current_tier"`
	Next            *models.BonusTier `json:"next_tier"`
	AmountRemaining float64           `json:"amount_remaining"`
	ProgressPercent float64           `json:"progress_percent"`
}

// Service answers tier lookups over the ordered bonus tier ladder
type Service struct {
	tiers repository.TierRepository
}

// NewService creates a new tier service
func NewService(tiers repository.TierRepository) *Service {
	return &Service{tiers: tiers}
}

// ladder returns the tiers sorted by MinAmount ascending
func (s *Service) ladder(ctx context.Context) ([]models.BonusTier, error) {
	tiers, err := s.tiers.GetBonusTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading bonus tiers: %w", err)
	}
	sorted := make([]models.BonusTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinAmount < sorted[j].MinAmount })
	return sorted, nil
}

// TierFor returns the tier whose [MinAmount, MaxAmount) band contains amount,
// or nil when amount is below the lowest band. Should two bands ever overlap,
// the one with the highest MinAmount wins.
func (s *Service) TierFor(ctx context.Context, amount float64) (*models.BonusTier, error) {
	ladder, err := s.ladder(ctx)
	if err != nil {
		return nil, err
	}
	return tierFor(ladder, amount), nil
}

func tierFor(ladder []models.BonusTier, amount float64) *models.BonusTier {
	// walk from the top so the highest containing band wins
	for i := len(ladder) - 1; i >= 0; i-- {
		if ladder[i].Contains(amount) {
			tier := ladder[i]
			return &tier
		}
	}
	return nil
}

// PercentFor returns the bonus percent for an amount, treating "no tier" as 0
func (s *Service) PercentFor(ctx context.Context, amount float64) (float64, error) {
	tier, err := s.TierFor(ctx, amount)
	if err != nil {
		return 0, err
	}
	if tier == nil {
		return 0, nil
	}
	return tier.BonusPercent, nil
}

// NextTier reports the current tier, the next one up, and how far along the
// distance between the two band floors the amount already is
func (s *Service) NextTier(ctx context.Context, amount float64) (*Progress, error) {
	ladder, err := s.ladder(ctx)
	if err != nil {
		return nil, err
	}

	progress := &Progress{Current: tierFor(ladder, amount)}

	for i := range ladder {
		if ladder[i].MinAmount > amount {
			next := ladder[i]
			progress.Next = &next
			break
		}
	}
	if progress.Next == nil {
		progress.ProgressPercent = 100
		return progress, nil
	}

	progress.AmountRemaining = progress.Next.MinAmount - amount

	floor := 0.0
	if progress.Current != nil {
		floor = progress.Current.MinAmount
	}
	span := progress.Next.MinAmount - floor
	if span > 0 {
		progress.ProgressPercent = (amount - floor) / span * 100
	}
	if progress.ProgressPercent < 0 {
		progress.ProgressPercent = 0
	}
	if progress.ProgressPercent > 100 {
		progress.ProgressPercent = 100
	}

	return progress, nil
}

// ValidateMonotonic checks that bonus percent never decreases as the band
// floors rise. The differential commission relies on this to stay non-negative.
func (s *Service) ValidateMonotonic(ctx context.Context) error {
	ladder, err := s.ladder(ctx)
	if err != nil {
		return err
	}
	for i := 1; i < len(ladder); i++ {
		if ladder[i].BonusPercent < ladder[i-1].BonusPercent {
			return fmt.Errorf("bonus tier %q (%.2f%%) pays less than lower tier %q (%.2f%%)",
				ladder[i].Name, ladder[i].BonusPercent, ladder[i-1].Name, ladder[i-1].BonusPercent)
		}
	}
	return nil
}
