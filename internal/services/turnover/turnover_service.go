package turnover

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
	"github.com/glowline/backend/internal/services/hierarchy"
)

// Service aggregates personal and team turnover over the sponsor tree
type Service struct {
	turnover  repository.TurnoverReader
	hierarchy *hierarchy.Service
}

// NewService creates a new turnover service
func NewService(turnover repository.TurnoverReader, hierarchySvc *hierarchy.Service) *Service {
	return &Service{turnover: turnover, hierarchy: hierarchySvc}
}

// PersonalTurnover returns a dealer's own paid turnover for the period
func (s *Service) PersonalTurnover(ctx context.Context, dealerID uuid.UUID, period string) (float64, error) {
	amount, err := s.turnover.GetTurnover(ctx, dealerID, period)
	if err != nil {
		return 0, fmt.Errorf("error getting personal turnover for %s: %w", dealerID, err)
	}
	return amount, nil
}

// TeamTurnover sums the personal turnover of every descendant, excluding the
// dealer itself. When the descendant traversal hits the depth bound the sum is
// a lower-bound estimate and the truncated flag is set; it is never silently
// treated as exact.
func (s *Service) TeamTurnover(ctx context.Context, dealerID uuid.UUID, period string) (float64, bool, error) {
	descendants, truncated, err := s.hierarchy.Descendants(ctx, dealerID)
	if err != nil {
		return 0, false, fmt.Errorf("error resolving descendants of %s: %w", dealerID, err)
	}

	var total float64
	for _, id := range descendants {
		amount, err := s.turnover.GetTurnover(ctx, id, period)
		if err != nil {
			return 0, false, fmt.Errorf("error getting turnover for descendant %s: %w", id, err)
		}
		total += amount
	}
	return total, truncated, nil
}

// TotalTurnover returns the personal + team turnover breakdown used to place a
// dealer on the tier ladder
func (s *Service) TotalTurnover(ctx context.Context, dealerID uuid.UUID, period string) (*models.DealerTurnover, error) {
	personal, err := s.PersonalTurnover(ctx, dealerID, period)
	if err != nil {
		return nil, err
	}
	team, truncated, err := s.TeamTurnover(ctx, dealerID, period)
	if err != nil {
		return nil, err
	}
	return &models.DealerTurnover{
		DealerID:         dealerID,
		Period:           period,
		PersonalTurnover: personal,
		TeamTurnover:     team,
		TotalTurnover:    personal + team,
		Truncated:        truncated,
	}, nil
}
