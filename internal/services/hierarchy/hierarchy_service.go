package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
)

// DefaultMaxDepth bounds every traversal of the sponsor tree. The tree is
// acyclic by construction but that is not enforced at runtime, so the bound
// turns a corrupted parent chain into a logged anomaly instead of a hang.
const DefaultMaxDepth = 50

// ErrNotAncestor is returned by HierarchyLevel when no path exists between the
// two dealers within the depth bound
var ErrNotAncestor = errors.New("dealer is not an ancestor")

// Service resolves positions in the sponsor tree
type Service struct {
	dealers  repository.DealerReader
	maxDepth int
}

// NewService creates a new hierarchy service. maxDepth <= 0 selects the default.
func NewService(dealers repository.DealerReader, maxDepth int) *Service {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Service{dealers: dealers, maxDepth: maxDepth}
}

// AncestorChain returns a dealer's sponsors, nearest first. The walk stops at
// a root (nil sponsor), at the depth bound, or when it would revisit a dealer.
func (s *Service) AncestorChain(ctx context.Context, dealerID uuid.UUID) ([]models.Dealer, error) {
	dealer, err := s.dealers.GetDealer(ctx, dealerID)
	if err != nil {
		return nil, fmt.Errorf("error resolving dealer %s: %w", dealerID, err)
	}

	visited := map[uuid.UUID]bool{dealer.ID: true}
	chain := make([]models.Dealer, 0)

	current := dealer
	for depth := 0; current.SponsorID != nil; depth++ {
		if depth >= s.maxDepth {
			log.Printf("ancestor chain for dealer %s exceeded depth bound %d, truncating", dealerID, s.maxDepth)
			break
		}
		if visited[*current.SponsorID] {
			log.Printf("cycle detected in sponsor chain at dealer %s (starting from %s)", *current.SponsorID, dealerID)
			break
		}

		sponsor, err := s.dealers.GetDealer(ctx, *current.SponsorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("dealer %s references missing sponsor %s", current.ID, *current.SponsorID)
				break
			}
			return nil, fmt.Errorf("error resolving sponsor %s: %w", *current.SponsorID, err)
		}

		visited[sponsor.ID] = true
		chain = append(chain, *sponsor)
		current = sponsor
	}

	return chain, nil
}

// Descendants returns every dealer reachable by following child links from the
// given dealer, excluding the dealer itself. The traversal is breadth-first,
// one level per repository call, bounded by maxDepth; the second return value
// reports whether the bound truncated the result.
func (s *Service) Descendants(ctx context.Context, dealerID uuid.UUID) ([]uuid.UUID, bool, error) {
	visited := map[uuid.UUID]bool{dealerID: true}
	result := make([]uuid.UUID, 0)
	frontier := []uuid.UUID{dealerID}
	truncated := false

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= s.maxDepth {
			log.Printf("descendant traversal for dealer %s exceeded depth bound %d, truncating", dealerID, s.maxDepth)
			truncated = true
			break
		}

		next := make([]uuid.UUID, 0)
		for _, id := range frontier {
			children, err := s.dealers.GetDealersBySponsor(ctx, id)
			if err != nil {
				return nil, false, fmt.Errorf("error expanding downline of %s: %w", id, err)
			}
			for _, child := range children {
				if visited[child.ID] {
					log.Printf("cycle detected in downline of dealer %s at %s", dealerID, child.ID)
					continue
				}
				visited[child.ID] = true
				result = append(result, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	return result, truncated, nil
}

// HierarchyLevel returns the distance from ancestor to descendant, where 1 is
// a direct sponsor. ErrNotAncestor is returned when no path exists within the
// depth bound.
func (s *Service) HierarchyLevel(ctx context.Context, ancestorID, descendantID uuid.UUID) (int, error) {
	chain, err := s.AncestorChain(ctx, descendantID)
	if err != nil {
		return 0, err
	}
	for i, dealer := range chain {
		if dealer.ID == ancestorID {
			return i + 1, nil
		}
	}
	return 0, ErrNotAncestor
}
