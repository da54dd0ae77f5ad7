package hierarchy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
)

type fakeDealerReader struct {
	dealers map[uuid.UUID]*models.Dealer
}

func newFakeDealerReader() *fakeDealerReader {
	return &fakeDealerReader{dealers: make(map[uuid.UUID]*models.Dealer)}
}

func (f *fakeDealerReader) add(id uuid.UUID, sponsorID *uuid.UUID) {
	f.dealers[id] = &models.Dealer{ID: id, SponsorID: sponsorID}
}

func (f *fakeDealerReader) GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	dealer, ok := f.dealers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return dealer, nil
}

func (f *fakeDealerReader) GetDealersBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]models.Dealer, error) {
	var children []models.Dealer
	for _, dealer := range f.dealers {
		if dealer.SponsorID != nil && *dealer.SponsorID == sponsorID {
			children = append(children, *dealer)
		}
	}
	return children, nil
}

func TestAncestorChainNearestFirst(t *testing.T) {
	reader := newFakeDealerReader()
	root := uuid.New()
	mid := uuid.New()
	leaf := uuid.New()
	reader.add(root, nil)
	reader.add(mid, &root)
	reader.add(leaf, &mid)

	svc := NewService(reader, 0)

	chain, err := svc.AncestorChain(context.Background(), leaf)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, mid, chain[0].ID)
	assert.Equal(t, root, chain[1].ID)
}

func TestAncestorChainRootHasNoAncestors(t *testing.T) {
	reader := newFakeDealerReader()
	root := uuid.New()
	reader.add(root, nil)

	svc := NewService(reader, 0)

	chain, err := svc.AncestorChain(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestAncestorChainUnknownDealer(t *testing.T) {
	svc := NewService(newFakeDealerReader(), 0)

	_, err := svc.AncestorChain(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAncestorChainStopsOnCycle(t *testing.T) {
	reader := newFakeDealerReader()
	a := uuid.New()
	b := uuid.New()
	reader.add(a, &b)
	reader.add(b, &a)

	svc := NewService(reader, 0)

	chain, err := svc.AncestorChain(context.Background(), a)
	require.NoError(t, err)
	// b is visited once, then the walk stops before revisiting a
	require.Len(t, chain, 1)
	assert.Equal(t, b, chain[0].ID)
}

func TestAncestorChainDepthBound(t *testing.T) {
	reader := newFakeDealerReader()
	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
	}
	reader.add(ids[0], nil)
	for i := 1; i < len(ids); i++ {
		reader.add(ids[i], &ids[i-1])
	}

	svc := NewService(reader, 3)

	chain, err := svc.AncestorChain(context.Background(), ids[9])
	require.NoError(t, err)
	assert.Len(t, chain, 3)
}

func TestAncestorChainMissingSponsorTruncates(t *testing.T) {
	reader := newFakeDealerReader()
	missing := uuid.New()
	dealer := uuid.New()
	reader.add(dealer, &missing)

	svc := NewService(reader, 0)

	chain, err := svc.AncestorChain(context.Background(), dealer)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestDescendantsLevelOrder(t *testing.T) {
	reader := newFakeDealerReader()
	root := uuid.New()
	child := uuid.New()
	grandchild := uuid.New()
	reader.add(root, nil)
	reader.add(child, &root)
	reader.add(grandchild, &child)

	svc := NewService(reader, 0)

	descendants, truncated, err := svc.Descendants(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, descendants, 2)
	assert.Equal(t, child, descendants[0])
	assert.Equal(t, grandchild, descendants[1])
}

func TestDescendantsTruncatedAtDepthBound(t *testing.T) {
	reader := newFakeDealerReader()
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}
	reader.add(ids[0], nil)
	for i := 1; i < len(ids); i++ {
		reader.add(ids[i], &ids[i-1])
	}

	svc := NewService(reader, 2)

	descendants, truncated, err := svc.Descendants(context.Background(), ids[0])
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, descendants, 2)
}

func TestHierarchyLevel(t *testing.T) {
	reader := newFakeDealerReader()
	root := uuid.New()
	mid := uuid.New()
	leaf := uuid.New()
	reader.add(root, nil)
	reader.add(mid, &root)
	reader.add(leaf, &mid)

	svc := NewService(reader, 0)

	level, err := svc.HierarchyLevel(context.Background(), mid, leaf)
	require.NoError(t, err)
	assert.Equal(t, 1, level)

	level, err = svc.HierarchyLevel(context.Background(), root, leaf)
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	_, err = svc.HierarchyLevel(context.Background(), leaf, root)
	assert.ErrorIs(t, err, ErrNotAncestor)
}
