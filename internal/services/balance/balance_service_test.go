package balance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowline/backend/internal/models"
)

type fakeBonusStore struct {
	records       []models.MonthlyBonus
	linkFailures  map[uuid.UUID]bool
	ledgerFailFor map[uuid.UUID]bool

	transactions map[string]*models.BalanceTransaction
	balances     map[uuid.UUID]float64
}

func newFakeBonusStore() *fakeBonusStore {
	return &fakeBonusStore{
		linkFailures:  make(map[uuid.UUID]bool),
		ledgerFailFor: make(map[uuid.UUID]bool),
		transactions:  make(map[string]*models.BalanceTransaction),
		balances:      make(map[uuid.UUID]float64),
	}
}

func (f *fakeBonusStore) addPaidRecord(beneficiary uuid.UUID, amount float64, transferred bool) uuid.UUID {
	record := models.MonthlyBonus{
		ID:            uuid.New(),
		BeneficiaryID: beneficiary,
		BonusAmount:   amount,
		PaymentStatus: models.BonusPaymentStatusPaid,
	}
	if transferred {
		transactionID := uuid.New()
		record.BalanceTransactionID = &transactionID
	}
	f.records = append(f.records, record)
	return record.ID
}

func (f *fakeBonusStore) GetPaidRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.MonthlyBonus, error) {
	return f.records, nil
}

func (f *fakeBonusStore) SetBalanceTransactionID(ctx context.Context, bonusID, transactionID uuid.UUID) error {
	if f.linkFailures[bonusID] {
		return errors.New("simulated link failure")
	}
	for i := range f.records {
		if f.records[i].ID == bonusID {
			f.records[i].BalanceTransactionID = &transactionID
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeBonusStore) CreateBalanceTransaction(ctx context.Context, dealerID uuid.UUID, amount float64, sourceRef, description string, metadata models.JSON) (*models.BalanceTransaction, error) {
	if f.ledgerFailFor[dealerID] {
		return nil, errors.New("simulated ledger failure")
	}
	if _, ok := f.transactions[sourceRef]; ok {
		return nil, fmt.Errorf("duplicate source ref %s", sourceRef)
	}
	transaction := &models.BalanceTransaction{
		ID:        uuid.New(),
		DealerID:  dealerID,
		Amount:    amount,
		SourceRef: sourceRef,
	}
	f.transactions[sourceRef] = transaction
	f.balances[dealerID] += amount
	return transaction, nil
}

// unused BonusRepository methods, the bridge never calls them
func (f *fakeBonusStore) GetPreviewRecords(ctx context.Context, purchaseID uuid.UUID) ([]models.BonusPreview, error) {
	return nil, nil
}
func (f *fakeBonusStore) ReplacePreviewRecords(ctx context.Context, purchaseID uuid.UUID, records []models.BonusPreview) error {
	return nil
}
func (f *fakeBonusStore) GetFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error) {
	return nil, nil
}
func (f *fakeBonusStore) InsertFinalRecords(ctx context.Context, purchaseID uuid.UUID, month string, records []models.MonthlyBonus) (int64, error) {
	return 0, nil
}
func (f *fakeBonusStore) UpdateCalculationStatus(ctx context.Context, purchaseID uuid.UUID, month string, from, to models.BonusCalculationStatus, approverID *uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeBonusStore) UpdatePaymentStatus(ctx context.Context, ids []uuid.UUID, from, to models.BonusPaymentStatus) (int64, error) {
	return 0, nil
}
func (f *fakeBonusStore) GetPayableRecords(ctx context.Context, purchaseID uuid.UUID, month string) ([]models.MonthlyBonus, error) {
	return nil, nil
}

func TestTransferCreditsUntransferredRows(t *testing.T) {
	store := newFakeBonusStore()
	dealerX := uuid.New()
	dealerY := uuid.New()
	store.addPaidRecord(dealerX, 15000, false)
	store.addPaidRecord(dealerY, 5000, false)

	svc := NewService(store, store)

	result, err := svc.TransferToBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.AlreadyProcessed)
	assert.InDelta(t, 20000, result.TotalAmount, 0.001)
	assert.Empty(t, result.Errors)

	assert.InDelta(t, 15000, store.balances[dealerX], 0.001)
	assert.InDelta(t, 5000, store.balances[dealerY], 0.001)
	for _, record := range store.records {
		assert.NotNil(t, record.BalanceTransactionID)
	}
}

func TestTransferSkipsAlreadyProcessedRows(t *testing.T) {
	store := newFakeBonusStore()
	dealer := uuid.New()
	store.addPaidRecord(dealer, 15000, true)
	store.addPaidRecord(dealer, 5000, false)

	svc := NewService(store, store)

	result, err := svc.TransferToBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.AlreadyProcessed)
	assert.InDelta(t, 5000, result.TotalAmount, 0.001)
	// only the untransferred row was credited
	assert.InDelta(t, 5000, store.balances[dealer], 0.001)
}

func TestTransferPartialFailureKeepsSuccesses(t *testing.T) {
	store := newFakeBonusStore()
	healthy := uuid.New()
	broken := uuid.New()
	store.addPaidRecord(healthy, 10000, false)
	failedID := store.addPaidRecord(broken, 7000, false)
	store.ledgerFailFor[broken] = true

	svc := NewService(store, store)

	result, err := svc.TransferToBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, failedID, result.Errors[0].BonusID)
	assert.Equal(t, broken, result.Errors[0].BeneficiaryID)
	assert.InDelta(t, 10000, store.balances[healthy], 0.001)
	assert.Zero(t, store.balances[broken])
}

func TestTransferLinkFailureReportedNotDoubleCredited(t *testing.T) {
	store := newFakeBonusStore()
	dealer := uuid.New()
	recordID := store.addPaidRecord(dealer, 12000, false)
	store.linkFailures[recordID] = true

	svc := NewService(store, store)

	result, err := svc.TransferToBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	require.Len(t, result.Errors, 1)
	// the credit itself landed once
	assert.InDelta(t, 12000, store.balances[dealer], 0.001)

	// retrying the same row trips the unique source ref instead of paying twice
	store.linkFailures[recordID] = false
	result, err = svc.TransferToBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "duplicate source ref")
	assert.InDelta(t, 12000, store.balances[dealer], 0.001)
}
