package balance

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
)

// TransferError is one bonus row that could not be credited. The row keeps
// its paid status and a null transaction id, so a later retry picks it up.
type TransferError struct {
	BonusID       uuid.UUID `json:"bonus_id"`
	BeneficiaryID uuid.UUID `json:"beneficiary_id"`
	Amount        float64   `json:"amount"`
	Error         string    `json:"error"`
}

// TransferResult reports the outcome of one transfer pass over a purchase
type TransferResult struct {
	Created          int             `json:"created"`
	AlreadyProcessed int             `json:"already_processed"`
	TotalAmount      float64         `json:"total_amount"`
	Errors           []TransferError `json:"errors,omitempty"`
}

// Service moves approved, paid bonus records into dealer balances exactly
// once. Rows that already carry a balance transaction id are skipped and
// counted, never re-credited; the unique source reference on the ledger side
// backstops a concurrent double call.
type Service struct {
	bonuses repository.BonusRepository
	ledger  repository.LedgerRepository
}

// NewService creates a new balance ledger bridge
func NewService(bonuses repository.BonusRepository, ledger repository.LedgerRepository) *Service {
	return &Service{bonuses: bonuses, ledger: ledger}
}

// sourceRef keys a balance transaction to the bonus row that produced it
func sourceRef(bonusID uuid.UUID) string {
	return fmt.Sprintf("monthly_bonus:%s", bonusID)
}

// TransferToBalance credits every paid-but-untransferred bonus row of the
// purchase. Safe to call repeatedly: successes are remembered on the bonus
// row, failures stay retryable, and partial failure never rolls back the
// succeeded subset.
func (s *Service) TransferToBalance(ctx context.Context, purchaseID uuid.UUID) (*TransferResult, error) {
	records, err := s.bonuses.GetPaidRecords(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("error loading paid bonus records: %w", err)
	}

	result := &TransferResult{}
	for _, record := range records {
		if record.BalanceTransactionID != nil {
			result.AlreadyProcessed++
			continue
		}

		transaction, err := s.ledger.CreateBalanceTransaction(
			ctx,
			record.BeneficiaryID,
			record.BonusAmount,
			sourceRef(record.ID),
			fmt.Sprintf("Team purchase bonus, level %d", record.HierarchyLevel),
			models.JSON{
				"team_purchase_id": record.TeamPurchaseID.String(),
				"contributor_id":   record.ContributorID.String(),
				"hierarchy_level":  record.HierarchyLevel,
				"bonus_month":      record.BonusMonth,
			},
		)
		if err != nil {
			log.Printf("failed to credit bonus %s to dealer %s: %v", record.ID, record.BeneficiaryID, err)
			result.Errors = append(result.Errors, TransferError{
				BonusID:       record.ID,
				BeneficiaryID: record.BeneficiaryID,
				Amount:        record.BonusAmount,
				Error:         err.Error(),
			})
			continue
		}

		if err := s.bonuses.SetBalanceTransactionID(ctx, record.ID, transaction.ID); err != nil {
			// The credit landed but the back-reference did not. Surface it as
			// a per-record error; the unique source ref stops a retry from
			// crediting twice.
			log.Printf("credited bonus %s but failed to record transaction id: %v", record.ID, err)
			result.Errors = append(result.Errors, TransferError{
				BonusID:       record.ID,
				BeneficiaryID: record.BeneficiaryID,
				Amount:        record.BonusAmount,
				Error:         err.Error(),
			})
			continue
		}

		result.Created++
		result.TotalAmount += record.BonusAmount
	}

	return result, nil
}
