package bonus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
	"github.com/glowline/backend/internal/services/balance"
	"github.com/glowline/backend/internal/services/hierarchy"
	"github.com/glowline/backend/internal/services/tiers"
	"github.com/glowline/backend/internal/services/turnover"
)

// Config holds the engine's business knobs
type Config struct {
	// MinContribution is the smallest contribution a purchased member may have
	// for the purchase to be bonus-eligible
	MinContribution float64
}

// Service turns completed team purchases into differential bonus records and
// drives them through preview, finalize, approve and payout
type Service struct {
	dealers   repository.DealerReader
	purchases repository.PurchaseRepository
	bonuses   repository.BonusRepository
	hierarchy *hierarchy.Service
	tiers     *tiers.Service
	turnover  *turnover.Service
	ledger    *balance.Service
	cfg       Config

	now func() time.Time
}

// NewService creates a new bonus engine
func NewService(
	dealers repository.DealerReader,
	purchases repository.PurchaseRepository,
	bonuses repository.BonusRepository,
	hierarchySvc *hierarchy.Service,
	tierSvc *tiers.Service,
	turnoverSvc *turnover.Service,
	ledgerSvc *balance.Service,
	cfg Config,
) *Service {
	return &Service{
		dealers:   dealers,
		purchases: purchases,
		bonuses:   bonuses,
		hierarchy: hierarchySvc,
		tiers:     tierSvc,
		turnover:  turnoverSvc,
		ledger:    ledgerSvc,
		cfg:       cfg,
		now:       time.Now,
	}
}

// PreviewResult is the outcome of a preview computation
type PreviewResult struct {
	TeamPurchaseID uuid.UUID             `json:"team_purchase_id"`
	BonusMonth     string                `json:"bonus_month"`
	MemberCount    int                   `json:"member_count"`
	Records        []models.BonusPreview `json:"records"`
	TotalBonus     float64               `json:"total_bonus"`
}

// FinalizeResult is the outcome of finalizing a purchase's bonuses
type FinalizeResult struct {
	TeamPurchaseID uuid.UUID `json:"team_purchase_id"`
	BonusMonth     string    `json:"bonus_month"`
	RecordsCreated int64     `json:"records_created"`
}

// ApproveResult is the outcome of approving finalized bonuses
type ApproveResult struct {
	TeamPurchaseID  uuid.UUID `json:"team_purchase_id"`
	BonusMonth      string    `json:"bonus_month"`
	Approved        int64     `json:"approved"`
	AlreadyApproved int64     `json:"already_approved"`
}

// PayoutResult is the outcome of paying out approved bonuses
type PayoutResult struct {
	TeamPurchaseID uuid.UUID               `json:"team_purchase_id"`
	BonusMonth     string                  `json:"bonus_month"`
	RecordsPaid    int64                   `json:"records_paid"`
	Transfer       *balance.TransferResult `json:"transfer"`
}

// CombinedStats is the dashboard projection for one purchase
type CombinedStats struct {
	TeamPurchaseID    uuid.UUID `json:"team_purchase_id"`
	PurchaseStatus    string    `json:"purchase_status"`
	BonusState        State     `json:"bonus_state"`
	BonusMonth        string    `json:"bonus_month"`
	CollectedAmount   float64   `json:"collected_amount"`
	PreviewRecords    int       `json:"preview_records"`
	PreviewTotal      float64   `json:"preview_total"`
	FinalRecords      int       `json:"final_records"`
	FinalTotal        float64   `json:"final_total"`
	ApprovedRecords   int       `json:"approved_records"`
	PaidRecords       int       `json:"paid_records"`
	TransferredTotal  float64   `json:"transferred_total"`
	PendingTransfer   int       `json:"pending_transfer"`
	BonusesCalculated bool      `json:"bonuses_calculated"`
	BonusesApproved   bool      `json:"bonuses_approved"`
}

// memberPercents caches tier percents per dealer within one computation so a
// dealer appearing in several chains is only priced once
type percentCache map[uuid.UUID]float64

// percentFor resolves a dealer's tier percent from their total turnover for
// the period. A dealer below the lowest tier has percent 0.
func (s *Service) percentFor(ctx context.Context, cache percentCache, dealerID uuid.UUID, period string) (float64, error) {
	if percent, ok := cache[dealerID]; ok {
		return percent, nil
	}
	total, err := s.turnover.TotalTurnover(ctx, dealerID, period)
	if err != nil {
		return 0, err
	}
	if total.Truncated {
		log.Printf("turnover for dealer %s in %s is a truncated lower bound; tier percent may understate", dealerID, period)
	}
	percent, err := s.tiers.PercentFor(ctx, total.TotalTurnover)
	if err != nil {
		return 0, err
	}
	cache[dealerID] = percent
	return percent, nil
}

// checkReadiness collects every violated precondition for computing bonuses.
// Returns the purchased members alongside so the caller does not re-fetch.
func (s *Service) checkReadiness(ctx context.Context, purchase *models.TeamPurchase, month string) ([]models.TeamPurchaseMember, *ReadinessError) {
	var reasons []string

	if purchase.Status != models.TeamPurchaseStatusCompleted {
		reasons = append(reasons, fmt.Sprintf("purchase status is %q, must be completed", purchase.Status))
	}

	members, err := s.purchases.GetPurchasedMembers(ctx, purchase.ID)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("cannot load purchased members: %v", err))
		return nil, &ReadinessError{Reasons: reasons}
	}
	if len(members) == 0 {
		reasons = append(reasons, "no members with purchased status")
	}

	for _, member := range members {
		if member.ContributionActual < s.cfg.MinContribution {
			reasons = append(reasons, fmt.Sprintf("member %s contribution %.2f is below the minimum %.2f",
				member.DealerID, member.ContributionActual, s.cfg.MinContribution))
		}
		dealer, err := s.dealers.GetDealer(ctx, member.DealerID)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("member %s cannot be resolved: %v", member.DealerID, err))
			continue
		}
		if dealer.SponsorID == nil {
			reasons = append(reasons, fmt.Sprintf("member %s has no sponsor and cannot generate upstream bonuses", member.DealerID))
		}
	}

	finals, err := s.bonuses.GetFinalRecords(ctx, purchase.ID, month)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("cannot check existing final records: %v", err))
	} else if len(finals) > 0 {
		reasons = append(reasons, fmt.Sprintf("bonuses already calculated for this purchase in %s", month))
	}

	if len(reasons) > 0 {
		return nil, &ReadinessError{Reasons: reasons}
	}
	return members, nil
}

// ComputePreview recomputes the differential bonus projection for a completed
// team purchase. The operation is idempotent: every call replaces the previous
// preview wholesale, and unchanged inputs reproduce identical record sets.
func (s *Service) ComputePreview(ctx context.Context, purchaseID uuid.UUID) (*PreviewResult, error) {
	purchase, err := s.purchases.GetTeamPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	month := models.BonusMonthOf(s.now())
	members, readinessErr := s.checkReadiness(ctx, purchase, month)
	if readinessErr != nil {
		return nil, readinessErr
	}

	cache := percentCache{}
	records := make([]models.BonusPreview, 0)
	var totalBonus float64

	for _, member := range members {
		memberRecords, err := s.walkChain(ctx, cache, member, month)
		if err != nil {
			return nil, err
		}
		for _, record := range memberRecords {
			totalBonus += record.BonusAmount
		}
		records = append(records, memberRecords...)
	}

	if err := s.bonuses.ReplacePreviewRecords(ctx, purchaseID, records); err != nil {
		return nil, err
	}

	log.Printf("computed bonus preview for purchase %s: %d members, %d records, total %.2f",
		purchaseID, len(members), len(records), totalBonus)

	return &PreviewResult{
		TeamPurchaseID: purchaseID,
		BonusMonth:     month,
		MemberCount:    len(members),
		Records:        records,
		TotalBonus:     totalBonus,
	}, nil
}

// walkChain applies the differential (compression) commission along one
// member's ancestor chain. Each ancestor earns the contribution times the
// margin of their own tier percent over the highest percent seen below them;
// an ancestor at or below that mark earns zero and the margin passes upward.
// Zero-amount hops are stored for auditability.
func (s *Service) walkChain(ctx context.Context, cache percentCache, member models.TeamPurchaseMember, month string) ([]models.BonusPreview, error) {
	contribution := member.ContributionActual

	chain, err := s.hierarchy.AncestorChain(ctx, member.DealerID)
	if err != nil {
		return nil, fmt.Errorf("error walking ancestors of member %s: %w", member.DealerID, err)
	}

	compressedPercent, err := s.percentFor(ctx, cache, member.DealerID, month)
	if err != nil {
		return nil, err
	}

	records := make([]models.BonusPreview, 0, len(chain))
	for level, ancestor := range chain {
		beneficiaryPercent, err := s.percentFor(ctx, cache, ancestor.ID, month)
		if err != nil {
			return nil, err
		}

		margin := beneficiaryPercent - compressedPercent
		if margin < 0 {
			margin = 0
		}

		records = append(records, models.BonusPreview{
			TeamPurchaseID:     member.TeamPurchaseID,
			BeneficiaryID:      ancestor.ID,
			ContributorID:      member.DealerID,
			HierarchyLevel:     level + 1,
			ContributionAmount: contribution,
			BeneficiaryPercent: beneficiaryPercent,
			ContributorPercent: compressedPercent,
			BonusAmount:        contribution * margin / 100,
		})

		if beneficiaryPercent > compressedPercent {
			compressedPercent = beneficiaryPercent
		}
	}

	return records, nil
}

// FinalizeBonuses copies the preview into immutable month-scoped rows and
// marks the purchase calculated. A preview is computed first when none exists.
// A concurrent second finalize inserts zero rows and reports that instead of
// duplicating.
func (s *Service) FinalizeBonuses(ctx context.Context, purchaseID uuid.UUID, actorID uuid.UUID) (*FinalizeResult, error) {
	purchase, err := s.purchases.GetTeamPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	month := models.BonusMonthOf(s.now())

	finals, err := s.bonuses.GetFinalRecords(ctx, purchaseID, month)
	if err != nil {
		return nil, err
	}
	if len(finals) > 0 {
		return nil, &ConflictError{
			Operation: "finalize",
			State:     deriveState(nil, finals),
			Message:   fmt.Sprintf("bonuses already finalized for %s", month),
		}
	}

	previews, err := s.bonuses.GetPreviewRecords(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if len(previews) == 0 {
		result, err := s.ComputePreview(ctx, purchaseID)
		if err != nil {
			return nil, err
		}
		previews = result.Records
	} else if purchase.Status != models.TeamPurchaseStatusCompleted {
		return nil, &ConflictError{
			Operation: "finalize",
			State:     StatePreviewed,
			Message:   fmt.Sprintf("purchase status is %q, must be completed", purchase.Status),
		}
	}

	records := make([]models.MonthlyBonus, 0, len(previews))
	for _, preview := range previews {
		records = append(records, models.MonthlyBonus{
			TeamPurchaseID:     purchaseID,
			BonusMonth:         month,
			BeneficiaryID:      preview.BeneficiaryID,
			ContributorID:      preview.ContributorID,
			HierarchyLevel:     preview.HierarchyLevel,
			ContributionAmount: preview.ContributionAmount,
			BeneficiaryPercent: preview.BeneficiaryPercent,
			ContributorPercent: preview.ContributorPercent,
			BonusAmount:        preview.BonusAmount,
			CalculationStatus:  models.BonusCalculationStatusCalculated,
			PaymentStatus:      models.BonusPaymentStatusPending,
		})
	}

	created, err := s.bonuses.InsertFinalRecords(ctx, purchaseID, month, records)
	if err != nil {
		return nil, err
	}

	calculated := true
	now := s.now()
	err = s.purchases.SetPurchaseFlags(ctx, purchaseID, repository.PurchaseFlags{
		BonusesCalculated:   &calculated,
		BonusesCalculatedAt: &now,
		BonusesCalculatedBy: &actorID,
	})
	if err != nil {
		return nil, fmt.Errorf("finalized %d records but failed to flag purchase: %w", created, err)
	}

	log.Printf("finalized bonuses for purchase %s in %s: %d records", purchaseID, month, created)

	return &FinalizeResult{
		TeamPurchaseID: purchaseID,
		BonusMonth:     month,
		RecordsCreated: created,
	}, nil
}

// ApproveBonuses moves calculated final rows to approved, stamping the
// approver. Rows already approved are left untouched, which makes a repeated
// call a no-op rather than an error.
func (s *Service) ApproveBonuses(ctx context.Context, purchaseID uuid.UUID, approverID uuid.UUID) (*ApproveResult, error) {
	if _, err := s.purchases.GetTeamPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}

	month := models.BonusMonthOf(s.now())

	finals, err := s.bonuses.GetFinalRecords(ctx, purchaseID, month)
	if err != nil {
		return nil, err
	}
	if len(finals) == 0 {
		return nil, &ConflictError{
			Operation: "approve",
			State:     StateNoPreview,
			Message:   fmt.Sprintf("no finalized bonuses for %s", month),
		}
	}

	approved, err := s.bonuses.UpdateCalculationStatus(ctx, purchaseID, month,
		models.BonusCalculationStatusCalculated, models.BonusCalculationStatusApproved, &approverID)
	if err != nil {
		return nil, err
	}

	flag := true
	now := s.now()
	err = s.purchases.SetPurchaseFlags(ctx, purchaseID, repository.PurchaseFlags{
		BonusesApproved:   &flag,
		BonusesApprovedAt: &now,
		BonusesApprovedBy: &approverID,
	})
	if err != nil {
		return nil, fmt.Errorf("approved %d records but failed to flag purchase: %w", approved, err)
	}

	log.Printf("approved bonuses for purchase %s in %s: %d moved, %d already approved",
		purchaseID, month, approved, int64(len(finals))-approved)

	return &ApproveResult{
		TeamPurchaseID:  purchaseID,
		BonusMonth:      month,
		Approved:        approved,
		AlreadyApproved: int64(len(finals)) - approved,
	}, nil
}

// PayoutBonuses pays the approved, pending rows for the current month. The
// rows are marked paid before the ledger is touched; that state-qualified
// update is the mutual exclusion that stops two concurrent payouts from
// double-crediting. A ledger fault rolls the marking back so the rows stay
// payable.
func (s *Service) PayoutBonuses(ctx context.Context, purchaseID uuid.UUID) (*PayoutResult, error) {
	if _, err := s.purchases.GetTeamPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}

	month := models.BonusMonthOf(s.now())

	payable, err := s.bonuses.GetPayableRecords(ctx, purchaseID, month)
	if err != nil {
		return nil, err
	}
	if len(payable) == 0 {
		return nil, ErrNothingToPay
	}

	ids := make([]uuid.UUID, 0, len(payable))
	for _, record := range payable {
		ids = append(ids, record.ID)
	}

	paid, err := s.bonuses.UpdatePaymentStatus(ctx, ids, models.BonusPaymentStatusPending, models.BonusPaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	if paid == 0 {
		// a concurrent payout claimed every row between our read and write
		return nil, ErrNothingToPay
	}

	transfer, err := s.ledger.TransferToBalance(ctx, purchaseID)
	if err != nil {
		// compensating action: the ledger never saw these rows, put them back
		if _, rollbackErr := s.bonuses.UpdatePaymentStatus(ctx, ids, models.BonusPaymentStatusPaid, models.BonusPaymentStatusPending); rollbackErr != nil {
			log.Printf("CRITICAL: payout rollback failed for purchase %s: %v", purchaseID, rollbackErr)
			return nil, fmt.Errorf("ledger transfer failed and rollback failed (%v): %w", rollbackErr, err)
		}
		return nil, fmt.Errorf("ledger transfer failed, payout rolled back: %w", err)
	}

	log.Printf("paid out bonuses for purchase %s in %s: %d records, %.2f transferred",
		purchaseID, month, paid, transfer.TotalAmount)

	return &PayoutResult{
		TeamPurchaseID: purchaseID,
		BonusMonth:     month,
		RecordsPaid:    paid,
		Transfer:       transfer,
	}, nil
}

// RetryBalanceTransfer re-drives the ledger bridge for rows that were paid
// but never reached a balance. Explicitly idempotent.
func (s *Service) RetryBalanceTransfer(ctx context.Context, purchaseID uuid.UUID) (*balance.TransferResult, error) {
	if _, err := s.purchases.GetTeamPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	return s.ledger.TransferToBalance(ctx, purchaseID)
}

// GetCombinedStats assembles the dashboard view of one purchase's bonus
// lifecycle for the current month
func (s *Service) GetCombinedStats(ctx context.Context, purchaseID uuid.UUID) (*CombinedStats, error) {
	purchase, err := s.purchases.GetTeamPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	month := models.BonusMonthOf(s.now())

	previews, err := s.bonuses.GetPreviewRecords(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	finals, err := s.bonuses.GetFinalRecords(ctx, purchaseID, month)
	if err != nil {
		return nil, err
	}

	stats := &CombinedStats{
		TeamPurchaseID:    purchaseID,
		PurchaseStatus:    string(purchase.Status),
		BonusState:        deriveState(previews, finals),
		BonusMonth:        month,
		CollectedAmount:   purchase.CollectedAmount,
		PreviewRecords:    len(previews),
		FinalRecords:      len(finals),
		BonusesCalculated: purchase.BonusesCalculated,
		BonusesApproved:   purchase.BonusesApproved,
	}

	for _, preview := range previews {
		stats.PreviewTotal += preview.BonusAmount
	}
	for _, record := range finals {
		stats.FinalTotal += record.BonusAmount
		if record.CalculationStatus == models.BonusCalculationStatusApproved {
			stats.ApprovedRecords++
		}
		if record.PaymentStatus == models.BonusPaymentStatusPaid {
			stats.PaidRecords++
			if record.BalanceTransactionID != nil {
				stats.TransferredTotal += record.BonusAmount
			} else {
				stats.PendingTransfer++
			}
		}
	}

	return stats, nil
}
