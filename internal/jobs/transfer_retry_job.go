package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/queue"
	"github.com/glowline/backend/internal/services/bonus"
)

// TransferRetryJobPayload identifies the purchase whose transfers to re-drive
type TransferRetryJobPayload struct {
	TeamPurchaseID uuid.UUID `json:"team_purchase_id"`
}

// TransferRetryJob re-drives the ledger bridge for bonus rows that were
// marked paid but whose balance credit failed. The recurring sweep finds the
// affected purchases and enqueues one retry job per purchase; the transfer is
// idempotent, so duplicate jobs are harmless.
type TransferRetryJob struct {
	db     *gorm.DB
	queue  queue.QueueInterface
	engine *bonus.Service
}

// NewTransferRetryJob creates a new transfer retry job
func NewTransferRetryJob(db *gorm.DB, q queue.QueueInterface, engine *bonus.Service) *TransferRetryJob {
	return &TransferRetryJob{db: db, queue: q, engine: engine}
}

// RegisterHandlers registers the job handler on the queue
func (j *TransferRetryJob) RegisterHandlers(q queue.QueueInterface) {
	q.RegisterHandler(queue.JobTypeRetryBalanceTransfer, j.ProcessTransferRetry)
}

// Sweep finds purchases with paid-but-untransferred bonus rows and enqueues a
// retry job for each
func (j *TransferRetryJob) Sweep(ctx context.Context) {
	var purchaseIDs []uuid.UUID
	err := j.db.WithContext(ctx).
		Model(&models.MonthlyBonus{}).
		Distinct("team_purchase_id").
		Where("payment_status = ? AND balance_transaction_id IS NULL", models.BonusPaymentStatusPaid).
		Pluck("team_purchase_id", &purchaseIDs).Error
	if err != nil {
		log.Printf("transfer retry sweep failed to list purchases: %v", err)
		return
	}
	if len(purchaseIDs) == 0 {
		return
	}

	log.Printf("transfer retry sweep found %d purchases with stuck transfers", len(purchaseIDs))

	for _, purchaseID := range purchaseIDs {
		_, err := j.queue.EnqueueJob(queue.JobTypeRetryBalanceTransfer, TransferRetryJobPayload{
			TeamPurchaseID: purchaseID,
		})
		if err != nil {
			log.Printf("failed to enqueue transfer retry for purchase %s: %v", purchaseID, err)
		}
	}
}

// ProcessTransferRetry handles one queued transfer retry
func (j *TransferRetryJob) ProcessTransferRetry(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload TransferRetryJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfer retry payload: %w", err)
	}

	result, err := j.engine.RetryBalanceTransfer(ctx, payload.TeamPurchaseID)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		// Let the queue back off and try the remaining rows again
		return nil, fmt.Errorf("transfer retry for purchase %s left %d records unsettled",
			payload.TeamPurchaseID, len(result.Errors))
	}

	log.Printf("transfer retry for purchase %s: %d credited (%.2f), %d already processed",
		payload.TeamPurchaseID, result.Created, result.TotalAmount, result.AlreadyProcessed)
	return map[string]interface{}{
		"created":           result.Created,
		"already_processed": result.AlreadyProcessed,
		"total_amount":      result.TotalAmount,
	}, nil
}
