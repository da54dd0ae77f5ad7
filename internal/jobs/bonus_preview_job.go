package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/glowline/backend/internal/queue"
	"github.com/glowline/backend/internal/services/bonus"
)

// BonusPreviewJobPayload identifies the team purchase to recompute
type BonusPreviewJobPayload struct {
	TeamPurchaseID uuid.UUID `json:"team_purchase_id"`
}

// BonusPreviewJob recomputes bonus previews off the request path. Purchase
// completion enqueues one of these; preview is idempotent, so queue retries
// are harmless.
type BonusPreviewJob struct {
	queue  queue.QueueInterface
	engine *bonus.Service
}

// NewBonusPreviewJob creates a new bonus preview job handler
func NewBonusPreviewJob(q queue.QueueInterface, engine *bonus.Service) *BonusPreviewJob {
	return &BonusPreviewJob{queue: q, engine: engine}
}

// RegisterHandlers registers the job handler on the queue
func (j *BonusPreviewJob) RegisterHandlers(q queue.QueueInterface) {
	q.RegisterHandler(queue.JobTypeComputeBonusPreview, j.ProcessBonusPreview)
}

// Enqueue schedules a preview computation for a purchase
func (j *BonusPreviewJob) Enqueue(purchaseID uuid.UUID) (string, error) {
	return j.queue.EnqueueJob(queue.JobTypeComputeBonusPreview, BonusPreviewJobPayload{
		TeamPurchaseID: purchaseID,
	})
}

// ProcessBonusPreview handles one queued preview computation
func (j *BonusPreviewJob) ProcessBonusPreview(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload BonusPreviewJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bonus preview payload: %w", err)
	}

	result, err := j.engine.ComputePreview(ctx, payload.TeamPurchaseID)
	if err != nil {
		if readiness, ok := bonus.AsReadinessError(err); ok {
			// Retrying will not make the purchase ready; record the reasons
			// and let an administrator resolve them.
			log.Printf("purchase %s not ready for bonus preview: %v", payload.TeamPurchaseID, readiness.Reasons)
			return map[string]interface{}{
				"ready":   false,
				"reasons": readiness.Reasons,
			}, nil
		}
		return nil, err
	}

	log.Printf("bonus preview computed for purchase %s: %d records", payload.TeamPurchaseID, len(result.Records))
	return map[string]interface{}{
		"ready":       true,
		"records":     len(result.Records),
		"total_bonus": result.TotalBonus,
	}, nil
}
