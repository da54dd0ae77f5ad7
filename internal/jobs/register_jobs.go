package jobs

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/glowline/backend/internal/queue"
	"github.com/glowline/backend/internal/services/bonus"
)

// RegisterJobHandlers wires every queue-driven job handler and returns the
// producers the HTTP layer needs
func RegisterJobHandlers(q queue.QueueInterface, db *gorm.DB, engine *bonus.Service) (*BonusPreviewJob, *TransferRetryJob) {
	previewJob := NewBonusPreviewJob(q, engine)
	previewJob.RegisterHandlers(q)

	transferRetryJob := NewTransferRetryJob(db, q, engine)
	transferRetryJob.RegisterHandlers(q)

	return previewJob, transferRetryJob
}

// ScheduleRecurringJobs registers the recurring maintenance jobs on the
// worker's cron scheduler
func ScheduleRecurringJobs(worker *queue.Worker, transferRetryJob *TransferRetryJob) {
	// Sweep stuck balance transfers every 15 minutes
	if err := worker.ScheduleRecurring("transfer_retry_sweep", "*/15 * * * *", func() {
		transferRetryJob.Sweep(context.Background())
	}); err != nil {
		log.Printf("Failed to schedule transfer retry sweep: %v", err)
	}
}
