package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Redis key names
const (
	readyQueueKey   = "glowline:jobs:ready"
	delayedQueueKey = "glowline:jobs:delayed"
)

// RedisQueue distributes jobs through Redis while keeping the job rows in
// PostgreSQL as the source of truth. Workers block on the ready list; delayed
// and retry-scheduled jobs sit in a sorted set scored by their due time.
type RedisQueue struct {
	client   *redis.Client
	db       *gorm.DB
	ctx      context.Context
	handlers map[JobType]JobHandler
}

// NewRedisQueue creates a new Redis-backed queue
func NewRedisQueue(client *redis.Client, db *gorm.DB) *RedisQueue {
	r := &RedisQueue{
		client:   client,
		db:       db,
		ctx:      context.Background(),
		handlers: make(map[JobType]JobHandler),
	}

	go r.promoteDelayedJobs()

	return r
}

// RegisterHandler registers a handler for a job type
func (r *RedisQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	r.handlers[jobType] = handler
}

// Handler returns the registered handler for a job type
func (r *RedisQueue) Handler(jobType JobType) (JobHandler, bool) {
	handler, ok := r.handlers[jobType]
	return handler, ok
}

// EnqueueJob persists a job row and pushes its id onto the ready list (or the
// delayed set when a delay was requested)
func (r *RedisQueue) EnqueueJob(jobType JobType, payload interface{}, opts ...EnqueueOption) (string, error) {
	options := defaultEnqueueOptions()
	for _, opt := range opts {
		opt(options)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: options.maxRetry,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if result := r.db.Create(&job); result.Error != nil {
		return "", result.Error
	}

	if options.delay > 0 {
		due := float64(time.Now().Add(options.delay).Unix())
		if err := r.client.ZAdd(r.ctx, delayedQueueKey, &redis.Z{Score: due, Member: job.ID.String()}).Err(); err != nil {
			return "", fmt.Errorf("failed to schedule delayed job: %w", err)
		}
		return job.ID.String(), nil
	}

	if err := r.client.LPush(r.ctx, readyQueueKey, job.ID.String()).Err(); err != nil {
		return "", fmt.Errorf("failed to push job to queue: %w", err)
	}
	return job.ID.String(), nil
}

// Dequeue blocks up to timeout waiting for a job. Returns nil when the queue
// stays empty.
func (r *RedisQueue) Dequeue(timeout time.Duration) (*Job, error) {
	values, err := r.client.BRPop(r.ctx, timeout, readyQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job from queue: %w", err)
	}
	if len(values) < 2 {
		return nil, nil
	}

	var job Job
	if err := r.db.Where("id = ?", values[1]).First(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", values[1], err)
	}

	r.updateJob(job.ID, map[string]interface{}{"status": JobStatusProcessing})
	return &job, nil
}

// Complete marks a job completed, storing its result when one is given
func (r *RedisQueue) Complete(jobID uuid.UUID, result interface{}) {
	updates := map[string]interface{}{"status": JobStatusCompleted}
	if result != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			updates["result"] = resultJSON
		} else {
			log.Printf("Failed to marshal result for job %s: %v", jobID, err)
		}
	}
	r.updateJob(jobID, updates)
}

// Fail records a failure and schedules a retry while the budget lasts
func (r *RedisQueue) Fail(job Job, jobErr error) {
	retryCount := job.RetryCount + 1
	if retryCount > job.MaxRetries {
		log.Printf("Job %s of type %s permanently failed after %d retries: %v",
			job.ID, job.Type, job.MaxRetries, jobErr)
		r.updateJob(job.ID, map[string]interface{}{
			"status": JobStatusFailed,
			"error":  fmt.Sprintf("exceeded max retries: %v", jobErr),
		})
		return
	}

	delay := calculateBackoff(retryCount)
	due := float64(time.Now().Add(delay).Unix())
	r.updateJob(job.ID, map[string]interface{}{
		"status":      JobStatusRetryScheduled,
		"retry_count": retryCount,
		"retry_at":    time.Now().Add(delay),
		"error":       jobErr.Error(),
	})
	if err := r.client.ZAdd(r.ctx, delayedQueueKey, &redis.Z{Score: due, Member: job.ID.String()}).Err(); err != nil {
		log.Printf("Failed to schedule retry for job %s: %v", job.ID, err)
	}
}

// Stats returns queue depth counters
func (r *RedisQueue) Stats() (*QueueStats, error) {
	stats := &QueueStats{}

	waiting, err := r.client.LLen(r.ctx, readyQueueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read queue length: %w", err)
	}
	stats.Waiting = waiting

	delayed, err := r.client.ZCard(r.ctx, delayedQueueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read delayed set size: %w", err)
	}
	stats.Delayed = delayed

	for status, target := range map[JobStatus]*int64{
		JobStatusProcessing: &stats.Processing,
		JobStatusFailed:     &stats.Failed,
		JobStatusCompleted:  &stats.Completed,
	} {
		if err := r.db.Model(&Job{}).Where("status = ?", status).Count(target).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s jobs: %w", status, err)
		}
	}

	return stats, nil
}

// promoteDelayedJobs moves due jobs from the delayed set to the ready list
func (r *RedisQueue) promoteDelayedJobs() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		ids, err := r.client.ZRangeByScore(r.ctx, delayedQueueKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: now,
		}).Result()
		if err != nil {
			log.Printf("Failed to read delayed jobs: %v", err)
			continue
		}

		for _, id := range ids {
			removed, err := r.client.ZRem(r.ctx, delayedQueueKey, id).Result()
			if err != nil || removed == 0 {
				continue // another instance already promoted it
			}
			r.updateJob(uuid.MustParse(id), map[string]interface{}{"status": JobStatusPending})
			if err := r.client.LPush(r.ctx, readyQueueKey, id).Err(); err != nil {
				log.Printf("Failed to promote delayed job %s: %v", id, err)
			}
		}
	}
}

func (r *RedisQueue) updateJob(jobID uuid.UUID, updates map[string]interface{}) {
	updates["updated_at"] = time.Now()
	if err := r.db.Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		log.Printf("Failed to update job %s: %v", jobID, err)
	}
}

// Close closes the Redis client
func (r *RedisQueue) Close() error {
	return r.client.Close()
}
