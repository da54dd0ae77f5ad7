package queue

import (
	"math"
	"math/rand"
	"time"
)

// EnqueueOptions represents options for enqueueing a job
type EnqueueOptions struct {
	delay    time.Duration
	maxRetry int
}

func defaultEnqueueOptions() *EnqueueOptions {
	return &EnqueueOptions{maxRetry: 3}
}

// EnqueueOption is a function that modifies EnqueueOptions
type EnqueueOption func(*EnqueueOptions)

// WithDelay adds a delay before a job becomes runnable
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *EnqueueOptions) {
		o.delay = delay
	}
}

// WithMaxRetry sets the maximum number of retries for a job
func WithMaxRetry(maxRetry int) EnqueueOption {
	return func(o *EnqueueOptions) {
		o.maxRetry = maxRetry
	}
}

// QueueStats represents counters for a queue
type QueueStats struct {
	Waiting    int64 `json:"waiting"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
	Failed     int64 `json:"failed"`
	Completed  int64 `json:"completed"`
}

// calculateBackoff calculates the backoff duration for a retry.
// Exponential from a 5 second base, capped at an hour, with ±20% jitter.
func calculateBackoff(retry int) time.Duration {
	base := 5.0
	max := 3600.0

	seconds := math.Min(max, base*math.Pow(2, float64(retry)))

	jitter := seconds * 0.2
	seconds = seconds - jitter + (rand.Float64() * jitter * 2)

	return time.Duration(seconds) * time.Second
}
