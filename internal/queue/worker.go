package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Worker runs a pool of goroutines draining the Redis queue, plus a cron
// scheduler for recurring jobs
type Worker struct {
	queue      *RedisQueue
	numWorkers int
	wg         sync.WaitGroup
	quit       chan struct{}
	scheduler  *gocron.Scheduler
}

// NewWorker creates a new worker pool
func NewWorker(queue *RedisQueue, numWorkers int) *Worker {
	return &Worker{
		queue:      queue,
		numWorkers: numWorkers,
		quit:       make(chan struct{}),
		scheduler:  gocron.NewScheduler(time.UTC),
	}
}

// Start starts the worker goroutines and the scheduler
func (w *Worker) Start() {
	log.Printf("Starting %d queue workers", w.numWorkers)

	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	w.scheduler.StartAsync()
}

// Stop stops the workers and the scheduler
func (w *Worker) Stop() {
	log.Println("Stopping queue workers")
	close(w.quit)
	w.wg.Wait()
	w.scheduler.Stop()
}

// ScheduleRecurring registers a recurring task on a cron expression
func (w *Worker) ScheduleRecurring(name, cronExpr string, task func()) error {
	_, err := w.scheduler.Cron(cronExpr).Tag(name).Do(func() {
		log.Printf("Running recurring job %s", name)
		task()
	})
	return err
}

// process drains jobs until stopped
func (w *Worker) process(workerID int) {
	defer w.wg.Done()

	log.Printf("Queue worker %d started", workerID)

	for {
		select {
		case <-w.quit:
			log.Printf("Queue worker %d stopped", workerID)
			return
		default:
			job, err := w.queue.Dequeue(1 * time.Second)
			if err != nil {
				log.Printf("Worker %d error dequeueing job: %v", workerID, err)
				time.Sleep(1 * time.Second)
				continue
			}
			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			w.handleJob(workerID, *job)
		}
	}
}

func (w *Worker) handleJob(workerID int, job Job) {
	handler, ok := w.queue.Handler(job.Type)
	if !ok {
		log.Printf("Worker %d: no handler registered for job type %s", workerID, job.Type)
		w.queue.Fail(job, &noHandlerError{jobType: job.Type})
		return
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		log.Printf("Worker %d: job %s failed: %v", workerID, job.ID, err)
		w.queue.Fail(job, err)
		return
	}

	w.queue.Complete(job.ID, result)
}

type noHandlerError struct {
	jobType JobType
}

func (e *noHandlerError) Error() string {
	return "no handler registered for job type " + string(e.jobType)
}
