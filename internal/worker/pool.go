package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
)

// Task is one unit of work handed to the pool
type Task struct {
	ID  string
	Run func(ctx context.Context) error
}

// Result reports how a task ended
type Result struct {
	ID       string
	Err      error
	Duration time.Duration
}

// Pool runs tasks on a fixed number of workers
type Pool struct {
	logger     arbor.ILogger
	numWorkers int
}

func NewPool(logger arbor.ILogger, numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		logger:     logger,
		numWorkers: numWorkers,
	}
}

// Run executes every task and returns one result per task, in submission order.
// A panicking task fails alone. Once ctx is done, tasks not yet started are
// not run and report ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	jobs := make(chan int)

	workers := min(p.numWorkers, len(tasks))
	p.logger.Info().
		Int("num_workers", workers).
		Int("tasks", len(tasks)).
		Msg("Starting worker pool")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.execute(ctx, workerID, tasks[idx])
			}
		}(i)
	}

	next := 0
dispatch:
	for ; next < len(tasks); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for ; next < len(tasks); next++ {
		results[next] = Result{ID: tasks[next].ID, Err: ctx.Err()}
	}

	p.logger.Info().Int("tasks", len(tasks)).Msg("Worker pool finished")
	return results
}

func (p *Pool) execute(ctx context.Context, workerID int, task Task) Result {
	p.logger.Debug().
		Int("worker_id", workerID).
		Str("task_id", task.ID).
		Msg("Processing task")

	start := time.Now()
	_, err := common.RunGuarded(ctx, p.logger, task.ID, func() (struct{}, error) {
		return struct{}{}, task.Run(ctx)
	})
	result := Result{ID: task.ID, Err: err, Duration: time.Since(start)}

	if err != nil {
		p.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("Task failed")
	} else {
		p.logger.Debug().
			Str("task_id", task.ID).
			Dur("duration", result.Duration).
			Msg("Task completed")
	}
	return result
}
