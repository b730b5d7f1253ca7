package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	workerCount int
	taskTimeout time.Duration
}

func NewScheduler(workerCount int, taskTimeout time.Duration) *Scheduler {
	if workerCount < 1 {
		workerCount = 1
	}

	return &Scheduler{
		workerCount: workerCount,
		taskTimeout: taskTimeout,
	}
}

// Run blocks until every task has executed or ctx is done.
// Tasks still queued when ctx is cancelled are never started.
func (s *Scheduler) Run(ctx context.Context, tasks []TaskInterface) {
	if len(tasks) == 0 {
		return
	}

	taskQueue := make(chan TaskInterface)
	var wg sync.WaitGroup

	for i := 0; i < min(s.workerCount, len(tasks)); i++ {
		wg.Add(1)
		go s.worker(ctx, i, taskQueue, &wg)
	}

enqueue:
	for _, task := range tasks {
		select {
		case taskQueue <- task:
		case <-ctx.Done():
			slog.Debug("Scheduler cancelled, skipping remaining tasks", "type", string(task.GetType()), "feed", task.GetFeedURL())
			break enqueue
		}
	}

	close(taskQueue)
	wg.Wait()
}

func (s *Scheduler) worker(ctx context.Context, id int, taskQueue <-chan TaskInterface, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range taskQueue {
		s.executeTask(ctx, id, task)
	}
}

func (s *Scheduler) executeTask(ctx context.Context, workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", task.GetFeedURL(),
			"error", err)
		return
	}

	slog.Debug("Worker task completed",
		"worker_id", workerID,
		"type", string(task.GetType()),
		"id", task.GetID(),
		"duration", task.GetDuration())
}
