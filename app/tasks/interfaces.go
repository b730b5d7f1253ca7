package tasks

import "context"

// TaskSchedulerInterface runs a batch of tasks on a worker pool.
// Example usage:
//
//	scheduler := NewScheduler(workers, timeout)
//	scheduler.Run(ctx, []TaskInterface{NewFetchFeedTask(source, processor)})
type TaskSchedulerInterface interface {
	Run(ctx context.Context, tasks []TaskInterface)
}
