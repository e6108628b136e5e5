package workerpool

import (
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// TaskResult carries the outcome of a submitted task
type TaskResult struct {
	Data  interface{}
	Error error
}

// Pool is a bounded worker pool for CPU-bound work, keeping it off the
// goroutines driving I/O.
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a pool with the given number of workers.
func New(size int, logger *zap.Logger) (*Pool, error) {
	antsPool, err := ants.NewPool(size,
		ants.WithPanicHandler(func(err interface{}) {
			logger.Error("worker panic", zap.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &Pool{pool: antsPool, logger: logger}, nil
}

// Submit schedules a task on the pool.
func (p *Pool) Submit(task func()) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}
	return p.pool.Submit(task)
}

// SubmitWithResult schedules a task and returns a channel that receives
// its result. The channel is buffered, so an abandoned result does not
// leak the worker.
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	resultCh := make(chan TaskResult, 1)

	err := p.Submit(func() {
		result, err := task()
		resultCh <- TaskResult{Data: result, Error: err}
		close(resultCh)
	})
	if err != nil {
		resultCh <- TaskResult{Error: err}
		close(resultCh)
	}

	return resultCh
}

// Running returns the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free returns the number of idle workers.
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Release stops the pool and waits for queued tasks to finish.
func (p *Pool) Release() {
	p.pool.Release()
}
