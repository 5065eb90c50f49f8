package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one unit of background work.
type Task struct {
	Ctx  context.Context
	Name string
	Work func(ctx context.Context) error
}

// Pool runs tasks on a fixed number of goroutines. Each task gets Timeout to
// finish before its context is cancelled.
type Pool struct {
	Timeout time.Duration

	tasks chan Task
	quit  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
	log   zerolog.Logger
}

func NewPool(maxWorkers, queue int, log zerolog.Logger) *Pool {
	p := &Pool{
		Timeout: 10 * time.Second,
		tasks:   make(chan Task, queue),
		quit:    make(chan struct{}),
		log:     log,
	}
	for i := 0; i < maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	if err := task.Work(ctx); err != nil {
		p.log.Debug().Err(err).Str("task", task.Name).Msg("task failed")
	}
}

// Submit queues task without blocking. It reports false when the queue is
// full or the pool is shut down; the caller may retry later.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops the workers and waits for running tasks to return. Queued
// tasks are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
