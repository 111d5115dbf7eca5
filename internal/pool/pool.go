package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/metrics"
)

// Policy decides what Submit does when the queue is full and the pool is at MaxSize.
type Policy string

const (
	// PolicyBlock makes Submit wait for queue space.
	PolicyBlock Policy = "block"
	// PolicyReject makes Submit fail fast with ErrQueueFull.
	PolicyReject Policy = "reject"
)

var (
	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrQueueFull is returned under PolicyReject when no worker or queue slot is free.
	ErrQueueFull = errors.New("pool: queue full")
)

// Config sizes a WorkerPool.
type Config struct {
	// CoreSize workers are started by New and live until Close.
	CoreSize int
	// MaxSize caps core plus burst workers. Burst workers start only when the queue is full.
	MaxSize int
	// QueueCapacity is the number of accepted tasks waiting for a worker.
	QueueCapacity int
	// NamePrefix is prepended to worker sequence numbers in logs.
	NamePrefix string
	// KeepAlive is how long an idle burst worker waits before exiting.
	KeepAlive time.Duration
	// Policy applies when the pool is saturated. Empty means PolicyBlock.
	Policy Policy
}

// Validate reports configuration that would make the pool unusable.
func (c Config) Validate() error {
	if c.CoreSize < 1 {
		return fmt.Errorf("pool: core size must be at least 1, got %d", c.CoreSize)
	}
	if c.MaxSize < c.CoreSize {
		return fmt.Errorf("pool: max size %d is below core size %d", c.MaxSize, c.CoreSize)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("pool: queue capacity must not be negative, got %d", c.QueueCapacity)
	}
	switch c.Policy {
	case "", PolicyBlock, PolicyReject:
	default:
		return fmt.Errorf("pool: unknown saturation policy %q", c.Policy)
	}
	return nil
}

// Task is a unit of work. A returned error or a panic marks its Handle as failed.
type Task func(ctx context.Context) error

// Handle tracks one submitted task until it settles.
type Handle struct {
	done chan struct{}
	err  error
}

// Done is closed once the task has returned or panicked.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err blocks until the task settles and returns its failure, if any.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

type job struct {
	ctx    context.Context
	task   Task
	handle *Handle
}

// WorkerPool runs tasks on a bounded set of goroutines fed by a bounded queue.
type WorkerPool struct {
	cfg    Config
	logger *zap.Logger
	queue  chan *job

	workers atomic.Int32
	seq     atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New validates cfg and starts the core workers.
func New(cfg Config, logger *zap.Logger) (*WorkerPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyBlock
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "worker-"
	}

	p := &WorkerPool{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan *job, cfg.QueueCapacity),
	}

	p.logger.Info("Starting worker pool",
		zap.Int("core_size", cfg.CoreSize),
		zap.Int("max_size", cfg.MaxSize),
		zap.Int("queue_capacity", cfg.QueueCapacity),
		zap.String("policy", string(cfg.Policy)),
	)

	for i := 0; i < cfg.CoreSize; i++ {
		p.workers.Add(1)
		p.spawn(nil, true)
	}
	return p, nil
}

// Submit hands task to the pool. The queue is tried first, then a burst worker
// is started if MaxSize allows, then the saturation policy applies.
func (p *WorkerPool) Submit(ctx context.Context, task Task) (*Handle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	j := &job{ctx: ctx, task: task, handle: &Handle{done: make(chan struct{})}}

	select {
	case p.queue <- j:
		return j.handle, nil
	default:
	}

	if p.tryGrow() {
		p.spawn(j, false)
		return j.handle, nil
	}

	if p.cfg.Policy == PolicyReject {
		metrics.TasksRejected.Inc()
		return nil, ErrQueueFull
	}

	select {
	case p.queue <- j:
		return j.handle, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Workers returns the number of live worker goroutines.
func (p *WorkerPool) Workers() int {
	return int(p.workers.Load())
}

// Close stops accepting tasks, lets queued tasks finish and waits for all workers.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// Await blocks until every handle has settled. The result is aligned with
// handles: errs[i] is the failure of handles[i], or nil if it succeeded.
func Await(handles ...*Handle) []error {
	errs := make([]error, len(handles))
	for i, h := range handles {
		errs[i] = h.Err()
	}
	return errs
}

// Failed drops the nil entries of an Await result.
func Failed(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func (p *WorkerPool) tryGrow() bool {
	for {
		n := p.workers.Load()
		if int(n) >= p.cfg.MaxSize {
			return false
		}
		if p.workers.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// spawn starts a worker whose slot has already been counted in p.workers.
func (p *WorkerPool) spawn(first *job, core bool) {
	name := fmt.Sprintf("%s%d", p.cfg.NamePrefix, p.seq.Add(1))
	p.wg.Add(1)
	metrics.Workers.Inc()
	go p.worker(name, first, core)
}

func (p *WorkerPool) worker(name string, first *job, core bool) {
	defer p.wg.Done()
	defer metrics.Workers.Dec()
	defer p.workers.Add(-1)

	p.logger.Debug("Worker started", zap.String("worker", name), zap.Bool("core", core))

	if first != nil {
		p.run(name, first)
	}

	for {
		var idle <-chan time.Time
		var timer *time.Timer
		if !core {
			timer = time.NewTimer(p.cfg.KeepAlive)
			idle = timer.C
		}

		select {
		case j, ok := <-p.queue:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				p.logger.Debug("Task queue closed", zap.String("worker", name))
				return
			}
			p.run(name, j)
		case <-idle:
			p.logger.Debug("Burst worker idle, exiting", zap.String("worker", name))
			return
		}
	}
}

func (p *WorkerPool) run(name string, j *job) {
	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()
	defer close(j.handle.done)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.String("worker", name),
				zap.Any("panic", r),
			)
			j.handle.err = fmt.Errorf("pool: task panicked: %v", r)
		}
	}()

	j.handle.err = j.task(j.ctx)
}
