package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolClosed is returned when a closed ModelPool is used.
var ErrPoolClosed = errors.New("model pool is closed")

// ModelPool holds n Models compiled from one Builder so that many goroutines
// can run the same graph without hitting ErrRunInProgress. Each call borrows
// a Model exclusively and returns it afterwards.
//
// Example:
//
//	pool, err := binding.NewModelPool(builder, 8, binding.BackendConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	err = pool.Run(ctx,
//	    func(m *binding.Model) error { return m.SetInputData("x", x) },
//	    func(m *binding.Model) error { out, err = m.Output("y"); return err },
//	)
type ModelPool struct {
	models chan *Model
	size   int

	mu     sync.RWMutex
	closed bool

	totalRuns    atomic.Int64
	totalErrors  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// NewModelPool compiles n Models from b with cfg. opts apply to every Model.
func NewModelPool(b *Builder, n int, cfg BackendConfig, opts ...Option) (*ModelPool, error) {
	if n <= 0 {
		return nil, invalidArg(2, "pool size must be positive, got %d", n)
	}

	pool := &ModelPool{
		models: make(chan *Model, n),
		size:   n,
	}
	for i := 0; i < n; i++ {
		m, err := b.Compile(cfg, opts...)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to compile model %d: %w", i, err)
		}
		pool.models <- m
	}
	return pool, nil
}

// Do borrows a Model, calls fn with exclusive use of it, and returns it to
// the pool. It blocks until a Model is available or ctx is done.
func (p *ModelPool) Do(ctx context.Context, fn func(m *Model) error) error {
	m, err := p.borrow(ctx)
	if err != nil {
		return err
	}
	defer p.giveBack(m)
	return fn(m)
}

// Run borrows a Model, calls fill to write its inputs, runs it, and calls
// read to consume its outputs. read is skipped when the run fails.
func (p *ModelPool) Run(ctx context.Context, fill, read func(m *Model) error) error {
	return p.Do(ctx, func(m *Model) error {
		if fill != nil {
			if err := fill(m); err != nil {
				return err
			}
		}

		start := time.Now()
		err := m.Run(ctx).Err()
		p.totalRuns.Add(1)
		p.totalLatency.Add(int64(time.Since(start)))
		if err != nil {
			p.totalErrors.Add(1)
			return err
		}

		if read != nil {
			return read(m)
		}
		return nil
	})
}

func (p *ModelPool) borrow(ctx context.Context) (*Model, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case m, ok := <-p.models:
		if !ok {
			return nil, ErrPoolClosed
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *ModelPool) giveBack(m *Model) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		m.Close()
		return
	}
	p.models <- m
}

// Size returns the total number of models in the pool.
func (p *ModelPool) Size() int {
	return p.size
}

// Available returns the number of idle models.
func (p *ModelPool) Available() int {
	return len(p.models)
}

// Stats returns pool usage statistics.
func (p *ModelPool) Stats() PoolStats {
	return PoolStats{
		TotalRuns:       p.totalRuns.Load(),
		TotalErrors:     p.totalErrors.Load(),
		TotalLatency:    time.Duration(p.totalLatency.Load()),
		PoolSize:        p.size,
		AvailableModels: len(p.models),
	}
}

// PoolStats contains pool usage statistics.
type PoolStats struct {
	TotalRuns       int64
	TotalErrors     int64
	TotalLatency    time.Duration
	PoolSize        int
	AvailableModels int
}

// AvgLatency returns the average run latency, or 0 if no runs have completed.
func (s PoolStats) AvgLatency() time.Duration {
	if s.TotalRuns == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.TotalRuns)
}

// Close closes every idle model. Models borrowed at the time of the call are
// closed when they are returned. It is safe to call Close multiple times.
func (p *ModelPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.models)
	p.mu.Unlock()

	var errs []error
	for m := range p.models {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
