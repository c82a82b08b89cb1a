package runtime

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground/engine"
	"github.com/wippyai/svgtidy-playground/errors"
)

// Options configures a Runtime.
type Options struct {
	// PoolSize bounds how many guest instances run at once. 0 means 1.
	PoolSize int

	// MemoryLimitPages caps each instance's linear memory (64KB pages).
	MemoryLimitPages uint32

	// CacheDir persists compiled guests between runs. Empty disables it.
	CacheDir string

	// Logger receives pool and guest lifecycle events. Nil means no-op.
	Logger *zap.Logger
}

type Runtime struct {
	engine *engine.WazeroEngine
	opts   Options
	log    *zap.Logger

	mu         sync.Mutex
	optimizers []*Optimizer
	closed     bool
}

func New(ctx context.Context, opts Options) (*Runtime, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &engine.Config{
		MemoryLimitPages:   opts.MemoryLimitPages,
		CacheDir:           opts.CacheDir,
		CloseOnContextDone: true,
	})
	if err != nil {
		return nil, errors.Load("create engine", err)
	}

	return &Runtime{
		engine: eng,
		opts:   opts,
		log:    log,
	}, nil
}

// Close releases every optimizer and the engine behind them.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	optimizers := r.optimizers
	r.optimizers = nil
	r.mu.Unlock()

	for _, o := range optimizers {
		if err := o.Close(ctx); err != nil {
			r.log.Warn("close optimizer", zap.Error(err))
		}
	}
	return r.engine.Close(ctx)
}

// LoadOptimizer compiles an optimizer guest and returns a pooled Optimizer
// for it. The first instance is created eagerly so ABI or link problems
// surface here rather than on the first document.
func (r *Runtime) LoadOptimizer(ctx context.Context, wasm []byte) (*Optimizer, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, errors.Closed(errors.PhaseLoad, "runtime")
	}
	r.mu.Unlock()

	mod, err := r.engine.LoadModule(ctx, wasm)
	if err != nil {
		return nil, err
	}

	o := newOptimizer(mod, r.opts.PoolSize, r.log)
	if err := o.warm(ctx); err != nil {
		_ = o.Close(ctx)
		return nil, err
	}

	r.mu.Lock()
	r.optimizers = append(r.optimizers, o)
	r.mu.Unlock()

	r.log.Info("optimizer loaded",
		zap.Int("wasm_bytes", len(wasm)),
		zap.Int("pool_size", r.opts.PoolSize))
	return o, nil
}

// LoadOptimizerFile reads a guest from disk and loads it.
func (r *Runtime) LoadOptimizerFile(ctx context.Context, path string) (*Optimizer, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return r.LoadOptimizer(ctx, wasm)
}
