package runtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground/engine"
	"github.com/wippyai/svgtidy-playground/errors"
)

// Optimizer runs documents through a bounded pool of guest instances.
// It is safe for concurrent use.
//
// Instances are created lazily up to the pool size. An instance that traps
// is closed and its slot is refilled with a fresh instance on next use, so
// one bad document never poisons later calls.
type Optimizer struct {
	module *engine.WazeroModule
	slots  chan *engine.WazeroInstance
	log    *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func newOptimizer(mod *engine.WazeroModule, size int, log *zap.Logger) *Optimizer {
	o := &Optimizer{
		module: mod,
		slots:  make(chan *engine.WazeroInstance, size),
		log:    log,
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		o.slots <- nil
	}
	return o
}

// warm instantiates one guest up front.
func (o *Optimizer) warm(ctx context.Context) error {
	inst := <-o.slots
	if inst == nil {
		var err error
		inst, err = o.module.Instantiate(ctx)
		if err != nil {
			o.slots <- nil
			return err
		}
	}
	o.slots <- inst
	return nil
}

// Optimize implements svgtidy.Optimizer.
func (o *Optimizer) Optimize(ctx context.Context, svg string) (string, error) {
	var inst *engine.WazeroInstance
	select {
	case <-o.done:
		return "", errors.Closed(errors.PhaseOptimize, "optimizer")
	case <-ctx.Done():
		return "", ctx.Err()
	case inst = <-o.slots:
	}

	if inst == nil {
		var err error
		inst, err = o.module.Instantiate(ctx)
		if err != nil {
			o.release(ctx, nil)
			return "", err
		}
	}

	out, err := inst.Optimize(ctx, svg)
	if inst.Broken() {
		o.log.Warn("optimizer instance trapped, replacing",
			zap.Int("input_bytes", len(svg)),
			zap.Uint32("memory_bytes", inst.MemorySize()),
			zap.String("stderr", inst.Stderr()))
		_ = inst.Close(ctx)
		inst = nil
	} else {
		inst.ResetStderr()
	}
	o.release(ctx, inst)
	return out, err
}

func (o *Optimizer) release(ctx context.Context, inst *engine.WazeroInstance) {
	select {
	case <-o.done:
		if inst != nil {
			_ = inst.Close(ctx)
		}
	default:
		o.slots <- inst
	}
}

// Close stops handing out instances and closes the idle ones. Calls in
// flight finish and close their instance on return.
func (o *Optimizer) Close(ctx context.Context) error {
	o.closeOnce.Do(func() {
		close(o.done)
		for {
			select {
			case inst := <-o.slots:
				if inst != nil {
					_ = inst.Close(ctx)
				}
			default:
				return
			}
		}
	})
	return nil
}
