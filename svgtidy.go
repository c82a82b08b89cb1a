package svgtidy

import (
	"context"
	"errors"
)

// ErrEmptyOutput is returned by optimizers that produced no document at all.
var ErrEmptyOutput = errors.New("svgtidy: optimizer returned empty output")

// Optimizer transforms SVG source text into optimized SVG source text.
// Implementations are expected to be pure: the same input yields the same output.
type Optimizer interface {
	Optimize(ctx context.Context, svg string) (string, error)
}

// OptimizerFunc adapts a plain function to Optimizer.
type OptimizerFunc func(ctx context.Context, svg string) (string, error)

// Optimize calls f(ctx, svg).
func (f OptimizerFunc) Optimize(ctx context.Context, svg string) (string, error) {
	return f(ctx, svg)
}
