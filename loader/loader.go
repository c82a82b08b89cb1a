// Package loader adapts the optimizer to bundler-style transform hooks.
//
// A hook receives source text and reports back through a callback, either
// the optimized document or the optimizer's error, untouched.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
)

// ErrPanic wraps a panic raised by the optimizer during a transform.
var ErrPanic = errors.New("loader: optimizer panicked")

// Callback receives the transform outcome. On error result is empty.
type Callback func(err error, result string)

// Context describes the resource being transformed.
type Context struct {
	// ResourcePath is the file the source was read from, for logging.
	ResourcePath string
	Logger       *zap.Logger
}

// Transform optimizes source and reports through cb exactly once.
func Transform(ctx context.Context, lc Context, opt svgtidy.Optimizer, source string, cb Callback) {
	log := lc.Logger
	if log == nil {
		log = zap.NewNop()
	}

	out, err := optimize(ctx, opt, source)
	if err != nil {
		log.Debug("transform failed",
			zap.String("resource", lc.ResourcePath),
			zap.Error(err))
		cb(err, "")
		return
	}
	log.Debug("transformed",
		zap.String("resource", lc.ResourcePath),
		zap.Int("input_bytes", len(source)),
		zap.Int("output_bytes", len(out)))
	cb(nil, out)
}

// optimize turns an optimizer panic into an error so the callback still
// runs exactly once.
func optimize(ctx context.Context, opt svgtidy.Optimizer, source string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return opt.Optimize(ctx, source)
}

// TransformStream reads all of r, transforms it and writes the result to w.
func TransformStream(ctx context.Context, lc Context, opt svgtidy.Optimizer, r io.Reader, w io.Writer) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var werr error
	Transform(ctx, lc, opt, string(src), func(err error, result string) {
		if err != nil {
			werr = err
			return
		}
		_, werr = io.WriteString(w, result)
	})
	return werr
}
