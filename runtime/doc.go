// Package runtime provides the high-level API for hosting an SVG optimizer
// guest.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.Options{PoolSize: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	opt, err := rt.LoadOptimizerFile(ctx, "svgtidy.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := opt.Optimize(ctx, `<svg xmlns="http://www.w3.org/2000/svg"/>`)
//
// # Pooling
//
// An Optimizer owns up to PoolSize guest instances. Each call borrows one,
// so concurrent callers never share guest memory. A trapped instance is
// discarded and replaced lazily.
//
// # Caching
//
// Set Options.CacheDir to keep compiled guests on disk; later processes skip
// compilation for the same binary.
package runtime
