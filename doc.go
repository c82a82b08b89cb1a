// Package svgtidy hosts an externally built SVG optimizer and presents it.
//
// The optimizer itself is not part of this module. It is consumed as an opaque
// function, either a WebAssembly guest loaded through the runtime package or any
// Go value implementing Optimizer.
//
// # Architecture Overview
//
//	svgtidy/             Root package with the Optimizer collaborator interface
//	├── playground/      Incremental recomputation pipeline behind the playground
//	├── runtime/         High-level API: load a wasm optimizer, pooled instances
//	├── engine/          Low-level wazero integration and the guest ABI
//	├── errors/          Structured error types for the optimizer host
//	├── loader/          Bundler transform adapter
//	├── conformance/     Fixture runner for black-box optimizer checks
//	├── preview/         Terminal rasteriser for the Preview pane
//	├── server/          HTTP playground API
//	├── cache/           Shared result cache for the HTTP API
//	├── config/          Environment and .env configuration
//	└── cmd/svgtidy/     CLI: play, test, transform, serve
//
// # Quick Start
//
// Load an optimizer guest and run the playground pipeline against it:
//
//	rt, err := runtime.New(ctx, runtime.Options{PoolSize: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	opt, err := rt.LoadOptimizer(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	loop := playground.NewLoop()
//	p := playground.New(opt, playground.WithScheduler(loop))
//	p.SetInput(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
//	loop.RunPending()
//	fmt.Println(p.Frame().Text)
//
// # Thread Safety
//
// Runtime and the pooled Optimizer are safe for concurrent use. A Pipeline is
// owned by a single event loop and must not be shared between goroutines.
package svgtidy
