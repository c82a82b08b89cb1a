// Package playground implements the interactive recomputation pipeline:
//
//	keystroke -> input buffer -> deferred settle -> cached transform -> metrics, frame
//
// The raw input always reflects the last keystroke. The settled copy trails
// it and only advances when the Scheduler runs the settle queued for the
// current burst of edits, so intermediate values are never optimized. The
// transform is cached by the settled string; an equal value never reaches the
// optimizer twice in a row.
//
// Failures are reduced to FailureMessage for display and logged in full.
// Output shown in Preview is treated as trusted markup produced by the
// optimizer; surfaces must render it, never execute it.
//
// Use Loop to drive a pipeline from tests or an embedding event loop:
//
//	loop := playground.NewLoop()
//	p := playground.New(opt, playground.WithScheduler(loop))
//	p.SetInput(doc)
//	loop.RunPending()
//	fmt.Println(p.Frame().Text)
package playground
