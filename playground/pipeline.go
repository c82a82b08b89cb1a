package playground

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
)

// DefaultSVG is the document a new playground starts with.
const DefaultSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <!-- This is a comment that will be removed -->
  <rect x="10" y="10" width="80" height="80" fill="red"/>
  <circle cx="50" cy="50" r="20" fill="blue" />
</svg>`

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithScheduler sets where settles run. The default is Immediate.
func WithScheduler(s Scheduler) Option {
	return func(p *Pipeline) { p.sched = s }
}

// WithClock sets the time source for the copied indicator.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithClipboard sets where Copy writes. Without it Copy only flips the
// indicator.
func WithClipboard(w ClipboardWriter) Option {
	return func(p *Pipeline) { p.clipWriter = w }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithInitialInput replaces DefaultSVG as the starting document.
func WithInitialInput(s string) Option {
	return func(p *Pipeline) { p.initial = s }
}

// WithContext sets the context passed to the optimizer.
func WithContext(ctx context.Context) Option {
	return func(p *Pipeline) { p.ctx = ctx }
}

// WithOnSettle registers a hook run after each settle has been transformed.
func WithOnSettle(fn func()) Option {
	return func(p *Pipeline) { p.onSettle = fn }
}

// Pipeline is the playground: a raw input buffer, a deferred settled copy,
// a cache-of-one transform of that copy, and the view state around it.
//
// A Pipeline belongs to one event loop. None of its methods are safe for
// concurrent use.
type Pipeline struct {
	ctx        context.Context
	sched      Scheduler
	now        func() time.Time
	clipWriter ClipboardWriter
	log        *zap.Logger
	onSettle   func()
	initial    string

	input *Deferred[string]
	memo  *Memo
	clip  *Clipboard
	mode  ViewMode
}

// New builds a pipeline around opt. The initial document is settled and
// transformed before New returns.
func New(opt svgtidy.Optimizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		ctx:     context.Background(),
		sched:   Immediate,
		now:     time.Now,
		initial: DefaultSVG,
	}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = Logger()
	}

	p.memo = NewMemo(opt, p.log)
	p.clip = NewClipboard(p.clipWriter, p.now)
	p.input = NewDeferred(p.initial, p.sched, p.settled)
	p.memo.Compute(p.ctx, p.initial)
	return p
}

func (p *Pipeline) settled(v string) {
	p.memo.Compute(p.ctx, v)
	if p.onSettle != nil {
		p.onSettle()
	}
}

// SetInput replaces the raw input. It never blocks on the optimizer.
func (p *Pipeline) SetInput(text string) {
	p.input.Set(text)
}

// Input returns the raw input exactly as last set.
func (p *Pipeline) Input() string {
	return p.input.Latest()
}

// Settled returns the input the current result was computed from.
func (p *Pipeline) Settled() string {
	return p.input.Settled()
}

// Pending reports whether a newer input is waiting to settle.
func (p *Pipeline) Pending() bool {
	return p.input.Pending()
}

// Result returns the transform of the settled input.
func (p *Pipeline) Result() Result {
	return p.memo.Compute(p.ctx, p.input.Settled())
}

func (p *Pipeline) Metrics() Metrics {
	return ComputeMetrics(p.input.Settled(), p.Result())
}

func (p *Pipeline) ViewMode() ViewMode {
	return p.mode
}

func (p *Pipeline) SetViewMode(m ViewMode) {
	p.mode = m
}

func (p *Pipeline) ToggleViewMode() {
	p.mode = p.mode.Toggle()
}

// Copy writes the current output to the clipboard.
func (p *Pipeline) Copy() error {
	out := p.Result().Output
	if err := p.clip.Copy(out); err != nil {
		p.log.Warn("copy to clipboard failed", zap.Error(err))
		return err
	}
	p.log.Debug("copied output", zap.Int("bytes", len(out)))
	return nil
}

func (p *Pipeline) Copied() bool {
	return p.clip.Copied()
}

// CopiedRemaining returns how long the copied indicator stays on.
func (p *Pipeline) CopiedRemaining() time.Duration {
	return p.clip.Remaining()
}

// Computations counts optimizer invocations made through the cache.
func (p *Pipeline) Computations() int {
	return p.memo.Computations()
}

// Frame snapshots everything needed to draw the playground.
func (p *Pipeline) Frame() Frame {
	settled := p.input.Settled()
	r := p.memo.Compute(p.ctx, settled)
	pane, text := Present(r, p.mode)
	return Frame{
		Input:   p.input.Latest(),
		Pane:    pane,
		Text:    text,
		Mode:    p.mode,
		Metrics: ComputeMetrics(settled, r),
		Copied:  p.clip.Copied(),
		Stale:   p.input.Pending(),
	}
}
