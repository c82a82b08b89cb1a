package playground

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
)

// FailureMessage is shown for every optimizer failure. The underlying error
// is logged, never displayed.
const FailureMessage = "Failed to optimize SVG. Ensure input is valid XML."

// Result is the outcome of one transform: either a document or a failure
// message, never both.
type Result struct {
	Output  string
	Message string
	Failed  bool
}

func Success(output string) Result {
	return Result{Output: output}
}

func Failure(message string) Result {
	return Result{Message: message, Failed: true}
}

// Transform runs opt against settled. Blank input yields an empty success
// without calling opt. Errors and panics become a Failure carrying
// FailureMessage.
func Transform(ctx context.Context, opt svgtidy.Optimizer, settled string, log *zap.Logger) (res Result) {
	if strings.TrimSpace(settled) == "" {
		return Success("")
	}
	if log == nil {
		log = zap.NewNop()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("optimizer panicked",
				zap.Int("input_bytes", len(settled)),
				zap.Any("panic", r))
			res = Failure(FailureMessage)
		}
	}()

	out, err := opt.Optimize(ctx, settled)
	if err != nil {
		log.Warn("optimize failed",
			zap.Int("input_bytes", len(settled)),
			zap.Error(err))
		return Failure(FailureMessage)
	}
	return Success(out)
}

// Memo caches the transform of the last settled value it saw.
type Memo struct {
	opt    svgtidy.Optimizer
	log    *zap.Logger
	key    string
	result Result
	valid  bool
	calls  int
}

func NewMemo(opt svgtidy.Optimizer, log *zap.Logger) *Memo {
	if opt == nil {
		panic("playground: nil optimizer")
	}
	return &Memo{opt: opt, log: log}
}

// Compute returns the transform of settled, reusing the cached result when
// settled equals the previous key. A new key replaces the cached entry.
func (m *Memo) Compute(ctx context.Context, settled string) Result {
	if m.valid && m.key == settled {
		return m.result
	}
	m.calls++
	m.result = Transform(ctx, m.opt, settled, m.log)
	m.key = settled
	m.valid = true
	return m.result
}

// Computations counts cache misses.
func (m *Memo) Computations() int {
	return m.calls
}
