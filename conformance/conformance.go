// Package conformance runs an optimizer over a directory of SVG fixtures
// and checks that every output still looks like an SVG document.
package conformance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/svgtidy-playground"
)

// ShapeError is recorded for fixtures whose output fails the shape check.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string { return e.Reason }

// Case is the outcome for one fixture.
type Case struct {
	Name        string
	InputBytes  int
	OutputBytes int
	Err         error
}

func (c Case) Passed() bool { return c.Err == nil }

// Savings returns the percentage saved, or 0 for an empty fixture.
func (c Case) Savings() float64 {
	if c.InputBytes == 0 {
		return 0
	}
	return float64(c.InputBytes-c.OutputBytes) / float64(c.InputBytes) * 100
}

// Report collects every case in file name order.
type Report struct {
	Dir   string
	Cases []Case
}

func (r *Report) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Passed() {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Cases) - r.Passed()
}

// OK reports whether every case passed. An empty report is OK.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Options tunes a run.
type Options struct {
	// Workers optimizes this many fixtures at once. 0 means 1.
	Workers int
	Logger  *zap.Logger
}

// Run optimizes every *.svg file directly inside dir. A missing or
// unreadable directory is an error; fixture failures are recorded in the
// report instead.
func Run(ctx context.Context, opt svgtidy.Optimizer, dir string, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	report := &Report{Dir: dir, Cases: make([]Case, len(names))}
	if len(names) == 0 {
		log.Warn("no svg fixtures found", zap.String("dir", dir))
		return report, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, name := range names {
		g.Go(func() error {
			report.Cases[i] = runCase(gctx, opt, filepath.Join(dir, name), name)
			c := report.Cases[i]
			log.Debug("fixture done",
				zap.String("name", c.Name),
				zap.Int("input_bytes", c.InputBytes),
				zap.Int("output_bytes", c.OutputBytes),
				zap.Error(c.Err))
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func runCase(ctx context.Context, opt svgtidy.Optimizer, path, name string) Case {
	c := Case{Name: name}

	data, err := os.ReadFile(path)
	if err != nil {
		c.Err = err
		return c
	}
	c.InputBytes = len(data)

	out, err := opt.Optimize(ctx, string(data))
	if err != nil {
		c.Err = err
		return c
	}
	c.OutputBytes = len(out)
	c.Err = CheckShape(out)
	return c
}

// CheckShape verifies out is non-empty and opens with an <svg tag.
func CheckShape(out string) error {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return &ShapeError{Reason: "output is empty"}
	}
	if !strings.HasPrefix(trimmed, "<svg") {
		return &ShapeError{Reason: "output does not start with <svg"}
	}
	return nil
}
