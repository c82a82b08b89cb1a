package playground

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	gapRe     = regexp.MustCompile(`>\s+<`)
)

// stripper is a fake optimizer that drops comments and inter-tag
// whitespace, failing on anything that does not look like markup.
type stripper struct {
	calls []string
}

func (s *stripper) Optimize(_ context.Context, svg string) (string, error) {
	s.calls = append(s.calls, svg)
	if !strings.Contains(svg, "<svg") {
		return "", errors.New("SyntaxError: bad")
	}
	out := commentRe.ReplaceAllString(svg, "")
	out = gapRe.ReplaceAllString(out, "><")
	return strings.TrimSpace(out), nil
}

// fakeClock is advanced by hand.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
