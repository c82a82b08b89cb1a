package playground

import "time"

// CopiedFor is how long the copied indicator stays on after a copy.
const CopiedFor = 2000 * time.Millisecond

// ClipboardWriter receives copied text. github.com/atotto/clipboard's
// WriteAll fits via ClipboardFunc.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to ClipboardWriter.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// Clipboard tracks the copied indicator against an injected clock.
type Clipboard struct {
	w     ClipboardWriter
	now   func() time.Time
	until time.Time
}

func NewClipboard(w ClipboardWriter, now func() time.Time) *Clipboard {
	if now == nil {
		now = time.Now
	}
	return &Clipboard{w: w, now: now}
}

// Copy writes text and turns the indicator on for CopiedFor, restarting
// the window if it is already on. A failed write leaves the indicator as is.
func (c *Clipboard) Copy(text string) error {
	if c.w != nil {
		if err := c.w.WriteAll(text); err != nil {
			return err
		}
	}
	c.until = c.now().Add(CopiedFor)
	return nil
}

// Copied reports whether the indicator is on.
func (c *Clipboard) Copied() bool {
	return c.now().Before(c.until)
}

// Remaining returns how long the indicator stays on, or 0.
func (c *Clipboard) Remaining() time.Duration {
	if d := c.until.Sub(c.now()); d > 0 {
		return d
	}
	return 0
}
