package playground

// ViewMode selects how a successful result is shown.
type ViewMode int

const (
	Preview ViewMode = iota
	Code
)

func (m ViewMode) String() string {
	switch m {
	case Preview:
		return "preview"
	case Code:
		return "code"
	default:
		return "unknown"
	}
}

// ParseViewMode accepts "preview" or "code". Anything else yields Preview, false.
func ParseViewMode(s string) (ViewMode, bool) {
	switch s {
	case "preview":
		return Preview, true
	case "code":
		return Code, true
	default:
		return Preview, false
	}
}

// Toggle returns the other mode.
func (m ViewMode) Toggle() ViewMode {
	if m == Preview {
		return Code
	}
	return Preview
}

// Pane is the single output pane visible for a frame.
type Pane int

const (
	PaneError Pane = iota
	PanePreview
	PaneCode
)

func (p Pane) String() string {
	switch p {
	case PaneError:
		return "error"
	case PanePreview:
		return "preview"
	case PaneCode:
		return "code"
	default:
		return "unknown"
	}
}

// Present picks the pane and its text. A failure always shows the error
// pane with its message, whatever the mode. Preview text is trusted markup
// from the optimizer and must only be rendered, never executed.
func Present(r Result, mode ViewMode) (Pane, string) {
	if r.Failed {
		return PaneError, r.Message
	}
	if mode == Code {
		return PaneCode, r.Output
	}
	return PanePreview, r.Output
}

// Frame is everything a surface needs to draw the playground once.
type Frame struct {
	Input   string
	Pane    Pane
	Text    string
	Mode    ViewMode
	Metrics Metrics
	Copied  bool
	// Stale is set while a newer input waits to settle.
	Stale bool
}
