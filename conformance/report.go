package conformance

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
)

// Write prints one block per case and a closing summary line:
//
//	Testing: a.svg (120 bytes)
//	   ok: 98 bytes (18.33% savings)
//
//	Summary: 1 passed, 0 failed.
func (r *Report) Write(w io.Writer) error {
	if len(r.Cases) == 0 {
		_, err := fmt.Fprintf(w, "No SVG files found in %s\n", r.Dir)
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d test cases in %s\n\n", len(r.Cases), r.Dir); err != nil {
		return err
	}
	for _, c := range r.Cases {
		if _, err := fmt.Fprintf(w, "Testing: %s (%d bytes)\n", nameStyle.Render(c.Name), c.InputBytes); err != nil {
			return err
		}
		var line string
		if c.Passed() {
			line = passStyle.Render(fmt.Sprintf("   ok: %d bytes (%.2f%% savings)", c.OutputBytes, c.Savings()))
		} else {
			line = failStyle.Render(fmt.Sprintf("   failed: %v", c.Err))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "\n"+summaryStyle.Render(r.Summary()))
	return err
}

// Summary returns "Summary: N passed, M failed."
func (r *Report) Summary() string {
	return fmt.Sprintf("Summary: %d passed, %d failed.", r.Passed(), r.Failed())
}
