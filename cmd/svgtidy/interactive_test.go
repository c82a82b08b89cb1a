package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/svgtidy-playground"
	"github.com/wippyai/svgtidy-playground/playground"
)

func upper(calls *int) svgtidy.Optimizer {
	return svgtidy.OptimizerFunc(func(_ context.Context, svg string) (string, error) {
		*calls++
		if !strings.HasPrefix(svg, "<svg") {
			return "", errors.New("not svg")
		}
		return strings.ToUpper(svg), nil
	})
}

func newTestModel(t *testing.T, calls *int, clip playground.ClipboardWriter) *playModel {
	t.Helper()
	sched := &teaScheduler{quantum: time.Millisecond}
	opts := []playground.Option{
		playground.WithScheduler(sched),
		playground.WithInitialInput("<svg/>"),
	}
	if clip != nil {
		opts = append(opts, playground.WithClipboard(clip))
	}
	return newPlayModelFor(playground.New(upper(calls), opts...), sched, 120, 40)
}

func typeRunes(m *playModel, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func TestTeaScheduler_ArmsOncePerBurst(t *testing.T) {
	s := &teaScheduler{quantum: time.Millisecond}
	if s.tick() != nil {
		t.Fatal("idle scheduler should not arm a tick")
	}

	var ran []int
	s.Defer(func() { ran = append(ran, 1) })
	if s.tick() == nil {
		t.Fatal("first deferred task should arm a tick")
	}
	s.Defer(func() { ran = append(ran, 2) })
	if s.tick() != nil {
		t.Error("an armed scheduler should not arm a second tick")
	}

	s.run()
	if diff := cmp.Diff([]int{1, 2}, ran); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}
	if s.tick() != nil {
		t.Error("drained scheduler should not arm a tick")
	}
}

func TestPlayModel_TypingSettlesOnTick(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, nil)
	if calls != 1 {
		t.Fatalf("calls after start = %d, want 1", calls)
	}

	typeRunes(m, "x")
	typeRunes(m, "y")

	if got := m.pipe.Input(); got != "<svg/>xy" {
		t.Errorf("Input = %q", got)
	}
	if got := m.pipe.Settled(); got != "<svg/>" {
		t.Errorf("Settled before tick = %q", got)
	}
	if !m.pipe.Pending() {
		t.Error("input should be pending before the tick")
	}
	if calls != 1 {
		t.Errorf("optimizer ran before the tick: calls = %d", calls)
	}

	m.Update(settleMsg{})
	if got := m.pipe.Settled(); got != "<svg/>xy" {
		t.Errorf("Settled after tick = %q", got)
	}
	if m.pipe.Pending() {
		t.Error("nothing should be pending after the tick")
	}
	if got := m.pipe.Result().Output; got != "<SVG/>XY" {
		t.Errorf("Output = %q", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPlayModel_ViewModeKeys(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, nil)
	if m.pipe.ViewMode() != playground.Preview {
		t.Fatalf("initial mode = %v", m.pipe.ViewMode())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.pipe.ViewMode() != playground.Code {
		t.Errorf("mode after ctrl+o = %v", m.pipe.ViewMode())
	}
	if !strings.Contains(m.code.View(), "<SVG/>") {
		t.Errorf("code pane missing output:\n%s", m.code.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.pipe.ViewMode() != playground.Preview {
		t.Errorf("mode after ctrl+p = %v", m.pipe.ViewMode())
	}
}

func TestPlayModel_FocusKeepsEditorUnchanged(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusOutput {
		t.Fatalf("focus = %v, want output", m.focus)
	}

	typeRunes(m, "z")
	if got := m.pipe.Input(); got != "<svg/>" {
		t.Errorf("typing with output focused changed input to %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusInput {
		t.Errorf("focus = %v, want input", m.focus)
	}
}

func TestPlayModel_Copy(t *testing.T) {
	calls := 0
	var got string
	m := newTestModel(t, &calls, playground.ClipboardFunc(func(s string) error {
		got = s
		return nil
	}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if cmd == nil {
		t.Fatal("copy should schedule the indicator expiry")
	}
	if got != "<SVG/>" {
		t.Errorf("clipboard = %q", got)
	}
	if !m.pipe.Copied() {
		t.Error("Copied should be true right after a copy")
	}
	if m.copyGen != 1 {
		t.Errorf("copyGen = %d, want 1", m.copyGen)
	}
	if !strings.Contains(m.View(), "copied") {
		t.Error("view should show the copied indicator")
	}

	// An expiry from an earlier copy is ignored.
	if _, cmd := m.Update(copyExpiredMsg{gen: 0}); cmd != nil {
		t.Error("stale expiry should not produce a command")
	}
}

func TestPlayModel_CopyFailure(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, playground.ClipboardFunc(func(string) error {
		return errors.New("no clipboard")
	}))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if m.pipe.Copied() {
		t.Error("a failed write must not set Copied")
	}
	if m.copyErr == nil {
		t.Error("copy error should be kept for the view")
	}
	if !strings.Contains(m.View(), "copy failed") {
		t.Error("view should report the failed copy")
	}
}

func TestPlayModel_ErrorPane(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, nil)

	m.editor.SetValue("")
	typeRunes(m, "nope")
	m.Update(settleMsg{})

	if !strings.Contains(m.View(), playground.FailureMessage) {
		t.Errorf("view should show %q", playground.FailureMessage)
	}
}

func TestPlayModel_Quit(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("esc produced %T, want tea.QuitMsg", cmd())
	}
}
