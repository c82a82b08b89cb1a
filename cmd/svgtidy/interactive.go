package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/svgtidy-playground"
	"github.com/wippyai/svgtidy-playground/config"
	"github.com/wippyai/svgtidy-playground/playground"
	"github.com/wippyai/svgtidy-playground/preview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	copiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))

	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("#7D56F4"))
)

type keyMap struct {
	Focus   key.Binding
	Preview key.Binding
	Code    key.Binding
	Copy    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Preview, k.Code, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Preview: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
	Code:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "code")),
	Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy output")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

type settleMsg struct{}

type copyExpiredMsg struct{ gen int }

// teaScheduler runs deferred settles on a timer tick, after every key
// event already queued in the program has been handled.
type teaScheduler struct {
	quantum time.Duration
	queued  []func()
	armed   bool
}

func (s *teaScheduler) Defer(fn func()) {
	s.queued = append(s.queued, fn)
}

// tick arms the settle timer once per burst.
func (s *teaScheduler) tick() tea.Cmd {
	if s.armed || len(s.queued) == 0 {
		return nil
	}
	s.armed = true
	return tea.Tick(s.quantum, func(time.Time) tea.Msg { return settleMsg{} })
}

func (s *teaScheduler) run() {
	fns := s.queued
	s.queued = nil
	s.armed = false
	for _, fn := range fns {
		fn()
	}
}

type focusArea int

const (
	focusInput focusArea = iota
	focusOutput
)

type renderedPreview struct {
	markup     string
	cols, rows int
	out        string
	err        error
}

type playModel struct {
	pipe   *playground.Pipeline
	sched  *teaScheduler
	editor textarea.Model
	code   viewport.Model
	help   help.Model
	keys   keyMap

	focus   focusArea
	width   int
	height  int
	copyGen int
	copyErr error
	preview renderedPreview
}

func newPlayModel(ctx context.Context, opt svgtidy.Optimizer, log *zap.Logger, quantum time.Duration, initial string, w, h int) *playModel {
	sched := &teaScheduler{quantum: quantum}
	pipe := playground.New(opt,
		playground.WithContext(ctx),
		playground.WithLogger(log),
		playground.WithScheduler(sched),
		playground.WithInitialInput(initial),
		playground.WithClipboard(playground.ClipboardFunc(clipboard.WriteAll)),
	)
	return newPlayModelFor(pipe, sched, w, h)
}

func newPlayModelFor(pipe *playground.Pipeline, sched *teaScheduler, w, h int) *playModel {
	ed := textarea.New()
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.ShowLineNumbers = true
	ed.Placeholder = "Paste SVG markup here"
	ed.SetValue(pipe.Input())
	ed.Focus()

	m := &playModel{
		pipe:   pipe,
		sched:  sched,
		editor: ed,
		code:   viewport.New(0, 0),
		help:   help.New(),
		keys:   keys,
	}
	m.resize(w, h)
	m.refreshCode()
	return m
}

func (m *playModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case settleMsg:
		m.sched.run()
		m.refreshCode()

	case copyExpiredMsg:
		if msg.gen != m.copyGen {
			return m, nil
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Focus):
			m.toggleFocus()
		case key.Matches(msg, m.keys.Preview):
			m.pipe.SetViewMode(playground.Preview)
		case key.Matches(msg, m.keys.Code):
			m.pipe.SetViewMode(playground.Code)
			m.refreshCode()
		case key.Matches(msg, m.keys.Copy):
			cmds = append(cmds, m.copy())
		case m.focus == focusInput:
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
			if v := m.editor.Value(); v != m.pipe.Input() {
				m.pipe.SetInput(v)
			}
		default:
			var cmd tea.Cmd
			m.code, cmd = m.code.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.sched.tick())
	return m, tea.Batch(cmds...)
}

func (m *playModel) copy() tea.Cmd {
	if err := m.pipe.Copy(); err != nil {
		m.copyErr = err
		return nil
	}
	m.copyErr = nil
	m.copyGen++
	gen := m.copyGen
	return tea.Tick(m.pipe.CopiedRemaining(), func(time.Time) tea.Msg { return copyExpiredMsg{gen: gen} })
}

func (m *playModel) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusOutput
		m.editor.Blur()
		return
	}
	m.focus = focusInput
	m.editor.Focus()
}

// paneSize returns the inner size of each of the two side-by-side panes.
func (m *playModel) paneSize() (int, int) {
	w := m.width/2 - 2
	h := m.height - 6
	return max(w, 10), max(h, 3)
}

func (m *playModel) resize(w, h int) {
	m.width, m.height = w, h
	pw, ph := m.paneSize()
	m.editor.SetWidth(pw)
	m.editor.SetHeight(ph)
	m.code.Width = pw
	m.code.Height = ph
	m.help.Width = w
}

func (m *playModel) refreshCode() {
	f := m.pipe.Frame()
	if f.Pane == playground.PaneCode {
		m.code.SetContent(f.Text)
	}
}

func (m *playModel) renderPreview(markup string, cols, rows int) (string, error) {
	p := m.preview
	if p.markup == markup && p.cols == cols && p.rows == rows && (p.out != "" || p.err != nil) {
		return p.out, p.err
	}
	out, err := preview.Render(markup, preview.Options{Cols: cols, Rows: rows})
	m.preview = renderedPreview{markup: markup, cols: cols, rows: rows, out: out, err: err}
	return out, err
}

func (m *playModel) outputBody(f playground.Frame) string {
	pw, ph := m.paneSize()
	switch f.Pane {
	case playground.PaneError:
		return errorStyle.Width(pw).Render(f.Text)
	case playground.PaneCode:
		return m.code.View()
	default:
		out, err := m.renderPreview(f.Text, pw, ph)
		if err != nil {
			return helpStyle.Width(pw).Render("preview unavailable: " + err.Error())
		}
		return out
	}
}

func (m *playModel) tabs(mode playground.ViewMode) string {
	var b strings.Builder
	for _, v := range []playground.ViewMode{playground.Preview, playground.Code} {
		label := strings.ToUpper(v.String()[:1]) + v.String()[1:]
		if v == mode {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	return b.String()
}

func (m *playModel) View() string {
	f := m.pipe.Frame()

	inHeader := headerStyle.Render("Input SVG") + "  " + badgeStyle.Render(f.Metrics.InputBadge())
	outHeader := headerStyle.Render("Optimized SVG") + "  " + badgeStyle.Render(f.Metrics.OutputBadge())
	outHeader += "  " + m.tabs(f.Mode)
	switch {
	case m.copyErr != nil:
		outHeader += "  " + errorStyle.Render("copy failed")
	case f.Copied:
		outHeader += "  " + copiedStyle.Render("✓ copied")
	}
	if f.Stale {
		outHeader += "  " + helpStyle.Render("…")
	}

	inStyle, outStyle := paneStyle, focusedPaneStyle
	if m.focus == focusInput {
		inStyle, outStyle = focusedPaneStyle, paneStyle
	}

	left := lipgloss.JoinVertical(lipgloss.Left, inHeader, inStyle.Render(m.editor.View()))
	right := lipgloss.JoinVertical(lipgloss.Left, outHeader, outStyle.Render(m.outputBody(f)))

	var b strings.Builder
	b.WriteString(titleStyle.Render("svgtidy playground"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func runPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	optimizerFlags(fs, cfg)
	file := fs.String("file", "", "SVG document to start with")
	fs.DurationVar(&cfg.Playground.SettleQuantum, "quantum", cfg.Playground.SettleQuantum, "Delay before typed input is optimized")
	fs.Parse(args)

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("play needs an interactive terminal; use `svgtidy transform` for pipes")
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}

	initial := playground.DefaultSVG
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read %s: %w", *file, err)
		}
		initial = string(data)
	}

	log, err := setup(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	rt, opt, err := loadOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	m := newPlayModel(ctx, opt, log.Named("playground"), cfg.Playground.SettleQuantum, initial, w, h)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
