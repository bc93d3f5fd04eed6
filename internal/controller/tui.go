package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "axegrind.dev/pkg/axegrind/internal/model"
)

// maxVisibleVisits bounds the live visit feed; older entries scroll away.
const maxVisibleVisits = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	frameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	rootStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{
		output: output,
		done:   make(chan struct{}),
	}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{targets: 1}
	for _, option := range options {
		option(&config)
	}

	t.program = tea.NewProgram(newScanModel(config), tea.WithOutput(t.output))

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Close asks the program to quit.
func (t *TUI) Close(ctx context.Context) {
	if t.program == nil {
		return
	}

	t.program.Quit()

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

// Wait blocks until the user dismisses the UI or the context ends.
func (t *TUI) Wait(ctx context.Context) {
	if t.program == nil {
		return
	}

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

// DisplayVisit feeds one entered context into the running program.
func (t *TUI) DisplayVisit(ctx context.Context, visit m.Visit) {
	if t.program == nil || ctx.Err() != nil {
		return
	}

	t.program.Send(visitMsg{visit: visit})
}

// DisplaySummary feeds the final summaries into the running program.
func (t *TUI) DisplaySummary(ctx context.Context, summaries []m.ScanSummary) error {
	if t.program == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.program.Send(summaryMsg{summaries: summaries})

	return nil
}

type visitMsg struct {
	visit m.Visit
}

type summaryMsg struct {
	summaries []m.ScanSummary
}

// scanModel is the Bubble Tea model for a running scan.
type scanModel struct {
	config    StartConfig
	spin      spinner.Model
	visits    []m.Visit
	summaries []m.ScanSummary
	finished  bool
	quitting  bool
}

func newScanModel(config StartConfig) scanModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = titleStyle

	return scanModel{
		config: config,
		spin:   spin,
	}
}

// Init implements tea.Model.
func (sm scanModel) Init() tea.Cmd {
	return sm.spin.Tick
}

// Update implements tea.Model.
func (sm scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			sm.quitting = true
			return sm, tea.Quit
		}

	case visitMsg:
		sm.visits = append(sm.visits, msg.visit)
		return sm, nil

	case summaryMsg:
		sm.summaries = msg.summaries
		sm.finished = true
		return sm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		sm.spin, cmd = sm.spin.Update(msg)

		return sm, cmd
	}

	return sm, nil
}

// View implements tea.Model.
func (sm scanModel) View() string {
	if sm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("axegrind"))
	fmt.Fprintf(&b, " %d target(s), %s mode\n\n", sm.config.targets, sm.config.mode)

	visits := sm.visits
	if len(visits) > maxVisibleVisits {
		visits = visits[len(visits)-maxVisibleVisits:]
	}

	for _, visit := range visits {
		style := frameStyle
		marker := "frame"

		if visit.IsRoot() {
			style = rootStyle
			marker = "root"
		}

		location := visit.Location
		if location == "" {
			location = visit.Target
		}

		b.WriteString(style.Render(fmt.Sprintf("  [%s] #%d %s", marker, visit.Ordinal, location)))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if !sm.finished {
		fmt.Fprintf(&b, "%s injecting...\n", sm.spin.View())
		return b.String()
	}

	for _, summary := range sm.summaries {
		line := fmt.Sprintf(
			"  %s: %d context(s), %d frame(s), %s",
			summary.Target, len(summary.Visits), summary.FrameCount(), summary.Duration.Round(time.Millisecond),
		)

		if summary.Err != "" {
			b.WriteString(errorStyle.Render(line + ": " + summary.Err))
		} else {
			b.WriteString(summaryStyle.Render(line))
		}

		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n  press q to quit\n"))

	return b.String()
}
