package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "axegrind.dev/pkg/axegrind/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex // visits from parallel targets interleave on one writer
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the invocation header.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{targets: 1}
	for _, option := range options {
		option(&config)
	}

	s.printf("Injecting into %d target(s), %s mode\n", config.targets, config.mode)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayVisit prints one entered context as it happens.
func (s *SimpleUI) DisplayVisit(ctx context.Context, visit m.Visit) {
	if err := ctx.Err(); err != nil {
		return
	}

	kind := "frame"
	if visit.IsRoot() {
		kind = "root"
	}

	location := visit.Location
	if location == "" {
		location = visit.Target
	}

	s.printf("  [%s] #%d %s\n", kind, visit.Ordinal, location)
}

// DisplaySummary renders the per-target summary table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summaries []m.ScanSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summaries))

	return nil
}

func renderSummaryTable(summaries []m.ScanSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Target", "Mode", "Contexts", "Frames", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})

	totalContexts := 0
	totalFrames := 0

	for _, summary := range summaries {
		status := "ok"
		if summary.Err != "" {
			status = summary.Err
		}

		table.Append([]string{
			summary.Target,
			summary.Mode,
			fmt.Sprintf("%d", len(summary.Visits)),
			fmt.Sprintf("%d", summary.FrameCount()),
			status,
		})

		totalContexts += len(summary.Visits)
		totalFrames += summary.FrameCount()
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Targets %d", len(summaries)),
		"",
		fmt.Sprintf("%d", totalContexts),
		fmt.Sprintf("%d", totalFrames),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cmd.Printf(format, args...)
}
