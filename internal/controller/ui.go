// Package controller provides output adapters for displaying scan progress
// and traversal results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "axegrind.dev/pkg/axegrind/internal/model"
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	targets int
	mode    m.ExecMode
}

// WithTargetCount tells the UI how many targets the invocation covers.
func WithTargetCount(n int) StartOption {
	return func(c *StartConfig) {
		c.targets = n
	}
}

// WithMode tells the UI which execution mode the scan uses.
func WithMode(mode m.ExecMode) StartOption {
	return func(c *StartConfig) {
		c.mode = mode
	}
}

// UI defines the interface for displaying scan progress and summaries.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for the UI to finish (user closes it)
	DisplayVisit(ctx context.Context, visit m.Visit)
	DisplaySummary(ctx context.Context, summaries []m.ScanSummary) error
}

// NewUI selects the TUI when attached to a terminal and the plain printer
// otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(os.Stdout)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
