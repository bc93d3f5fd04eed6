package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"axegrind.dev/pkg/axegrind/internal/adapter"
	"axegrind.dev/pkg/axegrind/internal/controller"
	m "axegrind.dev/pkg/axegrind/internal/model"
)

// locationProbe identifies an entered context from inside it. Run through
// the frame callback, never as the payload.
const locationProbe = "return document.location.href;"

// checkProbe is a trivial round-trip used by the preflight check.
const checkProbe = "return 21 * 2;"

// ScanArgs bundles one scan invocation.
type ScanArgs struct {
	Targets       []string
	ControlURL    string
	Mode          m.ExecMode
	DisableFrames bool
	SkipPayload   bool
	Threads       int
	Reports       m.Path // empty disables report persistence
}

// CheckArgs bundles a preflight check.
type CheckArgs struct {
	ControlURL string
}

// Workflow coordinates the script provider, session factory, injector, UI
// and report store for one CLI invocation.
type Workflow interface {
	Scan(ctx context.Context, args ScanArgs) error
	Check(ctx context.Context, args CheckArgs) (m.CheckResult, error)
}

type workflow struct {
	provider adapter.ScriptProvider
	factory  adapter.SessionFactory
	store    adapter.ReportStore
	ui       controller.UI
	injector Injector
}

// NewWorkflow constructs a Workflow backed by the provided collaborators.
func NewWorkflow(
	provider adapter.ScriptProvider,
	factory adapter.SessionFactory,
	store adapter.ReportStore,
	ui controller.UI,
	injector Injector,
) Workflow {
	return &workflow{
		provider: provider,
		factory:  factory,
		store:    store,
		ui:       ui,
		injector: injector,
	}
}

// Scan injects the payload into every target, one session per target.
// Targets run in parallel up to args.Threads; a session is never shared
// across traversals.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	if len(args.Targets) == 0 {
		return fmt.Errorf("no targets given")
	}

	if args.Mode == m.ModeAsync && args.SkipPayload {
		return fmt.Errorf("skip-payload is not supported in async mode")
	}

	// A payload-load failure is a setup error: it surfaces before any
	// session is opened or any context switched.
	source, err := w.provider.Script(ctx)
	if err != nil {
		slog.Error("Failed to load payload", "error", err)
		return err
	}

	if err := w.ui.Start(ctx, controller.WithTargetCount(len(args.Targets)), controller.WithMode(args.Mode)); err != nil {
		slog.Error("Failed to start UI", "error", err)
		return err
	}

	defer w.ui.Close(ctx)

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	summaries := make([]m.ScanSummary, len(args.Targets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, target := range args.Targets {
		i, target := i, target
		group.Go(func() error {
			summaries[i] = w.scanTarget(groupCtx, source, args, target)
			return nil
		})
	}

	// Per-target failures land in their summaries; Wait only surfaces
	// context cancellation.
	if err := group.Wait(); err != nil {
		return err
	}

	if err := w.ui.DisplaySummary(ctx, summaries); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	if args.Reports != "" {
		path, err := w.store.Save(adapter.NewReport(summaries), args.Reports)
		if err != nil {
			slog.Error("Failed to save report", "dir", args.Reports, "error", err)
			return fmt.Errorf("save report: %w", err)
		}

		slog.Info("Report written", "path", path)
	}

	// Wait for the UI to be closed by the user (press 'q')
	w.ui.Wait(ctx)

	failed := 0

	for _, summary := range summaries {
		if summary.Err != "" {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed", failed, len(summaries))
	}

	return nil
}

func (w *workflow) scanTarget(ctx context.Context, source string, args ScanArgs, target string) m.ScanSummary {
	started := time.Now()
	summary := m.ScanSummary{Target: target, Mode: args.Mode.String(), StartedAt: started}

	session, err := w.factory.NewSession(ctx, adapter.SessionSpec{
		ControlURL: args.ControlURL,
		TargetURL:  target,
	})
	if err != nil {
		summary.Err = err.Error()
		summary.Duration = time.Since(started)

		return summary
	}

	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			slog.Error("Failed to close session", "target", target, "error", closeErr)
		}
	}()

	if args.Mode == m.ModeAsync {
		// The async path always injects and carries no callback, so no
		// per-frame visits are recorded for it.
		err = w.injector.InjectAsync(ctx, session, source, args.DisableFrames)
	} else {
		err = w.injector.Inject(ctx, session, InjectArgs{
			Source:        source,
			DisableFrames: args.DisableFrames,
			Callback:      w.visitRecorder(ctx, target, args.SkipPayload, &summary),
			SkipPayload:   args.SkipPayload,
		})
	}

	if err != nil {
		summary.Err = err.Error()
	}

	summary.Duration = time.Since(started)

	return summary
}

// visitRecorder instruments the frame callback: the engine itself reports
// nothing about entered contexts, so traversal visibility is accumulated
// here. The summary is only touched by its own traversal.
func (w *workflow) visitRecorder(ctx context.Context, target string, skipPayload bool, summary *m.ScanSummary) FrameCallback {
	return func(cbCtx context.Context, s adapter.Session) {
		visit := m.Visit{
			Target:    target,
			Ordinal:   len(summary.Visits),
			Injected:  !skipPayload,
			VisitedAt: time.Now(),
		}

		if value, err := s.RunScript(cbCtx, locationProbe); err == nil {
			if location, ok := value.(string); ok {
				visit.Location = location
			}
		}

		summary.Visits = append(summary.Visits, visit)
		w.ui.DisplayVisit(ctx, visit)
	}
}

// Check verifies the payload loads and a browser is reachable, without
// touching any real target page.
func (w *workflow) Check(ctx context.Context, args CheckArgs) (m.CheckResult, error) {
	var result m.CheckResult

	source, err := w.provider.Script(ctx)
	if err != nil {
		return result, err
	}

	result.PayloadBytes = len(source)

	session, err := w.factory.NewSession(ctx, adapter.SessionSpec{
		ControlURL: args.ControlURL,
		TargetURL:  "about:blank",
	})
	if err != nil {
		return result, err
	}

	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			slog.Error("Failed to close session", "error", closeErr)
		}
	}()

	value, err := session.RunScript(ctx, checkProbe)
	if err != nil {
		return result, fmt.Errorf("browser eval failed: %w", err)
	}

	// Drivers disagree on number decoding.
	switch v := value.(type) {
	case float64:
		result.BrowserOK = v == 42
	case int:
		result.BrowserOK = v == 42
	}

	if !result.BrowserOK {
		return result, fmt.Errorf("browser eval returned unexpected value %v", value)
	}

	return result, nil
}
