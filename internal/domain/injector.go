// Package domain implements the frame traversal and injection engine.
package domain

import (
	"context"
	"fmt"
	"log/slog"

	"axegrind.dev/pkg/axegrind/internal/adapter"
	m "axegrind.dev/pkg/axegrind/internal/model"
)

// FrameCallback is invoked once per successfully entered context, including
// the top-level document, with the session whose context is currently
// active. Any accumulation is the caller's responsibility; the engine keeps
// no per-frame state of its own.
type FrameCallback func(ctx context.Context, s adapter.Session)

// InjectArgs bundles the options of a synchronous injection.
type InjectArgs struct {
	// Source is the payload injected into every context.
	Source string
	// DisableFrames skips all frame recursion; only the top-level
	// document is injected.
	DisableFrames bool
	// Callback is optional; nil is valid.
	Callback FrameCallback
	// SkipPayload performs the context switches and callback invocations
	// without ever running the payload.
	SkipPayload bool
}

// Injector walks the frame tree of the session's active document depth-first
// and performs one injection per entered context, in pre-order.
//
// The asynchronous variant deliberately supports neither a per-frame
// callback nor payload skipping: it always injects.
type Injector interface {
	Inject(ctx context.Context, s adapter.Session, args InjectArgs) error
	InjectAsync(ctx context.Context, s adapter.Session, source string, disableFrames bool) error
}

type injector struct{}

// NewInjector constructs the traversal engine.
func NewInjector() Injector {
	return &injector{}
}

// visitSpec carries the per-invocation configuration through the recursion.
type visitSpec struct {
	source      string
	mode        m.ExecMode
	callback    FrameCallback
	skipPayload bool
}

// Inject implements Injector.
func (in *injector) Inject(ctx context.Context, s adapter.Session, args InjectArgs) error {
	spec := visitSpec{
		source:      args.Source,
		mode:        m.ModeSync,
		callback:    args.Callback,
		skipPayload: args.SkipPayload,
	}

	return in.run(ctx, s, spec, args.DisableFrames)
}

// InjectAsync implements Injector.
func (in *injector) InjectAsync(ctx context.Context, s adapter.Session, source string, disableFrames bool) error {
	spec := visitSpec{source: source, mode: m.ModeAsync}

	return in.run(ctx, s, spec, disableFrames)
}

// run forces the session back to the top-level document, undoing any prior
// traversal's context state, performs one injection there and then hands
// control to the frame walk.
func (in *injector) run(ctx context.Context, s adapter.Session, spec visitSpec, disableFrames bool) error {
	if err := s.SwitchToRoot(ctx); err != nil {
		return fmt.Errorf("switch to top-level document: %w", err)
	}

	if err := in.visit(ctx, s, spec); err != nil {
		return err
	}

	if disableFrames {
		return nil
	}

	return in.walkFrames(ctx, s, spec)
}

// visit performs one injection operation against whatever context is
// currently active: run the payload, then fire the callback if present.
func (in *injector) visit(ctx context.Context, s adapter.Session, spec visitSpec) error {
	if !spec.skipPayload {
		run := s.RunScript
		if spec.mode == m.ModeAsync {
			run = s.RunScriptAsync
		}

		if _, err := run(ctx, spec.source); err != nil {
			return err
		}
	}

	if spec.callback != nil {
		spec.callback(ctx, s)
	}

	return nil
}

// walkFrames discovers every frame and iframe element in the current context
// and processes each in discovery order: enter the frame, inject, recurse
// into grandchildren, restore the parent context.
//
// Failure policy: an error for one frame handle is contained at that
// handle's loop iteration. A *adapter.ScriptError raised by the payload
// aborts the whole traversal at any depth; every other failure (detached
// element, frame not currently rendered, context-switch refusal) skips the
// frame as if it had zero children and the loop moves on to the next
// sibling. Skips are not surfaced; callers that need visibility instrument
// the frame callback.
func (in *injector) walkFrames(ctx context.Context, s adapter.Session, spec visitSpec) error {
	frames, err := s.FrameElements(ctx)
	if err != nil {
		// At recursion depth this is swallowed by the caller's loop; at
		// the top level it surfaces as a traversal setup failure.
		return fmt.Errorf("discover frame elements: %w", err)
	}

	for _, frame := range frames {
		if err := s.EnterFrame(ctx, frame); err != nil {
			// The current context is unchanged after a failed enter.
			continue
		}

		visitErr := in.visitAndRecurse(ctx, s, spec)

		// Every successful enter is paired with exactly one exit, even
		// when the visit failed, so the context stack depth always
		// matches the recursion depth.
		if exitErr := s.ExitFrame(ctx); exitErr != nil {
			slog.Debug("Failed to restore parent context", "frame", frame.ID(), "error", exitErr)
		}

		if visitErr != nil && adapter.IsScriptError(visitErr) {
			return visitErr
		}
	}

	return nil
}

// visitAndRecurse injects into the just-entered context and then walks its
// child frames. A frame whose own injection failed is not recursed into.
func (in *injector) visitAndRecurse(ctx context.Context, s adapter.Session, spec visitSpec) error {
	if err := in.visit(ctx, s, spec); err != nil {
		return err
	}

	return in.walkFrames(ctx, s, spec)
}
