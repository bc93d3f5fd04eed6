// Package adapter contains driver and infrastructure adapters for the axegrind CLI.
package adapter

import "context"

// FrameHandle references a frame or iframe element discovered within the
// session's current execution context. A handle is only valid while the
// context it was discovered in is active; re-discover after leaving it.
type FrameHandle interface {
	// ID returns a short diagnostic description of the frame element.
	ID() string
}

// Session abstracts a live browser-automation connection carrying one
// mutable current execution context. It intentionally hides the concrete
// driver so the traversal logic can be tested without a browser.
//
// A session must not be shared across concurrent traversals: context
// switches race on the single current-context state. At most one traversal
// may be in flight per session; that discipline is the caller's.
type Session interface {
	// SwitchToRoot resets the current execution context to the top-level
	// document, undoing any nested frame state.
	SwitchToRoot(ctx context.Context) error

	// FrameElements returns every frame and iframe element reachable in
	// the current context's document, at any nesting depth under
	// non-frame ancestors, in document order.
	FrameElements(ctx context.Context) ([]FrameHandle, error)

	// EnterFrame switches the current execution context into frame.
	// On failure the current context is unchanged.
	EnterFrame(ctx context.Context, frame FrameHandle) error

	// ExitFrame switches the current execution context back to the parent
	// of the current frame.
	ExitFrame(ctx context.Context) error

	// RunScript executes source synchronously in the current context and
	// returns its value. A failure raised by the script itself is
	// reported as a *ScriptError.
	RunScript(ctx context.Context, source string, args ...any) (any, error)

	// RunScriptAsync executes source in the current context and suspends
	// the caller until the script signals completion through the
	// trailing callback argument it receives. No timeout is imposed
	// here; a payload that never signals blocks indefinitely.
	RunScriptAsync(ctx context.Context, source string, args ...any) (any, error)

	// Close releases the page held by the session. It never touches the
	// browser process itself.
	Close(ctx context.Context) error
}

// SessionSpec describes the connection a factory should open.
type SessionSpec struct {
	ControlURL string // DevTools control URL of an already-running browser
	TargetURL  string // page to open and scan
}

// SessionFactory opens sessions against a running browser.
type SessionFactory interface {
	NewSession(ctx context.Context, spec SessionSpec) (Session, error)
}
