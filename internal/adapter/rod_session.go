package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"axegrind.dev/pkg/axegrind/pkg"
)

// frameSelector is the structural query for frame elements: it matches frame
// and iframe tags anywhere in the current document, regardless of how deeply
// they sit under non-frame ancestors.
const frameSelector = "frame, iframe"

// syncWrapper gives the payload WebDriver executeScript semantics: the
// source sees its arguments through the implicit arguments object.
const syncWrapper = "function () { %s }"

// asyncWrapper gives the payload WebDriver executeAsyncScript semantics: a
// completion callback is appended as the trailing argument, and calling it
// resolves the promise the evaluation awaits.
const asyncWrapper = `function () {
	const args = Array.prototype.slice.call(arguments);
	return new Promise((resolve) => {
		(function () { %s }).apply(null, args.concat([resolve]));
	});
}`

// RodSession drives one page over the DevTools protocol using rod. Rod
// models every frame as its own page object, so the current execution
// context is simply the page on top of the context stack: entering a frame
// pushes its page, leaving pops it, and an empty stack means the top-level
// document.
type RodSession struct {
	browser *rod.Browser
	root    *rod.Page
	stack   *pkg.Stack[*rod.Page]
}

var _ Session = (*RodSession)(nil)

type rodFrameHandle struct {
	el   *rod.Element
	desc string
}

// ID implements FrameHandle.
func (h *rodFrameHandle) ID() string {
	return h.desc
}

func (s *RodSession) current() *rod.Page {
	if page, ok := s.stack.Peek(); ok {
		return page
	}

	return s.root
}

// SwitchToRoot implements Session by dropping every nested frame context.
func (s *RodSession) SwitchToRoot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.stack.Reset()

	return nil
}

// FrameElements implements Session using a document-wide CSS query.
func (s *RodSession) FrameElements(ctx context.Context) ([]FrameHandle, error) {
	elements, err := s.current().Context(ctx).Elements(frameSelector)
	if err != nil {
		return nil, fmt.Errorf("query frame elements: %w", err)
	}

	handles := make([]FrameHandle, 0, len(elements))
	for i, el := range elements {
		handles = append(handles, &rodFrameHandle{el: el, desc: describeFrame(el, i)})
	}

	return handles, nil
}

func describeFrame(el *rod.Element, index int) string {
	if el.Object != nil && el.Object.Description != "" {
		return el.Object.Description
	}

	return fmt.Sprintf("frame[%d]", index)
}

// EnterFrame implements Session. A frame that is detached or not currently
// rendered fails here and leaves the current context unchanged.
func (s *RodSession) EnterFrame(ctx context.Context, frame FrameHandle) error {
	handle, ok := frame.(*rodFrameHandle)
	if !ok {
		return fmt.Errorf("frame handle %T does not belong to a rod session", frame)
	}

	framePage, err := handle.el.Context(ctx).Frame()
	if err != nil {
		return fmt.Errorf("enter frame %s: %w", handle.desc, err)
	}

	s.stack.Push(framePage)

	return nil
}

// ExitFrame implements Session.
func (s *RodSession) ExitFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := s.stack.Pop(); !ok {
		return errors.New("exit frame: already at the top-level document")
	}

	return nil
}

// RunScript implements Session.
func (s *RodSession) RunScript(ctx context.Context, source string, args ...any) (any, error) {
	return s.eval(ctx, fmt.Sprintf(syncWrapper, source), args)
}

// RunScriptAsync implements Session. The promise produced by the wrapper is
// awaited by the evaluation, so the call blocks until the payload invokes
// its completion callback or throws.
func (s *RodSession) RunScriptAsync(ctx context.Context, source string, args ...any) (any, error) {
	return s.eval(ctx, fmt.Sprintf(asyncWrapper, source), args)
}

func (s *RodSession) eval(ctx context.Context, js string, args []any) (any, error) {
	result, err := s.current().Context(ctx).Eval(js, args...)
	if err != nil {
		// Exceptions thrown by the evaluated source are the payload's
		// own failures; everything else is a navigation-class error.
		var evalErr *rod.EvalError
		if errors.As(err, &evalErr) {
			return nil, &ScriptError{Msg: "payload threw during execution", Err: err}
		}

		return nil, err
	}

	return result.Value.Val(), nil
}

// Close implements Session. Only the page is released; the browser process
// is not ours to manage.
func (s *RodSession) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.root.Close()
}

// RodSessionFactory connects to an already-running browser over its DevTools
// control URL. It never launches or terminates the browser process.
type RodSessionFactory struct{}

// NewRodSessionFactory constructs a RodSessionFactory ready to be wired into
// the workflow.
func NewRodSessionFactory() *RodSessionFactory {
	return &RodSessionFactory{}
}

// NewSession implements SessionFactory: it connects to the browser, opens a
// page for the target URL and waits for the document to load.
func (f *RodSessionFactory) NewSession(ctx context.Context, spec SessionSpec) (Session, error) {
	controlURL := spec.ControlURL
	if !strings.HasPrefix(controlURL, "ws://") && !strings.HasPrefix(controlURL, "wss://") {
		// host:port form; ask the DevTools endpoint for its websocket URL.
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("resolve control URL %s: %w", controlURL, err)
		}

		controlURL = resolved
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		slog.Error("Failed to connect to browser", "controlURL", spec.ControlURL, "error", err)
		return nil, fmt.Errorf("connect to browser at %s: %w", spec.ControlURL, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: spec.TargetURL})
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", spec.TargetURL, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for %s to load: %w", spec.TargetURL, err)
	}

	slog.Debug("Session opened", "target", spec.TargetURL)

	return &RodSession{
		browser: browser,
		root:    page,
		stack:   pkg.NewStack[*rod.Page](),
	}, nil
}
