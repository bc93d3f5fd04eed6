package domain

import (
	"context"
	"errors"
	"fmt"

	"axegrind.dev/pkg/axegrind/internal/adapter"
)

// fakeFrame is a node in a scripted frame tree. The root node stands for
// the top-level document; children are the frame elements discoverable in
// this node's document.
type fakeFrame struct {
	name        string
	children    []*fakeFrame
	enterErr    error // simulated navigation failure when entering this frame
	actErr      error // plain (non-script) failure when the payload runs here
	scriptErr   error // payload failure, surfaced as *adapter.ScriptError
	discoverErr error // failure of the frame-element query in this document
}

type fakeHandle struct {
	node *fakeFrame
}

func (h *fakeHandle) ID() string {
	return h.node.name
}

// fakeSession implements adapter.Session over an in-memory frame tree and
// records every operation in order.
type fakeSession struct {
	root  *fakeFrame
	stack []*fakeFrame

	ops       []string // "reset", "enter:<name>", "exit:<name>", "inject:<name>", ...
	injected  []string // contexts the payload ran in, in order
	asyncRuns []string // contexts the async payload ran in, in order
	asyncGate chan struct{}
	closed    bool
}

var _ adapter.Session = (*fakeSession)(nil)

func newFakeSession(root *fakeFrame) *fakeSession {
	return &fakeSession{root: root}
}

func (s *fakeSession) current() *fakeFrame {
	if len(s.stack) == 0 {
		return s.root
	}

	return s.stack[len(s.stack)-1]
}

func (s *fakeSession) depth() int {
	return len(s.stack)
}

func (s *fakeSession) SwitchToRoot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.stack = nil
	s.ops = append(s.ops, "reset")

	return nil
}

func (s *fakeSession) FrameElements(ctx context.Context) ([]adapter.FrameHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur := s.current()
	if cur.discoverErr != nil {
		return nil, cur.discoverErr
	}

	handles := make([]adapter.FrameHandle, 0, len(cur.children))
	for _, child := range cur.children {
		handles = append(handles, &fakeHandle{node: child})
	}

	return handles, nil
}

func (s *fakeSession) EnterFrame(ctx context.Context, frame adapter.FrameHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	handle, ok := frame.(*fakeHandle)
	if !ok {
		return fmt.Errorf("foreign frame handle %T", frame)
	}

	if handle.node.enterErr != nil {
		return handle.node.enterErr
	}

	s.stack = append(s.stack, handle.node)
	s.ops = append(s.ops, "enter:"+handle.node.name)

	return nil
}

func (s *fakeSession) ExitFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.stack) == 0 {
		return errors.New("already at the top-level document")
	}

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.ops = append(s.ops, "exit:"+top.name)

	return nil
}

func (s *fakeSession) RunScript(ctx context.Context, source string, _ ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur := s.current()

	switch source {
	case locationProbe:
		return "fake://" + cur.name, nil
	case checkProbe:
		return float64(42), nil
	}

	return s.runPayload(cur, false)
}

func (s *fakeSession) RunScriptAsync(ctx context.Context, source string, _ ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.asyncGate != nil {
		// Completion is signalled externally, like a payload invoking
		// its trailing callback.
		select {
		case <-s.asyncGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return s.runPayload(s.current(), true)
}

func (s *fakeSession) runPayload(cur *fakeFrame, async bool) (any, error) {
	if cur.scriptErr != nil {
		return nil, &adapter.ScriptError{Msg: "payload threw during execution", Err: cur.scriptErr}
	}

	if cur.actErr != nil {
		return nil, cur.actErr
	}

	s.ops = append(s.ops, "inject:"+cur.name)
	s.injected = append(s.injected, cur.name)

	if async {
		s.asyncRuns = append(s.asyncRuns, cur.name)
	}

	return nil, nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.closed = true

	return nil
}

// frame builds a tree node.
func frame(name string, children ...*fakeFrame) *fakeFrame {
	return &fakeFrame{name: name, children: children}
}
