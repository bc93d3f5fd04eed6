package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axegrind.dev/pkg/axegrind/internal/adapter"
	"axegrind.dev/pkg/axegrind/internal/controller"
	m "axegrind.dev/pkg/axegrind/internal/model"
)

type fakeUI struct {
	mu        sync.Mutex
	started   bool
	visits    []m.Visit
	summaries []m.ScanSummary
}

var _ controller.UI = (*fakeUI)(nil)

func (u *fakeUI) Start(_ context.Context, _ ...controller.StartOption) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.started = true

	return nil
}

func (u *fakeUI) Close(_ context.Context) {}

func (u *fakeUI) Wait(_ context.Context) {}

func (u *fakeUI) DisplayVisit(_ context.Context, visit m.Visit) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.visits = append(u.visits, visit)
}

func (u *fakeUI) DisplaySummary(_ context.Context, summaries []m.ScanSummary) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.summaries = summaries

	return nil
}

type fakeFactory struct {
	mu       sync.Mutex
	sessions map[string]*fakeSession // keyed by target URL
	err      error
	specs    []adapter.SessionSpec
}

var _ adapter.SessionFactory = (*fakeFactory)(nil)

func (f *fakeFactory) NewSession(_ context.Context, spec adapter.SessionSpec) (adapter.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.specs = append(f.specs, spec)

	if f.err != nil {
		return nil, f.err
	}

	session, ok := f.sessions[spec.TargetURL]
	if !ok {
		return nil, fmt.Errorf("no scripted session for %s", spec.TargetURL)
	}

	return session, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []m.ScanReport
}

var _ adapter.ReportStore = (*fakeStore)(nil)

func (s *fakeStore) Save(report m.ScanReport, dir m.Path) (m.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, report)

	return m.Path(string(dir) + "/scan-test.json"), nil
}

func (s *fakeStore) Load(_ m.Path) (m.ScanReport, error) {
	return m.ScanReport{}, errors.New("not scripted")
}

type failingProvider struct{}

func (failingProvider) Script(_ context.Context) (string, error) {
	return "", errors.New("load script from axe.min.js: no such file")
}

func newTestWorkflow(provider adapter.ScriptProvider, factory adapter.SessionFactory) (Workflow, *fakeUI, *fakeStore) {
	ui := &fakeUI{}
	store := &fakeStore{}

	return NewWorkflow(provider, factory, store, ui, NewInjector()), ui, store
}

func TestScan_RecordsVisitsAndSavesReport(t *testing.T) {
	session := newFakeSession(threeLevelTree())
	factory := &fakeFactory{sessions: map[string]*fakeSession{"https://example.com": session}}
	w, ui, store := newTestWorkflow(adapter.StringProvider(testPayload), factory)

	err := w.Scan(context.Background(), ScanArgs{
		Targets:    []string{"https://example.com"},
		ControlURL: "127.0.0.1:9222",
		Reports:    "reports",
	})
	require.NoError(t, err)

	require.Len(t, ui.summaries, 1)
	summary := ui.summaries[0]
	assert.Empty(t, summary.Err)
	require.Len(t, summary.Visits, 4)

	for i, visit := range summary.Visits {
		assert.Equal(t, i, visit.Ordinal)
		assert.True(t, visit.Injected)
	}

	assert.Equal(t, "fake://root", summary.Visits[0].Location)
	assert.Equal(t, "fake://frameA", summary.Visits[1].Location)
	assert.Equal(t, 3, summary.FrameCount())

	assert.Len(t, ui.visits, 4)
	require.Len(t, store.saved, 1)
	assert.Equal(t, m.CurrentReportVersion, store.saved[0].Version)
	assert.True(t, session.closed)
}

func TestScan_PayloadLoadErrorIsSetupFailure(t *testing.T) {
	factory := &fakeFactory{}
	w, ui, _ := newTestWorkflow(failingProvider{}, factory)

	err := w.Scan(context.Background(), ScanArgs{Targets: []string{"https://example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load script")

	assert.Empty(t, factory.specs, "no session may be opened when the payload fails to load")
	assert.False(t, ui.started)
}

func TestScan_AsyncRejectsSkipPayload(t *testing.T) {
	w, _, _ := newTestWorkflow(adapter.StringProvider(testPayload), &fakeFactory{})

	err := w.Scan(context.Background(), ScanArgs{
		Targets:     []string{"https://example.com"},
		Mode:        m.ModeAsync,
		SkipPayload: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "async")
}

func TestScan_NoTargets(t *testing.T) {
	w, _, _ := newTestWorkflow(adapter.StringProvider(testPayload), &fakeFactory{})

	err := w.Scan(context.Background(), ScanArgs{})
	require.Error(t, err)
}

func TestScan_ContinuesAcrossFailingTargets(t *testing.T) {
	broken := newFakeSession(threeLevelTree())
	broken.root.children[0].scriptErr = errors.New("SyntaxError")

	healthy := newFakeSession(threeLevelTree())

	factory := &fakeFactory{sessions: map[string]*fakeSession{
		"https://broken.example":  broken,
		"https://healthy.example": healthy,
	}}
	w, ui, store := newTestWorkflow(adapter.StringProvider(testPayload), factory)

	err := w.Scan(context.Background(), ScanArgs{
		Targets: []string{"https://broken.example", "https://healthy.example"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	require.Len(t, ui.summaries, 2)
	assert.NotEmpty(t, ui.summaries[0].Err)
	assert.Empty(t, ui.summaries[1].Err)
	assert.Equal(t, []string{"root", "frameA", "frameA1", "frameB"}, healthy.injected)

	assert.Empty(t, store.saved, "no report dir was configured")
	assert.True(t, broken.closed)
	assert.True(t, healthy.closed)
}

func TestScan_SessionOpenFailureRecorded(t *testing.T) {
	factory := &fakeFactory{err: errors.New("connect to browser at 127.0.0.1:9222: refused")}
	w, ui, _ := newTestWorkflow(adapter.StringProvider(testPayload), factory)

	err := w.Scan(context.Background(), ScanArgs{Targets: []string{"https://example.com"}})
	require.Error(t, err)

	require.Len(t, ui.summaries, 1)
	assert.Contains(t, ui.summaries[0].Err, "connect to browser")
	assert.Empty(t, ui.summaries[0].Visits)
}

func TestScan_AsyncRecordsNoVisits(t *testing.T) {
	session := newFakeSession(threeLevelTree())
	factory := &fakeFactory{sessions: map[string]*fakeSession{"https://example.com": session}}
	w, ui, _ := newTestWorkflow(adapter.StringProvider(testPayload), factory)

	err := w.Scan(context.Background(), ScanArgs{
		Targets: []string{"https://example.com"},
		Mode:    m.ModeAsync,
	})
	require.NoError(t, err)

	// The async path carries no callback, so traversal visibility is
	// limited to the outcome.
	require.Len(t, ui.summaries, 1)
	assert.Empty(t, ui.summaries[0].Visits)
	assert.Equal(t, []string{"root", "frameA", "frameA1", "frameB"}, session.asyncRuns)
}

func TestCheck_Succeeds(t *testing.T) {
	session := newFakeSession(frame("root"))
	factory := &fakeFactory{sessions: map[string]*fakeSession{"about:blank": session}}
	w, _, _ := newTestWorkflow(adapter.StringProvider(testPayload), factory)

	result, err := w.Check(context.Background(), CheckArgs{ControlURL: "127.0.0.1:9222"})
	require.NoError(t, err)

	assert.Equal(t, len(testPayload), result.PayloadBytes)
	assert.True(t, result.BrowserOK)
	assert.True(t, session.closed)
}

func TestCheck_PayloadLoadError(t *testing.T) {
	w, _, _ := newTestWorkflow(failingProvider{}, &fakeFactory{})

	_, err := w.Check(context.Background(), CheckArgs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load script")
}
